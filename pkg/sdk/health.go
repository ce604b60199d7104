package gamesearch

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Health fetches the server health report. A degraded or unhealthy server
// answers 503 with the same body, so that report is returned without error.
func (c *Client) Health(ctx context.Context) (status HealthStatus, err error) {
	start := time.Now()
	defer func() { c.obs.observe("health", start, err) }()

	code, body, err := c.send(ctx, http.MethodGet, "/health", nil)
	if err != nil {
		return HealthStatus{}, err
	}
	if code == http.StatusServiceUnavailable {
		if jerr := json.Unmarshal(body, &status); jerr == nil && status.Status != "" {
			return status, nil
		}
	}
	if err = decodeResponse(code, body, &status); err != nil {
		return HealthStatus{}, fmt.Errorf("health: %w", err)
	}
	return status, nil
}
