package gamesearch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const maxResponseBytes = 8 << 20

// Client calls a gamesearch server.
type Client struct {
	baseURL string
	http    *http.Client
	origin  string
	obs     *observer
}

// New creates a Client for the server at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("gamesearch: invalid base url %q", baseURL)
	}

	cfg := &clientConfig{timeout: defaultTimeout}
	for _, o := range opts {
		o.apply(cfg)
	}

	hc := cfg.httpClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.timeout}
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	return &Client{
		baseURL: u.String(),
		http:    hc,
		origin:  cfg.origin,
		obs:     obs,
	}, nil
}

// Search runs one page of a search.
// A policy rejection is not an error: check SearchResponse.Rejected.
func (c *Client) Search(ctx context.Context, req SearchRequest) (resp *SearchResponse, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", start, err) }()

	if strings.TrimSpace(req.Query) == "" && req.Cursor == "" {
		return nil, ErrEmptyQuery
	}

	code, body, err := c.send(ctx, http.MethodPost, "/search", req)
	if err != nil {
		return nil, err
	}
	resp = &SearchResponse{}
	if err = decodeResponse(code, body, resp); err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	return resp, nil
}

// send performs one request and returns the status and raw body.
func (c *Client) send(ctx context.Context, method, path string, in any) (int, []byte, error) {
	var body io.Reader = http.NoBody
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return 0, nil, fmt.Errorf("gamesearch: encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("gamesearch: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.origin != "" {
		req.Header.Set("Origin", c.origin)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("gamesearch: %s %s: %w", method, path, err)
	}
	defer func() { _ = res.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseBytes))
	if err != nil {
		return 0, nil, fmt.Errorf("gamesearch: read response: %w", err)
	}
	return res.StatusCode, data, nil
}

// decodeResponse fills out from a 2xx body or returns an *APIError.
func decodeResponse(code int, body []byte, out any) error {
	if code >= 200 && code < 300 {
		if err := json.Unmarshal(body, out); err != nil {
			return fmt.Errorf("gamesearch: decode response: %w", err)
		}
		return nil
	}

	apiErr := &APIError{StatusCode: code}
	var payload struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		apiErr.Code = payload.Code
		apiErr.Message = payload.Message
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(code)
	}
	return apiErr
}

// IsRetryable reports whether err is worth retrying unchanged.
// An expired cursor is retryable only by restarting the search.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrProvider) || errors.Is(err, ErrDatabase)
}
