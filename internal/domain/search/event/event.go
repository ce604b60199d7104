// Package event describes the record published for every finished search.
package event

import "time"

// Search is one finished search call, successful or not.
type Search struct {
	Query       string    `json:"query"`
	Mode        string    `json:"mode"`
	Outcome     string    `json:"outcome"`
	Page        int       `json:"page"`
	PageSize    int       `json:"page_size"`
	Results     int       `json:"results"`
	HasNextPage bool      `json:"has_next_page"`
	LatencyMs   int64     `json:"latency_ms"`
	At          time.Time `json:"at"`
}
