package gamesearch

import (
	"encoding/json"
	"time"
)

// SearchRequest is one page of a search.
// Zero Page and PageSize use the server defaults.
type SearchRequest struct {
	Query           string          `json:"query,omitempty"`
	UseVectorSearch bool            `json:"use_vector_search"`
	Page            int             `json:"page,omitempty"`
	PageSize        int             `json:"page_size,omitempty"`
	ProcessedOutput json.RawMessage `json:"processed_output,omitempty"`
	VectorEmbedding []float32       `json:"vector_embedding,omitempty"`
	Cursor          string          `json:"cursor,omitempty"`
}

// Game is a single search hit.
type Game struct {
	ID               string     `json:"_id,omitempty"`
	Name             string     `json:"name,omitempty"`
	Summary          string     `json:"summary,omitempty"`
	Genres           []string   `json:"genres,omitempty"`
	Franchises       []string   `json:"franchises,omitempty"`
	FirstReleaseDate *time.Time `json:"first_release_date,omitempty"`
}

// SearchResponse is the finished state of one page.
// A non-empty Error means the query was refused by the content policy.
type SearchResponse struct {
	Query           string          `json:"query"`
	UseVectorSearch bool            `json:"use_vector_search"`
	Page            int             `json:"page"`
	PageSize        int             `json:"page_size"`
	Result          []Game          `json:"result"`
	HasNextPage     bool            `json:"has_next_page"`
	Error           string          `json:"error,omitempty"`
	ProcessedOutput json.RawMessage `json:"processed_output,omitempty"`
	VectorEmbedding []float32       `json:"vector_embedding,omitempty"`
	Cursor          string          `json:"cursor,omitempty"`
}

// Rejected reports whether the content policy refused the query.
func (r *SearchResponse) Rejected() bool { return r.Error != "" }

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status    string            `json:"status"` // "healthy", "degraded", "unhealthy"
	Checks    map[string]string `json:"checks"` // component → "ok"/"error"
	Timestamp time.Time         `json:"timestamp"`
}
