package chi

import (
	"encoding/json"
	"time"

	"github.com/kailas-cloud/gamesearch/internal/domain/game"
)

// ErrorCode is the stable machine-readable error kind.
type ErrorCode string

// Error codes.
const (
	ErrorCodeEmptyQuery           ErrorCode = "empty_query"
	ErrorCodeBadRequest           ErrorCode = "bad_request"
	ErrorCodeUnprocessableQuery   ErrorCode = "unprocessable_query"
	ErrorCodeContinuationNotFound ErrorCode = "continuation_not_found"
	ErrorCodeDatabaseError        ErrorCode = "database_error"
	ErrorCodeProviderError        ErrorCode = "provider_error"
	ErrorCodeForbidden            ErrorCode = "forbidden"
	ErrorCodeInternalError        ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchRequest is the body of POST /search.
type SearchRequest struct {
	Query           string          `json:"query"`
	UseVectorSearch bool            `json:"use_vector_search"`
	Page            *int            `json:"page,omitempty"`
	PageSize        *int            `json:"page_size,omitempty"`
	ProcessedOutput json.RawMessage `json:"processed_output,omitempty"`
	VectorEmbedding []float32       `json:"vector_embedding,omitempty"`
	Cursor          string          `json:"cursor,omitempty"`
}

// SearchResponse is the terminal search state returned to the caller.
// processed_output and vector_embedding are echoed so a caller without a
// cursor can request later pages with the same artifact.
type SearchResponse struct {
	Query           string          `json:"query"`
	UseVectorSearch bool            `json:"use_vector_search"`
	Page            int             `json:"page"`
	PageSize        int             `json:"page_size"`
	Result          []game.Game     `json:"result"`
	HasNextPage     bool            `json:"has_next_page"`
	Error           string          `json:"error,omitempty"`
	ProcessedOutput json.RawMessage `json:"processed_output,omitempty"`
	VectorEmbedding []float32       `json:"vector_embedding,omitempty"`
	Cursor          string          `json:"cursor,omitempty"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status    string            `json:"status"`
	Checks    map[string]string `json:"checks"`
	Timestamp time.Time         `json:"timestamp"`
}
