package gamesearch

import (
	"errors"
	"fmt"
)

// Sentinel errors matching the API error codes. Use errors.Is() to check.
var (
	ErrEmptyQuery           = errors.New("gamesearch: empty query")
	ErrBadRequest           = errors.New("gamesearch: bad request")
	ErrUnprocessableQuery   = errors.New("gamesearch: query could not be processed")
	ErrContinuationNotFound = errors.New("gamesearch: cursor expired")
	ErrForbidden            = errors.New("gamesearch: origin not allowed")
	ErrDatabase             = errors.New("gamesearch: database error")
	ErrProvider             = errors.New("gamesearch: upstream provider error")
	ErrInternal             = errors.New("gamesearch: internal server error")
)

var sentinels = map[string]error{
	"empty_query":            ErrEmptyQuery,
	"bad_request":            ErrBadRequest,
	"unprocessable_query":    ErrUnprocessableQuery,
	"continuation_not_found": ErrContinuationNotFound,
	"forbidden":              ErrForbidden,
	"database_error":         ErrDatabase,
	"provider_error":         ErrProvider,
	"internal_error":         ErrInternal,
}

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("gamesearch: http %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gamesearch: http %d %s: %s", e.StatusCode, e.Code, e.Message)
}

// Unwrap maps the error code to its sentinel.
func (e *APIError) Unwrap() error { return sentinels[e.Code] }
