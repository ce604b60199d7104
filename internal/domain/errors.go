package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptyQuery signals an empty or whitespace-only search query.
	ErrEmptyQuery = errors.New("the search query was empty")
	// ErrInvalidRequest signals inconsistent or out-of-range request parameters.
	ErrInvalidRequest = errors.New("invalid request")
	// ErrMalformedOutput signals a model response that does not fit the expected shape.
	ErrMalformedOutput = errors.New("malformed model output")
	// ErrInvalidDescriptor signals a compiled query that failed validation.
	ErrInvalidDescriptor = errors.New("invalid query descriptor")
	// ErrDatabase signals a document store failure.
	ErrDatabase = errors.New("database error")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrTextGenerationError signals a text-generation provider failure.
	ErrTextGenerationError = errors.New("text generation provider error")
	// ErrContinuationNotFound signals an unknown or expired search cursor.
	ErrContinuationNotFound = errors.New("continuation not found")
)

// ValidationError wraps ErrInvalidDescriptor with the offending JSON path.
type ValidationError struct {
	Path   string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("%s: %s", ErrInvalidDescriptor.Error(), e.Reason)
	}
	return fmt.Sprintf("%s: %s: %s", ErrInvalidDescriptor.Error(), e.Path, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDescriptor }

// NewValidationError creates a descriptor validation error at path.
func NewValidationError(path, reason string) error {
	return &ValidationError{Path: path, Reason: reason}
}
