package page

import (
	"fmt"

	"github.com/kailas-cloud/gamesearch/internal/domain"
)

// Pagination defaults.
const (
	DefaultNumber = 1
	DefaultSize   = 20
	// DefaultMaxDepth matches the Atlas ceiling on $vectorSearch limit and numCandidates.
	DefaultMaxDepth = 10000
)

// Page is a validated 1-based pagination cursor.
type Page struct {
	number int
	size   int
}

// New validates pagination parameters.
// Zero values fall back to defaults; size is clamped to maxSize when maxSize > 0.
// Skip()+FetchLimit() may not exceed maxDepth (DefaultMaxDepth when maxDepth <= 0).
func New(number, size, maxSize, maxDepth int) (Page, error) {
	if number < 0 {
		return Page{}, fmt.Errorf("%w: page must be positive, got %d", domain.ErrInvalidRequest, number)
	}
	if size < 0 {
		return Page{}, fmt.Errorf("%w: page_size must be positive, got %d", domain.ErrInvalidRequest, size)
	}
	if number == 0 {
		number = DefaultNumber
	}
	if size == 0 {
		size = DefaultSize
	}
	if maxSize > 0 && size > maxSize {
		size = maxSize
	}
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}

	// Pages that fit satisfy (number-1)*size <= maxDepth-size-1, checked by
	// division so huge page numbers cannot overflow.
	room := maxDepth - size - 1
	if room < 0 || number-1 > room/size {
		return Page{}, fmt.Errorf("%w: page %d with page_size %d reaches past the first %d results",
			domain.ErrInvalidRequest, number, size, maxDepth)
	}
	return Page{number: number, size: size}, nil
}

// Default returns page 1 with the default size.
func Default() Page { return Page{number: DefaultNumber, size: DefaultSize} }

// Number returns the 1-based page number.
func (p Page) Number() int { return p.number }

// Size returns the page size.
func (p Page) Size() int { return p.size }

// Skip returns the number of records before this page.
func (p Page) Skip() int { return (p.number - 1) * p.size }

// FetchLimit returns how many records to request: one more than the page size,
// so the extra record signals a following page without a count query.
func (p Page) FetchLimit() int { return p.size + 1 }

// Trim drops the look-ahead record and reports whether another page exists.
func Trim[T any](p Page, items []T) ([]T, bool) {
	if len(items) > p.size {
		return items[:p.size], true
	}
	return items, false
}
