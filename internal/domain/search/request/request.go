package request

import (
	"fmt"
	"strings"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/page"
)

// MaxQueryLength is the maximum allowed search query length.
const MaxQueryLength = 2048

// Request is a validated search call: the query text, the mode, the page and
// at most one artifact carried over from an earlier page.
type Request struct {
	query      string
	searchMode mode.Mode
	page       page.Page
	descriptor []byte
	embedding  []float32
	cursor     string
}

// Option sets an optional pagination artifact.
type Option func(*Request)

// WithDescriptor attaches a compiled descriptor echoed back by the caller.
// The bytes are untrusted and get validated again before use.
func WithDescriptor(raw []byte) Option {
	return func(r *Request) { r.descriptor = raw }
}

// WithEmbedding attaches a query vector echoed back by the caller.
func WithEmbedding(v []float32) Option {
	return func(r *Request) { r.embedding = v }
}

// WithCursor attaches a server-issued continuation token.
func WithCursor(token string) Option {
	return func(r *Request) { r.cursor = strings.TrimSpace(token) }
}

// New validates search parameters.
// A blank query fails with domain.ErrEmptyQuery unless a cursor supplies it;
// inconsistent artifacts fail with domain.ErrInvalidRequest.
func New(query string, m mode.Mode, p page.Page, opts ...Option) (Request, error) {
	r := Request{query: strings.TrimSpace(query), searchMode: m, page: p}
	for _, opt := range opts {
		opt(&r)
	}

	if r.query == "" && r.cursor == "" {
		return Request{}, domain.ErrEmptyQuery
	}
	if len(r.query) > MaxQueryLength {
		return Request{}, fmt.Errorf("%w: query too long (max %d chars)", domain.ErrInvalidRequest, MaxQueryLength)
	}
	if !m.IsValid() {
		return Request{}, fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidRequest, m)
	}

	artifacts := 0
	for _, set := range []bool{len(r.descriptor) > 0, len(r.embedding) > 0, r.cursor != ""} {
		if set {
			artifacts++
		}
	}
	if artifacts > 1 {
		return Request{}, fmt.Errorf(
			"%w: processed_output, vector_embedding and cursor are mutually exclusive", domain.ErrInvalidRequest)
	}
	if len(r.descriptor) > 0 && m.UsesVector() {
		return Request{}, fmt.Errorf("%w: processed_output requires structured search", domain.ErrInvalidRequest)
	}
	if len(r.embedding) > 0 && !m.UsesVector() {
		return Request{}, fmt.Errorf("%w: vector_embedding requires vector search", domain.ErrInvalidRequest)
	}

	return r, nil
}

// Query returns the trimmed search text (empty when resuming from a cursor).
func (r Request) Query() string { return r.query }

// Mode returns the search strategy.
func (r Request) Mode() mode.Mode { return r.searchMode }

// Page returns the requested page.
func (r Request) Page() page.Page { return r.page }

// Descriptor returns the echoed descriptor bytes, if any.
func (r Request) Descriptor() []byte { return r.descriptor }

// Embedding returns a copy of the echoed vector, if any.
func (r Request) Embedding() []float32 {
	if r.embedding == nil {
		return nil
	}
	out := make([]float32, len(r.embedding))
	copy(out, r.embedding)
	return out
}

// Cursor returns the continuation token, if any.
func (r Request) Cursor() string { return r.cursor }
