// Package state holds the per-request record threaded through the search
// pipeline and enforces its forward-only transitions.
package state

import (
	"errors"
	"fmt"
	"strings"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/game"
	"github.com/kailas-cloud/gamesearch/internal/domain/genre"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/page"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/verdict"
)

// Phase is a node of the search state machine.
type Phase string

// Phases in flow order. Rejected, StructuredExecuted and VectorExecuted are terminal.
const (
	Start              Phase = "start"
	Evaluated          Phase = "evaluated"
	Rejected           Phase = "rejected"
	Allowed            Phase = "allowed"
	StructuredExecuted Phase = "structured_executed"
	VectorExecuted     Phase = "vector_executed"
)

// IsTerminal reports whether no further transition is possible.
func (p Phase) IsTerminal() bool {
	return p == Rejected || p == StructuredExecuted || p == VectorExecuted
}

// ErrTransition signals an out-of-order state change; it is a programming error.
var ErrTransition = errors.New("invalid state transition")

// QueryState is owned by exactly one in-flight request and is never shared.
type QueryState struct {
	query       string
	searchMode  mode.Mode
	page        page.Page
	genres      genre.Allowlist
	phase       Phase
	evaluation  *verdict.Verdict
	descriptor  *query.Descriptor
	embedding   []float32
	hasNextPage *bool
	result      []game.Game
	err         string
}

// New starts a state for a non-empty query.
func New(q string, m mode.Mode, p page.Page) (*QueryState, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return nil, domain.ErrEmptyQuery
	}
	if !m.IsValid() {
		return nil, fmt.Errorf("%w: invalid search mode %q", domain.ErrInvalidRequest, m)
	}
	return &QueryState{query: q, searchMode: m, page: p, phase: Start}, nil
}

// Query returns the raw query text.
func (s *QueryState) Query() string { return s.query }

// Mode returns the retrieval strategy.
func (s *QueryState) Mode() mode.Mode { return s.searchMode }

// Page returns the pagination cursor.
func (s *QueryState) Page() page.Page { return s.page }

// Phase returns the current node.
func (s *QueryState) Phase() Phase { return s.phase }

// Genres returns the allowlist injected for compilation.
func (s *QueryState) Genres() genre.Allowlist { return s.genres }

// SetGenres injects the allowlist before compilation.
func (s *QueryState) SetGenres(a genre.Allowlist) { s.genres = a }

// Evaluation returns the safety verdict, if the gate ran.
func (s *QueryState) Evaluation() (verdict.Verdict, bool) {
	if s.evaluation == nil {
		return verdict.Verdict{}, false
	}
	return *s.evaluation, true
}

// Descriptor returns the compiled descriptor, if present.
func (s *QueryState) Descriptor() (query.Descriptor, bool) {
	if s.descriptor == nil {
		return query.Descriptor{}, false
	}
	return *s.descriptor, true
}

// Embedding returns a copy of the query vector, if present.
func (s *QueryState) Embedding() ([]float32, bool) {
	if s.embedding == nil {
		return nil, false
	}
	out := make([]float32, len(s.embedding))
	copy(out, s.embedding)
	return out, true
}

// HasNextPage returns the next-page signal once a path executed.
func (s *QueryState) HasNextPage() (bool, bool) {
	if s.hasNextPage == nil {
		return false, false
	}
	return *s.hasNextPage, true
}

// Result returns the page of games (nil unless executed).
func (s *QueryState) Result() []game.Game { return s.result }

// Error returns the rejection message (empty unless rejected).
func (s *QueryState) Error() string { return s.err }

// UseDescriptor seeds a descriptor from an earlier page so compilation is skipped.
func (s *QueryState) UseDescriptor(d query.Descriptor) error {
	if s.searchMode.UsesVector() {
		return fmt.Errorf("%w: a compiled query cannot drive a vector search", domain.ErrInvalidRequest)
	}
	if d.IsZero() {
		return fmt.Errorf("%w: empty compiled query", domain.ErrInvalidRequest)
	}
	return s.SetDescriptor(d)
}

// UseEmbedding seeds a vector from an earlier page so embedding is skipped.
func (s *QueryState) UseEmbedding(v []float32) error {
	if !s.searchMode.UsesVector() {
		return fmt.Errorf("%w: an embedding cannot drive a structured search", domain.ErrInvalidRequest)
	}
	if len(v) == 0 {
		return fmt.Errorf("%w: empty embedding", domain.ErrInvalidRequest)
	}
	return s.SetEmbedding(v)
}

// SetDescriptor records the compiled descriptor. It is written at most once.
func (s *QueryState) SetDescriptor(d query.Descriptor) error {
	if s.descriptor != nil {
		return fmt.Errorf("%w: descriptor already set", ErrTransition)
	}
	if s.embedding != nil {
		return fmt.Errorf("%w: descriptor and embedding are exclusive", ErrTransition)
	}
	s.descriptor = &d
	return nil
}

// SetEmbedding records the query vector. It is written at most once.
func (s *QueryState) SetEmbedding(v []float32) error {
	if s.embedding != nil {
		return fmt.Errorf("%w: embedding already set", ErrTransition)
	}
	if s.descriptor != nil {
		return fmt.Errorf("%w: descriptor and embedding are exclusive", ErrTransition)
	}
	s.embedding = make([]float32, len(v))
	copy(s.embedding, v)
	return nil
}

// Evaluate records the gate verdict and moves to Allowed or Rejected.
// A rejection sets the fixed user-facing message and clears any result.
func (s *QueryState) Evaluate(v verdict.Verdict) error {
	if s.phase != Start {
		return fmt.Errorf("%w: evaluate from %s", ErrTransition, s.phase)
	}
	s.evaluation = &v
	s.phase = Evaluated
	if !v.IsAllowed() {
		s.err = verdict.RejectionMessage
		s.result = nil
		s.hasNextPage = nil
		s.phase = Rejected
		return nil
	}
	s.phase = Allowed
	return nil
}

// Resume marks the state allowed on the strength of a verdict recorded by an
// earlier page of the same search.
func (s *QueryState) Resume() error {
	return s.Evaluate(verdict.Allow())
}

// Complete stores the executed page and moves to the mode's terminal phase.
func (s *QueryState) Complete(games []game.Game, hasNext bool) error {
	if s.phase != Allowed {
		return fmt.Errorf("%w: complete from %s", ErrTransition, s.phase)
	}
	if games == nil {
		games = []game.Game{}
	}
	s.result = games
	s.hasNextPage = &hasNext
	if s.searchMode.UsesVector() {
		s.phase = VectorExecuted
	} else {
		s.phase = StructuredExecuted
	}
	return nil
}
