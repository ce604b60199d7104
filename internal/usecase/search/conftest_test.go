package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/game"
	"github.com/kailas-cloud/gamesearch/internal/domain/genre"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/continuation"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/event"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/page"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/request"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/verdict"
)

var testGenres = genre.NewAllowlist([]string{"Role-playing (RPG)", "Shooter"})

const rpgDescriptor = `{
  "query": {"genres": "Role-playing (RPG)", "first_release_date": {"$gte": "2010-01-01T00:00:00Z"}},
  "project": {"name": 1, "summary": 1, "genres": 1, "first_release_date": 1},
  "type": "SIMPLE"
}`

// --- Mocks ---

type mockGate struct {
	v     verdict.Verdict
	err   error
	calls int
}

func (m *mockGate) Evaluate(_ context.Context, _ string) (verdict.Verdict, error) {
	m.calls++
	return m.v, m.err
}

type mockCompiler struct {
	raw          string
	err          error
	compileCalls int
	restoreCalls int
}

func (m *mockCompiler) Compile(_ context.Context, _ string, genres genre.Allowlist) (query.Descriptor, error) {
	m.compileCalls++
	if m.err != nil {
		return query.Descriptor{}, m.err
	}
	return query.Parse([]byte(m.raw), query.Options{Genres: genres})
}

func (m *mockCompiler) Restore(raw []byte, genres genre.Allowlist) (query.Descriptor, error) {
	m.restoreCalls++
	return query.Parse(raw, query.Options{Genres: genres})
}

type mockVectorizer struct {
	vec   []float32
	err   error
	calls int
}

func (m *mockVectorizer) Embed(_ context.Context, _ string) ([]float32, error) {
	m.calls++
	return m.vec, m.err
}

type mockExecutor struct {
	games   []game.Game
	hasNext bool
	err     error

	structuredCalls int
	vectorCalls     int
	gotDescriptor   query.Descriptor
	gotVector       []float32
	gotPage         page.Page
}

func (m *mockExecutor) ExecuteStructured(
	_ context.Context, d query.Descriptor, p page.Page,
) ([]game.Game, bool, error) {
	m.structuredCalls++
	m.gotDescriptor = d
	m.gotPage = p
	return m.games, m.hasNext, m.err
}

func (m *mockExecutor) ExecuteVector(_ context.Context, vec []float32, p page.Page) ([]game.Game, bool, error) {
	m.vectorCalls++
	m.gotVector = vec
	m.gotPage = p
	return m.games, m.hasNext, m.err
}

type mockContinuations struct {
	records map[string]continuation.Continuation
	saveErr error
	delErr  error
	saves   int
	deleted []string
}

func newMockContinuations() *mockContinuations {
	return &mockContinuations{records: make(map[string]continuation.Continuation)}
}

func (m *mockContinuations) Save(_ context.Context, token string, c continuation.Continuation) (string, error) {
	m.saves++
	if m.saveErr != nil {
		return "", m.saveErr
	}
	if token == "" {
		token = "cursor-1"
	}
	m.records[token] = c
	return token, nil
}

func (m *mockContinuations) Load(_ context.Context, token string) (continuation.Continuation, error) {
	c, ok := m.records[token]
	if !ok {
		return continuation.Continuation{}, domain.ErrContinuationNotFound
	}
	return c, nil
}

func (m *mockContinuations) Delete(_ context.Context, token string) error {
	m.deleted = append(m.deleted, token)
	if m.delErr != nil {
		return m.delErr
	}
	delete(m.records, token)
	return nil
}

type mockPublisher struct {
	events []event.Search
}

func (m *mockPublisher) Publish(_ context.Context, e event.Search) {
	m.events = append(m.events, e)
}

// --- Fixtures ---

type fixture struct {
	gate     *mockGate
	compiler *mockCompiler
	vectors  *mockVectorizer
	executor *mockExecutor
	conts    *mockContinuations
	events   *mockPublisher
	svc      *Service
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		gate:     &mockGate{v: verdict.Allow()},
		compiler: &mockCompiler{raw: rpgDescriptor},
		vectors:  &mockVectorizer{vec: []float32{0.1, 0.2, 0.3}},
		executor: &mockExecutor{games: []game.Game{{ID: "1", Name: "Skyrim"}, {ID: "2", Name: "Dragon Age"}}},
		conts:    newMockContinuations(),
		events:   &mockPublisher{},
	}
	f.svc = New(f.gate, f.compiler, f.vectors, f.executor, testGenres).
		WithContinuations(f.conts).
		WithEvents(f.events)
	return f
}

func mustRequest(t *testing.T, q string, m mode.Mode, number int, opts ...request.Option) request.Request {
	t.Helper()
	p, err := page.New(number, 20, 100, 0)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	req, err := request.New(q, m, p, opts...)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return req
}
