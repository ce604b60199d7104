package games

import (
	"context"
	"testing"

	"github.com/kailas-cloud/gamesearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	findFn      func(ctx context.Context, q db.FindQuery) ([]db.Document, error)
	aggregateFn func(ctx context.Context, pipeline []db.Stage) ([]db.Document, error)
	distinctFn  func(ctx context.Context, field string, filter map[string]any) ([]any, error)
}

func (m *mockStore) Find(ctx context.Context, q db.FindQuery) ([]db.Document, error) {
	if m.findFn != nil {
		return m.findFn(ctx, q)
	}
	return nil, nil
}

func (m *mockStore) Aggregate(ctx context.Context, pipeline []db.Stage) ([]db.Document, error) {
	if m.aggregateFn != nil {
		return m.aggregateFn(ctx, pipeline)
	}
	return nil, nil
}

func (m *mockStore) Distinct(ctx context.Context, field string, filter map[string]any) ([]any, error) {
	if m.distinctFn != nil {
		return m.distinctFn(ctx, field, filter)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}
