package games

import (
	"context"
	"fmt"
	"sort"

	"github.com/kailas-cloud/gamesearch/internal/db"
	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/game"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
)

// store is the consumer interface for game reads (ISP).
type store interface {
	Find(ctx context.Context, q db.FindQuery) ([]db.Document, error)
	Aggregate(ctx context.Context, pipeline []db.Stage) ([]db.Document, error)
	Distinct(ctx context.Context, field string, filter map[string]any) ([]any, error)
}

// Repo implements usecase/execute.Repository and usecase/genre.Source.
// Every store failure is reported as domain.ErrDatabase.
type Repo struct {
	store store
}

// New creates a games repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Find runs a filtered read.
func (r *Repo) Find(
	ctx context.Context, filter map[string]any, project map[string]int, skip, limit int,
) ([]game.Game, error) {
	docs, err := r.store.Find(ctx, db.FindQuery{
		Filter:  filter,
		Project: project,
		Skip:    int64(skip),
		Limit:   int64(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: find games: %w", domain.ErrDatabase, err)
	}
	return toGames(docs), nil
}

// Aggregate runs a pipeline.
func (r *Repo) Aggregate(ctx context.Context, stages []map[string]any) ([]game.Game, error) {
	pipeline := make([]db.Stage, len(stages))
	for i, st := range stages {
		pipeline[i] = db.Stage(st)
	}
	docs, err := r.store.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: aggregate games: %w", domain.ErrDatabase, err)
	}
	return toGames(docs), nil
}

// Genres returns the distinct non-empty genre names, sorted.
func (r *Repo) Genres(ctx context.Context) ([]string, error) {
	values, err := r.store.Distinct(ctx, query.FieldGenres, map[string]any{
		query.FieldGenres: map[string]any{"$ne": nil},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: distinct genres: %w", domain.ErrDatabase, err)
	}
	names := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok && s != "" {
			names = append(names, s)
		}
	}
	sort.Strings(names)
	return names, nil
}
