package games

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kailas-cloud/gamesearch/internal/db"
	"github.com/kailas-cloud/gamesearch/internal/domain"
)

func TestFind_MapsDocuments(t *testing.T) {
	repo, ms := newTestRepo(t)
	released := time.Date(2017, 3, 3, 0, 0, 0, 0, time.UTC)

	var got db.FindQuery
	ms.findFn = func(_ context.Context, q db.FindQuery) ([]db.Document, error) {
		got = q
		return []db.Document{{
			"_id":                "64b0c0ffee",
			"name":               "The Legend of Zelda: Breath of the Wild",
			"genres":             []any{"Adventure", 7},
			"franchises":         []any{"The Legend of Zelda"},
			"first_release_date": released,
		}}, nil
	}

	games, err := repo.Find(context.Background(),
		map[string]any{"name": "Zelda"}, map[string]int{"name": 1}, 40, 21)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Skip != 40 || got.Limit != 21 {
		t.Errorf("skip/limit = %d/%d, want 40/21", got.Skip, got.Limit)
	}
	if len(games) != 1 {
		t.Fatalf("len = %d, want 1", len(games))
	}
	g := games[0]
	if g.ID != "64b0c0ffee" || g.Name == "" {
		t.Errorf("unexpected game: %+v", g)
	}
	if len(g.Genres) != 1 || g.Genres[0] != "Adventure" {
		t.Errorf("Genres = %v, want non-strings dropped", g.Genres)
	}
	if g.FirstReleaseDate == nil || !g.FirstReleaseDate.Equal(released) {
		t.Errorf("FirstReleaseDate = %v", g.FirstReleaseDate)
	}
	if g.Summary != "" {
		t.Errorf("Summary = %q, want empty for unprojected field", g.Summary)
	}
}

func TestFind_StoreErrorIsDatabaseError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.findFn = func(_ context.Context, _ db.FindQuery) ([]db.Document, error) {
		return nil, &db.Error{Op: db.OpFind, Err: errors.New("server selection timeout")}
	}

	_, err := repo.Find(context.Background(), nil, nil, 0, 21)
	if !errors.Is(err, domain.ErrDatabase) {
		t.Errorf("error = %v, want ErrDatabase", err)
	}
	var dbErr *db.Error
	if !errors.As(err, &dbErr) {
		t.Error("original db.Error must stay in the chain")
	}
}

func TestAggregate_PassesStages(t *testing.T) {
	repo, ms := newTestRepo(t)

	var got []db.Stage
	ms.aggregateFn = func(_ context.Context, pipeline []db.Stage) ([]db.Document, error) {
		got = pipeline
		return []db.Document{{"name": "Halo"}}, nil
	}

	games, err := repo.Aggregate(context.Background(), []map[string]any{
		{"$match": map[string]any{"name": "Halo"}},
		{"$limit": 21},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("stages = %d, want 2", len(got))
	}
	if _, ok := got[1]["$limit"]; !ok {
		t.Errorf("stage order not preserved: %v", got)
	}
	if len(games) != 1 || games[0].Name != "Halo" {
		t.Errorf("games = %+v", games)
	}
}

func TestAggregate_StoreError(t *testing.T) {
	repo, ms := newTestRepo(t)
	ms.aggregateFn = func(_ context.Context, _ []db.Stage) ([]db.Document, error) {
		return nil, errors.New("index not found")
	}

	if _, err := repo.Aggregate(context.Background(), nil); !errors.Is(err, domain.ErrDatabase) {
		t.Errorf("error = %v, want ErrDatabase", err)
	}
}

func TestGenres_SortedAndFiltered(t *testing.T) {
	repo, ms := newTestRepo(t)

	var gotField string
	ms.distinctFn = func(_ context.Context, field string, _ map[string]any) ([]any, error) {
		gotField = field
		return []any{"Shooter", "", nil, "Adventure", 3}, nil
	}

	names, err := repo.Genres(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotField != "genres" {
		t.Errorf("field = %q", gotField)
	}
	if len(names) != 2 || names[0] != "Adventure" || names[1] != "Shooter" {
		t.Errorf("names = %v", names)
	}
}
