package games

import (
	"fmt"
	"time"

	"github.com/kailas-cloud/gamesearch/internal/db"
	"github.com/kailas-cloud/gamesearch/internal/domain/game"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
)

func toGames(docs []db.Document) []game.Game {
	out := make([]game.Game, len(docs))
	for i, d := range docs {
		out[i] = toGame(d)
	}
	return out
}

// toGame maps a stored document onto a Game. Unknown fields are ignored and
// mistyped ones are left at their zero value.
func toGame(d db.Document) game.Game {
	g := game.Game{
		Name:       stringField(d[query.FieldName]),
		Summary:    stringField(d[query.FieldSummary]),
		Genres:     stringList(d[query.FieldGenres]),
		Franchises: stringList(d[query.FieldFranchises]),
	}
	switch id := d[query.FieldID].(type) {
	case nil:
	case string:
		g.ID = id
	default:
		g.ID = fmt.Sprint(id)
	}
	if ts, ok := d[query.FieldFirstReleaseDate].(time.Time); ok {
		ts = ts.UTC()
		g.FirstReleaseDate = &ts
	}
	return g
}

func stringField(v any) string {
	s, _ := v.(string)
	return s
}

func stringList(v any) []string {
	switch t := v.(type) {
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{t}
	default:
		return nil
	}
}
