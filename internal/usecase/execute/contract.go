package execute

import (
	"context"

	"github.com/kailas-cloud/gamesearch/internal/domain/game"
)

// Repository defines the storage contract for search execution.
type Repository interface {
	Find(ctx context.Context, filter map[string]any, project map[string]int, skip, limit int) ([]game.Game, error)
	Aggregate(ctx context.Context, stages []map[string]any) ([]game.Game, error)
}
