package genre

import "context"

// Source lists the genre names present in the store.
type Source interface {
	Genres(ctx context.Context) ([]string, error)
}
