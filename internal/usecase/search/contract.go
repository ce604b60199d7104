package search

import (
	"context"

	"github.com/kailas-cloud/gamesearch/internal/domain/game"
	"github.com/kailas-cloud/gamesearch/internal/domain/genre"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/continuation"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/event"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/page"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/verdict"
)

// Gate classifies a raw query as allowed or rejected.
type Gate interface {
	Evaluate(ctx context.Context, q string) (verdict.Verdict, error)
}

// Compiler turns an allowed query into a validated descriptor and
// re-validates descriptors echoed back by callers.
type Compiler interface {
	Compile(ctx context.Context, q string, genres genre.Allowlist) (query.Descriptor, error)
	Restore(raw []byte, genres genre.Allowlist) (query.Descriptor, error)
}

// Vectorizer embeds an allowed query.
type Vectorizer interface {
	Embed(ctx context.Context, q string) ([]float32, error)
}

// Executor runs a descriptor or a vector for one page.
type Executor interface {
	ExecuteStructured(ctx context.Context, d query.Descriptor, p page.Page) ([]game.Game, bool, error)
	ExecuteVector(ctx context.Context, vec []float32, p page.Page) ([]game.Game, bool, error)
}

// Continuations stores the artifacts behind a search cursor.
type Continuations interface {
	Save(ctx context.Context, token string, c continuation.Continuation) (string, error)
	Load(ctx context.Context, token string) (continuation.Continuation, error)
	Delete(ctx context.Context, token string) error
}

// Publisher receives one event per finished search. It must not block.
type Publisher interface {
	Publish(ctx context.Context, e event.Search)
}
