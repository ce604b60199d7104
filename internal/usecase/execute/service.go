package execute

import (
	"context"
	"fmt"
	"maps"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/game"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/page"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
)

// vectorProject is the fixed projection of the similarity path.
var vectorProject = map[string]any{
	query.FieldID:               1,
	query.FieldName:             1,
	query.FieldSummary:          1,
	query.FieldFirstReleaseDate: 1,
	query.FieldGenres:           1,
	query.FieldFranchises:       1,
}

// Service runs a compiled descriptor or a query vector against the store
// and pages the result with a one-record look-ahead.
type Service struct {
	repo Repository
	cfg  domain.SearchConfig
}

// New creates an execution dispatcher.
func New(repo Repository, cfg domain.SearchConfig) *Service {
	return &Service{repo: repo, cfg: cfg}
}

// ExecuteStructured runs d for page p.
func (s *Service) ExecuteStructured(ctx context.Context, d query.Descriptor, p page.Page) ([]game.Game, bool, error) {
	var (
		games []game.Game
		err   error
	)
	switch d.Type() {
	case query.Simple:
		games, err = s.repo.Find(ctx, d.Filter(), d.Project(), p.Skip(), p.FetchLimit())
	case query.Aggregate:
		games, err = s.repo.Aggregate(ctx, structuredPipeline(d, p))
	default:
		return nil, false, fmt.Errorf("%w: unsupported descriptor type %q", domain.ErrInvalidDescriptor, d.Type())
	}
	if err != nil {
		return nil, false, fmt.Errorf("execute structured query: %w", err)
	}

	games, hasNext := page.Trim(p, games)
	return games, hasNext, nil
}

// ExecuteVector runs a similarity search for vec and returns page p.
func (s *Service) ExecuteVector(ctx context.Context, vec []float32, p page.Page) ([]game.Game, bool, error) {
	if len(vec) == 0 {
		return nil, false, fmt.Errorf("%w: empty query vector", domain.ErrInvalidRequest)
	}

	games, err := s.repo.Aggregate(ctx, s.vectorPipeline(vec, p))
	if err != nil {
		return nil, false, fmt.Errorf("execute vector query: %w", err)
	}

	games, hasNext := page.Trim(p, games)
	return games, hasNext, nil
}

// structuredPipeline appends projection and paging to the descriptor stages.
func structuredPipeline(d query.Descriptor, p page.Page) []map[string]any {
	project := make(map[string]any, len(d.Project()))
	for k, v := range d.Project() {
		project[k] = v
	}
	stages := d.Pipeline()
	return append(stages,
		map[string]any{"$project": project},
		map[string]any{"$skip": p.Skip()},
		map[string]any{"$limit": p.FetchLimit()},
	)
}

// vectorPipeline asks the index for every record up to the end of the
// look-ahead, then skips into the page. A similarity stage limited to one
// page would leave nothing to skip into past page 1.
func (s *Service) vectorPipeline(vec []float32, p page.Page) []map[string]any {
	limit := p.Skip() + p.FetchLimit()
	candidates := max(s.cfg.CandidatePool, limit)

	return []map[string]any{
		{"$vectorSearch": map[string]any{
			"index":         s.cfg.VectorIndex,
			"path":          s.cfg.EmbeddingPath,
			"queryVector":   vec,
			"numCandidates": candidates,
			"limit":         limit,
		}},
		{"$project": maps.Clone(vectorProject)},
		{"$skip": p.Skip()},
		{"$limit": p.FetchLimit()},
	}
}
