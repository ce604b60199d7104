package compile

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/domain/genre"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
)

// Service turns an allowed natural-language query into a validated descriptor.
type Service struct {
	gen    Generator
	policy query.GenrePolicy
	logger *zap.Logger
}

// New creates a compiler that rejects genres outside the allowlist.
func New(gen Generator) *Service {
	return &Service{gen: gen, policy: query.GenreReject, logger: zap.NewNop()}
}

// WithGenrePolicy overrides how unknown genres are handled.
func (s *Service) WithGenrePolicy(p query.GenrePolicy) *Service {
	if p.IsValid() {
		s.policy = p
	}
	return s
}

// WithLogger sets the logger used for validation diagnostics.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Compile asks the model for a descriptor and validates it against genres.
func (s *Service) Compile(ctx context.Context, q string, genres genre.Allowlist) (query.Descriptor, error) {
	data, err := s.gen.GenerateJSON(ctx, Instruction(genres), q)
	if err != nil {
		return query.Descriptor{}, fmt.Errorf("compile query: %w", err)
	}

	d, err := query.Parse(data, s.options(genres))
	if err != nil {
		s.logger.Warn("Compiled query failed validation",
			zap.String("output", truncate(string(data), 512)),
			zap.Error(err),
		)
		return query.Descriptor{}, fmt.Errorf("validate compiled query: %w", err)
	}
	return d, nil
}

// Restore validates a descriptor a caller echoed back from an earlier page.
// It goes through the same checks as fresh model output.
func (s *Service) Restore(raw []byte, genres genre.Allowlist) (query.Descriptor, error) {
	d, err := query.Parse(raw, s.options(genres))
	if err != nil {
		return query.Descriptor{}, fmt.Errorf("restore descriptor: %w", err)
	}
	return d, nil
}

func (s *Service) options(genres genre.Allowlist) query.Options {
	return query.Options{Genres: genres, GenrePolicy: s.policy}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
