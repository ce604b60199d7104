package genre

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	domgenre "github.com/kailas-cloud/gamesearch/internal/domain/genre"
)

// Service loads the genre allowlist once at startup.
type Service struct {
	src    Source
	logger *zap.Logger
}

// New creates a genre loader.
func New(src Source, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{src: src, logger: logger}
}

// Load reads the distinct genres and freezes them into an allowlist.
// An empty store yields an empty allowlist, which disables genre checks.
func (s *Service) Load(ctx context.Context) (domgenre.Allowlist, error) {
	names, err := s.src.Genres(ctx)
	if err != nil {
		return domgenre.Allowlist{}, fmt.Errorf("load genres: %w", err)
	}

	a := domgenre.NewAllowlist(names)
	if a.IsEmpty() {
		s.logger.Warn("No genres found in store, genre validation disabled")
	} else {
		s.logger.Info("Genre allowlist loaded", zap.Int("genres", a.Len()))
	}
	return a, nil
}
