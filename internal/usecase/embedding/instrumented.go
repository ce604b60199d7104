package embedding

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/domain"
)

// Preparer turns an allowed query into the vector used for similarity search.
// Transport metrics (requests, duration, tokens) are recorded in the provider
// adapters; this layer owns logging and the empty-vector check.
type Preparer struct {
	inner  domain.Embedder
	name   string
	logger *zap.Logger
}

// NewPreparer wraps an embedder. name identifies the vector space in logs.
func NewPreparer(inner domain.Embedder, name string, logger *zap.Logger) *Preparer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Preparer{inner: inner, name: name, logger: logger}
}

// Embed vectorizes q. There is no fallback: provider failures propagate.
func (p *Preparer) Embed(ctx context.Context, q string) ([]float32, error) {
	text := strings.TrimSpace(q)
	if text == "" {
		return nil, domain.ErrEmptyQuery
	}

	start := time.Now()
	result, err := p.inner.Embed(ctx, text)
	duration := time.Since(start)

	if err != nil {
		p.logger.Error("Embedding request failed",
			zap.String("embedder", p.name),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(result.Embedding) == 0 {
		return nil, fmt.Errorf("embed query: empty vector: %w", domain.ErrEmbeddingProviderError)
	}

	p.logger.Debug("Embedding request completed",
		zap.String("embedder", p.name),
		zap.Duration("duration", duration),
		zap.Int("dimensions", len(result.Embedding)),
		zap.Int("total_tokens", result.TotalTokens),
	)

	return result.Embedding, nil
}
