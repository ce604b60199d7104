// Package voyage embeds search queries with Voyage AI through langchaingo.
package voyage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tmc/langchaingo/embeddings/voyageai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/metrics"
)

const provider = "voyage"

// DefaultModel matches the model the games collection was embedded with.
const DefaultModel = "voyage-3"

// documentEmbedder is the subset of the langchaingo embedder we call.
type documentEmbedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
}

// Config holds Voyage settings.
type Config struct {
	APIKey string
	Model  string
	Logger *zap.Logger
}

// Embedder implements domain.Embedder. Queries are embedded in document mode
// so they share the space of the stored game vectors.
type Embedder struct {
	inner  documentEmbedder
	model  string
	logger *zap.Logger
}

// NewEmbedder creates a Voyage embedder.
func NewEmbedder(cfg Config) (*Embedder, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("voyage api key is required")
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}

	client, err := voyageai.NewVoyageAI(
		voyageai.WithToken(cfg.APIKey),
		voyageai.WithModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("create voyage client: %w", err)
	}
	return newEmbedder(client, model, cfg.Logger), nil
}

func newEmbedder(inner documentEmbedder, model string, logger *zap.Logger) *Embedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Embedder{inner: inner, model: model, logger: logger}
}

// Name identifies the vector space: provider and model.
func (e *Embedder) Name() string { return provider + ":" + e.model }

// Embed returns the first vector for text.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	start := time.Now()
	vectors, err := e.inner.EmbedDocuments(ctx, []string{text})
	duration := time.Since(start)

	if err != nil {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "api_error").Inc()
		e.logger.Warn("Embedding request failed", zap.String("provider", provider), zap.Error(err))
		return domain.EmbeddingResult{}, fmt.Errorf("voyage embed: %w: %w", domain.ErrEmbeddingProviderError, err)
	}
	if len(vectors) == 0 || len(vectors[0]) == 0 {
		metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "error").Inc()
		metrics.EmbeddingErrorsTotal.WithLabelValues(provider, e.model, "empty_response").Inc()
		return domain.EmbeddingResult{}, fmt.Errorf("empty embedding response: %w", domain.ErrEmbeddingProviderError)
	}

	metrics.EmbeddingRequestsTotal.WithLabelValues(provider, e.model, "success").Inc()
	metrics.EmbeddingRequestDuration.WithLabelValues(provider, e.model).Observe(duration.Seconds())

	return domain.EmbeddingResult{Embedding: vectors[0]}, nil
}
