package embedding

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/domain"
)

type mockEmbedder struct {
	result  domain.EmbeddingResult
	err     error
	gotText string
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	m.gotText = text
	return m.result, m.err
}

func TestPreparer_Success(t *testing.T) {
	inner := &mockEmbedder{result: domain.EmbeddingResult{
		Embedding:   []float32{0.1, 0.2, 0.3},
		TotalTokens: 5,
	}}
	p := NewPreparer(inner, "voyage:voyage-3", zap.NewNop())

	vec, err := p.Embed(context.Background(), "  relaxing farming games ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(vec) != 3 {
		t.Errorf("expected 3 dimensions, got %d", len(vec))
	}
	if inner.gotText != "relaxing farming games" {
		t.Errorf("text = %q, want trimmed query", inner.gotText)
	}
}

func TestPreparer_ProviderError(t *testing.T) {
	inner := &mockEmbedder{err: domain.ErrEmbeddingProviderError}
	p := NewPreparer(inner, "test", nil)

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestPreparer_EmptyVector(t *testing.T) {
	p := NewPreparer(&mockEmbedder{}, "test", nil)

	_, err := p.Embed(context.Background(), "hello")
	if !errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Errorf("expected ErrEmbeddingProviderError, got %v", err)
	}
}

func TestPreparer_BlankQuery(t *testing.T) {
	inner := &mockEmbedder{}
	_, err := NewPreparer(inner, "test", nil).Embed(context.Background(), "   ")
	if !errors.Is(err, domain.ErrEmptyQuery) {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if inner.calls != 0 {
		t.Error("provider must not be called for a blank query")
	}
}
