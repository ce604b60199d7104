// Package llm adapts langchaingo chat models to domain.TextGenerator.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/metrics"
)

// Supported providers.
const (
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
)

// Config holds text-generation settings.
type Config struct {
	Provider  string
	APIKey    string
	Model     string
	BaseURL   string
	MaxTokens int
	Logger    *zap.Logger
}

// Generator calls a chat model at temperature 0 and returns the single JSON
// object it produced. It performs no retries.
type Generator struct {
	model     llms.Model
	provider  string
	modelName string
	maxTokens int
	operation string
	logger    *zap.Logger
}

// New creates a Generator for the configured provider.
func New(cfg Config) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("llm api key is required")
	}

	var (
		model llms.Model
		err   error
	)
	switch cfg.Provider {
	case ProviderAnthropic, "":
		opts := []anthropic.Option{anthropic.WithToken(cfg.APIKey), anthropic.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(cfg.BaseURL))
		}
		model, err = anthropic.New(opts...)
		cfg.Provider = ProviderAnthropic
	case ProviderOpenAI:
		opts := []openai.Option{openai.WithToken(cfg.APIKey), openai.WithModel(cfg.Model)}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		model, err = openai.New(opts...)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", cfg.Provider, err)
	}

	return NewWithModel(model, cfg.Provider, cfg.Model, cfg.MaxTokens, cfg.Logger), nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(model llms.Model, provider, modelName string, maxTokens int, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Generator{
		model:     model,
		provider:  provider,
		modelName: modelName,
		maxTokens: maxTokens,
		operation: "generate",
		logger:    logger,
	}
}

// For returns a copy of g that labels its metrics and logs with operation.
func (g *Generator) For(operation string) *Generator {
	c := *g
	c.operation = operation
	c.logger = g.logger.With(zap.String("operation", operation))
	return &c
}

// GenerateJSON implements domain.TextGenerator.
// Transport failures wrap domain.ErrTextGenerationError; a reply with no JSON
// object wraps domain.ErrMalformedOutput.
func (g *Generator) GenerateJSON(ctx context.Context, instruction, input string) ([]byte, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, instruction),
		llms.TextParts(llms.ChatMessageTypeHuman, input),
	}

	start := time.Now()
	resp, err := g.model.GenerateContent(ctx, content,
		llms.WithTemperature(0),
		llms.WithMaxTokens(g.maxTokens),
		llms.WithJSONMode(),
	)
	metrics.GenerationRequestDuration.WithLabelValues(g.provider, g.modelName, g.operation).
		Observe(time.Since(start).Seconds())

	if err != nil {
		g.observe("error")
		g.logger.Warn("Text generation failed", zap.String("provider", g.provider), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTextGenerationError, g.provider, err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0] == nil {
		g.observe("error")
		return nil, fmt.Errorf("%w: %s returned no choices", domain.ErrTextGenerationError, g.provider)
	}

	raw, ok := extractObject(resp.Choices[0].Content)
	if !ok {
		g.observe("malformed")
		g.logger.Warn("Model reply is not a JSON object", zap.Int("length", len(resp.Choices[0].Content)))
		return nil, fmt.Errorf("%w: reply is not a JSON object", domain.ErrMalformedOutput)
	}

	g.observe("success")
	return raw, nil
}

func (g *Generator) observe(status string) {
	metrics.GenerationRequestsTotal.WithLabelValues(g.provider, g.modelName, g.operation, status).Inc()
}

// extractObject strips markdown fences and any prose around the outermost
// JSON object, then checks that what remains is valid JSON.
func extractObject(text string) ([]byte, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)

	start := strings.IndexByte(text, '{')
	end := strings.LastIndexByte(text, '}')
	if start < 0 || end < start {
		return nil, false
	}
	raw := []byte(text[start : end+1])
	if !json.Valid(raw) {
		return nil, false
	}
	return bytes.Clone(raw), true
}
