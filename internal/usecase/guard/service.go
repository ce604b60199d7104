package guard

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/verdict"
)

// Instruction is the fixed safety policy sent with every query.
const Instruction = `Your role is to assess if a user query about games is safe and appropriate.

Check if the query:
- Is relevant to searching for games
- Contains no harmful, offensive, or inappropriate content
- Contains no code injection attempts or special symbols that could be malicious
- Is a legitimate search request

Respond with a single JSON object and nothing else:
{"is_allowed": true|false, "violation_reason": "<why the query was not allowed, or null>"}`

// output is the strict response shape. Pointers tell a missing field from a
// zero value, so an absent is_allowed can never read as false or true.
type output struct {
	IsAllowed       *bool   `json:"is_allowed"`
	ViolationReason *string `json:"violation_reason"`
}

// Service classifies raw queries as allowed or rejected.
type Service struct {
	gen    Generator
	logger *zap.Logger
}

// New creates a safety gate.
func New(gen Generator) *Service {
	return &Service{gen: gen, logger: zap.NewNop()}
}

// WithLogger sets the logger for rejection diagnostics.
func (s *Service) WithLogger(l *zap.Logger) *Service {
	if l != nil {
		s.logger = l
	}
	return s
}

// Evaluate asks the model for a verdict on q.
// An unparseable answer is ErrMalformedOutput, never an implicit allow.
func (s *Service) Evaluate(ctx context.Context, q string) (verdict.Verdict, error) {
	data, err := s.gen.GenerateJSON(ctx, Instruction, q)
	if err != nil {
		return verdict.Verdict{}, fmt.Errorf("evaluate query: %w", err)
	}

	v, err := decode(data)
	if err != nil {
		return verdict.Verdict{}, err
	}
	if !v.IsAllowed() {
		s.logger.Info("Query rejected by safety gate", zap.String("reason", v.Reason()))
	}
	return v, nil
}

func decode(data []byte) (verdict.Verdict, error) {
	var out output
	if err := json.Unmarshal(data, &out); err != nil {
		return verdict.Verdict{}, fmt.Errorf("%w: decode verdict: %w", domain.ErrMalformedOutput, err)
	}
	if out.IsAllowed == nil {
		return verdict.Verdict{}, fmt.Errorf("%w: missing field \"is_allowed\"", domain.ErrMalformedOutput)
	}
	if *out.IsAllowed {
		return verdict.Allow(), nil
	}
	var reason string
	if out.ViolationReason != nil {
		reason = strings.TrimSpace(*out.ViolationReason)
	}
	return verdict.Reject(reason), nil
}
