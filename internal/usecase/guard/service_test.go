package guard

import (
	"context"
	"errors"
	"testing"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/verdict"
)

// --- Mocks ---

type mockGenerator struct {
	out       string
	err       error
	gotPrompt string
	gotInput  string
}

func (m *mockGenerator) GenerateJSON(_ context.Context, instruction, input string) ([]byte, error) {
	m.gotPrompt = instruction
	m.gotInput = input
	if m.err != nil {
		return nil, m.err
	}
	return []byte(m.out), nil
}

// --- Tests ---

func TestEvaluate_Allowed(t *testing.T) {
	gen := &mockGenerator{out: `{"is_allowed": true, "violation_reason": null}`}
	v, err := New(gen).Evaluate(context.Background(), "RPGs released after 2010")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.Kind() != verdict.Allowed {
		t.Errorf("kind = %q, want allowed", v.Kind())
	}
	if gen.gotPrompt != Instruction {
		t.Error("the fixed policy must be sent as the instruction")
	}
	if gen.gotInput != "RPGs released after 2010" {
		t.Errorf("input = %q, want the raw query", gen.gotInput)
	}
}

func TestEvaluate_Rejected(t *testing.T) {
	gen := &mockGenerator{out: `{"is_allowed": false, "violation_reason": " not about games "}`}
	v, err := New(gen).Evaluate(context.Background(), "how do I pick a lock")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IsAllowed() {
		t.Fatal("expected rejection")
	}
	if v.Reason() != "not about games" {
		t.Errorf("reason = %q", v.Reason())
	}
}

func TestEvaluate_RejectedWithoutReason(t *testing.T) {
	v, err := New(&mockGenerator{out: `{"is_allowed": false}`}).Evaluate(context.Background(), "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v.IsAllowed() || v.Reason() != "" {
		t.Errorf("verdict = %+v", v)
	}
}

func TestEvaluate_MalformedNeverAllows(t *testing.T) {
	tests := []struct {
		name string
		out  string
	}{
		{"missing is_allowed", `{"violation_reason": null}`},
		{"empty object", `{}`},
		{"wrong type", `{"is_allowed": "yes"}`},
		{"not json", `sure, looks fine`},
		{"array", `[true]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(&mockGenerator{out: tt.out}).Evaluate(context.Background(), "zelda")
			if !errors.Is(err, domain.ErrMalformedOutput) {
				t.Errorf("error = %v, want ErrMalformedOutput", err)
			}
		})
	}
}

func TestEvaluate_ProviderError(t *testing.T) {
	gen := &mockGenerator{err: domain.ErrTextGenerationError}
	_, err := New(gen).Evaluate(context.Background(), "zelda")
	if !errors.Is(err, domain.ErrTextGenerationError) {
		t.Errorf("error = %v, want ErrTextGenerationError", err)
	}
}
