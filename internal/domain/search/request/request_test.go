package request

import (
	"errors"
	"strings"
	"testing"

	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/page"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("  rpg games  ", mode.Structured, page.Default())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Query() != "rpg games" {
		t.Errorf("Query() = %q, want trimmed", r.Query())
	}
	if r.Mode() != mode.Structured {
		t.Errorf("Mode() = %q", r.Mode())
	}
	if r.Page().Number() != 1 || r.Page().Size() != 20 {
		t.Errorf("Page() = %d/%d", r.Page().Number(), r.Page().Size())
	}
	if r.Descriptor() != nil || r.Embedding() != nil || r.Cursor() != "" {
		t.Error("expected no artifacts")
	}
}

func TestNew_EmptyQuery(t *testing.T) {
	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := New(q, mode.Structured, page.Default())
		if !errors.Is(err, domain.ErrEmptyQuery) {
			t.Errorf("New(%q) error = %v, want ErrEmptyQuery", q, err)
		}
	}
}

func TestNew_CursorWithoutQuery(t *testing.T) {
	r, err := New("", mode.Structured, page.Default(), WithCursor(" abc "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Cursor() != "abc" {
		t.Errorf("Cursor() = %q", r.Cursor())
	}
}

func TestNew_TooLong(t *testing.T) {
	_, err := New(strings.Repeat("a", MaxQueryLength+1), mode.Structured, page.Default())
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestNew_InvalidMode(t *testing.T) {
	_, err := New("zelda", mode.Mode("hybrid"), page.Default())
	if !errors.Is(err, domain.ErrInvalidRequest) {
		t.Errorf("error = %v, want ErrInvalidRequest", err)
	}
}

func TestNew_ArtifactConsistency(t *testing.T) {
	desc := WithDescriptor([]byte(`{"query":{},"project":{"name":1},"type":"SIMPLE"}`))
	vec := WithEmbedding([]float32{0.1, 0.2})

	tests := []struct {
		name string
		m    mode.Mode
		opts []Option
		ok   bool
	}{
		{"descriptor on structured", mode.Structured, []Option{desc}, true},
		{"embedding on vector", mode.Vector, []Option{vec}, true},
		{"descriptor on vector", mode.Vector, []Option{desc}, false},
		{"embedding on structured", mode.Structured, []Option{vec}, false},
		{"both artifacts", mode.Vector, []Option{desc, vec}, false},
		{"cursor plus descriptor", mode.Structured, []Option{desc, WithCursor("x")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("zelda", tt.m, page.Default(), tt.opts...)
			if tt.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, domain.ErrInvalidRequest) {
				t.Fatalf("error = %v, want ErrInvalidRequest", err)
			}
		})
	}
}

func TestEmbedding_ReturnsCopy(t *testing.T) {
	r, err := New("zelda", mode.Vector, page.Default(), WithEmbedding([]float32{1, 2, 3}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v := r.Embedding()
	v[0] = 99
	if r.Embedding()[0] != 1 {
		t.Error("Embedding() must not expose internal storage")
	}
}
