package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/gamesearch/internal/version"
)

func TestNewLogger_Environments(t *testing.T) {
	for _, env := range []string{"local", "dev", "prod"} {
		l, err := NewLogger(env)
		if err != nil {
			t.Fatalf("NewLogger(%q): %v", env, err)
		}
		_ = l.Sync()
	}
	if _, err := NewLogger("staging"); err == nil {
		t.Error("expected error for unknown environment")
	}
}

func TestNewLogger_LevelOverride(t *testing.T) {
	l, err := NewLogger("prod", "warn")
	if err != nil {
		t.Fatalf("NewLogger: %v", err)
	}
	if l.Core().Enabled(zapcore.InfoLevel) {
		t.Error("info enabled with warn override")
	}
	if !l.Core().Enabled(zapcore.WarnLevel) {
		t.Error("warn disabled with warn override")
	}
	if _, err := NewLogger("prod", "loud"); err == nil {
		t.Error("expected error for invalid level")
	}
}

func TestNewConfig_BaseFields(t *testing.T) {
	for _, env := range []string{"local", "prod"} {
		cfg, err := newConfig(env, "")
		if err != nil {
			t.Fatalf("newConfig(%q): %v", env, err)
		}
		if cfg.InitialFields["service"] != ServiceName {
			t.Errorf("%s: service = %v, want %q", env, cfg.InitialFields["service"], ServiceName)
		}
		if cfg.InitialFields["env"] != env {
			t.Errorf("%s: env = %v", env, cfg.InitialFields["env"])
		}
		if cfg.InitialFields["version"] != version.Version {
			t.Errorf("%s: version = %v, want %q", env, cfg.InitialFields["version"], version.Version)
		}
	}
}

func TestNewConfig_ProdEncoding(t *testing.T) {
	cfg, err := newConfig("prod", "")
	if err != nil {
		t.Fatalf("newConfig: %v", err)
	}
	if cfg.Encoding != "json" {
		t.Errorf("encoding = %q, want json", cfg.Encoding)
	}
	if cfg.EncoderConfig.TimeKey != "timestamp" {
		t.Errorf("time key = %q, want timestamp", cfg.EncoderConfig.TimeKey)
	}
}

func TestFromContextOr(t *testing.T) {
	fallback := zap.NewNop()
	if got := FromContextOr(context.Background(), fallback); got != fallback {
		t.Error("expected fallback for empty context")
	}

	reqLogger := zap.NewExample()
	ctx := ContextWithLogger(context.Background(), reqLogger)
	if got := FromContextOr(ctx, fallback); got != reqLogger {
		t.Error("expected logger from context")
	}
	if got := FromContext(ctx); got != reqLogger {
		t.Error("FromContext returned a different logger")
	}
}
