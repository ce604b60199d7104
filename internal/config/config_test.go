package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:     HTTPConfig{Port: 8000},
		Database: DatabaseConfig{URI: "mongodb://localhost:27017"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestParse_ExpandsEnvAndDefaults(t *testing.T) {
	t.Setenv("GS_TEST_PORT", "9090")
	t.Setenv("GS_TEST_MONGO", "mongodb+srv://cluster0.example.net")
	t.Setenv("GS_TEST_REDIS", "")

	data := []byte(`
http:
  port: ${GS_TEST_PORT}
database:
  uri: ${GS_TEST_MONGO}
  user: ${GS_TEST_UNSET:-reader}
cache:
  addrs:
    - ${GS_TEST_REDIS}
events:
  brokers: []
`)

	cfg, err := Parse(data)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("port = %d, want 9090", cfg.HTTP.Port)
	}
	if cfg.Database.URI != "mongodb+srv://cluster0.example.net" {
		t.Errorf("uri = %q", cfg.Database.URI)
	}
	if cfg.Database.User != "reader" {
		t.Errorf("user = %q, want default", cfg.Database.User)
	}
	if cfg.Cache.Enabled() {
		t.Errorf("cache enabled with addrs %v", cfg.Cache.Addrs)
	}
	if len(cfg.HTTP.AllowedOrigins) != 1 || cfg.HTTP.AllowedOrigins[0] != "http://localhost:5173" {
		t.Errorf("allowed origins = %v", cfg.HTTP.AllowedOrigins)
	}
	if cfg.HTTP.CORSMaxAgeSec != 3000 {
		t.Errorf("cors max age = %d", cfg.HTTP.CORSMaxAgeSec)
	}
	if cfg.Search.MaxPageSize != 100 || cfg.Search.DefaultPageSize != 20 {
		t.Errorf("page sizes = %d/%d", cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize)
	}
	if cfg.Search.MaxDepth != 10000 {
		t.Errorf("max depth = %d", cfg.Search.MaxDepth)
	}
	if cfg.Search.CandidatePool != 150 {
		t.Errorf("candidate pool = %d", cfg.Search.CandidatePool)
	}
	if cfg.LLM.Provider != "anthropic" || cfg.Embedding.Provider != "voyage" {
		t.Errorf("providers = %s/%s", cfg.LLM.Provider, cfg.Embedding.Provider)
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestCacheConfig_EmbeddingCache(t *testing.T) {
	off := false
	tests := []struct {
		name string
		cfg  CacheConfig
		want bool
	}{
		{"no cache", CacheConfig{}, false},
		{"default on", CacheConfig{Addrs: []string{"localhost:6379"}}, true},
		{"explicit off", CacheConfig{Addrs: []string{"localhost:6379"}, EmbeddingCache: &off}, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.cfg.EmbeddingCacheEnabled(); got != tc.want {
				t.Errorf("EmbeddingCacheEnabled() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"bad port", func(c *Config) { c.HTTP.Port = 70000 }, "http.port"},
		{"no uri", func(c *Config) { c.Database.URI = "" }, "database.uri"},
		{"bad llm", func(c *Config) { c.LLM.Provider = "cohere" }, "llm.provider"},
		{"bad embedding", func(c *Config) { c.Embedding.Provider = "cohere" }, "embedding.provider"},
		{"bad genre policy", func(c *Config) { c.Search.GenrePolicy = "ignore" }, "search.genre_policy"},
		{"default above max", func(c *Config) { c.Search.DefaultPageSize = 500 }, "default_page_size"},
		{"depth within one page", func(c *Config) { c.Search.MaxDepth = 100 }, "search.max_depth"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("error = %v, want mention of %q", err, tc.wantErr)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("GS_TEST_SET", "value")

	got := string(expandEnvVars([]byte("a=${GS_TEST_SET} b=${GS_TEST_MISSING:-fallback} c=${GS_TEST_MISSING}")))
	if got != "a=value b=fallback c=" {
		t.Errorf("expandEnvVars() = %q", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("ENV", "")
	if got := GetEnv(); got != "local" {
		t.Errorf("GetEnv() = %q, want local", got)
	}
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q, want prod", got)
	}
}
