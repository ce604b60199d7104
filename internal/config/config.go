package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the gamesearch API configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	Database  DatabaseConfig  `yaml:"database"`
	Cache     CacheConfig     `yaml:"cache"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Search    SearchConfig    `yaml:"search"`
	Events    EventsConfig    `yaml:"events"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	CORSMaxAgeSec   int      `yaml:"cors_max_age_sec"`
}

// DatabaseConfig holds document store settings.
type DatabaseConfig struct {
	URI              string `yaml:"uri"`
	User             string `yaml:"user"`
	Password         string `yaml:"password"`
	Name             string `yaml:"name"`
	Collection       string `yaml:"collection"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// CacheConfig holds key-value cache settings. An empty Addrs disables the
// cache, the embedding cache and continuation tokens.
type CacheConfig struct {
	Addrs              []string `yaml:"addrs"`
	Username           string   `yaml:"username"`
	Password           string   `yaml:"password"`
	DB                 int      `yaml:"db"`
	ContinuationTTLSec int      `yaml:"continuation_ttl_sec"`
	EmbeddingCache     *bool    `yaml:"embedding_cache"`
	EmbeddingTTLSec    int      `yaml:"embedding_ttl_sec"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// EmbeddingCacheEnabled reports whether query vectors are cached.
func (c CacheConfig) EmbeddingCacheEnabled() bool {
	return c.Enabled() && (c.EmbeddingCache == nil || *c.EmbeddingCache)
}

// LLMConfig holds text-generation settings.
type LLMConfig struct {
	Provider  string `yaml:"provider"` // anthropic (default), openai
	APIKey    string `yaml:"api_key"`
	Model     string `yaml:"model"`
	BaseURL   string `yaml:"base_url"`
	MaxTokens int    `yaml:"max_tokens"`
}

// EmbeddingConfig holds embedding provider settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // voyage (default), openai
	APIKey     string `yaml:"api_key"`
	Model      string `yaml:"model"`
	BaseURL    string `yaml:"base_url"`
	Dimensions int    `yaml:"dimensions"`
}

// SearchConfig holds pagination and store layout settings.
type SearchConfig struct {
	DefaultPageSize int    `yaml:"default_page_size"`
	MaxPageSize     int    `yaml:"max_page_size"`
	MaxDepth        int    `yaml:"max_depth"` // deepest result a page may reach (skip + page + look-ahead)
	VectorIndex     string `yaml:"vector_index"`
	EmbeddingPath   string `yaml:"embedding_path"`
	CandidatePool   int    `yaml:"candidate_pool"`
	GenrePolicy     string `yaml:"genre_policy"` // reject (default), pass
}

// EventsConfig holds search event publishing settings. An empty Brokers
// disables publishing.
type EventsConfig struct {
	Brokers  []string `yaml:"brokers"`
	Topic    string   `yaml:"topic"`
	ClientID string   `yaml:"client_id"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// In local and dev a .env file is loaded first when present.
func Load(env string) (Config, error) {
	if env == "local" || env == "dev" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("failed to load .env: %w", err)
		}
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands environment variables in data and decodes it.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	// an unset ${VAR} list item decodes as ""
	c.HTTP.AllowedOrigins = compact(c.HTTP.AllowedOrigins)
	c.Cache.Addrs = compact(c.Cache.Addrs)
	c.Events.Brokers = compact(c.Events.Brokers)

	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if len(c.HTTP.AllowedOrigins) == 0 {
		c.HTTP.AllowedOrigins = []string{"http://localhost:5173"}
	}
	if c.HTTP.CORSMaxAgeSec <= 0 {
		c.HTTP.CORSMaxAgeSec = 3000
	}
	if c.Database.Name == "" {
		c.Database.Name = "game-search"
	}
	if c.Database.Collection == "" {
		c.Database.Collection = "games"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Cache.ContinuationTTLSec <= 0 {
		c.Cache.ContinuationTTLSec = 1800
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "anthropic"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "claude-3-haiku-20240307"
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "voyage"
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "voyage-3-lite"
	}
	if c.Search.DefaultPageSize <= 0 {
		c.Search.DefaultPageSize = 20
	}
	if c.Search.MaxPageSize <= 0 {
		c.Search.MaxPageSize = 100
	}
	if c.Search.MaxDepth <= 0 {
		c.Search.MaxDepth = 10000
	}
	if c.Search.VectorIndex == "" {
		c.Search.VectorIndex = "vector_index"
	}
	if c.Search.EmbeddingPath == "" {
		c.Search.EmbeddingPath = "text_embeddings"
	}
	if c.Search.CandidatePool <= 0 {
		c.Search.CandidatePool = 150
	}
	if c.Search.GenrePolicy == "" {
		c.Search.GenrePolicy = "reject"
	}
	if c.Events.Topic == "" {
		c.Events.Topic = "gamesearch.searches"
	}
	if c.Events.ClientID == "" {
		c.Events.ClientID = "gamesearch"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.Database.URI == "" {
		return fmt.Errorf("database.uri is required")
	}
	switch c.LLM.Provider {
	case "anthropic", "openai":
	default:
		return fmt.Errorf("llm.provider must be \"anthropic\" or \"openai\", got %q", c.LLM.Provider)
	}
	switch c.Embedding.Provider {
	case "voyage", "openai":
	default:
		return fmt.Errorf("embedding.provider must be \"voyage\" or \"openai\", got %q", c.Embedding.Provider)
	}
	switch c.Search.GenrePolicy {
	case "reject", "pass":
	default:
		return fmt.Errorf("search.genre_policy must be \"reject\" or \"pass\", got %q", c.Search.GenrePolicy)
	}
	if c.Search.DefaultPageSize > c.Search.MaxPageSize {
		return fmt.Errorf("search.default_page_size (%d) exceeds search.max_page_size (%d)",
			c.Search.DefaultPageSize, c.Search.MaxPageSize)
	}
	if c.Search.MaxDepth <= c.Search.MaxPageSize {
		return fmt.Errorf("search.max_depth (%d) must exceed search.max_page_size (%d)",
			c.Search.MaxDepth, c.Search.MaxPageSize)
	}
	return nil
}

func compact(items []string) []string {
	out := items[:0]
	for _, s := range items {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
