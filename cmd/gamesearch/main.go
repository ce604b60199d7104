package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/gamesearch/internal/config"
	dbMongo "github.com/kailas-cloud/gamesearch/internal/db/mongo"
	dbRedis "github.com/kailas-cloud/gamesearch/internal/db/redis"
	"github.com/kailas-cloud/gamesearch/internal/domain"
	"github.com/kailas-cloud/gamesearch/internal/domain/search/query"
	"github.com/kailas-cloud/gamesearch/internal/events/kafka"
	logpkg "github.com/kailas-cloud/gamesearch/internal/logger"
	"github.com/kailas-cloud/gamesearch/internal/metrics"
	continuationrepo "github.com/kailas-cloud/gamesearch/internal/repository/continuation"
	"github.com/kailas-cloud/gamesearch/internal/repository/embcache"
	gamesrepo "github.com/kailas-cloud/gamesearch/internal/repository/games"
	chiTransport "github.com/kailas-cloud/gamesearch/internal/transport/chi"
	"github.com/kailas-cloud/gamesearch/internal/transport/llm"
	openaiEmb "github.com/kailas-cloud/gamesearch/internal/transport/openai"
	"github.com/kailas-cloud/gamesearch/internal/transport/voyage"
	compileuc "github.com/kailas-cloud/gamesearch/internal/usecase/compile"
	embeddinguc "github.com/kailas-cloud/gamesearch/internal/usecase/embedding"
	executeuc "github.com/kailas-cloud/gamesearch/internal/usecase/execute"
	genreuc "github.com/kailas-cloud/gamesearch/internal/usecase/genre"
	guarduc "github.com/kailas-cloud/gamesearch/internal/usecase/guard"
	healthuc "github.com/kailas-cloud/gamesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/gamesearch/internal/usecase/search"
	"github.com/kailas-cloud/gamesearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gamesearch API server",
		zap.String("build", version.String()),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("embedding_provider", cfg.Embedding.Provider),
		zap.Bool("cache", cfg.Cache.Enabled()),
		zap.Bool("events", len(cfg.Events.Brokers) > 0),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()
	metrics.RegisterSearchMetrics()
	metrics.RegisterEventMetrics()

	ctx := context.Background()
	readiness := time.Duration(cfg.Database.ReadinessTimeout) * time.Second

	// Document store
	store, err := dbMongo.NewStore(ctx, dbMongo.Config{
		URI:        cfg.Database.URI,
		User:       cfg.Database.User,
		Password:   cfg.Database.Password,
		Database:   cfg.Database.Name,
		Collection: cfg.Database.Collection,
	})
	if err != nil {
		logger.Fatal("Failed to create document store", zap.Error(err))
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.WaitForReady(ctx, readiness); err != nil {
		logger.Fatal("Document store not ready", zap.Error(err))
	}
	logger.Info("Connected to document store",
		zap.String("database", cfg.Database.Name),
		zap.String("collection", cfg.Database.Collection),
	)

	// Optional key-value cache
	var cache *dbRedis.Store
	if cfg.Cache.Enabled() {
		cache, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Username: cfg.Cache.Username,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cache.Close()

		if err := cache.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache not ready", zap.Error(err))
		}
		logger.Info("Connected to cache", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Text generation: one client, labelled per operation
	generator, err := llm.New(llm.Config{
		Provider:  cfg.LLM.Provider,
		APIKey:    cfg.LLM.APIKey,
		Model:     cfg.LLM.Model,
		BaseURL:   cfg.LLM.BaseURL,
		MaxTokens: cfg.LLM.MaxTokens,
		Logger:    logger,
	})
	if err != nil {
		logger.Fatal("Failed to create text generator", zap.Error(err))
	}

	// Embedder chain
	base, baseName, err := buildBaseEmbedder(cfg.Embedding, logger)
	if err != nil {
		logger.Fatal("Failed to create embedder", zap.Error(err))
	}
	var embedder domain.Embedder = base
	if cache != nil && cfg.Cache.EmbeddingCacheEnabled() {
		embedder = embcache.New(base, cache, metrics.EmbeddingCacheTotal, logger).
			WithNamespace(baseName).
			WithTTL(time.Duration(cfg.Cache.EmbeddingTTLSec) * time.Second)
	}
	preparer := embeddinguc.NewPreparer(embedder, baseName, logger)
	logger.Info("Embedder created", zap.String("name", baseName))

	// Genre allowlist, loaded once
	games := gamesrepo.New(store)
	genres, err := genreuc.New(games, logger).Load(ctx)
	if err != nil {
		logger.Fatal("Failed to load genres", zap.Error(err))
	}
	logger.Info("Genre allowlist loaded", zap.Int("genres", genres.Len()))

	// Use cases
	searchCfg := domain.SearchConfig{
		Collection:      cfg.Database.Collection,
		VectorIndex:     cfg.Search.VectorIndex,
		EmbeddingPath:   cfg.Search.EmbeddingPath,
		CandidatePool:   cfg.Search.CandidatePool,
		DefaultPageSize: cfg.Search.DefaultPageSize,
		MaxPageSize:     cfg.Search.MaxPageSize,
		MaxDepth:        cfg.Search.MaxDepth,
	}
	gate := guarduc.New(generator.For("guard")).WithLogger(logger)
	compiler := compileuc.New(generator.For("compile")).
		WithGenrePolicy(query.GenrePolicy(cfg.Search.GenrePolicy)).
		WithLogger(logger)
	executor := executeuc.New(games, searchCfg)

	searchSvc := searchuc.New(gate, compiler, preparer, executor, genres).WithLogger(logger)
	if cache != nil {
		conts := continuationrepo.New(cache, time.Duration(cfg.Cache.ContinuationTTLSec)*time.Second)
		searchSvc = searchSvc.WithContinuations(conts)
	}
	if len(cfg.Events.Brokers) > 0 {
		publisher, err := kafka.New(kafka.Config{
			Brokers:  cfg.Events.Brokers,
			Topic:    cfg.Events.Topic,
			ClientID: cfg.Events.ClientID,
		}, logger)
		if err != nil {
			logger.Fatal("Failed to create event publisher", zap.Error(err))
		}
		defer func() {
			if err := publisher.Close(); err != nil {
				logger.Warn("Error closing event publisher", zap.Error(err))
			}
		}()
		searchSvc = searchSvc.WithEvents(publisher)
	}

	// Health service
	healthSvc := healthuc.New(store).WithEmbedding(newEmbeddingHealthChecker(base))
	if cache != nil {
		healthSvc = healthSvc.WithCache(cache)
	}

	// HTTP
	server := chiTransport.NewServer(searchSvc, healthSvc, logger).
		WithPageSizes(cfg.Search.DefaultPageSize, cfg.Search.MaxPageSize).
		WithMaxDepth(cfg.Search.MaxDepth)
	router := chiTransport.NewRouter(server, chiTransport.RouterConfig{
		AllowedOrigins: cfg.HTTP.AllowedOrigins,
		CORSMaxAgeSec:  cfg.HTTP.CORSMaxAgeSec,
	}, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildBaseEmbedder creates the provider client and its cache namespace.
func buildBaseEmbedder(cfg config.EmbeddingConfig, logger *zap.Logger) (domain.Embedder, string, error) {
	switch cfg.Provider {
	case "openai":
		e := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
			Logger:     logger,
		})
		return e, e.Name(), nil
	default:
		e, err := voyage.NewEmbedder(voyage.Config{
			APIKey: cfg.APIKey,
			Model:  cfg.Model,
			Logger: logger,
		})
		if err != nil {
			return nil, "", err
		}
		return e, e.Name(), nil
	}
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}
