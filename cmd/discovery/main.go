package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discovery/internal/config"
	"github.com/kailas-cloud/discovery/internal/db"
	dbRedis "github.com/kailas-cloud/discovery/internal/db/redis"
	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/lexical"
	logpkg "github.com/kailas-cloud/discovery/internal/logger"
	"github.com/kailas-cloud/discovery/internal/metrics"
	"github.com/kailas-cloud/discovery/internal/repository/embcache"
	productrepo "github.com/kailas-cloud/discovery/internal/repository/product"
	"github.com/kailas-cloud/discovery/internal/repository/snapshot"
	vectorrepo "github.com/kailas-cloud/discovery/internal/repository/vector"
	chiTransport "github.com/kailas-cloud/discovery/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/discovery/internal/transport/openai"
	discoveryuc "github.com/kailas-cloud/discovery/internal/usecase/discovery"
	embeddinguc "github.com/kailas-cloud/discovery/internal/usecase/embedding"
	healthuc "github.com/kailas-cloud/discovery/internal/usecase/health"
	indexuc "github.com/kailas-cloud/discovery/internal/usecase/index"
	intentuc "github.com/kailas-cloud/discovery/internal/usecase/intent"
	recommenduc "github.com/kailas-cloud/discovery/internal/usecase/recommend"
	"github.com/kailas-cloud/discovery/internal/version"
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

	logger.Info("Starting discovery API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("products", cfg.Storage.KeyPrefix+cfg.Storage.ProductsCollection),
		zap.String("vectors", cfg.Storage.KeyPrefix+cfg.Storage.VectorsCollection),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register metrics explicitly (no init())
	metrics.Register()

	synonyms, err := buildSynonyms(cfg.Lexical)
	if err != nil {
		logger.Fatal("Failed to load synonyms", zap.Error(err))
	}
	logger.Info("Synonym table loaded", zap.Int("terms", synonyms.Len()))

	// Providers
	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Logger:     logger,
	})
	completer := openaiTransport.NewCompleter(&openaiTransport.Config{
		APIKey:  cfg.Chat.APIKey,
		BaseURL: cfg.Chat.BaseURL,
		Model:   cfg.Chat.Model,
		Logger:  logger,
	})
	queryEmbedder := buildQueryEmbedder(baseEmbedder, store, cfg, logger)
	passageEmbedder := buildPassageEmbedder(baseEmbedder, cfg, logger)

	// Repositories
	products := productrepo.New(store, cfg.Storage.KeyPrefix, cfg.Storage.ProductsCollection)
	vectors := vectorrepo.New(store, cfg.Storage.KeyPrefix, cfg.Storage.VectorsCollection)
	vectorSnapshot := snapshot.NewVectors(vectors, cfg.Search.SnapshotTTL())

	// Use cases
	chatOpts := intentuc.Options{
		Temperature: cfg.Chat.Temperature,
		MaxTokens:   cfg.Chat.MaxTokens,
		JSONMode:    cfg.Chat.JSONMode,
	}
	intentSvc := intentuc.New(completer, chatOpts)
	recommendSvc := recommenduc.New(completer, recommenduc.Options(chatOpts))
	discoverySvc := discoveryuc.New(queryEmbedder, vectorSnapshot, products, intentSvc, synonyms, recommendSvc).
		WithTopK(cfg.Search.TopK).
		WithWordWindows(cfg.Lexical.WordWindows)
	indexSvc := indexuc.New(products, vectors, passageEmbedder, vectorSnapshot).
		WithBatchSize(cfg.Index.EmbedBatchSize)
	healthSvc := healthuc.New(store, baseEmbedder, completer)

	server := chiTransport.NewServer(discoverySvc, indexSvc, healthSvc, logger)
	router := chiTransport.NewRouter(server, logger, cfg.Auth.APIKeys)

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
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
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

// buildSynonyms merges the optional synonyms file over the built-in vocabulary.
func buildSynonyms(cfg config.LexicalConfig) (*lexical.SynonymTable, error) {
	table := lexical.NewSynonymTable(lexical.DefaultSynonyms)
	if cfg.SynonymsFile == "" {
		return table, nil
	}
	extra, err := lexical.LoadSynonymFile(cfg.SynonymsFile)
	if err != nil {
		return nil, err
	}
	return table.Merge(extra), nil
}

// buildQueryEmbedder assembles the query chain: OpenAI -> Cached -> Instrumented -> Prefix.
// The prefix is outermost so the cache key includes it.
func buildQueryEmbedder(base domain.Embedder, store db.Store, cfg config.Config, logger *zap.Logger) domain.Embedder {
	embedder := base
	if ttl := cfg.Embedding.CacheTTL(); ttl > 0 {
		embedder = embcache.New(base, store, embcache.Config{
			KeyPrefix: cfg.Storage.KeyPrefix,
			Model:     cfg.Embedding.Model,
			TTL:       ttl,
		}, metrics.EmbeddingCacheTotal, logger)
	}

	embedder = embeddinguc.NewInstrumentedEmbedder(embedder, embeddinguc.RoleQuery, cfg.Embedding.Model, logger)

	if cfg.Embedding.QueryPrefix != "" {
		return domain.NewPrefixEmbedder(embedder, cfg.Embedding.QueryPrefix)
	}
	return embedder
}

// buildPassageEmbedder assembles the index chain: OpenAI -> Instrumented -> Prefix.
// Catalog embeddings are never cached; every batch is one provider call.
func buildPassageEmbedder(base domain.Embedder, cfg config.Config, logger *zap.Logger) domain.Embedder {
	var embedder domain.Embedder = embeddinguc.NewInstrumentedEmbedder(
		base, embeddinguc.RolePassage, cfg.Embedding.Model, logger,
	)
	if cfg.Embedding.PassagePrefix != "" {
		return domain.NewPrefixEmbedder(embedder, cfg.Embedding.PassagePrefix)
	}
	return embedder
}
