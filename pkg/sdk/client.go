package discovery

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/discovery/internal/db"
	dbRedis "github.com/kailas-cloud/discovery/internal/db/redis"
	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/lexical"
	productrepo "github.com/kailas-cloud/discovery/internal/repository/product"
	"github.com/kailas-cloud/discovery/internal/repository/snapshot"
	vectorrepo "github.com/kailas-cloud/discovery/internal/repository/vector"
	openaiTransport "github.com/kailas-cloud/discovery/internal/transport/openai"
	discoveryuc "github.com/kailas-cloud/discovery/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/discovery/internal/usecase/health"
	indexuc "github.com/kailas-cloud/discovery/internal/usecase/index"
	intentuc "github.com/kailas-cloud/discovery/internal/usecase/intent"
	recommenduc "github.com/kailas-cloud/discovery/internal/usecase/recommend"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultChatMaxTokens    = 512
)

// Internal interfaces so tests can swap the use cases.
type discoveryUseCase interface {
	Ask(ctx context.Context, query string, k int) (discoveryuc.AskResult, error)
	Chat(ctx context.Context, message string) (discoveryuc.ChatResult, error)
	Similar(ctx context.Context, productID string, k int) ([]catalog.Candidate, error)
}

type indexUseCase interface {
	Rebuild(ctx context.Context) (indexuc.Report, error)
	UpsertProduct(ctx context.Context, id string) (catalog.VectorRecord, error)
}

// Client is the discovery SDK entry point.
type Client struct {
	store     db.Store
	discSvc   discoveryUseCase
	indexSvc  indexUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New creates a Client and connects to Redis.
// The provided context is used for the initial readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		keyPrefix:          domain.DefaultKeyPrefix,
		productsCollection: domain.DefaultProductsCollection,
		vectorsCollection:  domain.DefaultVectorsCollection,
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.addrs) == 0 {
		return nil, errors.New("discovery: database address required (use WithRedis)")
	}
	if cfg.productsCollection == cfg.vectorsCollection {
		return nil, errors.New("discovery: products and vectors collections must differ")
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.addrs,
		Password: cfg.password,
	})
	if err != nil {
		return nil, fmt.Errorf("discovery: create redis store: %w", err)
	}

	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("discovery: database not ready: %w", err)
	}

	return wireClient(store, cfg, obs), nil
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	products := productrepo.New(store, cfg.keyPrefix, cfg.productsCollection)
	vectors := vectorrepo.New(store, cfg.keyPrefix, cfg.vectorsCollection)
	vectorSnapshot := snapshot.NewVectors(vectors, cfg.snapshotTTL)

	synonyms := lexical.NewSynonymTable(lexical.DefaultSynonyms)
	if len(cfg.synonyms) > 0 {
		synonyms = synonyms.Merge(cfg.synonyms)
	}

	emb, embHealth := resolveEmbedder(cfg)
	comp, compHealth := resolveCompleter(cfg)

	opts := intentuc.Options{MaxTokens: defaultChatMaxTokens, JSONMode: true}

	// Without a completer intents always degrade and nothing is recommended.
	var intentCompleter domain.Completer = noopCompleter{}
	var recommender discoveryuc.Recommender
	if comp != nil {
		intentCompleter = comp
		recommender = recommenduc.New(comp, recommenduc.Options(opts))
	}
	intentSvc := intentuc.New(intentCompleter, opts)

	discSvc := discoveryuc.New(emb, vectorSnapshot, products, intentSvc, synonyms, recommender).
		WithTopK(cfg.topK).
		WithWordWindows(cfg.wordWindows)
	indexSvc := indexuc.New(products, vectors, emb, vectorSnapshot).
		WithBatchSize(cfg.embedBatchSize)

	return &Client{
		store:     store,
		discSvc:   discSvc,
		indexSvc:  indexSvc,
		healthSvc: healthuc.New(store, embHealth, compHealth),
		obs:       obs,
	}
}

// resolveEmbedder picks the configured embedder and, when it can report it, its health checker.
func resolveEmbedder(cfg *clientConfig) (domain.Embedder, healthuc.ProviderChecker) {
	switch {
	case cfg.embedder != nil:
		if hc, ok := cfg.embedder.(healthuc.ProviderChecker); ok {
			return adaptEmbedder(cfg.embedder), hc
		}
		return adaptEmbedder(cfg.embedder), nil
	case cfg.openAI != nil && cfg.openAI.EmbeddingModel != "":
		e := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:     cfg.openAI.APIKey,
			BaseURL:    cfg.openAI.BaseURL,
			Model:      cfg.openAI.EmbeddingModel,
			Dimensions: cfg.openAI.Dimensions,
		})
		return e, e
	default:
		return noopEmbedder{}, nil
	}
}

// resolveCompleter returns nil when no chat provider is configured.
func resolveCompleter(cfg *clientConfig) (domain.Completer, healthuc.ProviderChecker) {
	switch {
	case cfg.completer != nil:
		if hc, ok := cfg.completer.(healthuc.ProviderChecker); ok {
			return &completerAdapter{inner: cfg.completer}, hc
		}
		return &completerAdapter{inner: cfg.completer}, nil
	case cfg.openAI != nil && cfg.openAI.ChatModel != "":
		c := openaiTransport.NewCompleter(&openaiTransport.Config{
			APIKey:  cfg.openAI.APIKey,
			BaseURL: cfg.openAI.BaseURL,
			Model:   cfg.openAI.ChatModel,
		})
		return c, c
	default:
		return nil, nil
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Ping checks database connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Ask embeds the query and returns the k most similar products (k <= 0 uses the default).
func (c *Client) Ask(ctx context.Context, query string, k int) (_ AskResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("ask", start, err) }()

	res, err := c.discSvc.Ask(ctx, query, k)
	if err != nil {
		return AskResult{}, fmt.Errorf("ask: %w", err)
	}
	c.obs.searched("ask", len(res.Candidates))
	return AskResult{
		Candidates:     candidatesFromDomain(res.Candidates),
		Recommendation: recommendationFromDomain(res.Recommendation),
	}, nil
}

// Chat runs the lexical path for a conversational message.
func (c *Client) Chat(ctx context.Context, message string) (_ ChatResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("chat", start, err) }()

	res, err := c.discSvc.Chat(ctx, message)
	if err != nil {
		return ChatResult{}, fmt.Errorf("chat: %w", err)
	}
	c.obs.searched("chat", len(res.Candidates))
	return ChatResult{
		Normalized:     res.Normalized,
		Intent:         intentFromDomain(res.Extraction),
		Terms:          res.Terms,
		MatchedTerm:    res.MatchedTerm,
		Candidates:     candidatesFromDomain(res.Candidates),
		Recommendation: recommendationFromDomain(res.Recommendation),
	}, nil
}

// Similar returns products closest to the stored vector of productID, excluding it.
func (c *Client) Similar(ctx context.Context, productID string, k int) (_ []Candidate, err error) {
	start := time.Now()
	defer func() { c.obs.observe("similar", start, err) }()

	res, err := c.discSvc.Similar(ctx, productID, k)
	if err != nil {
		return nil, fmt.Errorf("similar: %w", err)
	}
	c.obs.searched("similar", len(res))
	return candidatesFromDomain(res), nil
}

// Rebuild re-embeds the whole catalog. On failure the report covers the batches
// committed before the error.
func (c *Client) Rebuild(ctx context.Context) (_ IndexReport, err error) {
	start := time.Now()
	defer func() { c.obs.observe("rebuild", start, err) }()

	rep, err := c.indexSvc.Rebuild(ctx)
	out := IndexReport{
		Products: rep.Products,
		Batches:  rep.Batches,
		Indexed:  rep.Indexed,
		Duration: rep.Duration,
	}
	if err != nil {
		return out, fmt.Errorf("rebuild: %w", err)
	}
	return out, nil
}

// UpsertProduct re-embeds a single product.
func (c *Client) UpsertProduct(ctx context.Context, id string) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("upsert_product", start, err) }()

	if _, err = c.indexSvc.UpsertProduct(ctx, id); err != nil {
		return fmt.Errorf("upsert product: %w", err)
	}
	return nil
}
