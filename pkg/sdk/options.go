package discovery

import (
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// OpenAIConfig configures OpenAI-compatible embedding and chat providers.
// An empty ChatModel leaves chat unconfigured.
type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	EmbeddingModel string
	Dimensions     int
	ChatModel      string
}

type clientConfig struct {
	addrs    []string
	password string

	embedder  Embedder
	completer Completer
	openAI    *OpenAIConfig

	keyPrefix          string
	productsCollection string
	vectorsCollection  string

	topK           int
	embedBatchSize int
	snapshotTTL    time.Duration
	synonyms       map[string][]string
	wordWindows    bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithRedis configures the client to connect to a Redis instance with JSON support.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithEmbedder sets the text embedding provider.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCompleter sets the chat-completion provider.
func WithCompleter(cm Completer) Option {
	return optionFunc(func(c *clientConfig) {
		c.completer = cm
	})
}

// WithOpenAI uses OpenAI-compatible HTTP providers for embeddings and chat.
// WithEmbedder and WithCompleter take precedence when both are given.
func WithOpenAI(cfg OpenAIConfig) Option {
	return optionFunc(func(c *clientConfig) {
		c.openAI = &cfg
	})
}

// WithCollections sets the key prefix and the product and vector collection names.
// Defaults: "discovery:", "products", "products_vectors".
func WithCollections(keyPrefix, products, vectors string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = keyPrefix
		c.productsCollection = products
		c.vectorsCollection = vectors
	})
}

// WithTopK sets the default number of vector candidates. Default: 6.
func WithTopK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.topK = k
	})
}

// WithEmbedBatchSize sets how many products are embedded per provider call. Default: 16.
func WithEmbedBatchSize(size int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedBatchSize = size
	})
}

// WithSnapshotTTL keeps the vector list in memory between queries. Default: 0 (disabled).
func WithSnapshotTTL(ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.snapshotTTL = ttl
	})
}

// WithSynonyms merges extra synonym entries over the built-in vocabulary.
func WithSynonyms(m map[string][]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.synonyms = m
	})
}

// WithWordWindows lets chat terms fuzzy-match a run of product words rather than
// only the whole product text. Default: false.
func WithWordWindows(on bool) Option {
	return optionFunc(func(c *clientConfig) {
		c.wordWindows = on
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
