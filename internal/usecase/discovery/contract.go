package discovery

import (
	"context"

	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/domain/intent"
	"github.com/kailas-cloud/discovery/internal/domain/recommendation"
)

// QueryEmbedder vectorizes shopper queries.
type QueryEmbedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// VectorReader reads stored vector records.
type VectorReader interface {
	List(ctx context.Context) ([]catalog.VectorRecord, error)
	Get(ctx context.Context, productID string) (catalog.VectorRecord, error)
}

// ProductReader reads the product catalog.
type ProductReader interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
	GetMany(ctx context.Context, ids []string) ([]catalog.Product, error)
}

// IntentExtractor reads a structured intent from a message. It never fails.
type IntentExtractor interface {
	Extract(ctx context.Context, message string) intent.Extraction
}

// Recommender turns candidates into closed-world recommendations. It never fails.
type Recommender interface {
	Recommend(ctx context.Context, query string, candidates []catalog.Candidate) recommendation.Result
}
