package index

import (
	"context"

	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
)

// ProductReader reads the external product collection.
type ProductReader interface {
	List(ctx context.Context) ([]catalog.Product, error)
	Get(ctx context.Context, id string) (catalog.Product, error)
}

// VectorWriter persists vector records.
type VectorWriter interface {
	Upsert(ctx context.Context, rec catalog.VectorRecord) error
}

// Embedder vectorizes passages. A BatchEmbedder gets one call per batch.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Invalidator drops cached vector state after writes.
type Invalidator interface {
	Invalidate()
}
