package index

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/logger"
	"github.com/kailas-cloud/discovery/internal/metrics"
)

// Report summarizes an index build. On failure it describes what was committed before the error.
type Report struct {
	Products int           `json:"products"`
	Batches  int           `json:"batches"`
	Indexed  int           `json:"indexed"`
	Duration time.Duration `json:"duration"`
}

// Service builds vector records for catalog products.
type Service struct {
	products  ProductReader
	vectors   VectorWriter
	embed     Embedder
	snapshot  Invalidator
	batchSize int
	now       func() time.Time

	// rebuilding serializes full rebuilds; a second caller gets ErrIndexBusy.
	rebuilding sync.Mutex
}

// New creates an index service. snapshot can be nil.
func New(products ProductReader, vectors VectorWriter, embed Embedder, snapshot Invalidator) *Service {
	return &Service{
		products:  products,
		vectors:   vectors,
		embed:     embed,
		snapshot:  snapshot,
		batchSize: domain.DefaultEmbedBatchSize,
		now:       time.Now,
	}
}

// WithBatchSize configures the number of products embedded per request.
func (s *Service) WithBatchSize(size int) *Service {
	if size > 0 {
		s.batchSize = size
	}
	return s
}

// Rebuild embeds every product in sequential batches and writes one record per product.
// The first failure aborts the build; batches written before it stay committed.
func (s *Service) Rebuild(ctx context.Context) (Report, error) {
	if !s.rebuilding.TryLock() {
		return Report{}, domain.ErrIndexBusy
	}
	defer s.rebuilding.Unlock()

	log := logger.FromContext(ctx)
	start := time.Now()

	products, err := s.products.List(ctx)
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("rebuild", "error").Inc()
		return Report{}, fmt.Errorf("list products: %w", err)
	}

	report := Report{Products: len(products)}
	for offset := 0; offset < len(products); offset += s.batchSize {
		end := min(offset+s.batchSize, len(products))
		report.Batches++

		n, err := s.indexBatch(ctx, products[offset:end])
		report.Indexed += n
		if err != nil {
			report.Duration = time.Since(start)
			s.invalidate(report.Indexed)
			metrics.IndexBuildsTotal.WithLabelValues("rebuild", "error").Inc()
			log.Error("index rebuild aborted",
				zap.Int("batch", report.Batches),
				zap.Int("indexed", report.Indexed),
				zap.Int("products", report.Products),
				zap.Error(err),
			)
			return report, fmt.Errorf("batch %d: %w", report.Batches, err)
		}
	}

	report.Duration = time.Since(start)
	s.invalidate(report.Indexed)
	metrics.IndexBuildsTotal.WithLabelValues("rebuild", "success").Inc()
	log.Info("index rebuilt",
		zap.Int("products", report.Products),
		zap.Int("batches", report.Batches),
		zap.Int("indexed", report.Indexed),
		zap.Duration("duration", report.Duration),
	)
	return report, nil
}

// UpsertProduct (re)indexes a single product.
func (s *Service) UpsertProduct(ctx context.Context, id string) (catalog.VectorRecord, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("upsert", "error").Inc()
		return catalog.VectorRecord{}, fmt.Errorf("get product %s: %w", id, err)
	}

	res, err := domain.EmbedAll(ctx, s.embed, []string{p.EmbeddingText()})
	if err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("upsert", "error").Inc()
		return catalog.VectorRecord{}, fmt.Errorf("embed product %s: %w", id, err)
	}
	if len(res.Embeddings) != 1 {
		metrics.IndexBuildsTotal.WithLabelValues("upsert", "error").Inc()
		return catalog.VectorRecord{}, fmt.Errorf("expected 1 embedding, got %d: %w",
			len(res.Embeddings), domain.ErrEmbeddingProviderError)
	}

	rec := catalog.NewVectorRecord(p, res.Embeddings[0], s.now())
	if err := s.vectors.Upsert(ctx, rec); err != nil {
		metrics.IndexBuildsTotal.WithLabelValues("upsert", "error").Inc()
		return catalog.VectorRecord{}, fmt.Errorf("store vector %s: %w", id, err)
	}

	s.invalidate(1)
	metrics.IndexBuildsTotal.WithLabelValues("upsert", "success").Inc()
	logger.FromContext(ctx).Info("product indexed", zap.String("product_id", id))
	return rec, nil
}

// indexBatch makes exactly one embedding call for the batch and writes its records.
// It returns the number of records written.
func (s *Service) indexBatch(ctx context.Context, batch []catalog.Product) (int, error) {
	texts := make([]string, len(batch))
	for i, p := range batch {
		texts[i] = p.EmbeddingText()
	}

	res, err := domain.EmbedAll(ctx, s.embed, texts)
	if err != nil {
		return 0, fmt.Errorf("embed: %w", err)
	}
	if len(res.Embeddings) != len(batch) {
		return 0, fmt.Errorf("expected %d embeddings, got %d: %w",
			len(batch), len(res.Embeddings), domain.ErrEmbeddingProviderError)
	}

	now := s.now()
	for i, p := range batch {
		if err := s.vectors.Upsert(ctx, catalog.NewVectorRecord(p, res.Embeddings[i], now)); err != nil {
			return i, fmt.Errorf("store vector %s: %w", p.ID, err)
		}
		metrics.IndexedProductsTotal.Inc()
	}
	return len(batch), nil
}

func (s *Service) invalidate(written int) {
	if s.snapshot != nil && written > 0 {
		s.snapshot.Invalidate()
	}
}
