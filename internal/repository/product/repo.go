package product

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discovery/internal/db"
	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/logger"
)

// fetchChunk bounds the number of JSON.GET commands per pipeline.
const fetchChunk = 256

// store is the consumer interface for products (ISP).
type store interface {
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo reads the product collection. It never writes.
type Repo struct {
	store  store
	prefix string
}

// New creates a product repository over <keyPrefix><collection>:<id>.
func New(s store, keyPrefix, collection string) *Repo {
	return &Repo{store: s, prefix: keyPrefix + collection + ":"}
}

// List returns every product in the collection, ordered by key.
// Documents that fail to decode are skipped and logged.
func (r *Repo) List(ctx context.Context) ([]catalog.Product, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan products: %w", err)
	}
	// SCAN may return a key more than once.
	slices.Sort(keys)
	keys = slices.Compact(keys)
	return r.load(ctx, keys)
}

// Get returns one product by ID.
func (r *Repo) Get(ctx context.Context, id string) (catalog.Product, error) {
	key := r.key(id)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return catalog.Product{}, domain.ErrProductNotFound
		}
		return catalog.Product{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	p, err := parseDocument(id, raw)
	if err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

// GetMany returns the products for ids in the given order. Missing products are skipped.
func (r *Repo) GetMany(ctx context.Context, ids []string) ([]catalog.Product, error) {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.key(id)
	}
	return r.load(ctx, keys)
}

func (r *Repo) load(ctx context.Context, keys []string) ([]catalog.Product, error) {
	out := make([]catalog.Product, 0, len(keys))
	for start := 0; start < len(keys); start += fetchChunk {
		end := min(start+fetchChunk, len(keys))
		docs, err := r.store.JSONGetMulti(ctx, keys[start:end], "$")
		if err != nil {
			return nil, fmt.Errorf("load products: %w", err)
		}
		for i, raw := range docs {
			if raw == nil {
				continue
			}
			key := keys[start+i]
			p, err := parseDocument(strings.TrimPrefix(key, r.prefix), raw)
			if err != nil {
				logger.FromContext(ctx).Warn("skipping malformed product", zap.String("key", key), zap.Error(err))
				continue
			}
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *Repo) key(id string) string {
	return r.prefix + id
}
