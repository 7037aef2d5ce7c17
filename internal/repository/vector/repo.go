package vector

import (
	"bytes"
	"context"
	"encoding/json"
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

const fetchChunk = 256

// store is the consumer interface for vector records (ISP).
type store interface {
	JSONSet(ctx context.Context, key, path string, data []byte) error
	JSONGet(ctx context.Context, key string, paths ...string) ([]byte, error)
	JSONGetMulti(ctx context.Context, keys []string, path string) ([][]byte, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// Repo stores one vector record per product under <keyPrefix><collection>:<productId>.
type Repo struct {
	store  store
	prefix string
}

// New creates a vector repository.
func New(s store, keyPrefix, collection string) *Repo {
	return &Repo{store: s, prefix: keyPrefix + collection + ":"}
}

// Upsert writes the whole record at the root path, replacing any previous one.
func (r *Repo) Upsert(ctx context.Context, rec catalog.VectorRecord) error {
	if rec.ProductID == "" {
		return fmt.Errorf("vector record without product id: %w", domain.ErrInvalidRequest)
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal vector record: %w", err)
	}
	key := r.key(rec.ProductID)
	if err := r.store.JSONSet(ctx, key, "$", data); err != nil {
		return fmt.Errorf("json.set %s: %w", key, err)
	}
	return nil
}

// Get returns the record of one product.
func (r *Repo) Get(ctx context.Context, productID string) (catalog.VectorRecord, error) {
	key := r.key(productID)
	raw, err := r.store.JSONGet(ctx, key, "$")
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return catalog.VectorRecord{}, domain.ErrVectorNotFound
		}
		return catalog.VectorRecord{}, fmt.Errorf("json.get %s: %w", key, err)
	}
	return parseRecord(productID, raw)
}

// List returns every stored record, ordered by key.
func (r *Repo) List(ctx context.Context) ([]catalog.VectorRecord, error) {
	keys, err := r.store.Scan(ctx, r.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan vectors: %w", err)
	}
	// SCAN may return a key more than once.
	slices.Sort(keys)
	keys = slices.Compact(keys)

	out := make([]catalog.VectorRecord, 0, len(keys))
	for start := 0; start < len(keys); start += fetchChunk {
		end := min(start+fetchChunk, len(keys))
		docs, err := r.store.JSONGetMulti(ctx, keys[start:end], "$")
		if err != nil {
			return nil, fmt.Errorf("load vectors: %w", err)
		}
		for i, raw := range docs {
			if raw == nil {
				continue
			}
			key := keys[start+i]
			rec, err := parseRecord(strings.TrimPrefix(key, r.prefix), raw)
			if err != nil {
				logger.FromContext(ctx).Warn("skipping malformed vector record", zap.String("key", key), zap.Error(err))
				continue
			}
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *Repo) key(productID string) string {
	return r.prefix + productID
}

// parseRecord decodes a JSON.GET "$" reply ([{...}]) or a bare object.
func parseRecord(productID string, raw []byte) (catalog.VectorRecord, error) {
	raw = bytes.TrimSpace(raw)
	var rec catalog.VectorRecord
	if len(raw) > 0 && raw[0] == '[' {
		var arr []catalog.VectorRecord
		if err := json.Unmarshal(raw, &arr); err != nil {
			return catalog.VectorRecord{}, fmt.Errorf("unmarshal vector %s: %w", productID, err)
		}
		if len(arr) == 0 {
			return catalog.VectorRecord{}, fmt.Errorf("vector %s: empty document", productID)
		}
		rec = arr[0]
	} else if err := json.Unmarshal(raw, &rec); err != nil {
		return catalog.VectorRecord{}, fmt.Errorf("unmarshal vector %s: %w", productID, err)
	}
	if rec.ProductID == "" {
		rec.ProductID = productID
	}
	if len(rec.Vector) == 0 {
		return catalog.VectorRecord{}, fmt.Errorf("vector %s: empty vector", productID)
	}
	return rec, nil
}
