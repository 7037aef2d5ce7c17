// Package snapshot keeps an in-process copy of all vector records so that
// vector queries do not rescan the store on every request.
package snapshot

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/metrics"
)

const allKey = "all"

// source is the consumer interface for the backing vector repository (ISP).
type source interface {
	List(ctx context.Context) ([]catalog.VectorRecord, error)
	Get(ctx context.Context, productID string) (catalog.VectorRecord, error)
}

// Vectors serves List from a TTL snapshot and Get straight from the source.
// A zero TTL disables the snapshot.
type Vectors struct {
	src   source
	ttl   time.Duration
	cache *cache.Cache
	group singleflight.Group
	// gen advances on Invalidate so an in-flight reload cannot store stale records.
	gen atomic.Uint64
}

// NewVectors creates a snapshot layer over src.
func NewVectors(src source, ttl time.Duration) *Vectors {
	return &Vectors{
		src:   src,
		ttl:   ttl,
		cache: cache.New(ttl, 2*ttl+time.Minute),
	}
}

// List returns all vector records, reloading at most once per TTL.
// Concurrent misses share one reload.
func (v *Vectors) List(ctx context.Context) ([]catalog.VectorRecord, error) {
	if v.ttl <= 0 {
		return v.src.List(ctx)
	}
	if x, found := v.cache.Get(allKey); found {
		metrics.SnapshotTotal.WithLabelValues("hit").Inc()
		return x.([]catalog.VectorRecord), nil
	}

	gen := v.gen.Load()
	x, err, _ := v.group.Do(strconv.FormatUint(gen, 10), func() (any, error) {
		records, err := v.src.List(ctx)
		if err != nil {
			return nil, err
		}
		if v.gen.Load() == gen {
			v.cache.Set(allKey, records, cache.DefaultExpiration)
		}
		return records, nil
	})
	if err != nil {
		metrics.SnapshotTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("reload vector snapshot: %w", err)
	}
	metrics.SnapshotTotal.WithLabelValues("reload").Inc()
	return x.([]catalog.VectorRecord), nil
}

// Get reads one record from the source.
func (v *Vectors) Get(ctx context.Context, productID string) (catalog.VectorRecord, error) {
	return v.src.Get(ctx, productID)
}

// Invalidate drops the snapshot; the next List reloads.
func (v *Vectors) Invalidate() {
	v.gen.Add(1)
	v.cache.Delete(allKey)
}
