package snapshot

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/metrics"
)

func TestMain(m *testing.M) {
	metrics.Register()
	os.Exit(m.Run())
}

type countingSource struct {
	mu      sync.Mutex
	calls   int
	records []catalog.VectorRecord
	err     error
}

func (s *countingSource) List(context.Context) ([]catalog.VectorRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.records, s.err
}

func (s *countingSource) Get(_ context.Context, id string) (catalog.VectorRecord, error) {
	return catalog.VectorRecord{ProductID: id}, nil
}

func (s *countingSource) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func TestVectors_CachesWithinTTL(t *testing.T) {
	src := &countingSource{records: []catalog.VectorRecord{{ProductID: "a"}}}
	v := NewVectors(src, time.Minute)

	for range 3 {
		got, err := v.List(context.Background())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(got) != 1 {
			t.Fatalf("expected 1 record, got %d", len(got))
		}
	}
	if src.count() != 1 {
		t.Errorf("expected a single reload, got %d", src.count())
	}
}

func TestVectors_InvalidateForcesReload(t *testing.T) {
	src := &countingSource{}
	v := NewVectors(src, time.Minute)
	ctx := context.Background()

	_, _ = v.List(ctx)
	v.Invalidate()
	_, _ = v.List(ctx)

	if src.count() != 2 {
		t.Errorf("expected reload after invalidate, got %d calls", src.count())
	}
}

func TestVectors_ZeroTTLPassesThrough(t *testing.T) {
	src := &countingSource{}
	v := NewVectors(src, 0)

	_, _ = v.List(context.Background())
	_, _ = v.List(context.Background())

	if src.count() != 2 {
		t.Errorf("expected every call to hit the source, got %d", src.count())
	}
}

func TestVectors_ErrorNotCached(t *testing.T) {
	src := &countingSource{err: errors.New("down")}
	v := NewVectors(src, time.Minute)

	if _, err := v.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	src.err = nil
	if _, err := v.List(context.Background()); err != nil {
		t.Fatalf("unexpected error after recovery: %v", err)
	}
	if src.count() != 2 {
		t.Errorf("expected 2 source calls, got %d", src.count())
	}
}

func TestVectors_GetPassesThrough(t *testing.T) {
	v := NewVectors(&countingSource{}, time.Minute)
	rec, err := v.Get(context.Background(), "p9")
	if err != nil || rec.ProductID != "p9" {
		t.Errorf("unexpected result: %+v, %v", rec, err)
	}
}
