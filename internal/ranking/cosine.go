// Package ranking scores stored product vectors against a query vector.
package ranking

import (
	"fmt"
	"math"
	"sort"

	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
)

// Cosine returns the cosine similarity of a and b in [-1, 1].
// A zero-norm vector yields 0 rather than NaN. Vectors of different length are an error.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("cosine %d vs %d: %w", len(a), len(b), domain.ErrVectorDimMismatch)
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		denom = 1
	}
	return dot / denom, nil
}

// Scored pairs a vector record with its similarity to the query.
type Scored struct {
	Record catalog.VectorRecord
	Score  float64
}

// Rank scores every record against query, sorts by descending similarity and keeps
// the top k (all when k <= 0). Ties keep input order.
func Rank(query []float32, records []catalog.VectorRecord, k int) ([]Scored, error) {
	out := make([]Scored, 0, len(records))
	for _, rec := range records {
		s, err := Cosine(query, rec.Vector)
		if err != nil {
			return nil, fmt.Errorf("rank product %s: %w", rec.ProductID, err)
		}
		out = append(out, Scored{Record: rec, Score: s})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Score > out[j].Score
	})

	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out, nil
}
