package discovery

import (
	"time"

	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/domain/intent"
	"github.com/kailas-cloud/discovery/internal/domain/recommendation"
)

// Recommendation notes attached to empty results.
const (
	NoteNoSuitable  = recommendation.NoteNoSuitable
	NoteParseFailed = recommendation.NoteParseFailed
	NoteUnavailable = recommendation.NoteUnavailable
)

// Product is a catalog item.
type Product struct {
	ID          string
	Title       string
	Description string
	Category    string
	Price       float64
	Stock       int
	Tags        []string
}

// Candidate is a product with its retrieval score.
// Vector scores are cosine similarities; lexical scores are match points.
type Candidate struct {
	Product Product
	Score   float64
}

// RecommendedItem is one recommended product; ID always refers to a candidate.
type RecommendedItem struct {
	ID          string
	Title       string
	ShortReason string
}

// Recommendation is the closed-world recommender output.
// An empty result always carries a note.
type Recommendation struct {
	Items []RecommendedItem
	Note  string
}

// Intent is the structured reading of a chat message.
type Intent struct {
	Crop     string
	Problem  string
	Goal     string
	Keywords []string
	// Degraded is set when extraction failed and Keywords holds the raw message.
	Degraded bool
	Reason   string
}

// AskResult is the outcome of a vector search.
type AskResult struct {
	Candidates     []Candidate
	Recommendation *Recommendation // nil without a completer
}

// ChatResult is the outcome of a lexical search.
type ChatResult struct {
	Normalized     string
	Intent         Intent
	Terms          []string
	MatchedTerm    string
	Candidates     []Candidate
	Recommendation *Recommendation // nil without a completer
}

// IndexReport summarizes an index build.
type IndexReport struct {
	Products int
	Batches  int
	Indexed  int
	Duration time.Duration
}

func productFromDomain(p catalog.Product) Product {
	return Product{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Tags:        p.Tags,
	}
}

func candidatesFromDomain(cs []catalog.Candidate) []Candidate {
	out := make([]Candidate, len(cs))
	for i, c := range cs {
		out[i] = Candidate{Product: productFromDomain(c.Product), Score: c.Score}
	}
	return out
}

func recommendationFromDomain(r *recommendation.Result) *Recommendation {
	if r == nil {
		return nil
	}
	items := make([]RecommendedItem, len(r.Items))
	for i, it := range r.Items {
		items[i] = RecommendedItem{ID: it.ID, Title: it.Title, ShortReason: it.ShortReason}
	}
	return &Recommendation{Items: items, Note: r.Note}
}

func intentFromDomain(ex intent.Extraction) Intent {
	return Intent{
		Crop:     ex.Intent.Crop,
		Problem:  ex.Intent.Problem,
		Goal:     ex.Intent.Goal,
		Keywords: ex.Intent.Keywords,
		Degraded: ex.Degraded,
		Reason:   ex.Reason,
	}
}
