package discovery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/domain/intent"
	"github.com/kailas-cloud/discovery/internal/domain/recommendation"
	"github.com/kailas-cloud/discovery/internal/lexical"
	"github.com/kailas-cloud/discovery/internal/logger"
	"github.com/kailas-cloud/discovery/internal/ranking"
)

// MaxPromptCandidates bounds how many candidates are offered to the recommender.
const MaxPromptCandidates = 20

// AskResult is the outcome of the vector path.
type AskResult struct {
	Query          string
	Candidates     []catalog.Candidate
	Recommendation *recommendation.Result
}

// ChatResult is the outcome of the lexical path.
type ChatResult struct {
	Message    string
	Normalized string
	Extraction intent.Extraction
	// Terms are the expanded search terms in the order they were tried.
	Terms []string
	// MatchedTerm is the term that produced Candidates; empty when nothing matched.
	MatchedTerm    string
	Candidates     []catalog.Candidate
	Recommendation *recommendation.Result
}

// Service orchestrates product discovery over the vector and lexical paths.
// There is no automatic fallback between paths.
type Service struct {
	embed     QueryEmbedder
	vectors   VectorReader
	products  ProductReader
	intents   IntentExtractor
	synonyms  *lexical.SynonymTable
	recommend Recommender
	topK      int
	// wordWindows lets fuzzy terms match a run of product words.
	wordWindows bool
}

// New creates a discovery service. recommend can be nil to return candidates only.
func New(
	embed QueryEmbedder, vectors VectorReader, products ProductReader,
	intents IntentExtractor, synonyms *lexical.SynonymTable, recommend Recommender,
) *Service {
	return &Service{
		embed:     embed,
		vectors:   vectors,
		products:  products,
		intents:   intents,
		synonyms:  synonyms,
		recommend: recommend,
		topK:      domain.DefaultTopK,
	}
}

// WithTopK configures the default number of vector candidates.
func (s *Service) WithTopK(k int) *Service {
	if k > 0 {
		s.topK = k
	}
	return s
}

// WithWordWindows enables windowed fuzzy matching on the lexical path. Off by default.
func (s *Service) WithWordWindows(on bool) *Service {
	s.wordWindows = on
	return s
}

// Ask embeds the raw query and ranks every stored vector against it.
// Records scoring zero or less and records whose product no longer exists are skipped,
// so fewer than k candidates may return.
// Embedding failures propagate.
func (s *Service) Ask(ctx context.Context, query string, k int) (AskResult, error) {
	if strings.TrimSpace(query) == "" {
		return AskResult{}, fmt.Errorf("empty query: %w", domain.ErrInvalidRequest)
	}
	if k <= 0 {
		k = s.topK
	}
	log := logger.FromContext(ctx)
	start := time.Now()

	emb, err := s.embed.Embed(ctx, query)
	if err != nil {
		return AskResult{}, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.rankVectors(ctx, emb.Embedding, k, "")
	if err != nil {
		return AskResult{}, err
	}

	log.Info("vector search",
		zap.Int("top_k", k),
		zap.Int("candidates", len(candidates)),
		zap.Duration("duration", time.Since(start)),
	)

	res := AskResult{Query: query, Candidates: candidates}
	res.Recommendation = s.recommendFor(ctx, query, candidates)
	return res, nil
}

// Similar ranks products by similarity to the stored vector of productID, excluding itself.
func (s *Service) Similar(ctx context.Context, productID string, k int) ([]catalog.Candidate, error) {
	if k <= 0 {
		k = s.topK
	}
	rec, err := s.vectors.Get(ctx, productID)
	if err != nil {
		if errors.Is(err, domain.ErrVectorNotFound) {
			if _, perr := s.products.Get(ctx, productID); perr != nil {
				return nil, fmt.Errorf("similar to %s: %w", productID, perr)
			}
		}
		return nil, fmt.Errorf("similar to %s: %w", productID, err)
	}
	return s.rankVectors(ctx, rec.Vector, k, productID)
}

func (s *Service) rankVectors(ctx context.Context, query []float32, k int, exclude string) ([]catalog.Candidate, error) {
	records, err := s.vectors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vectors: %w", err)
	}
	if exclude != "" {
		kept := make([]catalog.VectorRecord, 0, len(records))
		for _, r := range records {
			if r.ProductID != exclude {
				kept = append(kept, r)
			}
		}
		records = kept
	}

	ranked, err := ranking.Rank(query, records, k)
	if err != nil {
		return nil, fmt.Errorf("rank vectors: %w", err)
	}
	ranked = positive(ranked)
	if len(ranked) == 0 {
		return []catalog.Candidate{}, nil
	}

	ids := make([]string, len(ranked))
	for i, r := range ranked {
		ids[i] = r.Record.ProductID
	}
	products, err := s.products.GetMany(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	byID := make(map[string]catalog.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]catalog.Candidate, 0, len(ranked))
	for _, r := range ranked {
		p, ok := byID[r.Record.ProductID]
		if !ok {
			logger.FromContext(ctx).Debug("vector without product", zap.String("product_id", r.Record.ProductID))
			continue
		}
		out = append(out, catalog.Candidate{Product: p, Score: r.Score})
	}
	return out, nil
}

// positive keeps the leading records with a score above zero. Orthogonal and
// opposite vectors are not candidates. ranked is sorted by descending score.
func positive(ranked []ranking.Scored) []ranking.Scored {
	for i, r := range ranked {
		if r.Score <= 0 {
			return ranked[:i]
		}
	}
	return ranked
}

// Chat runs the lexical path: extract intent, expand terms, then score the catalog
// one term at a time and keep the first term that matches anything. Later terms
// are never tried.
func (s *Service) Chat(ctx context.Context, message string) (ChatResult, error) {
	if strings.TrimSpace(message) == "" {
		return ChatResult{}, fmt.Errorf("empty message: %w", domain.ErrInvalidRequest)
	}
	log := logger.FromContext(ctx)
	start := time.Now()

	res := ChatResult{Message: message, Normalized: lexical.Normalize(message)}
	res.Extraction = s.intents.Extract(ctx, message)

	res.Terms = lexical.Expand(message, res.Extraction.Intent, s.synonyms)
	if len(res.Terms) == 0 {
		res.Terms = lexical.Tokens(res.Normalized)
	}

	products, err := s.products.List(ctx)
	if err != nil {
		return ChatResult{}, fmt.Errorf("list products: %w", err)
	}
	corpus := lexical.NewCorpus(products).WithWordWindows(s.wordWindows)

	res.Candidates = []catalog.Candidate{}
	for _, term := range res.Terms {
		if c := corpus.Score([]string{term}); len(c) > 0 {
			res.MatchedTerm = term
			res.Candidates = c
			break
		}
	}

	log.Info("lexical search",
		zap.Bool("intent_degraded", res.Extraction.Degraded),
		zap.Int("terms", len(res.Terms)),
		zap.String("matched_term", res.MatchedTerm),
		zap.Int("candidates", len(res.Candidates)),
		zap.Int("catalog", corpus.Len()),
		zap.Duration("duration", time.Since(start)),
	)

	res.Recommendation = s.recommendFor(ctx, message, res.Candidates)
	return res, nil
}

func (s *Service) recommendFor(ctx context.Context, query string, candidates []catalog.Candidate) *recommendation.Result {
	if s.recommend == nil {
		return nil
	}
	if len(candidates) > MaxPromptCandidates {
		candidates = candidates[:MaxPromptCandidates]
	}
	r := s.recommend.Recommend(ctx, query, candidates)
	return &r
}
