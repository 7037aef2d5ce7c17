package recommend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/domain/recommendation"
	"github.com/kailas-cloud/discovery/internal/llm"
	"github.com/kailas-cloud/discovery/internal/logger"
	"github.com/kailas-cloud/discovery/internal/metrics"
)

const systemPrompt = `You recommend products from an agricultural store catalog.
You may only recommend products that appear in the CATALOG below, referenced by their exact "id".
Never invent products, ids, prices or stock.
Recommend at most %d products, best first, each with a one-sentence reason in the shopper's language.
If nothing fits, return an empty list and explain briefly in "note".
Reply with one JSON object and nothing else:
{"recommendations":[{"id":string,"title":string,"shortReason":string}],"note":string}`

// Options tunes the completion call.
type Options struct {
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// Service turns ranked candidates into closed-world recommendations.
type Service struct {
	completer Completer
	opts      Options
	limit     int
}

// New creates a recommendation service.
func New(c Completer, opts Options) *Service {
	return &Service{completer: c, opts: opts, limit: domain.MaxRecommendations}
}

type catalogEntry struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	Stock    int     `json:"stock"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

type replyItem struct {
	ID          flexID `json:"id"`
	Title       string `json:"title"`
	ShortReason string `json:"shortReason"`
	Reason      string `json:"reason"`
}

type replyDTO struct {
	Recommendations []replyItem `json:"recommendations"`
	Note            string      `json:"note"`
}

// Recommend never fails. With no candidates it answers without calling the model.
func (s *Service) Recommend(ctx context.Context, query string, candidates []catalog.Candidate) recommendation.Result {
	if len(candidates) == 0 {
		return recommendation.Empty(recommendation.NoteNoSuitable)
	}
	log := logger.FromContext(ctx)

	entries := make([]catalogEntry, len(candidates))
	allowed := make(map[string]string, len(candidates))
	for i, c := range candidates {
		entries[i] = catalogEntry{
			ID:       c.Product.ID,
			Title:    c.Product.Title,
			Price:    c.Product.Price,
			Stock:    c.Product.Stock,
			Category: c.Product.Category,
			Score:    math.Round(c.Score*1000) / 1000,
		}
		allowed[c.Product.ID] = c.Product.Title
	}
	catalogJSON, err := json.Marshal(entries)
	if err != nil {
		return s.degrade(log, recommendation.NoteParseFailed, fmt.Errorf("marshal catalog: %w", err))
	}

	reply, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: fmt.Sprintf(systemPrompt, s.limit)},
			{Role: domain.RoleUser, Content: "QUERY: " + query + "\nCATALOG: " + string(catalogJSON)},
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		JSON:        s.opts.JSONMode,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmptyCompletion) {
			return s.degrade(log, recommendation.NoteParseFailed, err)
		}
		return s.degrade(log, recommendation.NoteUnavailable, err)
	}

	var dto replyDTO
	if err := llm.DecodeObject(reply.Content, &dto); err != nil {
		return s.degrade(log, recommendation.NoteParseFailed, err)
	}

	items := make([]recommendation.Item, 0, len(dto.Recommendations))
	for _, r := range dto.Recommendations {
		reason := r.ShortReason
		if reason == "" {
			reason = r.Reason
		}
		items = append(items, recommendation.Item{
			ID:          string(r.ID),
			Title:       r.Title,
			ShortReason: strings.TrimSpace(reason),
		})
	}

	kept := recommendation.Restrict(items, allowed, s.limit)
	if dropped := len(items) - len(kept); dropped > 0 {
		log.Warn("dropped recommendations outside the candidate set", zap.Int("dropped", dropped))
	}

	note := strings.TrimSpace(dto.Note)
	if len(kept) == 0 && note == "" {
		note = recommendation.NoteNoSuitable
	}
	return recommendation.Result{Items: kept, Note: note}
}

func (s *Service) degrade(log *zap.Logger, note string, err error) recommendation.Result {
	metrics.DegradationsTotal.WithLabelValues("recommend", note).Inc()
	log.Warn("recommendation degraded", zap.String("note", note), zap.Error(err))
	return recommendation.Empty(note)
}

// flexID accepts a JSON string or number; models sometimes drop the quotes.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	if i, err := n.Int64(); err == nil {
		*f = flexID(strconv.FormatInt(i, 10))
		return nil
	}
	*f = flexID(n.String())
	return nil
}
