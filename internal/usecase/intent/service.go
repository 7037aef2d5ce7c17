package intent

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discovery/internal/domain"
	domintent "github.com/kailas-cloud/discovery/internal/domain/intent"
	"github.com/kailas-cloud/discovery/internal/llm"
	"github.com/kailas-cloud/discovery/internal/logger"
	"github.com/kailas-cloud/discovery/internal/metrics"
)

// Degradation reasons.
const (
	ReasonUnavailable = "unavailable"
	ReasonEmptyReply  = "empty-reply"
	ReasonParseFailed = "parse-failed"
)

const systemPrompt = `You extract shopping intent for an agricultural store.
Reply with one JSON object and nothing else:
{"crop": string, "problem": string, "goal": string, "keywords": [string]}
Use "" for unknown fields and [] when there are no keywords.
Keep the shopper's language; do not translate.`

// Options tunes the completion call.
type Options struct {
	Temperature float32
	MaxTokens   int
	JSONMode    bool
}

// Service extracts a structured intent from a free-text message.
type Service struct {
	completer Completer
	opts      Options
}

// New creates an intent extraction service.
func New(c Completer, opts Options) *Service {
	return &Service{completer: c, opts: opts}
}

// intentDTO uses pointers so a reply without any intent field can be told apart
// from one that reports every field empty.
type intentDTO struct {
	Crop     *string      `json:"crop"`
	Problem  *string      `json:"problem"`
	Goal     *string      `json:"goal"`
	Keywords *llm.Strings `json:"keywords"`
}

var errNoIntentFields = errors.New("reply has none of crop, problem, goal, keywords")

func (d intentDTO) hasFields() bool {
	return d.Crop != nil || d.Problem != nil || d.Goal != nil || d.Keywords != nil
}

func (d intentDTO) intent() domintent.Intent {
	var keywords []string
	if d.Keywords != nil {
		keywords = make([]string, 0, len(*d.Keywords))
		for _, k := range *d.Keywords {
			if k = strings.TrimSpace(k); k != "" {
				keywords = append(keywords, k)
			}
		}
	}
	return domintent.Intent{
		Crop:     trimmed(d.Crop),
		Problem:  trimmed(d.Problem),
		Goal:     trimmed(d.Goal),
		Keywords: keywords,
	}
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// Extract never fails: provider errors and unreadable replies yield a degraded
// extraction whose only keyword is the raw message.
func (s *Service) Extract(ctx context.Context, message string) domintent.Extraction {
	log := logger.FromContext(ctx)

	reply, err := s.completer.Complete(ctx, domain.CompletionRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: systemPrompt},
			{Role: domain.RoleUser, Content: message},
		},
		Temperature: s.opts.Temperature,
		MaxTokens:   s.opts.MaxTokens,
		JSON:        s.opts.JSONMode,
	})
	if err != nil {
		reason := ReasonUnavailable
		if errors.Is(err, domain.ErrEmptyCompletion) {
			reason = ReasonEmptyReply
		}
		return degrade(log, message, reason, err)
	}
	if strings.TrimSpace(reply.Content) == "" {
		return degrade(log, message, ReasonEmptyReply, nil)
	}

	var dto intentDTO
	if err := llm.DecodeObject(reply.Content, &dto); err != nil {
		return degrade(log, message, ReasonParseFailed, err)
	}

	if !dto.hasFields() {
		return degrade(log, message, ReasonParseFailed, errNoIntentFields)
	}
	return domintent.Parsed(dto.intent())
}

func degrade(log *zap.Logger, message, reason string, err error) domintent.Extraction {
	metrics.DegradationsTotal.WithLabelValues("intent", reason).Inc()
	log.Warn("intent extraction degraded", zap.String("reason", reason), zap.Error(err))
	return domintent.Degrade(message, reason)
}
