package chi

import (
	"time"

	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/domain/intent"
	"github.com/kailas-cloud/discovery/internal/domain/recommendation"
)

// ErrorCode is a machine-readable error code returned to API clients.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest        ErrorCode = "bad_request"
	ErrorCodeValidationFailed  ErrorCode = "validation_failed"
	ErrorCodeUnauthorized      ErrorCode = "unauthorized"
	ErrorCodeNotFound          ErrorCode = "not_found"
	ErrorCodeProductNotFound   ErrorCode = "product_not_found"
	ErrorCodeVectorNotFound    ErrorCode = "vector_not_found"
	ErrorCodeVectorDimMismatch ErrorCode = "vector_dim_mismatch"
	ErrorCodeProviderError     ErrorCode = "provider_error"
	ErrorCodeIndexBusy         ErrorCode = "index_busy"
	ErrorCodeInternalError     ErrorCode = "internal_error"
)

// MaxTopK bounds caller-supplied top_k.
const MaxTopK = 50

type errorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

type askRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k,omitempty"`
}

type chatRequest struct {
	Message string `json:"message"`
}

type candidateResponse struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	Price       float64  `json:"price"`
	Stock       int      `json:"stock"`
	Tags        []string `json:"tags,omitempty"`
	Score       float64  `json:"score"`
}

type askResponse struct {
	Query          string                 `json:"query"`
	Candidates     []candidateResponse    `json:"candidates"`
	Recommendation *recommendation.Result `json:"recommendation,omitempty"`
}

type intentResponse struct {
	Crop     string   `json:"crop"`
	Problem  string   `json:"problem"`
	Goal     string   `json:"goal"`
	Keywords []string `json:"keywords"`
	Degraded bool     `json:"degraded"`
	Reason   string   `json:"reason,omitempty"`
}

type chatResponse struct {
	Message        string                 `json:"message"`
	Normalized     string                 `json:"normalized"`
	Intent         intentResponse         `json:"intent"`
	Terms          []string               `json:"terms"`
	MatchedTerm    string                 `json:"matched_term,omitempty"`
	Candidates     []candidateResponse    `json:"candidates"`
	Recommendation *recommendation.Result `json:"recommendation,omitempty"`
}

type similarResponse struct {
	ProductID  string              `json:"product_id"`
	Candidates []candidateResponse `json:"candidates"`
}

type rebuildResponse struct {
	Products   int   `json:"products"`
	Batches    int   `json:"batches"`
	Indexed    int   `json:"indexed"`
	DurationMs int64 `json:"duration_ms"`
}

type upsertResponse struct {
	ProductID  string    `json:"product_id"`
	Dimensions int       `json:"dimensions"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type healthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Version string            `json:"version"`
}

func candidatesToResponse(cs []catalog.Candidate) []candidateResponse {
	out := make([]candidateResponse, len(cs))
	for i, c := range cs {
		p := c.Product
		out[i] = candidateResponse{
			ID:          p.ID,
			Title:       p.Title,
			Description: p.Description,
			Category:    p.Category,
			Price:       p.Price,
			Stock:       p.Stock,
			Tags:        p.Tags,
			Score:       c.Score,
		}
	}
	return out
}

func intentToResponse(ex intent.Extraction) intentResponse {
	kw := ex.Intent.Keywords
	if kw == nil {
		kw = []string{}
	}
	return intentResponse{
		Crop:     ex.Intent.Crop,
		Problem:  ex.Intent.Problem,
		Goal:     ex.Intent.Goal,
		Keywords: kw,
		Degraded: ex.Degraded,
		Reason:   ex.Reason,
	}
}

// recommendationToResponse keeps "recommendations" an array on the wire.
func recommendationToResponse(r *recommendation.Result) *recommendation.Result {
	if r == nil || r.Items != nil {
		return r
	}
	out := *r
	out.Items = []recommendation.Item{}
	return &out
}
