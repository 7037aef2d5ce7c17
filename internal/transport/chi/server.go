package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/logger"
	"github.com/kailas-cloud/discovery/internal/version"
	discoveryuc "github.com/kailas-cloud/discovery/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/discovery/internal/usecase/health"
	indexuc "github.com/kailas-cloud/discovery/internal/usecase/index"
)

// Discoverer runs the retrieval flows.
type Discoverer interface {
	Ask(ctx context.Context, query string, k int) (discoveryuc.AskResult, error)
	Chat(ctx context.Context, message string) (discoveryuc.ChatResult, error)
	Similar(ctx context.Context, productID string, k int) ([]catalog.Candidate, error)
}

// Indexer maintains the vector index.
type Indexer interface {
	Rebuild(ctx context.Context) (indexuc.Report, error)
	UpsertProduct(ctx context.Context, id string) (catalog.VectorRecord, error)
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server serves the discovery HTTP API.
type Server struct {
	discovery     Discoverer
	index         Indexer
	health        HealthChecker
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(discovery Discoverer, index Indexer, health HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		discovery: discovery,
		index:     index,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidRequest, http.StatusBadRequest, ErrorCodeValidationFailed, ""),
		sentinelHandler(domain.ErrProductNotFound, http.StatusNotFound, ErrorCodeProductNotFound, ""),
		sentinelHandler(domain.ErrVectorNotFound, http.StatusNotFound, ErrorCodeVectorNotFound, ""),
		sentinelHandler(domain.ErrIndexBusy, http.StatusConflict, ErrorCodeIndexBusy, ""),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeProviderError,
			"search temporarily unavailable"),
		sentinelHandler(domain.ErrChatProviderError, http.StatusBadGateway, ErrorCodeProviderError,
			"search temporarily unavailable"),
	}
	return s
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "query is required")
		return
	}
	k := 0
	if req.TopK != nil {
		if *req.TopK <= 0 || *req.TopK > MaxTopK {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
				fmt.Sprintf("top_k must be between 1 and %d", MaxTopK))
			return
		}
		k = *req.TopK
	}

	res, err := s.discovery.Ask(r.Context(), req.Query, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Query:          res.Query,
		Candidates:     candidatesToResponse(res.Candidates),
		Recommendation: recommendationToResponse(res.Recommendation),
	})
}

// Chat handles POST /v1/chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "message is required")
		return
	}

	res, err := s.discovery.Chat(r.Context(), req.Message)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	terms := res.Terms
	if terms == nil {
		terms = []string{}
	}
	writeJSON(w, http.StatusOK, chatResponse{
		Message:        res.Message,
		Normalized:     res.Normalized,
		Intent:         intentToResponse(res.Extraction),
		Terms:          terms,
		MatchedTerm:    res.MatchedTerm,
		Candidates:     candidatesToResponse(res.Candidates),
		Recommendation: recommendationToResponse(res.Recommendation),
	})
}

// Similar handles GET /v1/products/{id}/similar.
func (s *Server) Similar(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	k := 0
	if raw := r.URL.Query().Get("top_k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > MaxTopK {
			writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
				fmt.Sprintf("top_k must be between 1 and %d", MaxTopK))
			return
		}
		k = n
	}

	cs, err := s.discovery.Similar(r.Context(), id, k)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, similarResponse{ProductID: id, Candidates: candidatesToResponse(cs)})
}

// RebuildIndex handles POST /v1/index/rebuild.
func (s *Server) RebuildIndex(w http.ResponseWriter, r *http.Request) {
	report, err := s.index.Rebuild(r.Context())
	if err != nil {
		logger.FromContext(r.Context()).Warn("index rebuild aborted",
			zap.Int("products", report.Products),
			zap.Int("indexed", report.Indexed),
			zap.Error(err),
		)
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, rebuildResponse{
		Products:   report.Products,
		Batches:    report.Batches,
		Indexed:    report.Indexed,
		DurationMs: report.Duration.Milliseconds(),
	})
}

// UpsertProduct handles PUT /v1/index/products/{id}.
func (s *Server) UpsertProduct(w http.ResponseWriter, r *http.Request) {
	rec, err := s.index.UpsertProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, upsertResponse{
		ProductID:  rec.ProductID,
		Dimensions: len(rec.Vector),
		UpdatedAt:  rec.UpdatedAt,
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	// Degraded providers still leave the lexical path usable; only a dead database is fatal.
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Version: version.Version,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, errorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// An empty message exposes the sentinel text, never the wrapped chain.
func sentinelHandler(sentinel error, status int, code ErrorCode, message string) errorHandler {
	if message == "" {
		message = sentinel.Error()
	}
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, message)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromContext(r.Context())
	for _, h := range s.errorHandlers {
		if h(w, err) {
			log.Warn("domain error", zap.Error(err))
			return
		}
	}
	// Dimension mismatches mean the index and the embedding model disagree.
	if errors.Is(err, domain.ErrVectorDimMismatch) {
		log.Error("vector dimension mismatch", zap.Error(err))
		writeError(w, http.StatusInternalServerError, ErrorCodeVectorDimMismatch, domain.ErrVectorDimMismatch.Error())
		return
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
