package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discovery/internal/domain"
	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	"github.com/kailas-cloud/discovery/internal/domain/intent"
	"github.com/kailas-cloud/discovery/internal/domain/recommendation"
	discoveryuc "github.com/kailas-cloud/discovery/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/discovery/internal/usecase/health"
	indexuc "github.com/kailas-cloud/discovery/internal/usecase/index"
)

// --- Mocks ---

type mockDiscovery struct {
	askErr   error
	chatErr  error
	simErr   error
	gotQuery string
	gotK     int
	panicOn  bool
}

func (m *mockDiscovery) Ask(_ context.Context, query string, k int) (discoveryuc.AskResult, error) {
	if m.panicOn {
		panic("boom")
	}
	m.gotQuery, m.gotK = query, k
	if m.askErr != nil {
		return discoveryuc.AskResult{}, m.askErr
	}
	rec := recommendation.Empty(recommendation.NoteNoSuitable)
	return discoveryuc.AskResult{
		Query:          query,
		Candidates:     []catalog.Candidate{{Product: catalog.Product{ID: "p1", Title: "Urea"}, Score: 0.9}},
		Recommendation: &rec,
	}, nil
}

func (m *mockDiscovery) Chat(_ context.Context, message string) (discoveryuc.ChatResult, error) {
	if m.chatErr != nil {
		return discoveryuc.ChatResult{}, m.chatErr
	}
	return discoveryuc.ChatResult{
		Message:     message,
		Normalized:  "urea",
		Extraction:  intent.Degrade(message, "unavailable"),
		Terms:       []string{"urea"},
		MatchedTerm: "urea",
		Candidates:  []catalog.Candidate{{Product: catalog.Product{ID: "p1", Title: "Urea"}, Score: 5}},
		Recommendation: &recommendation.Result{
			Items: []recommendation.Item{{ID: "p1", Title: "Urea", ShortReason: "nitrogen"}},
		},
	}, nil
}

func (m *mockDiscovery) Similar(_ context.Context, id string, k int) ([]catalog.Candidate, error) {
	m.gotQuery, m.gotK = id, k
	if m.simErr != nil {
		return nil, m.simErr
	}
	return []catalog.Candidate{}, nil
}

type mockIndex struct {
	err error
}

func (m *mockIndex) Rebuild(context.Context) (indexuc.Report, error) {
	return indexuc.Report{Products: 17, Batches: 2, Indexed: 17, Duration: 1500 * time.Millisecond}, m.err
}

func (m *mockIndex) UpsertProduct(_ context.Context, id string) (catalog.VectorRecord, error) {
	if m.err != nil {
		return catalog.VectorRecord{}, m.err
	}
	return catalog.VectorRecord{ProductID: id, Vector: []float32{1, 2, 3}}, nil
}

type mockHealth struct {
	status healthuc.Status
}

func (m *mockHealth) Check(context.Context) healthuc.Report {
	return healthuc.Report{Status: m.status, Checks: map[string]healthuc.CheckResult{"database": healthuc.CheckOK}}
}

func newTestRouter(d *mockDiscovery, idx *mockIndex, h *mockHealth) http.Handler {
	if h == nil {
		h = &mockHealth{status: healthuc.Healthy}
	}
	return NewRouter(NewServer(d, idx, h, zap.NewNop()), zap.NewNop(), nil)
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeError(t *testing.T, rr *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var e errorResponse
	if err := json.NewDecoder(rr.Body).Decode(&e); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	return e
}

// --- Ask ---

func TestAsk_OK(t *testing.T) {
	d := &mockDiscovery{}
	rr := do(t, newTestRouter(d, &mockIndex{}, nil), "POST", "/v1/ask", `{"query":"سماد للقمح","top_k":3}`)

	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}
	if d.gotQuery != "سماد للقمح" || d.gotK != 3 {
		t.Errorf("unexpected call: %q k=%d", d.gotQuery, d.gotK)
	}
	if rr.Header().Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}

	var resp askResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if len(resp.Candidates) != 1 || resp.Candidates[0].ID != "p1" {
		t.Errorf("unexpected candidates: %+v", resp.Candidates)
	}
	if resp.Recommendation == nil || resp.Recommendation.Note != recommendation.NoteNoSuitable {
		t.Errorf("unexpected recommendation: %+v", resp.Recommendation)
	}
}

func TestAsk_Validation(t *testing.T) {
	h := newTestRouter(&mockDiscovery{}, &mockIndex{}, nil)
	tests := []struct {
		name string
		body string
		code ErrorCode
	}{
		{"malformed", `{`, ErrorCodeBadRequest},
		{"empty query", `{"query":"  "}`, ErrorCodeValidationFailed},
		{"zero top_k", `{"query":"q","top_k":0}`, ErrorCodeValidationFailed},
		{"huge top_k", fmt.Sprintf(`{"query":"q","top_k":%d}`, MaxTopK+1), ErrorCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := do(t, h, "POST", "/v1/ask", tt.body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("got %d, want 400", rr.Code)
			}
			if e := decodeError(t, rr); e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
		})
	}
}

func TestAsk_ErrorMapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   ErrorCode
	}{
		{"provider", fmt.Errorf("embed: %w", domain.ErrEmbeddingProviderError), http.StatusBadGateway, ErrorCodeProviderError},
		{"dimension", fmt.Errorf("rank: %w", domain.ErrVectorDimMismatch), http.StatusInternalServerError, ErrorCodeVectorDimMismatch},
		{"invalid", fmt.Errorf("x: %w", domain.ErrInvalidRequest), http.StatusBadRequest, ErrorCodeValidationFailed},
		{"unknown", errors.New("redis: connection reset"), http.StatusInternalServerError, ErrorCodeInternalError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(&mockDiscovery{askErr: tt.err}, &mockIndex{}, nil)
			rr := do(t, h, "POST", "/v1/ask", `{"query":"q"}`)
			if rr.Code != tt.status {
				t.Fatalf("got %d, want %d", rr.Code, tt.status)
			}
			e := decodeError(t, rr)
			if e.Code != tt.code {
				t.Errorf("code = %s, want %s", e.Code, tt.code)
			}
			if strings.Contains(e.Message, "redis") {
				t.Errorf("internal detail leaked: %q", e.Message)
			}
		})
	}
}

func TestAsk_PanicRecovered(t *testing.T) {
	rr := do(t, newTestRouter(&mockDiscovery{panicOn: true}, &mockIndex{}, nil), "POST", "/v1/ask", `{"query":"q"}`)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeInternalError {
		t.Errorf("code = %s", e.Code)
	}
}

// --- Chat ---

func TestChat_OK(t *testing.T) {
	rr := do(t, newTestRouter(&mockDiscovery{}, &mockIndex{}, nil), "POST", "/v1/chat", `{"message":"need urea"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d: %s", rr.Code, rr.Body.String())
	}

	var resp chatResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Intent.Degraded || resp.Intent.Reason != "unavailable" {
		t.Errorf("unexpected intent: %+v", resp.Intent)
	}
	if resp.MatchedTerm != "urea" || len(resp.Candidates) != 1 {
		t.Errorf("unexpected result: %+v", resp)
	}
	if resp.Recommendation == nil || resp.Recommendation.Items[0].ShortReason != "nitrogen" {
		t.Errorf("unexpected recommendation: %+v", resp.Recommendation)
	}
}

func TestChat_EmptyMessage(t *testing.T) {
	rr := do(t, newTestRouter(&mockDiscovery{}, &mockIndex{}, nil), "POST", "/v1/chat", `{"message":""}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", rr.Code)
	}
}

// --- Similar ---

func TestSimilar(t *testing.T) {
	d := &mockDiscovery{}
	h := newTestRouter(d, &mockIndex{}, nil)

	rr := do(t, h, "GET", "/v1/products/p1/similar?top_k=4", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	if d.gotQuery != "p1" || d.gotK != 4 {
		t.Errorf("unexpected call: %q k=%d", d.gotQuery, d.gotK)
	}
	if !strings.Contains(rr.Body.String(), `"candidates":[]`) {
		t.Errorf("expected empty candidates array, got %s", rr.Body.String())
	}

	if rr := do(t, h, "GET", "/v1/products/p1/similar?top_k=abc", ""); rr.Code != http.StatusBadRequest {
		t.Errorf("bad top_k: got %d", rr.Code)
	}
}

func TestSimilar_NotFound(t *testing.T) {
	for _, tt := range []struct {
		err  error
		code ErrorCode
	}{
		{domain.ErrProductNotFound, ErrorCodeProductNotFound},
		{domain.ErrVectorNotFound, ErrorCodeVectorNotFound},
	} {
		h := newTestRouter(&mockDiscovery{simErr: fmt.Errorf("similar: %w", tt.err)}, &mockIndex{}, nil)
		rr := do(t, h, "GET", "/v1/products/x/similar", "")
		if rr.Code != http.StatusNotFound {
			t.Fatalf("got %d, want 404", rr.Code)
		}
		if e := decodeError(t, rr); e.Code != tt.code {
			t.Errorf("code = %s, want %s", e.Code, tt.code)
		}
	}
}

// --- Index admin ---

func TestRebuildIndex(t *testing.T) {
	rr := do(t, newTestRouter(&mockDiscovery{}, &mockIndex{}, nil), "POST", "/v1/index/rebuild", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var resp rebuildResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.Products != 17 || resp.Batches != 2 || resp.Indexed != 17 || resp.DurationMs != 1500 {
		t.Errorf("unexpected report: %+v", resp)
	}
}

func TestRebuildIndex_Busy(t *testing.T) {
	rr := do(t, newTestRouter(&mockDiscovery{}, &mockIndex{err: domain.ErrIndexBusy}, nil), "POST", "/v1/index/rebuild", "")
	if rr.Code != http.StatusConflict {
		t.Fatalf("got %d, want 409", rr.Code)
	}
}

func TestUpsertProduct(t *testing.T) {
	h := newTestRouter(&mockDiscovery{}, &mockIndex{}, nil)
	rr := do(t, h, "PUT", "/v1/index/products/p9", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("got %d", rr.Code)
	}
	var resp upsertResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatal(err)
	}
	if resp.ProductID != "p9" || resp.Dimensions != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}

	h = newTestRouter(&mockDiscovery{}, &mockIndex{err: fmt.Errorf("get: %w", domain.ErrProductNotFound)}, nil)
	if rr := do(t, h, "PUT", "/v1/index/products/nope", ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing product: got %d, want 404", rr.Code)
	}
}

// --- Health & routing ---

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status healthuc.Status
		code   int
	}{
		{healthuc.Healthy, http.StatusOK},
		{healthuc.Degraded, http.StatusOK},
		{healthuc.Unhealthy, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			h := newTestRouter(&mockDiscovery{}, &mockIndex{}, &mockHealth{status: tt.status})
			rr := do(t, h, "GET", "/health", "")
			if rr.Code != tt.code {
				t.Fatalf("got %d, want %d", rr.Code, tt.code)
			}
			var resp healthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatal(err)
			}
			if resp.Status != string(tt.status) || resp.Checks["database"] != "ok" {
				t.Errorf("unexpected body: %+v", resp)
			}
		})
	}
}

func TestRouter_AuthAndUnknownRoutes(t *testing.T) {
	s := NewServer(&mockDiscovery{}, &mockIndex{}, &mockHealth{status: healthuc.Healthy}, zap.NewNop())
	h := NewRouter(s, zap.NewNop(), []string{"secret"})

	if rr := do(t, h, "POST", "/v1/index/rebuild", ""); rr.Code != http.StatusUnauthorized {
		t.Errorf("unauthenticated rebuild: got %d", rr.Code)
	}
	if rr := do(t, h, "GET", "/health", ""); rr.Code != http.StatusOK {
		t.Errorf("health must stay open: got %d", rr.Code)
	}
	if rr := do(t, h, "GET", "/metrics", ""); rr.Code != http.StatusOK {
		t.Errorf("metrics must stay open: got %d", rr.Code)
	}

	req := httptest.NewRequest("GET", "/v1/nope", http.NoBody)
	req.Header.Set("Authorization", "Bearer secret")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	if rr.Code != http.StatusNotFound {
		t.Errorf("unknown route: got %d", rr.Code)
	}
	if e := decodeError(t, rr); e.Code != ErrorCodeNotFound {
		t.Errorf("code = %s", e.Code)
	}
}
