package discovery

import (
	"context"

	"github.com/kailas-cloud/discovery/internal/domain/catalog"
	discoveryuc "github.com/kailas-cloud/discovery/internal/usecase/discovery"
	healthuc "github.com/kailas-cloud/discovery/internal/usecase/health"
	indexuc "github.com/kailas-cloud/discovery/internal/usecase/index"
)

// --- discoveryUseCase mock ---

type mockDiscoveryUC struct {
	askFn     func(ctx context.Context, query string, k int) (discoveryuc.AskResult, error)
	chatFn    func(ctx context.Context, message string) (discoveryuc.ChatResult, error)
	similarFn func(ctx context.Context, productID string, k int) ([]catalog.Candidate, error)
}

func (m *mockDiscoveryUC) Ask(ctx context.Context, query string, k int) (discoveryuc.AskResult, error) {
	return m.askFn(ctx, query, k)
}

func (m *mockDiscoveryUC) Chat(ctx context.Context, message string) (discoveryuc.ChatResult, error) {
	return m.chatFn(ctx, message)
}

func (m *mockDiscoveryUC) Similar(ctx context.Context, productID string, k int) ([]catalog.Candidate, error) {
	return m.similarFn(ctx, productID, k)
}

// --- indexUseCase mock ---

type mockIndexUC struct {
	rebuildFn func(ctx context.Context) (indexuc.Report, error)
	upsertFn  func(ctx context.Context, id string) (catalog.VectorRecord, error)
}

func (m *mockIndexUC) Rebuild(ctx context.Context) (indexuc.Report, error) {
	return m.rebuildFn(ctx)
}

func (m *mockIndexUC) UpsertProduct(ctx context.Context, id string) (catalog.VectorRecord, error) {
	return m.upsertFn(ctx, id)
}

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report {
	return m.report
}

// --- public provider mocks ---

type mockEmbedder struct {
	fn func(ctx context.Context, text string) (EmbeddingResult, error)
}

func (m *mockEmbedder) Embed(ctx context.Context, text string) (EmbeddingResult, error) {
	return m.fn(ctx, text)
}

type mockBatchEmbedder struct {
	mockEmbedder
	batchFn func(ctx context.Context, texts []string) (BatchEmbeddingResult, error)
}

func (m *mockBatchEmbedder) BatchEmbed(ctx context.Context, texts []string) (BatchEmbeddingResult, error) {
	return m.batchFn(ctx, texts)
}

type mockCompleter struct {
	got CompletionRequest
	out string
	err error
}

func (m *mockCompleter) Complete(_ context.Context, req CompletionRequest) (string, error) {
	m.got = req
	return m.out, m.err
}

type checkingCompleter struct {
	mockCompleter
	healthErr error
}

func (c *checkingCompleter) HealthCheck(_ context.Context) error {
	return c.healthErr
}
