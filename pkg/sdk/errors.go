package discovery

import "github.com/kailas-cloud/discovery/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrProductNotFound        = domain.ErrProductNotFound
	ErrVectorNotFound         = domain.ErrVectorNotFound
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrEmbeddingProviderError = domain.ErrEmbeddingProviderError
	ErrChatProviderError      = domain.ErrChatProviderError
	ErrIndexBusy              = domain.ErrIndexBusy
	ErrInvalidRequest         = domain.ErrInvalidRequest
)
