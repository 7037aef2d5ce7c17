package domain

import "errors"

var (
	// ErrProductNotFound signals a missing catalog product.
	ErrProductNotFound = errors.New("product not found")
	// ErrVectorNotFound signals that a product has no vector record yet.
	ErrVectorNotFound = errors.New("vector record not found")
	// ErrVectorDimMismatch signals that two vectors of different length were compared.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrChatProviderError signals a chat-completion provider failure.
	ErrChatProviderError = errors.New("chat provider error")
	// ErrEmptyCompletion signals a chat completion without choices.
	ErrEmptyCompletion = errors.New("empty completion")
	// ErrIndexBusy signals that an index rebuild is already running.
	ErrIndexBusy = errors.New("index rebuild already in progress")
	// ErrInvalidRequest signals a malformed caller request.
	ErrInvalidRequest = errors.New("invalid request")
)
