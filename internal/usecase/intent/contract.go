package intent

import (
	"context"

	"github.com/kailas-cloud/discovery/internal/domain"
)

// Completer is the chat-completion dependency.
type Completer interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.Completion, error)
}
