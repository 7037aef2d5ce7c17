package domain

import "context"

// Chat message roles.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

// ChatMessage is one turn of a chat-completion prompt.
type ChatMessage struct {
	Role    string
	Content string
}

// CompletionRequest describes a single chat-completion call.
type CompletionRequest struct {
	Messages    []ChatMessage
	Temperature float32
	MaxTokens   int
	// JSON asks the provider for a JSON object response when it supports it.
	JSON bool
}

// Completion is the first choice of a chat completion.
type Completion struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

// Completer produces chat completions.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (Completion, error)
}
