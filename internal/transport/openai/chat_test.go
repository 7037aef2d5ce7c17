package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/discovery/internal/domain"
)

type chatRequestBody struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
	MaxTokens      int `json:"max_tokens"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format"`
}

func chatServer(t *testing.T, check func(chatRequestBody), choices ...string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var body chatRequestBody
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if check != nil {
			check(body)
		}

		out := make([]map[string]any, 0, len(choices))
		for i, c := range choices {
			out = append(out, map[string]any{
				"index":         i,
				"message":       map[string]any{"role": "assistant", "content": c},
				"finish_reason": "stop",
			})
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"model":   "chat-model",
			"choices": out,
			"usage":   map[string]any{"prompt_tokens": 12, "completion_tokens": 7, "total_tokens": 19},
		})
	}))
}

func newTestCompleter(url string) *Completer {
	return NewCompleter(&Config{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "chat-model",
		Logger:  zap.NewNop(),
	})
}

func TestCompleter_Complete(t *testing.T) {
	server := chatServer(t, func(body chatRequestBody) {
		if body.Model != "chat-model" {
			t.Errorf("unexpected model: %s", body.Model)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Content != "hi" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		if body.MaxTokens != 200 {
			t.Errorf("expected max_tokens 200, got %d", body.MaxTokens)
		}
		if body.ResponseFormat == nil || body.ResponseFormat.Type != "json_object" {
			t.Errorf("expected json_object response format, got %+v", body.ResponseFormat)
		}
	}, `{"crop":"wheat"}`, `ignored`)
	defer server.Close()

	got, err := newTestCompleter(server.URL).Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.ChatMessage{
			{Role: domain.RoleSystem, Content: "extract"},
			{Role: domain.RoleUser, Content: "hi"},
		},
		MaxTokens: 200,
		JSON:      true,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if got.Content != `{"crop":"wheat"}` {
		t.Errorf("expected first choice, got %q", got.Content)
	}
	if got.PromptTokens != 12 || got.CompletionTokens != 7 {
		t.Errorf("unexpected usage: %+v", got)
	}
}

func TestCompleter_NoResponseFormatByDefault(t *testing.T) {
	server := chatServer(t, func(body chatRequestBody) {
		if body.ResponseFormat != nil {
			t.Errorf("expected no response_format, got %+v", body.ResponseFormat)
		}
	}, "plain")
	defer server.Close()

	if _, err := newTestCompleter(server.URL).Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "x"}},
	}); err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
}

func TestCompleter_EmptyChoices(t *testing.T) {
	server := chatServer(t, nil)
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "x"}},
	})
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Fatalf("expected chat provider error, got %v", err)
	}
}

func TestCompleter_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":{"message":"boom","type":"server_error"}}`))
	}))
	defer server.Close()

	_, err := newTestCompleter(server.URL).Complete(context.Background(), domain.CompletionRequest{
		Messages: []domain.ChatMessage{{Role: domain.RoleUser, Content: "x"}},
	})
	if !errors.Is(err, domain.ErrChatProviderError) {
		t.Fatalf("expected chat provider error, got %v", err)
	}
	if errors.Is(err, domain.ErrEmbeddingProviderError) {
		t.Error("chat errors must not carry the embedding sentinel")
	}
}
