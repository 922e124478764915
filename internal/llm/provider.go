// Package llm routes chat completions to OpenAI or Anthropic with retry,
// provider fallback and usage accounting.
package llm

import (
	"context"
	"errors"
)

var (
	ErrNotConfigured   = errors.New("llm: no provider configured")
	// ErrEmptyCompletion means the provider answered without any text.
	ErrEmptyCompletion = errors.New("llm: empty completion")
)

// Provider is a single chat-completion backend.
type Provider interface {
	Complete(ctx context.Context, req Request) (*Completion, error)
	Name() string
	Models() []string
}

// Message represents a single chat message.
type Message struct {
	Role    string `json:"role"` // system, user, assistant
	Content string `json:"content"`
}

func System(content string) Message { return Message{Role: "system", Content: content} }
func User(content string) Message   { return Message{Role: "user", Content: content} }

type Request struct {
	// Provider and Model are optional; the gateway fills in its defaults.
	Provider    string
	Model       string
	Messages    []Message
	Temperature float64
	MaxTokens   int
	// Endpoint labels the call in usage records (e.g. "generate-script").
	Endpoint string
}

type Completion struct {
	ID           string  `json:"id"`
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Content      string  `json:"content"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"cost_usd"`
	LatencyMs    int64   `json:"latency_ms"`
	// Truncated is set when generation stopped at the token limit.
	Truncated    bool    `json:"truncated,omitempty"`
}

// ModelInfo describes an available model.
type ModelInfo struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
}
