package llm

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

type OpenAIProvider struct {
	client *openai.Client
}

func NewOpenAIProvider(apiKey string) *OpenAIProvider {
	return &OpenAIProvider{client: openai.NewClient(apiKey)}
}

// NewOpenAIProviderWithBaseURL points the client at an OpenAI-compatible
// server such as Ollama or vLLM.
func NewOpenAIProviderWithBaseURL(apiKey, baseURL string) *OpenAIProvider {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = baseURL
	return &OpenAIProvider{client: openai.NewClientWithConfig(cfg)}
}

func (p *OpenAIProvider) Name() string { return "openai" }

func (p *OpenAIProvider) Models() []string {
	return []string{"gpt-4o-mini", "gpt-4o", "gpt-4-turbo", "gpt-3.5-turbo"}
}

func chatRequest(req Request) openai.ChatCompletionRequest {
	msgs := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	out := openai.ChatCompletionRequest{Model: req.Model, Messages: msgs}
	if req.Temperature > 0 {
		out.Temperature = float32(req.Temperature)
	}
	if req.MaxTokens > 0 {
		out.MaxTokens = req.MaxTokens
	}
	return out
}

func (p *OpenAIProvider) Complete(ctx context.Context, req Request) (*Completion, error) {
	start := time.Now()

	resp, err := p.client.CreateChatCompletion(ctx, chatRequest(req))
	if err != nil {
		return nil, fmt.Errorf("openai chat: %w", err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return nil, fmt.Errorf("openai %s: %w", resp.Model, ErrEmptyCompletion)
	}
	choice := resp.Choices[0]

	u := resp.Usage
	return &Completion{
		ID:           resp.ID,
		Provider:     p.Name(),
		Model:        resp.Model,
		Content:      choice.Message.Content,
		InputTokens:  u.PromptTokens,
		OutputTokens: u.CompletionTokens,
		TotalTokens:  u.TotalTokens,
		CostUSD:      CalculateCost(req.Model, u.PromptTokens, u.CompletionTokens),
		LatencyMs:    time.Since(start).Milliseconds(),
		Truncated:    choice.FinishReason == openai.FinishReasonLength,
	}, nil
}
