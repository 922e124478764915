package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/nikhilbhutani/listenloved/internal/config"
	"github.com/nikhilbhutani/listenloved/internal/usage"
	"github.com/nikhilbhutani/listenloved/pkg/tokenizer"
)

type Gateway struct {
	providers        map[string]Provider
	defaultProvider  string
	defaultModel     string
	fallbackProvider string
	fallbackModel    string
	maxRetries       int
	recorder         usage.Recorder
	backoff          func(attempt int) time.Duration
}

// NewGateway registers a provider for every configured API key.
func NewGateway(cfg config.LLMConfig, recorder usage.Recorder) *Gateway {
	var providers []Provider
	switch {
	case cfg.OpenAIBaseURL != "":
		providers = append(providers, NewOpenAIProviderWithBaseURL(cfg.OpenAIKey, cfg.OpenAIBaseURL))
	case cfg.OpenAIKey != "":
		providers = append(providers, NewOpenAIProvider(cfg.OpenAIKey))
	}
	if cfg.AnthropicKey != "" {
		providers = append(providers, NewAnthropicProvider(cfg.AnthropicKey))
	}
	return NewGatewayWithProviders(cfg, recorder, providers...)
}

func NewGatewayWithProviders(cfg config.LLMConfig, recorder usage.Recorder, providers ...Provider) *Gateway {
	g := &Gateway{
		providers:        make(map[string]Provider),
		defaultProvider:  cfg.DefaultProvider,
		defaultModel:     cfg.DefaultModel,
		fallbackProvider: cfg.FallbackProvider,
		fallbackModel:    cfg.FallbackModel,
		maxRetries:       cfg.MaxRetries,
		recorder:         recorder,
		backoff:          quadraticBackoff,
	}
	for _, p := range providers {
		g.providers[p.Name()] = p
	}
	return g
}

func quadraticBackoff(attempt int) time.Duration {
	return time.Duration(attempt*attempt) * 500 * time.Millisecond
}

// Configured reports whether any provider is available.
func (g *Gateway) Configured() bool { return len(g.providers) > 0 }

func (g *Gateway) Provider(name string) (Provider, error) {
	p, ok := g.providers[name]
	if !ok {
		return nil, fmt.Errorf("provider %q not configured", name)
	}
	return p, nil
}

// Complete sends req to its provider (the default when unset), retrying, and
// then to the fallback provider with the fallback model.
func (g *Gateway) Complete(ctx context.Context, req Request) (*Completion, error) {
	if !g.Configured() {
		return nil, ErrNotConfigured
	}
	providerName := req.Provider
	if providerName == "" {
		providerName = g.defaultProvider
	}
	primary := req
	primary.Provider = providerName
	if primary.Model == "" {
		primary.Model = g.modelFor(providerName)
	}

	resp, err := g.completeWithRetry(ctx, primary)
	if err == nil || ctx.Err() != nil {
		return resp, err
	}
	if g.fallbackProvider == "" || g.fallbackProvider == providerName {
		return nil, err
	}

	slog.Warn("primary provider failed, trying fallback",
		"primary", providerName,
		"fallback", g.fallbackProvider,
		"error", err,
	)
	fb := req
	fb.Provider = g.fallbackProvider
	fb.Model = g.modelFor(g.fallbackProvider)
	resp, fbErr := g.completeWithRetry(ctx, fb)
	if fbErr != nil {
		return nil, errors.Join(err, fbErr)
	}
	return resp, nil
}

func (g *Gateway) modelFor(provider string) string {
	switch {
	case provider == g.defaultProvider && g.defaultModel != "":
		return g.defaultModel
	case provider == g.fallbackProvider && g.fallbackModel != "":
		return g.fallbackModel
	}
	if p, ok := g.providers[provider]; ok && len(p.Models()) > 0 {
		return p.Models()[0]
	}
	return ""
}

func (g *Gateway) completeWithRetry(ctx context.Context, req Request) (*Completion, error) {
	p, err := g.Provider(req.Provider)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= g.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(g.backoff(attempt)):
			}
			slog.Debug("retrying LLM call", "provider", req.Provider, "attempt", attempt)
		}

		resp, err := p.Complete(ctx, req)
		if err == nil {
			g.record(ctx, req, resp, time.Since(start))
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			break
		}
	}
	g.record(ctx, req, nil, time.Since(start))
	return nil, fmt.Errorf("all retries exhausted for %s: %w", req.Provider, lastErr)
}

func (g *Gateway) record(ctx context.Context, req Request, resp *Completion, elapsed time.Duration) {
	if g.recorder == nil {
		return
	}
	r := usage.Record{
		Provider:  req.Provider,
		Model:     req.Model,
		Endpoint:  req.Endpoint,
		LatencyMs: elapsed.Milliseconds(),
		CreatedAt: time.Now(),
	}
	if resp != nil {
		r.Success = true
		r.InputTokens = resp.InputTokens
		r.OutputTokens = resp.OutputTokens
		r.TotalTokens = resp.TotalTokens
		r.CostUSD = resp.CostUSD
		r.LatencyMs = resp.LatencyMs
		if r.TotalTokens == 0 {
			r.InputTokens, r.OutputTokens = estimateTokens(req, resp)
			r.TotalTokens = r.InputTokens + r.OutputTokens
		}
	}
	// Usage accounting must not fail the call it describes.
	if err := g.recorder.Record(context.WithoutCancel(ctx), r); err != nil {
		slog.Warn("record llm usage", "provider", r.Provider, "error", err)
	}
}

// estimateTokens covers providers that return no usage block.
func estimateTokens(req Request, resp *Completion) (input, output int) {
	for _, m := range req.Messages {
		input += tokenizer.Estimate(m.Content)
	}
	return input, tokenizer.Estimate(resp.Content)
}

func (g *Gateway) ListModels() []ModelInfo {
	var models []ModelInfo
	for _, p := range g.providers {
		for _, m := range p.Models() {
			models = append(models, ModelInfo{Provider: p.Name(), Model: m})
		}
	}
	sort.Slice(models, func(i, j int) bool {
		if models[i].Provider != models[j].Provider {
			return models[i].Provider < models[j].Provider
		}
		return models[i].Model < models[j].Model
	})
	return models
}
