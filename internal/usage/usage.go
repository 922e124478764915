// Package usage accounts for LLM calls: tokens, estimated cost and latency
// per provider and model.
package usage

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Record is one completed (or failed) LLM call.
type Record struct {
	Provider     string
	Model        string
	Endpoint     string
	InputTokens  int
	OutputTokens int
	TotalTokens  int
	CostUSD      float64
	LatencyMs    int64
	Success      bool
	CreatedAt    time.Time
}

type Recorder interface {
	Record(ctx context.Context, r Record) error
}

// Window bounds a summary query. Zero times are open ends.
type Window struct {
	Since time.Time
	Until time.Time
}

func (w Window) contains(t time.Time) bool {
	if !w.Since.IsZero() && t.Before(w.Since) {
		return false
	}
	if !w.Until.IsZero() && t.After(w.Until) {
		return false
	}
	return true
}

type Summary struct {
	Provider     string  `json:"provider"`
	Model        string  `json:"model"`
	Calls        int     `json:"total_calls"`
	Failures     int     `json:"failed_calls"`
	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	TotalTokens  int     `json:"total_tokens"`
	CostUSD      float64 `json:"total_cost_usd"`
}

type Summarizer interface {
	Summarize(ctx context.Context, w Window) ([]Summary, error)
}

// Memory keeps records in process. It backs the API when no database is
// configured.
type Memory struct {
	mu      sync.Mutex
	records []Record
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) Record(_ context.Context, r Record) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.mu.Lock()
	m.records = append(m.records, r)
	m.mu.Unlock()
	return nil
}

func (m *Memory) Summarize(_ context.Context, w Window) ([]Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var in []Record
	for _, r := range m.records {
		if w.contains(r.CreatedAt) {
			in = append(in, r)
		}
	}
	return Aggregate(in), nil
}

// Aggregate groups records by provider and model, most expensive first.
func Aggregate(records []Record) []Summary {
	type key struct{ provider, model string }
	byKey := make(map[key]*Summary)
	for _, r := range records {
		k := key{r.Provider, r.Model}
		s, ok := byKey[k]
		if !ok {
			s = &Summary{Provider: r.Provider, Model: r.Model}
			byKey[k] = s
		}
		s.Calls++
		if !r.Success {
			s.Failures++
		}
		s.InputTokens += r.InputTokens
		s.OutputTokens += r.OutputTokens
		s.TotalTokens += r.TotalTokens
		s.CostUSD += r.CostUSD
	}

	out := make([]Summary, 0, len(byKey))
	for _, s := range byKey {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CostUSD != out[j].CostUSD {
			return out[i].CostUSD > out[j].CostUSD
		}
		if out[i].Provider != out[j].Provider {
			return out[i].Provider < out[j].Provider
		}
		return out[i].Model < out[j].Model
	})
	return out
}
