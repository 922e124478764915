package tts

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/nikhilbhutani/listenloved/internal/usage"
)

// pricePerKChar is the USD price per 1000 input characters.
var pricePerKChar = map[string]float64{
	"tts-1":    0.015,
	"tts-1-hd": 0.030,
}

// SpeechCost estimates one synthesis. Unknown models, local Piper voices
// included, cost 0.
func SpeechCost(model string, chars int) float64 {
	return float64(chars) / 1000.0 * pricePerKChar[model]
}

// Metered records every synthesis that reaches the backend. Wrap it inside
// Cached so cache hits are not billed.
type Metered struct {
	next     Provider
	recorder usage.Recorder
	model    string
	now      func() time.Time
}

func NewMetered(next Provider, recorder usage.Recorder, model string) *Metered {
	return &Metered{next: next, recorder: recorder, model: model, now: time.Now}
}

func (m *Metered) Name() string { return m.next.Name() }

func (m *Metered) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	start := m.now()
	res, err := m.next.Synthesize(ctx, req)
	chars := utf8.RuneCountInString(req.Input)
	r := usage.Record{
		Provider:  m.next.Name(),
		Model:     m.model,
		Endpoint:  "tts",
		LatencyMs: m.now().Sub(start).Milliseconds(),
		Success:   err == nil,
		CreatedAt: m.now(),
	}
	if err == nil {
		r.CostUSD = SpeechCost(m.model, chars)
	}
	if rerr := m.recorder.Record(context.WithoutCancel(ctx), r); rerr != nil {
		slog.Warn("record tts usage", "provider", r.Provider, "error", rerr)
	}
	return res, err
}
