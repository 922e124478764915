package tts

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/nikhilbhutani/listenloved/internal/config"
	"github.com/nikhilbhutani/listenloved/internal/usage"
)

var ErrNotConfigured = errors.New("tts: backend not configured")

// New builds the backend named by cfg.Backend. A non-nil recorder meters
// backend calls, and a non-nil store with a TTL puts the audio cache in
// front of both.
func New(cfg config.TTSConfig, store BlobStore, recorder usage.Recorder) (Provider, error) {
	var (
		p     Provider
		model string
	)
	switch cfg.Backend {
	case "", "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: OPENAI_API_KEY is required for the openai backend", ErrNotConfigured)
		}
		o := NewOpenAI(OpenAIConfig{APIKey: cfg.OpenAIKey, BaseURL: cfg.OpenAIBaseURL, Model: cfg.OpenAIModel})
		p, model = o, o.Model()
	case "local", "piper":
		if cfg.LocalModel == "" {
			return nil, fmt.Errorf("%w: TTS_LOCAL_PIPER_MODEL is required for the local backend", ErrNotConfigured)
		}
		p = NewPiper(PiperConfig{BinPath: cfg.LocalBinPath, ModelPath: cfg.LocalModel, SampleRate: cfg.LocalSampleRate})
		model = filepath.Base(cfg.LocalModel)
	default:
		return nil, fmt.Errorf("unknown tts backend %q", cfg.Backend)
	}

	if recorder != nil {
		p = NewMetered(p, recorder, model)
	}
	if store != nil && cfg.CacheTTLMinutes > 0 {
		p = NewCached(p, store, time.Duration(cfg.CacheTTLMinutes)*time.Minute)
	}
	return p, nil
}

// Unavailable stands in when no backend could be configured; every call
// fails with Err.
type Unavailable struct {
	Err error
}

func (u Unavailable) Name() string { return "unavailable" }

func (u Unavailable) Synthesize(context.Context, SynthesisRequest) (*SynthesisResult, error) {
	return nil, u.Err
}
