// Package tts renders scripts to speech through OpenAI or a local Piper
// binary, optionally through a Redis-backed audio cache.
package tts

import (
	"context"
	"errors"
	"strings"

	"github.com/nikhilbhutani/listenloved/internal/audio"
)

var (
	ErrEmptyInput   = errors.New("tts: input text is empty")
	ErrUnknownVoice = errors.New("tts: unknown voice")
)

// SynthesisRequest holds the parameters for text-to-speech generation.
type SynthesisRequest struct {
	Input string  `json:"input"`
	Voice string  `json:"voice,omitempty"`
	Speed float64 `json:"speed,omitempty"`
}

// SynthesisResult holds the generated audio and its container.
type SynthesisResult struct {
	Audio  []byte
	Format audio.Format
	// Cached is set when the audio came from the cache.
	Cached bool
}

func (r *SynthesisResult) ContentType() string { return r.Format.MIMEType() }

type Provider interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error)
	Name() string
}

// normalize resolves the default voice and rejects unusable requests.
func normalize(req SynthesisRequest) (SynthesisRequest, error) {
	if strings.TrimSpace(req.Input) == "" {
		return req, ErrEmptyInput
	}
	if req.Voice == "" {
		req.Voice = DefaultVoice
	}
	if _, ok := LookupVoice(req.Voice); !ok {
		return req, ErrUnknownVoice
	}
	return req, nil
}
