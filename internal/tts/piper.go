package tts

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/nikhilbhutani/listenloved/internal/audio"
)

// PiperConfig holds configuration for the local Piper TTS backend.
type PiperConfig struct {
	BinPath   string // default: "piper"
	ModelPath string // required: path to the .onnx voice model
	// SampleRate of the model's raw output; default 22050.
	SampleRate int
}

// Piper synthesizes speech with the Piper binary. The voice is fixed by the
// model file, so every catalog voice maps onto it.
type Piper struct {
	cfg PiperConfig
}

func NewPiper(cfg PiperConfig) *Piper {
	if cfg.BinPath == "" {
		cfg.BinPath = "piper"
	}
	if cfg.SampleRate <= 0 {
		cfg.SampleRate = 22050
	}
	return &Piper{cfg: cfg}
}

func (p *Piper) Name() string { return "piper" }

// Synthesize pipes text into Piper and wraps its raw mono PCM in a WAV
// container.
func (p *Piper) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	if p.cfg.ModelPath == "" {
		return nil, errors.New("piper model path is required (set TTS_LOCAL_PIPER_MODEL)")
	}
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}

	args := []string{"--model", p.cfg.ModelPath, "--output-raw"}
	if req.Speed > 0 {
		// Piper's length scale is the inverse of speaking rate.
		args = append(args, "--length_scale", fmt.Sprintf("%.3f", 1/req.Speed))
	}
	cmd := exec.CommandContext(ctx, p.cfg.BinPath, args...)
	cmd.Stdin = strings.NewReader(req.Input)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("piper failed: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	clip, err := audio.PCM16ToClip(stdout.Bytes(), p.cfg.SampleRate, 1)
	if err != nil {
		return nil, fmt.Errorf("piper output: %w", err)
	}
	wav, err := audio.EncodeWAV(clip)
	if err != nil {
		return nil, err
	}
	return &SynthesisResult{Audio: wav, Format: audio.FormatWAV}, nil
}
