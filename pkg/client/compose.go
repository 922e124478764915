package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/script"
)

var ErrInvalidScript = errors.New("client: script failed validation")

type ComposeRequest struct {
	Script string
	Tone   string
	Voice  string
	// MusicFile is empty for voice-only output.
	MusicFile string
	// Volume is the music level in [0, 1].
	Volume float64
}

type Composition struct {
	Audio      []byte
	Format     audio.Format
	Mixed      bool
	Duration   float64
	Validation script.Validation
	// Warning is set when music was requested but the result is voice-only.
	Warning error
}

// Compose validates the script, has the API speak it and mixes the music
// underneath locally.
func (c *Client) Compose(ctx context.Context, req ComposeRequest) (*Composition, error) {
	v := script.Validate(req.Script, req.Tone)
	if !v.Valid {
		return nil, fmt.Errorf("%w: %s", ErrInvalidScript, v.Error)
	}
	if v.Warning != "" {
		slog.Warn("script validation", "tone", req.Tone, "warning", v.Warning)
	}

	speech, format, err := c.Speak(ctx, req.Script, req.Voice)
	if err != nil {
		return nil, fmt.Errorf("speak: %w", err)
	}

	res, err := c.mixer.Mix(ctx, audio.MixRequest{
		Speech:       speech,
		SpeechFormat: format,
		Music:        req.MusicFile,
		Volume:       req.Volume,
	})
	if err != nil {
		return nil, fmt.Errorf("mix: %w", err)
	}
	return &Composition{
		Audio:      res.Audio,
		Format:     res.Format,
		Mixed:      res.Mixed,
		Duration:   res.Duration,
		Validation: v,
		Warning:    res.Warning,
	}, nil
}
