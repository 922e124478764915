package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"

	"github.com/nikhilbhutani/listenloved/internal/config"
)

// VoiceFade selects how the speech track's gain behaves.
type VoiceFade int

const (
	// VoiceConstant holds the voice at unity gain for the whole speech.
	VoiceConstant VoiceFade = iota
	// VoiceFadeOut ramps the voice down over FadeSeconds, ending at speech end.
	VoiceFadeOut
)

// FadeAnchor selects the point the music fade window is measured back from.
type FadeAnchor int

const (
	// FadeAnchorOutputEnd fades over the last FadeSeconds of the output.
	FadeAnchorOutputEnd FadeAnchor = iota
	// FadeAnchorSpeechEnd starts fading FadeSeconds before the speech ends
	// and keeps ramping through the tail.
	FadeAnchorSpeechEnd
)

// ParseVoiceFade accepts "constant" and "fade-out".
func ParseVoiceFade(s string) (VoiceFade, error) {
	switch s {
	case "", "constant":
		return VoiceConstant, nil
	case "fade-out", "fadeout":
		return VoiceFadeOut, nil
	}
	return VoiceConstant, fmt.Errorf("unknown voice fade policy %q", s)
}

// ParseFadeAnchor accepts "output-end" and "speech-end".
func ParseFadeAnchor(s string) (FadeAnchor, error) {
	switch s {
	case "", "output-end":
		return FadeAnchorOutputEnd, nil
	case "speech-end":
		return FadeAnchorSpeechEnd, nil
	}
	return FadeAnchorOutputEnd, fmt.Errorf("unknown fade anchor %q", s)
}

type MixConfig struct {
	TailSeconds float64
	FadeSeconds float64
	// FadeFloor is where ramps end; kept above zero so the curve also
	// works with exponential ramps.
	FadeFloor  float64
	VoiceFade  VoiceFade
	FadeAnchor FadeAnchor
}

func DefaultMixConfig() MixConfig {
	return MixConfig{
		TailSeconds: 5,
		FadeSeconds: 2,
		FadeFloor:   0.001,
		VoiceFade:   VoiceConstant,
		FadeAnchor:  FadeAnchorOutputEnd,
	}
}

// MixConfigFrom applies the environment's mixer settings over the defaults.
func MixConfigFrom(c config.MixerConfig) (MixConfig, error) {
	cfg := DefaultMixConfig()
	if c.TailSeconds > 0 {
		cfg.TailSeconds = c.TailSeconds
	}
	if c.FadeSeconds > 0 {
		cfg.FadeSeconds = c.FadeSeconds
	}
	var err error
	if c.VoiceFade != "" {
		if cfg.VoiceFade, err = ParseVoiceFade(c.VoiceFade); err != nil {
			return cfg, err
		}
	}
	if c.FadeAnchor != "" {
		if cfg.FadeAnchor, err = ParseFadeAnchor(c.FadeAnchor); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

// Loader resolves a background-music identifier to its bytes.
type Loader interface {
	Load(ctx context.Context, id string) (io.ReadCloser, error)
}

// MusicGainCeiling is the music gain at volume 1.0: half native amplitude.
const MusicGainCeiling = 0.5

// EffectiveMusicGain clamps volume to [0, 1] and scales it to [0, 0.5].
func EffectiveMusicGain(volume float64) float64 {
	if math.IsNaN(volume) || volume < 0 {
		volume = 0
	} else if volume > 1 {
		volume = 1
	}
	return volume * MusicGainCeiling
}

// Timeline is the planned gain schedule of one mix.
type Timeline struct {
	SpeechDuration float64
	OutputDuration float64
	MusicGain      float64
	MusicFadeStart float64
	MusicFadeEnd   float64
	Voice          *Envelope
	Music          *Envelope
}

type MixRequest struct {
	Speech       []byte
	SpeechFormat Format
	Music        string
	Volume       float64
}

// Result is what gets delivered: the mixed WAV, or the untouched speech when
// no music was requested or mixing failed.
type Result struct {
	Audio    []byte
	Format   Format
	Mixed    bool
	Duration float64
	// Warning is set when mixing was requested but degraded to voice-only.
	Warning error
}

type Mixer struct {
	engine Engine
	loader Loader
	cfg    MixConfig
}

func NewMixer(engine Engine, loader Loader, cfg MixConfig) *Mixer {
	if cfg.TailSeconds < 0 {
		cfg.TailSeconds = 0
	}
	if cfg.FadeSeconds < 0 {
		cfg.FadeSeconds = 0
	}
	if cfg.FadeFloor <= 0 {
		cfg.FadeFloor = 0.001
	}
	return &Mixer{engine: engine, loader: loader, cfg: cfg}
}

// Plan builds the voice and music envelopes for a speech of the given length.
func (m *Mixer) Plan(speechDuration, volume float64) Timeline {
	if math.IsNaN(speechDuration) || speechDuration < 0 {
		speechDuration = 0
	}
	output := speechDuration + m.cfg.TailSeconds
	level := EffectiveMusicGain(volume)

	anchor := output
	if m.cfg.FadeAnchor == FadeAnchorSpeechEnd {
		anchor = speechDuration
	}
	fadeStart := math.Max(anchor-m.cfg.FadeSeconds, 0)

	voice := NewEnvelope(1).SetValueAt(1, 0)
	if m.cfg.VoiceFade == VoiceFadeOut {
		voice.SetValueAt(1, math.Max(speechDuration-m.cfg.FadeSeconds, 0))
		voice.LinearRampTo(m.cfg.FadeFloor, speechDuration)
	}

	music := NewEnvelope(level).
		SetValueAt(level, 0).
		SetValueAt(level, fadeStart).
		LinearRampTo(m.cfg.FadeFloor, output)

	return Timeline{
		SpeechDuration: speechDuration,
		OutputDuration: output,
		MusicGain:      level,
		MusicFadeStart: fadeStart,
		MusicFadeEnd:   output,
		Voice:          voice,
		Music:          music,
	}
}

// Render mixes speech over looped music into a stereo clip at the speech's
// sample rate.
func (m *Mixer) Render(ctx context.Context, speech, music *Clip, volume float64) (*Clip, Timeline, error) {
	tl := m.Plan(speech.Duration(), volume)

	rate := speech.SampleRate()
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	g := &Graph{
		SampleRate: rate,
		Channels:   MixChannels,
		Frames:     FramesFor(tl.OutputDuration, rate),
		Sources: []Source{
			{Clip: speech, Gain: tl.Voice},
		},
	}
	if music != nil {
		g.Sources = append(g.Sources, Source{Clip: music, Gain: tl.Music, Loop: true, Stop: tl.OutputDuration})
	}

	out, err := m.engine.RenderOffline(ctx, g)
	if err != nil {
		return nil, tl, fmt.Errorf("render mix: %w", err)
	}
	return out, tl, nil
}

// Mix decodes both tracks, renders and encodes the WAV. A speech failure is
// returned as an error; anything that goes wrong with the music degrades to
// the speech-only Result with Warning set.
func (m *Mixer) Mix(ctx context.Context, req MixRequest) (*Result, error) {
	if len(req.Speech) == 0 {
		return nil, ErrNoSpeech
	}
	speechFormat := req.SpeechFormat
	if speechFormat == "" {
		speechFormat = FormatMP3
	}
	voiceOnly := &Result{Audio: req.Speech, Format: speechFormat}

	if req.Music == "" {
		return voiceOnly, nil
	}

	type decoded struct {
		clip *Clip
		err  error
	}
	musicCh := make(chan decoded, 1)
	go func() {
		clip, err := m.loadMusic(ctx, req.Music)
		musicCh <- decoded{clip, err}
	}()

	speech, err := m.engine.Decode(ctx, req.Speech)
	if err != nil {
		<-musicCh
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &DecodeError{Source: "speech", Err: err}
	}
	voiceOnly.Duration = speech.Duration()

	md := <-musicCh
	if md.err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return degrade(voiceOnly, req.Music, md.err), nil
	}

	mixed, tl, err := m.Render(ctx, speech, md.clip, req.Volume)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return degrade(voiceOnly, req.Music, err), nil
	}

	wav, err := EncodeWAV(mixed)
	if err != nil {
		return nil, err
	}

	slog.Debug("mixed background music",
		"track", req.Music,
		"speech_seconds", tl.SpeechDuration,
		"output_seconds", tl.OutputDuration,
		"music_gain", tl.MusicGain,
	)
	return &Result{Audio: wav, Format: FormatWAV, Mixed: true, Duration: tl.OutputDuration}, nil
}

func (m *Mixer) loadMusic(ctx context.Context, id string) (*Clip, error) {
	if m.loader == nil {
		return nil, errors.New("no music loader configured")
	}
	rc, err := m.loader.Load(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load music %s: %w", id, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read music %s: %w", id, err)
	}
	clip, err := m.engine.Decode(ctx, data)
	if err != nil {
		return nil, &DecodeError{Source: id, Err: err}
	}
	return clip, nil
}

func degrade(voiceOnly *Result, track string, cause error) *Result {
	slog.Warn("falling back to voice-only audio", "track", track, "error", cause)
	voiceOnly.Warning = fmt.Errorf("%w: %w", ErrMixUnavailable, cause)
	return voiceOnly
}
