package audio

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Engine is the decode/render capability the mixer depends on.
type Engine interface {
	Decode(ctx context.Context, data []byte) (*Clip, error)
	RenderOffline(ctx context.Context, g *Graph) (*Clip, error)
}

// Source is one gain-weighted input of a render graph.
type Source struct {
	Clip *Clip
	Gain *Envelope
	Loop bool
	// Stop silences the source from this time (seconds). Zero plays to the end.
	Stop float64
}

// Graph describes an offline render: output layout plus its sources.
type Graph struct {
	SampleRate int
	Channels   int
	Frames     int
	Sources    []Source
}

// FramesFor returns the frame count covering seconds at rate.
func FramesFor(seconds float64, rate int) int {
	if seconds <= 0 || rate <= 0 {
		return 0
	}
	return int(math.Ceil(seconds * float64(rate)))
}

// OfflineEngine decodes WAV and MP3 and renders graphs in memory.
type OfflineEngine struct {
	// blockFrames is the render granularity between context checks.
	blockFrames int
}

func NewOfflineEngine() *OfflineEngine {
	return &OfflineEngine{blockFrames: 8192}
}

func (e *OfflineEngine) Decode(ctx context.Context, data []byte) (*Clip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch sniff(data) {
	case FormatWAV:
		return decodeWAV(data)
	case FormatMP3:
		return decodeMP3(data)
	default:
		return nil, ErrUnknownFormat
	}
}

func (e *OfflineEngine) RenderOffline(ctx context.Context, g *Graph) (*Clip, error) {
	if g.SampleRate <= 0 || g.Channels <= 0 || g.Frames < 0 {
		return nil, fmt.Errorf("invalid graph: rate=%d channels=%d frames=%d", g.SampleRate, g.Channels, g.Frames)
	}

	out := make([][]float32, g.Channels)
	for ch := range out {
		out[ch] = make([]float32, g.Frames)
	}

	for _, src := range g.Sources {
		if src.Clip == nil {
			return nil, errors.New("render source has no clip")
		}
		if err := e.renderSource(ctx, g, src, out); err != nil {
			return nil, err
		}
	}

	return wrapClip(g.SampleRate, out), nil
}

func (e *OfflineEngine) renderSource(ctx context.Context, g *Graph, src Source, out [][]float32) error {
	clip := src.Clip
	frames := clip.Frames()
	if frames == 0 {
		return nil
	}

	block := e.blockFrames
	if block <= 0 {
		block = 8192
	}
	step := float64(clip.SampleRate()) / float64(g.SampleRate)
	rate := float64(g.SampleRate)

	for i := 0; i < g.Frames; i++ {
		if i%block == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		t := float64(i) / rate
		if src.Stop > 0 && t >= src.Stop {
			return nil
		}

		pos := float64(i) * step
		if !src.Loop && pos >= float64(frames) {
			return nil
		}

		gain := 1.0
		if src.Gain != nil {
			gain = src.Gain.ValueAt(t)
		}

		for ch := range out {
			s := sampleAt(clip, sourceChannel(clip, ch), pos, src.Loop)
			out[ch][i] += float32(float64(s) * gain)
		}
	}
	return nil
}

// sourceChannel maps an output channel onto the clip: mono feeds every
// output, extra outputs reuse the clip's last channel.
func sourceChannel(c *Clip, outCh int) int {
	n := c.NumChannels()
	if outCh < n {
		return outCh
	}
	return n - 1
}

// sampleAt reads position pos (in clip frames) with linear interpolation.
func sampleAt(c *Clip, ch int, pos float64, loop bool) float32 {
	frames := c.Frames()
	i0 := int(pos)
	frac := pos - float64(i0)
	i1 := i0 + 1
	if loop {
		i0 %= frames
		i1 %= frames
	} else if i1 >= frames {
		i1 = i0
	}
	a := c.channels[ch][i0]
	if frac == 0 {
		return a
	}
	b := c.channels[ch][i1]
	return a + (b-a)*float32(frac)
}
