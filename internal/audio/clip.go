package audio

import (
	"errors"
	"fmt"
)

// Clip is decoded PCM: one float32 slice per channel, samples in [-1, 1].
// A Clip is never modified after construction.
type Clip struct {
	sampleRate int
	channels   [][]float32
}

// NewClip validates and copies channel data into a Clip.
func NewClip(sampleRate int, channels [][]float32) (*Clip, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if len(channels) == 0 {
		return nil, errors.New("clip needs at least one channel")
	}
	frames := len(channels[0])
	copied := make([][]float32, len(channels))
	for i, ch := range channels {
		if len(ch) != frames {
			return nil, fmt.Errorf("channel %d has %d frames, want %d", i, len(ch), frames)
		}
		copied[i] = append([]float32(nil), ch...)
	}
	return &Clip{sampleRate: sampleRate, channels: copied}, nil
}

// wrapClip takes ownership of channels without copying. Callers must not
// keep references to the slices.
func wrapClip(sampleRate int, channels [][]float32) *Clip {
	return &Clip{sampleRate: sampleRate, channels: channels}
}

func (c *Clip) SampleRate() int  { return c.sampleRate }
func (c *Clip) NumChannels() int { return len(c.channels) }

// Frames is the number of samples per channel.
func (c *Clip) Frames() int {
	if len(c.channels) == 0 {
		return 0
	}
	return len(c.channels[0])
}

// Duration in seconds.
func (c *Clip) Duration() float64 {
	return float64(c.Frames()) / float64(c.sampleRate)
}

// Sample returns one sample; out-of-range indexes read as silence.
func (c *Clip) Sample(ch, i int) float32 {
	if ch < 0 || ch >= len(c.channels) || i < 0 || i >= len(c.channels[ch]) {
		return 0
	}
	return c.channels[ch][i]
}

// Channel returns a copy of one channel's samples.
func (c *Clip) Channel(ch int) []float32 {
	if ch < 0 || ch >= len(c.channels) {
		return nil
	}
	return append([]float32(nil), c.channels[ch]...)
}

// PCM16ToClip converts interleaved little-endian signed 16-bit PCM. A
// trailing partial frame is dropped.
func PCM16ToClip(pcm []byte, sampleRate, numChannels int) (*Clip, error) {
	if numChannels <= 0 {
		return nil, fmt.Errorf("invalid channel count %d", numChannels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	frameBytes := 2 * numChannels
	frames := len(pcm) / frameBytes
	channels := make([][]float32, numChannels)
	for ch := range channels {
		channels[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numChannels; ch++ {
			off := i*frameBytes + ch*2
			s := int16(uint16(pcm[off]) | uint16(pcm[off+1])<<8)
			channels[ch][i] = float32(s) / 32768
		}
	}
	return wrapClip(sampleRate, channels), nil
}
