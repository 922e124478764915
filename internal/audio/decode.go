package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/hajimehoshi/go-mp3"
)

// sniff identifies the container from its leading bytes.
func sniff(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	default:
		return ""
	}
}

// decodeMP3 always yields stereo: go-mp3 emits 16-bit LE interleaved stereo.
func decodeMP3(data []byte) (*Clip, error) {
	d, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("mp3 decoder: %w", err)
	}
	pcm, err := io.ReadAll(d)
	if err != nil {
		return nil, fmt.Errorf("read mp3 pcm: %w", err)
	}
	rate := d.SampleRate()
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	return PCM16ToClip(pcm, rate, 2)
}

func decodeWAV(data []byte) (*Clip, error) {
	d := wav.NewDecoder(bytes.NewReader(data))
	if !d.IsValidFile() {
		return nil, errors.New("invalid wav file")
	}
	if d.WavAudioFormat != 1 {
		return nil, fmt.Errorf("unsupported wav format %d (only integer PCM)", d.WavAudioFormat)
	}

	buf, err := d.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read wav pcm: %w", err)
	}

	depth := buf.SourceBitDepth
	if depth == 0 {
		depth = int(d.BitDepth)
	}
	return intBufferToClip(buf, depth)
}

// intBufferToClip normalizes integer PCM of the given bit depth to [-1,1].
func intBufferToClip(buf *goaudio.IntBuffer, depth int) (*Clip, error) {
	if buf == nil || buf.Format == nil {
		return nil, errors.New("wav reports no format")
	}
	numCh := buf.Format.NumChannels
	rate := buf.Format.SampleRate
	if numCh <= 0 {
		return nil, errors.New("wav reports no channels")
	}
	if rate <= 0 {
		rate = DefaultSampleRate
	}
	if depth <= 0 || depth > 32 {
		return nil, fmt.Errorf("unsupported wav bit depth %d", depth)
	}
	scale := float32(int64(1) << (depth - 1))
	// 8-bit WAV is unsigned.
	var offset float32
	if depth == 8 {
		offset = 128
	}

	frames := len(buf.Data) / numCh
	channels := make([][]float32, numCh)
	for ch := range channels {
		channels[ch] = make([]float32, frames)
	}
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numCh; ch++ {
			channels[ch][i] = (float32(buf.Data[i*numCh+ch]) - offset) / scale
		}
	}
	return wrapClip(rate, channels), nil
}
