package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

const wavHeaderSize = 44

// EncodeWAV serializes a clip as canonical 16-bit PCM WAV.
func EncodeWAV(c *Clip) ([]byte, error) {
	if c == nil {
		return nil, fmt.Errorf("%w: nil clip", ErrEncode)
	}
	var buf bytes.Buffer
	buf.Grow(wavHeaderSize + c.Frames()*c.NumChannels()*2)
	if err := WriteWAV(&buf, c); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteWAV streams the RIFF header, fmt chunk and interleaved data chunk.
func WriteWAV(w io.Writer, c *Clip) error {
	if c == nil || c.NumChannels() == 0 || c.SampleRate() <= 0 {
		return fmt.Errorf("%w: empty clip", ErrEncode)
	}
	numCh := c.NumChannels()
	frames := c.Frames()
	blockAlign := numCh * WAVBitDepth / 8
	byteRate := c.SampleRate() * blockAlign
	dataSize := uint64(frames) * uint64(blockAlign)
	if dataSize+36 > math.MaxUint32 {
		return fmt.Errorf("%w: %d bytes exceeds the RIFF size limit", ErrEncode, dataSize)
	}

	header := make([]byte, wavHeaderSize)
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], uint32(36+dataSize))
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], uint16(numCh))
	binary.LittleEndian.PutUint32(header[24:28], uint32(c.SampleRate()))
	binary.LittleEndian.PutUint32(header[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(header[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(header[34:36], WAVBitDepth)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], uint32(dataSize))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}

	const chunkFrames = 4096
	chunk := make([]byte, 0, chunkFrames*blockAlign)
	for i := 0; i < frames; i++ {
		for ch := 0; ch < numCh; ch++ {
			chunk = binary.LittleEndian.AppendUint16(chunk, uint16(Quantize(c.channels[ch][i])))
		}
		if len(chunk) == cap(chunk) {
			if _, err := w.Write(chunk); err != nil {
				return fmt.Errorf("write wav data: %w", err)
			}
			chunk = chunk[:0]
		}
	}
	if len(chunk) > 0 {
		if _, err := w.Write(chunk); err != nil {
			return fmt.Errorf("write wav data: %w", err)
		}
	}
	return nil
}

// Quantize clamps s to [-1, 1] and scales negatives by 32768, positives by
// 32767, truncating toward zero.
func Quantize(s float32) int16 {
	if s != s {
		return 0
	}
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	if s < 0 {
		return int16(s * 32768)
	}
	return int16(s * 32767)
}
