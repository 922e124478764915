// Package audio decodes speech and background music, mixes them offline with
// gain envelopes and encodes the result as 16-bit PCM WAV.
package audio

import (
	"errors"
	"fmt"
)

const (
	// MixChannels is the channel count of every rendered mix.
	MixChannels = 2
	// WAVBitDepth is the only bit depth the encoder emits.
	WAVBitDepth = 16
	// DefaultSampleRate is used when a decoded clip reports no rate.
	DefaultSampleRate = 44100
)

var (
	ErrUnknownFormat  = errors.New("audio: unrecognized container")
	ErrEncode         = errors.New("audio: cannot encode clip")
	ErrMixUnavailable = errors.New("audio: background music mixing unavailable")
	ErrNoSpeech       = errors.New("audio: speech audio is empty")
)

// DecodeError reports bytes that could not be turned into PCM. Source names
// where the bytes came from (a track name, "speech", a URL).
type DecodeError struct {
	Source string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("unable to decode audio data from %s: %v", e.Source, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Format is the container of a deliverable audio payload.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatWebM Format = "webm"
)

// MIMEType maps a format to its content type. Unknown formats are served as MPEG.
func (f Format) MIMEType() string {
	switch f {
	case FormatWAV:
		return "audio/wav"
	case FormatWebM:
		return "audio/webm"
	default:
		return "audio/mpeg"
	}
}

// Extension returns the file extension used for downloads.
func (f Format) Extension() string {
	switch f {
	case FormatWAV, FormatWebM:
		return string(f)
	default:
		return string(FormatMP3)
	}
}

// FormatFromContentType is the inverse of MIMEType.
func FormatFromContentType(ct string) Format {
	switch ct {
	case "audio/wav", "audio/x-wav", "audio/wave":
		return FormatWAV
	case "audio/webm":
		return FormatWebM
	default:
		return FormatMP3
	}
}
