package audio

import (
	"encoding/base64"
	"fmt"
	"io"
	"strings"
)

// TransportChunkSize is the slice size used when converting between raw
// bytes and the base64 transport text.
const TransportChunkSize = 8192

// EncodeBase64 converts audio bytes to standard base64, feeding the encoder
// one fixed-size slice at a time.
func EncodeBase64(data []byte) string {
	var sb strings.Builder
	sb.Grow(base64.StdEncoding.EncodedLen(len(data)))
	enc := base64.NewEncoder(base64.StdEncoding, &sb)
	for off := 0; off < len(data); off += TransportChunkSize {
		end := off + TransportChunkSize
		if end > len(data) {
			end = len(data)
		}
		// strings.Builder writes never fail.
		enc.Write(data[off:end])
	}
	enc.Close()
	return sb.String()
}

// DecodeBase64 reverses EncodeBase64, reading in fixed-size slices.
func DecodeBase64(s string) ([]byte, error) {
	dec := base64.NewDecoder(base64.StdEncoding, strings.NewReader(strings.TrimSpace(s)))
	out := make([]byte, 0, base64.StdEncoding.DecodedLen(len(s)))
	buf := make([]byte, TransportChunkSize)
	for {
		n, err := dec.Read(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, fmt.Errorf("decode base64 audio: %w", err)
		}
	}
}
