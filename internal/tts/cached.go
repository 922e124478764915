package tts

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/cache"
)

// BlobStore is the byte cache Cached writes through. Misses return
// cache.ErrMiss.
type BlobStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, error)
	SetBytes(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Cached serves repeated requests from a BlobStore. Cache failures are logged
// and fall through to the wrapped provider.
type Cached struct {
	next  Provider
	store BlobStore
	ttl   time.Duration
}

func NewCached(next Provider, store BlobStore, ttl time.Duration) *Cached {
	return &Cached{next: next, store: store, ttl: ttl}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Synthesize(ctx context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	req, err := normalize(req)
	if err != nil {
		return nil, err
	}
	key := CacheKey(c.next.Name(), req)

	if data, err := c.store.GetBytes(ctx, key); err == nil && len(data) > 1 {
		return &SynthesisResult{Audio: data[1:], Format: formatFromTag(data[0]), Cached: true}, nil
	} else if err != nil && !errors.Is(err, cache.ErrMiss) {
		slog.Warn("tts cache read failed", "error", err)
	}

	res, err := c.next.Synthesize(ctx, req)
	if err != nil {
		return nil, err
	}

	blob := make([]byte, 0, len(res.Audio)+1)
	blob = append(blob, formatTag(res.Format))
	blob = append(blob, res.Audio...)
	if err := c.store.SetBytes(ctx, key, blob, c.ttl); err != nil {
		slog.Warn("tts cache write failed", "error", err)
	}
	return res, nil
}

// CacheKey identifies a synthesis by backend, voice, speed and text.
func CacheKey(backend string, req SynthesisRequest) string {
	h := sha256.New()
	for _, part := range []string{backend, req.Voice, strconv.FormatFloat(req.Speed, 'f', -1, 64), req.Input} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return "tts:" + hex.EncodeToString(h.Sum(nil))
}

// The stored blob is one format byte followed by the audio.
func formatTag(f audio.Format) byte {
	if f == audio.FormatWAV {
		return 'w'
	}
	return 'm'
}

func formatFromTag(b byte) audio.Format {
	if b == 'w' {
		return audio.FormatWAV
	}
	return audio.FormatMP3
}
