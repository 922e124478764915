package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/cache"
	"github.com/nikhilbhutani/listenloved/internal/config"
	"github.com/nikhilbhutani/listenloved/internal/usage"
)

func TestVoiceCatalog(t *testing.T) {
	vs := Voices()
	if len(vs) != 13 || vs[0].Name != "alloy" || vs[12].Name != "cedar" {
		t.Fatalf("voices = %+v", vs)
	}
	if v, ok := LookupVoice("onyx"); !ok || v.Description != "deep adult male" {
		t.Errorf("LookupVoice(onyx) = %+v, %v", v, ok)
	}
	if _, ok := LookupVoice("robot"); ok {
		t.Error("unknown voice found")
	}
}

func TestNormalize(t *testing.T) {
	req, err := normalize(SynthesisRequest{Input: "hi"})
	if err != nil || req.Voice != DefaultVoice {
		t.Errorf("normalize = %+v, %v", req, err)
	}
	if _, err := normalize(SynthesisRequest{Input: "  "}); !errors.Is(err, ErrEmptyInput) {
		t.Errorf("err = %v, want ErrEmptyInput", err)
	}
	if _, err := normalize(SynthesisRequest{Input: "hi", Voice: "robot"}); !errors.Is(err, ErrUnknownVoice) {
		t.Errorf("err = %v, want ErrUnknownVoice", err)
	}
}

func TestOpenAISynthesize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/audio/speech" || r.Header.Get("Authorization") != "Bearer sk-test" {
			http.Error(w, "bad request "+r.URL.Path, http.StatusBadRequest)
			return
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Write([]byte("ID3 fake mp3"))
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "sk-test", BaseURL: srv.URL + "/v1"})
	res, err := p.Synthesize(t.Context(), SynthesisRequest{Input: "You are loved.", Voice: "nova"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if string(res.Audio) != "ID3 fake mp3" || res.Format != audio.FormatMP3 || res.ContentType() != "audio/mpeg" {
		t.Errorf("result = %+v", res)
	}
	if got["model"] != "tts-1" || got["voice"] != "nova" || got["input"] != "You are loved." || got["response_format"] != "mp3" {
		t.Errorf("request body = %v", got)
	}
}

func TestOpenAISynthesizeUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	p := NewOpenAI(OpenAIConfig{APIKey: "nope", BaseURL: srv.URL})
	if _, err := p.Synthesize(t.Context(), SynthesisRequest{Input: "hi"}); err == nil {
		t.Fatal("expected error")
	}
}

func TestPiperWrapsRawPCM(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("shell script stand-in for piper")
	}
	dir := t.TempDir()
	bin := filepath.Join(dir, "piper")
	// four mono samples: 0, 16384, -32768, 0
	script := "#!/bin/sh\ncat >/dev/null\nprintf '\\000\\000\\000\\100\\000\\200\\000\\000'\n"
	if err := os.WriteFile(bin, []byte(script), 0o755); err != nil {
		t.Fatal(err)
	}

	p := NewPiper(PiperConfig{BinPath: bin, ModelPath: "voice.onnx", SampleRate: 16000})
	res, err := p.Synthesize(t.Context(), SynthesisRequest{Input: "hello"})
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if res.Format != audio.FormatWAV {
		t.Fatalf("format = %q", res.Format)
	}
	clip, err := audio.NewOfflineEngine().Decode(t.Context(), res.Audio)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if clip.SampleRate() != 16000 || clip.NumChannels() != 1 || clip.Frames() != 4 {
		t.Fatalf("clip rate=%d ch=%d frames=%d", clip.SampleRate(), clip.NumChannels(), clip.Frames())
	}
	if clip.Sample(0, 2) != -1 {
		t.Errorf("sample 2 = %v, want -1", clip.Sample(0, 2))
	}
}

func TestPiperRequiresModel(t *testing.T) {
	if _, err := NewPiper(PiperConfig{}).Synthesize(t.Context(), SynthesisRequest{Input: "x"}); err == nil {
		t.Fatal("expected error without model path")
	}
}

type countingProvider struct {
	calls int
	err   error
}

func (c *countingProvider) Name() string { return "fake" }

func (c *countingProvider) Synthesize(_ context.Context, req SynthesisRequest) (*SynthesisResult, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return &SynthesisResult{Audio: []byte("RIFF" + req.Input), Format: audio.FormatWAV}, nil
}

type memStore struct {
	data    map[string][]byte
	failGet bool
}

func (m *memStore) GetBytes(_ context.Context, key string) ([]byte, error) {
	if m.failGet {
		return nil, errors.New("redis down")
	}
	v, ok := m.data[key]
	if !ok {
		return nil, cache.ErrMiss
	}
	return v, nil
}

func (m *memStore) SetBytes(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.data[key] = value
	return nil
}

func TestCachedServesRepeats(t *testing.T) {
	p := &countingProvider{}
	store := &memStore{data: map[string][]byte{}}
	c := NewCached(p, store, time.Hour)

	first, err := c.Synthesize(t.Context(), SynthesisRequest{Input: "again"})
	if err != nil || first.Cached {
		t.Fatalf("first = %+v, %v", first, err)
	}
	second, err := c.Synthesize(t.Context(), SynthesisRequest{Input: "again", Voice: "alloy"})
	if err != nil {
		t.Fatal(err)
	}
	if !second.Cached || p.calls != 1 {
		t.Fatalf("second = %+v, calls = %d", second, p.calls)
	}
	if !bytes.Equal(second.Audio, first.Audio) || second.Format != audio.FormatWAV {
		t.Errorf("cached result differs: %+v", second)
	}

	if _, err := c.Synthesize(t.Context(), SynthesisRequest{Input: "again", Voice: "echo"}); err != nil {
		t.Fatal(err)
	}
	if p.calls != 2 {
		t.Errorf("different voice served from cache")
	}
}

func TestCachedFallsThroughOnStoreError(t *testing.T) {
	p := &countingProvider{}
	c := NewCached(p, &memStore{data: map[string][]byte{}, failGet: true}, time.Hour)
	if _, err := c.Synthesize(t.Context(), SynthesisRequest{Input: "x"}); err != nil {
		t.Fatal(err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d", p.calls)
	}
}

func TestCachedDoesNotStoreFailures(t *testing.T) {
	store := &memStore{data: map[string][]byte{}}
	c := NewCached(&countingProvider{err: io.ErrUnexpectedEOF}, store, time.Hour)
	if _, err := c.Synthesize(t.Context(), SynthesisRequest{Input: "x"}); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("err = %v", err)
	}
	if len(store.data) != 0 {
		t.Error("failure cached")
	}
}

func TestCacheKeyStable(t *testing.T) {
	a := CacheKey("openai", SynthesisRequest{Input: "hi", Voice: "nova"})
	b := CacheKey("openai", SynthesisRequest{Input: "hi", Voice: "nova"})
	c := CacheKey("piper", SynthesisRequest{Input: "hi", Voice: "nova"})
	if a != b || a == c {
		t.Errorf("keys: %s %s %s", a, b, c)
	}
}

func TestNewSelectsBackend(t *testing.T) {
	if _, err := New(config.TTSConfig{Backend: "openai"}, nil, nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("openai without key: %v", err)
	}
	if _, err := New(config.TTSConfig{Backend: "local"}, nil, nil); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("local without model: %v", err)
	}
	if _, err := New(config.TTSConfig{Backend: "espeak"}, nil, nil); err == nil {
		t.Error("unknown backend accepted")
	}

	p, err := New(config.TTSConfig{Backend: "openai", OpenAIKey: "sk"}, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*OpenAI); !ok {
		t.Errorf("provider = %T, want *OpenAI", p)
	}

	p, err = New(config.TTSConfig{Backend: "local", LocalModel: "voice.onnx", CacheTTLMinutes: 5}, &memStore{data: map[string][]byte{}}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := p.(*Cached); !ok || p.Name() != "piper" {
		t.Errorf("provider = %T %s, want cached piper", p, p.Name())
	}
}

func TestUnavailable(t *testing.T) {
	u := Unavailable{Err: ErrNotConfigured}
	if _, err := u.Synthesize(t.Context(), SynthesisRequest{Input: "hi"}); !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("err = %v", err)
	}
}

func TestMeteredRecordsSynthesis(t *testing.T) {
	rec := usage.NewMemory()
	inner := &countingProvider{}
	m := NewMetered(inner, rec, "tts-1")

	if _, err := m.Synthesize(t.Context(), SynthesisRequest{Input: strings.Repeat("a", 2000)}); err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	inner.err = errors.New("upstream 500")
	if _, err := m.Synthesize(t.Context(), SynthesisRequest{Input: "hi"}); err == nil {
		t.Fatal("expected upstream error")
	}

	sums, _ := rec.Summarize(t.Context(), usage.Window{})
	if len(sums) != 1 {
		t.Fatalf("summaries = %+v", sums)
	}
	s := sums[0]
	if s.Provider != "fake" || s.Model != "tts-1" || s.Calls != 2 || s.Failures != 1 {
		t.Errorf("summary = %+v", s)
	}
	if math.Abs(s.CostUSD-0.03) > 1e-9 {
		t.Errorf("cost = %v, want 0.03", s.CostUSD)
	}
}

func TestSpeechCost(t *testing.T) {
	if got := SpeechCost("tts-1-hd", 1000); math.Abs(got-0.03) > 1e-9 {
		t.Errorf("tts-1-hd = %v", got)
	}
	if got := SpeechCost("en_US-amy-medium.onnx", 5000); got != 0 {
		t.Errorf("local voice = %v, want 0", got)
	}
}

func TestNewMetersBeforeCache(t *testing.T) {
	p, err := New(config.TTSConfig{Backend: "local", LocalModel: "voice.onnx", CacheTTLMinutes: 5}, &memStore{data: map[string][]byte{}}, usage.NewMemory())
	if err != nil {
		t.Fatal(err)
	}
	c, ok := p.(*Cached)
	if !ok {
		t.Fatalf("provider = %T, want *Cached", p)
	}
	if _, ok := c.next.(*Metered); !ok {
		t.Errorf("cached backend = %T, want *Metered", c.next)
	}
}
