package workers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/gallery"
	"github.com/nikhilbhutani/listenloved/internal/queue"
	"github.com/nikhilbhutani/listenloved/internal/storage"
	"github.com/nikhilbhutani/listenloved/internal/tts"
)

type fakeTTS struct {
	audio []byte
	err   error
}

func (f *fakeTTS) Name() string { return "fake" }

func (f *fakeTTS) Synthesize(_ context.Context, req tts.SynthesisRequest) (*tts.SynthesisResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &tts.SynthesisResult{Audio: f.audio, Format: audio.FormatWAV}, nil
}

type tracks map[string][]byte

func (m tracks) Load(_ context.Context, id string) (io.ReadCloser, error) {
	data, ok := m[id]
	if !ok {
		return nil, errors.New("no such track")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func tone(t *testing.T, seconds float64, channels int) []byte {
	t.Helper()
	frames := audio.FramesFor(seconds, 8000)
	chs := make([][]float32, channels)
	for i := range chs {
		chs[i] = make([]float32, frames)
		for j := range chs[i] {
			chs[i][j] = 0.2
		}
	}
	c, err := audio.NewClip(8000, chs)
	if err != nil {
		t.Fatal(err)
	}
	data, err := audio.EncodeWAV(c)
	if err != nil {
		t.Fatal(err)
	}
	return data
}

type harness struct {
	worker   *RenderWorker
	gallery  *gallery.Service
	statuses *queue.MemoryStatusStore
}

func newHarness(t *testing.T, speech *fakeTTS) *harness {
	t.Helper()
	mixer := audio.NewMixer(audio.NewOfflineEngine(), tracks{"bed.mp3": tone(t, 0.25, 2)}, audio.DefaultMixConfig())
	g := gallery.NewService(gallery.NewMemoryRepository(), storage.NewMemoryStorage(), "affirmations")
	st := queue.NewMemoryStatusStore()
	return &harness{worker: NewRenderWorker(speech, mixer, g, st), gallery: g, statuses: st}
}

func task(t *testing.T, p queue.RenderPayload) *asynq.Task {
	t.Helper()
	data, err := json.Marshal(p)
	if err != nil {
		t.Fatal(err)
	}
	return asynq.NewTask(queue.TypeAffirmationRender, data)
}

func TestRenderSavesMixedEntry(t *testing.T) {
	h := newHarness(t, &fakeTTS{audio: tone(t, 0.5, 1)})
	p := queue.RenderPayload{
		JobID:       "job-1",
		Owner:       "owner-1",
		Script:      "You are loved.",
		Voice:       "sage",
		Persona:     "a friend",
		Music:       "ambient",
		MusicFile:   "bed.mp3",
		MusicVolume: 30,
	}
	if err := h.worker.ProcessTask(t.Context(), task(t, p)); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}

	st, err := h.statuses.Get(t.Context(), "job-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if st.State != queue.StateDone || st.Warning != "" || st.EntryID == "" {
		t.Fatalf("status = %+v", st)
	}
	e, err := h.gallery.Get(t.Context(), "owner-1", uuid.MustParse(st.EntryID))
	if err != nil {
		t.Fatalf("gallery Get: %v", err)
	}
	if e.Format != audio.FormatWAV || e.Duration != 5.5 || e.Music != "ambient" || e.MusicVolume != 30 {
		t.Errorf("entry = %+v", e)
	}
}

func TestRenderMissingTrackDegrades(t *testing.T) {
	h := newHarness(t, &fakeTTS{audio: tone(t, 0.5, 1)})
	p := queue.RenderPayload{JobID: "job-2", Owner: "owner-1", Script: "hi", MusicFile: "gone.mp3", MusicVolume: 50}
	if err := h.worker.ProcessTask(t.Context(), task(t, p)); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	st, _ := h.statuses.Get(t.Context(), "job-2")
	if st.State != queue.StateDone || st.Warning == "" {
		t.Fatalf("status = %+v", st)
	}
}

func TestRenderSynthesisFailure(t *testing.T) {
	h := newHarness(t, &fakeTTS{err: errors.New("upstream down")})
	p := queue.RenderPayload{JobID: "job-3", Owner: "owner-1", Script: "hi"}
	err := h.worker.ProcessTask(t.Context(), task(t, p))
	if err == nil || errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("err = %v, want retryable error", err)
	}
	st, _ := h.statuses.Get(t.Context(), "job-3")
	if st.State != queue.StateFailed || st.Error == "" {
		t.Fatalf("status = %+v", st)
	}
}

func TestRenderPermanentFailures(t *testing.T) {
	h := newHarness(t, &fakeTTS{err: tts.ErrUnknownVoice})
	err := h.worker.ProcessTask(t.Context(), task(t, queue.RenderPayload{JobID: "job-4", Owner: "o", Script: "hi"}))
	if !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("unknown voice err = %v, want SkipRetry", err)
	}

	bad := asynq.NewTask(queue.TypeAffirmationRender, []byte("{"))
	if err := h.worker.ProcessTask(t.Context(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("bad payload err = %v, want SkipRetry", err)
	}
	if err := h.worker.ProcessTask(t.Context(), task(t, queue.RenderPayload{Script: "hi"})); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("missing ids err = %v, want SkipRetry", err)
	}

	garbled := newHarness(t, &fakeTTS{audio: []byte("garbage")})
	p := queue.RenderPayload{JobID: "job-5", Owner: "o", Script: "hi", MusicFile: "bed.mp3"}
	if err := garbled.worker.ProcessTask(t.Context(), task(t, p)); !errors.Is(err, asynq.SkipRetry) {
		t.Errorf("undecodable speech err = %v, want SkipRetry", err)
	}
}
