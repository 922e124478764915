package workers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/gallery"
	"github.com/nikhilbhutani/listenloved/internal/queue"
	"github.com/nikhilbhutani/listenloved/internal/tts"
)

// RenderWorker turns a script into a saved gallery entry: speech, optional
// background music, upload.
type RenderWorker struct {
	tts      tts.Provider
	mixer    *audio.Mixer
	gallery  *gallery.Service
	statuses queue.StatusStore
}

func NewRenderWorker(p tts.Provider, m *audio.Mixer, g *gallery.Service, s queue.StatusStore) *RenderWorker {
	return &RenderWorker{tts: p, mixer: m, gallery: g, statuses: s}
}

func (w *RenderWorker) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload queue.RenderPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w: %w", err, asynq.SkipRetry)
	}
	if payload.JobID == "" || payload.Owner == "" {
		return fmt.Errorf("render payload missing job id or owner: %w", asynq.SkipRetry)
	}

	log := slog.With("job_id", payload.JobID, "owner", payload.Owner)
	log.Info("rendering affirmation")
	w.put(ctx, &queue.Status{ID: payload.JobID, Owner: payload.Owner, State: queue.StateRunning})

	out, err := w.render(ctx, payload)
	if err != nil {
		log.Error("render failed", "error", err)
		w.put(ctx, &queue.Status{ID: payload.JobID, Owner: payload.Owner, State: queue.StateFailed, Error: err.Error()})
		if permanent(err) {
			return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
		}
		return err
	}

	st := &queue.Status{ID: payload.JobID, Owner: payload.Owner, State: queue.StateDone, EntryID: out.entry.ID.String()}
	if out.warning != nil {
		st.Warning = out.warning.Error()
	}
	w.put(ctx, st)
	log.Info("affirmation rendered", "entry_id", out.entry.ID, "mixed", out.mixed)
	return nil
}

type rendered struct {
	entry   *gallery.Entry
	mixed   bool
	warning error
}

// permanent reports failures a retry cannot fix.
func permanent(err error) bool {
	var de *audio.DecodeError
	return errors.Is(err, tts.ErrUnknownVoice) || errors.Is(err, tts.ErrEmptyInput) || errors.As(err, &de)
}

func (w *RenderWorker) render(ctx context.Context, p queue.RenderPayload) (*rendered, error) {
	speech, err := w.tts.Synthesize(ctx, tts.SynthesisRequest{Input: p.Script, Voice: p.Voice})
	if err != nil {
		return nil, fmt.Errorf("synthesize: %w", err)
	}

	res, err := w.mixer.Mix(ctx, audio.MixRequest{
		Speech:       speech.Audio,
		SpeechFormat: speech.Format,
		Music:        p.MusicFile,
		Volume:       float64(p.MusicVolume) / 100,
	})
	if err != nil {
		return nil, fmt.Errorf("mix: %w", err)
	}

	entry, err := w.gallery.Save(ctx, gallery.SaveRequest{
		Owner:        p.Owner,
		Audio:        res.Audio,
		Format:       res.Format,
		Persona:      p.Persona,
		Tone:         p.Tone,
		Instructions: p.Instructions,
		Voice:        p.Voice,
		Music:        p.Music,
		MusicVolume:  p.MusicVolume,
		Summary:      p.Summary,
		Duration:     res.Duration,
	})
	if err != nil {
		return nil, fmt.Errorf("save: %w", err)
	}
	return &rendered{entry: entry, mixed: res.Mixed, warning: res.Warning}, nil
}

// put records status on a context that outlives task cancellation.
func (w *RenderWorker) put(ctx context.Context, st *queue.Status) {
	st.UpdatedAt = time.Now().UTC()
	if err := w.statuses.Put(context.WithoutCancel(ctx), st); err != nil {
		slog.Error("failed to write job status", "job_id", st.ID, "error", err)
	}
}
