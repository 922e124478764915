package handlers

import (
	"errors"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/listenloved/internal/auth"
	"github.com/nikhilbhutani/listenloved/internal/music"
	"github.com/nikhilbhutani/listenloved/internal/queue"
	"github.com/nikhilbhutani/listenloved/internal/tts"
)

// JobHandler queues server-side renders and reports their progress.
type JobHandler struct {
	jobs     queue.Enqueuer
	statuses queue.StatusStore
	catalog  *music.Catalog
}

func NewJobHandler(jobs queue.Enqueuer, statuses queue.StatusStore, catalog *music.Catalog) *JobHandler {
	if catalog == nil {
		catalog = music.DefaultCatalog()
	}
	return &JobHandler{jobs: jobs, statuses: statuses, catalog: catalog}
}

type jobRequest struct {
	Script       string  `json:"script"`
	Voice        string  `json:"voice"`
	Persona      string  `json:"persona"`
	Tone         string  `json:"tone"`
	Instructions string  `json:"customInstructions"`
	Music        string  `json:"music"` // catalog label
	MusicVolume  float64 `json:"musicVolume"`
	Summary      string  `json:"oneLineSummary"`
}

func (h *JobHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req jobRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Script) == "" {
		writeError(w, http.StatusBadRequest, "Missing script", nil)
		return
	}
	if req.Voice == "" {
		req.Voice = tts.DefaultVoice
	}
	if _, ok := tts.LookupVoice(req.Voice); !ok {
		writeError(w, http.StatusBadRequest, "Unknown voice", nil)
		return
	}
	file, ok := h.catalog.File(req.Music)
	if !ok && req.Music != "" {
		writeError(w, http.StatusBadRequest, "Unknown music option", nil)
		return
	}

	owner := auth.OwnerFromContext(r.Context())
	st := &queue.Status{ID: uuid.NewString(), Owner: owner, State: queue.StateQueued}
	if err := h.statuses.Put(r.Context(), st); err != nil {
		slog.Error("record job", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to queue render", err)
		return
	}

	err := h.jobs.EnqueueRender(r.Context(), queue.RenderPayload{
		JobID:        st.ID,
		Owner:        owner,
		Script:       req.Script,
		Voice:        req.Voice,
		Persona:      req.Persona,
		Tone:         req.Tone,
		Instructions: req.Instructions,
		Music:        req.Music,
		MusicFile:    file,
		MusicVolume:  int(math.Round(max(0, min(req.MusicVolume, 100)))),
		Summary:      req.Summary,
	})
	if err != nil {
		slog.Error("enqueue render", "job_id", st.ID, "error", err)
		st.State, st.Error, st.UpdatedAt = queue.StateFailed, err.Error(), time.Now().UTC()
		h.statuses.Put(r.Context(), st)
		writeError(w, http.StatusInternalServerError, "Failed to queue render", err)
		return
	}

	writeJSON(w, http.StatusAccepted, st)
}

func (h *JobHandler) Get(w http.ResponseWriter, r *http.Request) {
	st, err := h.statuses.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, queue.ErrJobNotFound) || (err == nil && st.Owner != auth.OwnerFromContext(r.Context())) {
		writeError(w, http.StatusNotFound, "job not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read job", err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
