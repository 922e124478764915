package handlers

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/auth"
	"github.com/nikhilbhutani/listenloved/internal/gallery"
)

type GalleryHandler struct {
	svc *gallery.Service
}

func NewGalleryHandler(svc *gallery.Service) *GalleryHandler {
	return &GalleryHandler{svc: svc}
}

type saveRequest struct {
	Audio           string       `json:"audio"` // base64
	Format          audio.Format `json:"format"`
	Persona         string       `json:"persona"`
	Tone            string       `json:"tone"`
	Instructions    string       `json:"customInstructions"`
	Voice           string       `json:"voice"`
	Music           string       `json:"music"`
	MusicVolume     float64      `json:"musicVolume"`
	Summary         string       `json:"oneLineSummary"`
	DurationSeconds float64      `json:"durationSeconds"`
}

func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), auth.OwnerFromContext(r.Context()))
	if err != nil {
		slog.Error("list affirmations", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list affirmations", err)
		return
	}
	if items == nil {
		items = []gallery.Entry{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *GalleryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req saveRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Audio == "" {
		writeError(w, http.StatusBadRequest, "Missing audio", nil)
		return
	}
	data, err := audio.DecodeBase64(req.Audio)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid audio encoding", err)
		return
	}

	e, err := h.svc.Save(r.Context(), gallery.SaveRequest{
		Owner:        auth.OwnerFromContext(r.Context()),
		Audio:        data,
		Format:       req.Format,
		Persona:      req.Persona,
		Tone:         req.Tone,
		Instructions: req.Instructions,
		Voice:        req.Voice,
		Music:        req.Music,
		MusicVolume:  int(math.Round(req.MusicVolume)),
		Summary:      req.Summary,
		Duration:     req.DurationSeconds,
	})
	if err != nil {
		slog.Error("save affirmation", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save affirmation", err)
		return
	}
	writeJSON(w, http.StatusCreated, e)
}

func (h *GalleryHandler) Audio(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	rc, e, err := h.svc.Audio(r.Context(), auth.OwnerFromContext(r.Context()), id)
	if err != nil {
		h.fail(w, "load affirmation audio", err)
		return
	}
	defer rc.Close()

	w.Header().Set("Content-Type", e.Format.MIMEType())
	w.Header().Set("Content-Disposition", `inline; filename="affirmation-`+e.ID.String()+"."+e.Format.Extension()+`"`)
	if _, err := io.Copy(w, rc); err != nil {
		slog.Warn("stream affirmation audio", "id", e.ID, "error", err)
	}
}

func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := entryID(w, r)
	if !ok {
		return
	}
	if err := h.svc.Delete(r.Context(), auth.OwnerFromContext(r.Context()), id); err != nil {
		h.fail(w, "delete affirmation", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *GalleryHandler) fail(w http.ResponseWriter, op string, err error) {
	if errors.Is(err, gallery.ErrNotFound) {
		writeError(w, http.StatusNotFound, "affirmation not found", nil)
		return
	}
	slog.Error(op, "error", err)
	writeError(w, http.StatusInternalServerError, "Failed to "+op, err)
}

func entryID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid affirmation id", nil)
		return uuid.Nil, false
	}
	return id, true
}

