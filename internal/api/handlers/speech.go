package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/tts"
)

type SpeechHandler struct {
	tts tts.Provider
}

func NewSpeechHandler(p tts.Provider) *SpeechHandler {
	return &SpeechHandler{tts: p}
}

type speechRequest struct {
	Script string  `json:"script"`
	Voice  string  `json:"voice"`
	Speed  float64 `json:"speed,omitempty"`
}

type audioResponse struct {
	Audio   string       `json:"audio"`
	Format  audio.Format `json:"format"`
	Warning string       `json:"warning,omitempty"`
}

func (h *SpeechHandler) Speak(w http.ResponseWriter, r *http.Request) {
	var req speechRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Script) == "" || req.Voice == "" {
		writeError(w, http.StatusBadRequest, "Missing script or voice", nil)
		return
	}

	res, err := h.tts.Synthesize(r.Context(), tts.SynthesisRequest{Input: req.Script, Voice: req.Voice, Speed: req.Speed})
	switch {
	case errors.Is(err, tts.ErrUnknownVoice):
		writeError(w, http.StatusBadRequest, "Unknown voice", err)
		return
	case err != nil:
		slog.Error("tts failed", "provider", h.tts.Name(), "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate TTS", err)
		return
	}

	writeJSON(w, http.StatusOK, audioResponse{Audio: audio.EncodeBase64(res.Audio), Format: res.Format})
}
