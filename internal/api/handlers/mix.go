package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/music"
)

// defaultMixVolume applies when the request omits musicVolume.
const defaultMixVolume = 0.3

// MixHandler mixes base64 speech with a track from the music directory.
type MixHandler struct {
	mixer *audio.Mixer
	lib   *music.Library
}

func NewMixHandler(m *audio.Mixer, lib *music.Library) *MixHandler {
	return &MixHandler{mixer: m, lib: lib}
}

type mixRequest struct {
	TTSAudioBase64          string       `json:"ttsAudioBase64"`
	TTSFormat               audio.Format `json:"ttsFormat,omitempty"`
	BackgroundTrackFilename string       `json:"backgroundTrackFilename"`
	MusicVolume             *float64     `json:"musicVolume"`
}

func (h *MixHandler) Mix(w http.ResponseWriter, r *http.Request) {
	var req mixRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.TTSAudioBase64 == "" || req.BackgroundTrackFilename == "" {
		writeError(w, http.StatusBadRequest, "Missing required fields", nil)
		return
	}
	if !h.lib.Exists(req.BackgroundTrackFilename) {
		writeError(w, http.StatusNotFound, "Background music file not found", nil)
		return
	}
	speech, err := audio.DecodeBase64(req.TTSAudioBase64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid ttsAudioBase64", err)
		return
	}

	volume := defaultMixVolume
	if req.MusicVolume != nil {
		volume = *req.MusicVolume
	}

	res, err := h.mixer.Mix(r.Context(), audio.MixRequest{
		Speech:       speech,
		SpeechFormat: req.TTSFormat,
		Music:        req.BackgroundTrackFilename,
		Volume:       volume,
	})
	if err != nil {
		var de *audio.DecodeError
		switch {
		case errors.As(err, &de):
			writeError(w, http.StatusBadRequest, "Undecodable speech audio", err)
		case errors.Is(err, context.Canceled):
			slog.Info("mix cancelled by client")
		default:
			slog.Error("mix failed", "track", req.BackgroundTrackFilename, "error", err)
			writeError(w, http.StatusInternalServerError, "Failed to mix audio", err)
		}
		return
	}

	resp := audioResponse{Audio: audio.EncodeBase64(res.Audio), Format: res.Format}
	if res.Warning != nil {
		resp.Warning = res.Warning.Error()
	}
	writeJSON(w, http.StatusOK, resp)
}
