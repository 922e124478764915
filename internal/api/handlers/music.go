package handlers

import (
	"net/http"

	"github.com/nikhilbhutani/listenloved/internal/music"
)

type MusicHandler struct {
	lib *music.Library
}

func NewMusicHandler(lib *music.Library) *MusicHandler {
	return &MusicHandler{lib: lib}
}

func (h *MusicHandler) Files(w http.ResponseWriter, r *http.Request) {
	files, err := h.lib.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read music directory", err)
		return
	}
	if files == nil {
		files = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"files": files})
}
