package handlers

import (
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/listenloved/internal/auth"
)

type SessionHandler struct {
	sessions *auth.Sessions
}

func NewSessionHandler(s *auth.Sessions) *SessionHandler {
	return &SessionHandler{sessions: s}
}

func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	sess, err := h.sessions.Issue()
	if err != nil {
		slog.Error("issue session", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to create session", nil)
		return
	}
	auth.SetCookie(w, sess)
	writeJSON(w, http.StatusCreated, sess)
}
