package handlers

import (
	"net/http"
	"time"

	"github.com/nikhilbhutani/listenloved/internal/usage"
)

type UsageHandler struct {
	summaries usage.Summarizer
}

func NewUsageHandler(s usage.Summarizer) *UsageHandler {
	return &UsageHandler{summaries: s}
}

// Summary accepts optional RFC 3339 "since" and "until" bounds.
func (h *UsageHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var win usage.Window
	for key, dst := range map[string]*time.Time{"since": &win.Since, "until": &win.Until} {
		s := r.URL.Query().Get(key)
		if s == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+key+" timestamp", err)
			return
		}
		*dst = t
	}

	summary, err := h.summaries.Summarize(r.Context(), win)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to summarize usage", err)
		return
	}
	if summary == nil {
		summary = []usage.Summary{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"usage": summary})
}
