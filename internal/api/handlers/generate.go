package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/nikhilbhutani/listenloved/internal/llm"
	"github.com/nikhilbhutani/listenloved/internal/match"
	"github.com/nikhilbhutani/listenloved/internal/script"
)

// GenerateHandler serves the two LLM-backed endpoints.
type GenerateHandler struct {
	scripts *script.Generator
	matcher *match.Matcher
	gateway *llm.Gateway
}

func NewGenerateHandler(scripts *script.Generator, matcher *match.Matcher, gateway *llm.Gateway) *GenerateHandler {
	return &GenerateHandler{scripts: scripts, matcher: matcher, gateway: gateway}
}

func (h *GenerateHandler) Script(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	var req script.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	s, err := h.scripts.Generate(r.Context(), req)
	switch {
	case errors.Is(err, script.ErrInvalidRequest):
		writeError(w, http.StatusBadRequest, "Missing required fields", nil)
		return
	case err != nil:
		slog.Error("script generation failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to generate script", err)
		return
	}

	if v := script.Validate(s.Text, req.Tone); v.Warning != "" {
		slog.Warn("generated script", "tone", req.Tone, "warning", v.Warning)
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *GenerateHandler) Match(w http.ResponseWriter, r *http.Request) {
	if !h.configured(w) {
		return
	}
	var req match.Request
	if !decodeJSON(w, r, &req) {
		return
	}

	settings, err := h.matcher.Match(r.Context(), req)
	if err != nil {
		slog.Error("ai match failed", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to match audio settings", err)
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

func (h *GenerateHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"models": h.gateway.ListModels()})
}

func (h *GenerateHandler) configured(w http.ResponseWriter) bool {
	if h.gateway != nil && !h.gateway.Configured() {
		writeError(w, http.StatusInternalServerError, "Server configuration error: no LLM provider API key set.", nil)
		return false
	}
	return true
}
