package handlers

import (
	"context"
	"net/http"
	"time"
)

// Pinger is satisfied by *pgxpool.Pool and *cache.Cache.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	probes           map[string]Pinger
	openAIConfigured bool
	port             int
	now              func() time.Time
}

func NewHealthHandler(probes map[string]Pinger, openAIConfigured bool, port int) *HealthHandler {
	return &HealthHandler{probes: probes, openAIConfigured: openAIConfigured, port: port, now: time.Now}
}

func (h *HealthHandler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Readyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK
	for name, p := range h.probes {
		if p == nil {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			checks[name] = "unhealthy: " + err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks[name] = "ok"
		}
	}

	writeJSON(w, status, map[string]any{"status": statusStr(status), "checks": checks})
}

// API reports the same fields as the browser app's health probe.
func (h *HealthHandler) API(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":            "ok",
		"server":            "listenloved",
		"timestamp":         h.now().UTC().Format(time.RFC3339Nano),
		"openai_configured": h.openAIConfigured,
		"port":              h.port,
		"path":              r.URL.Path,
	})
}

func statusStr(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "unhealthy"
}
