// Package api wires the HTTP surface: JSON endpoints under /api, the music
// directory under /music and the web UI at the root.
package api

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/nikhilbhutani/listenloved/internal/api/handlers"
	"github.com/nikhilbhutani/listenloved/internal/api/middleware"
	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/auth"
	"github.com/nikhilbhutani/listenloved/internal/config"
	"github.com/nikhilbhutani/listenloved/internal/gallery"
	"github.com/nikhilbhutani/listenloved/internal/llm"
	"github.com/nikhilbhutani/listenloved/internal/match"
	"github.com/nikhilbhutani/listenloved/internal/music"
	"github.com/nikhilbhutani/listenloved/internal/queue"
	"github.com/nikhilbhutani/listenloved/internal/script"
	"github.com/nikhilbhutani/listenloved/internal/tts"
	"github.com/nikhilbhutani/listenloved/internal/usage"
)

// MaxBodyBytes matches the 10 MB JSON limit of the browser app's server.
const MaxBodyBytes = 10 << 20

// Deps are the services behind the routes. Jobs may be nil, which disables
// the /api/jobs endpoints.
type Deps struct {
	Config   *config.Config
	Probes   map[string]handlers.Pinger
	Gateway  *llm.Gateway
	TTS      tts.Provider
	Library  *music.Library
	Catalog  *music.Catalog
	Mixer    *audio.Mixer
	Gallery  *gallery.Service
	Sessions *auth.Sessions
	Jobs     queue.Enqueuer
	Statuses queue.StatusStore
	Usage    usage.Summarizer
}

type Router struct {
	mux     *chi.Mux
	deps    Deps
	limiter *middleware.RateLimiter
}

func NewRouter(d Deps) *Router {
	return &Router{
		mux:     chi.NewRouter(),
		deps:    d,
		limiter: middleware.NewRateLimiter(d.Config.Server.RateLimitRPS, d.Config.Server.RateLimitBurst),
	}
}

// Close releases the rate limiter's sweeper.
func (rt *Router) Close() { rt.limiter.Close() }

func (rt *Router) Setup() http.Handler {
	r := rt.mux
	d := rt.deps

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	origins := d.Config.Server.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	r.Use(middleware.CORS(origins))
	r.Use(rt.limiter.Limit)
	r.Use(middleware.BodyLimit(MaxBodyBytes))

	health := handlers.NewHealthHandler(d.Probes, d.Config.LLM.OpenAIKey != "", d.Config.Server.Port)
	r.Get("/healthz", health.Healthz)
	r.Get("/readyz", health.Readyz)

	apiR := chi.NewRouter()
	apiR.Get("/health", health.API)

	musicH := handlers.NewMusicHandler(d.Library)
	apiR.Get("/music-files", musicH.Files)

	gen := handlers.NewGenerateHandler(
		script.NewGenerator(d.Gateway),
		match.NewMatcher(d.Gateway, d.Catalog),
		d.Gateway,
	)
	apiR.Post("/generate-script", gen.Script)
	apiR.Post("/ai-match", gen.Match)
	apiR.Get("/models", gen.Models)

	apiR.Post("/tts", handlers.NewSpeechHandler(d.TTS).Speak)
	apiR.Post("/mix", handlers.NewMixHandler(d.Mixer, d.Library).Mix)
	apiR.Get("/usage", handlers.NewUsageHandler(d.Usage).Summary)
	apiR.Post("/session", handlers.NewSessionHandler(d.Sessions).Create)

	apiR.Group(func(r chi.Router) {
		r.Use(d.Sessions.Require)

		galleryH := handlers.NewGalleryHandler(d.Gallery)
		r.Route("/affirmations", func(r chi.Router) {
			r.Get("/", galleryH.List)
			r.Post("/", galleryH.Create)
			r.Get("/{id}/audio", galleryH.Audio)
			r.Delete("/{id}", galleryH.Delete)
		})

		if d.Jobs != nil {
			jobH := handlers.NewJobHandler(d.Jobs, d.Statuses, d.Catalog)
			r.Post("/jobs", jobH.Create)
			r.Get("/jobs/{id}", jobH.Get)
		}
	})

	notFound := handlers.APINotFound(routeList(apiR))
	apiR.NotFound(notFound)
	apiR.MethodNotAllowed(notFound)
	r.Mount("/api", apiR)

	r.Handle("/music/*", http.StripPrefix("/music/", handlers.Static(d.Library.Dir())))
	r.Handle("/*", handlers.Static(d.Config.Server.WebRoot))

	return r
}

// routeList renders the mounted API routes as "METHOD /api/path".
func routeList(r chi.Routes) []string {
	var out []string
	chi.Walk(r, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		route = strings.TrimSuffix(route, "/")
		out = append(out, fmt.Sprintf("%s /api%s", method, route))
		return nil
	})
	sort.Strings(out)
	return out
}
