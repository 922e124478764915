package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/listenloved/internal/api"
	"github.com/nikhilbhutani/listenloved/internal/api/handlers"
	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/auth"
	"github.com/nikhilbhutani/listenloved/internal/cache"
	"github.com/nikhilbhutani/listenloved/internal/config"
	"github.com/nikhilbhutani/listenloved/internal/database"
	"github.com/nikhilbhutani/listenloved/internal/gallery"
	"github.com/nikhilbhutani/listenloved/internal/llm"
	"github.com/nikhilbhutani/listenloved/internal/music"
	"github.com/nikhilbhutani/listenloved/internal/queue"
	"github.com/nikhilbhutani/listenloved/internal/storage"
	"github.com/nikhilbhutani/listenloved/internal/tts"
	"github.com/nikhilbhutani/listenloved/internal/usage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	probes := map[string]handlers.Pinger{}

	// Database (optional: gallery and usage fall back to memory)
	var (
		repo     gallery.Repository = gallery.NewMemoryRepository()
		usageRec interface {
			usage.Recorder
			usage.Summarizer
		} = usage.NewMemory()
	)
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Warn("database unavailable, using in-memory gallery", "error", err)
	} else {
		defer db.Close()
		probes["database"] = db
		if err := database.RunMigrations(ctx, db, cfg.Database.MigrationsPath); err != nil {
			slog.Error("migrations failed", "error", err)
			os.Exit(1)
		}
		repo = gallery.NewPgRepository(db)
		usageRec = usage.NewStore(db)
	}

	// Redis (optional: TTS cache, job status and async renders)
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	var (
		blobs    tts.BlobStore
		statuses queue.StatusStore = queue.NewMemoryStatusStore()
		jobs     queue.Enqueuer
	)
	rc := cache.NewCache(rdb, "listenloved:")
	if err := rc.Ping(ctx); err != nil {
		slog.Warn("redis unavailable, running without cache or jobs", "error", err)
	} else {
		probes["redis"] = rc
		blobs = rc
		statuses = queue.NewRedisStatusStore(rc)
		qc := queue.NewClient(cfg.Redis)
		defer qc.Close()
		jobs = qc
	}

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		slog.Warn("object storage unavailable, keeping audio in memory", "error", err)
		store = storage.NewMemoryStorage()
	}

	speech, err := tts.New(cfg.TTS, blobs, usageRec)
	if err != nil {
		slog.Warn("tts unavailable", "error", err)
		speech = tts.Unavailable{Err: err}
	}

	mixCfg, err := audio.MixConfigFrom(cfg.Mixer)
	if err != nil {
		slog.Error("invalid mixer config", "error", err)
		os.Exit(1)
	}
	lib := music.NewLibrary(cfg.Music.Dir)

	router := api.NewRouter(api.Deps{
		Config:   cfg,
		Probes:   probes,
		Gateway:  llm.NewGateway(cfg.LLM, usageRec),
		TTS:      speech,
		Library:  lib,
		Catalog:  music.DefaultCatalog(),
		Mixer:    audio.NewMixer(audio.NewOfflineEngine(), music.DirLoader{Library: lib}, mixCfg),
		Gallery:  gallery.NewService(repo, store, cfg.Storage.Bucket),
		Sessions: auth.NewSessions(cfg.Auth.SessionSecret, time.Duration(cfg.Auth.SessionTTLH)*time.Hour),
		Jobs:     jobs,
		Statuses: statuses,
		Usage:    usageRec,
	})
	defer router.Close()

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		slog.Info("starting API server",
			"addr", cfg.Addr(),
			"openai_configured", cfg.LLM.OpenAIKey != "",
			"tts_backend", speech.Name(),
			"jobs_enabled", jobs != nil,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced shutdown", "error", err)
	}
	slog.Info("server stopped")
}
