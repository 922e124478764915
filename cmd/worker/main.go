package main

import (
	"context"
	"errors"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/cache"
	"github.com/nikhilbhutani/listenloved/internal/config"
	"github.com/nikhilbhutani/listenloved/internal/database"
	"github.com/nikhilbhutani/listenloved/internal/gallery"
	"github.com/nikhilbhutani/listenloved/internal/music"
	"github.com/nikhilbhutani/listenloved/internal/queue"
	"github.com/nikhilbhutani/listenloved/internal/queue/workers"
	"github.com/nikhilbhutani/listenloved/internal/storage"
	"github.com/nikhilbhutani/listenloved/internal/tts"
	"github.com/nikhilbhutani/listenloved/internal/usage"
)

const concurrency = 4

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

	ctx := context.Background()

	// No in-memory fallbacks here: the API reads what this process saves.
	db, err := database.NewPool(ctx, cfg.Database)
	if err != nil {
		slog.Error("database unavailable", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		slog.Error("object storage unavailable", "error", err)
		os.Exit(1)
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()
	rc := cache.NewCache(rdb, "listenloved:")

	speech, err := tts.New(cfg.TTS, rc, usage.NewStore(db))
	if err != nil {
		slog.Error("failed to configure tts", "error", err)
		os.Exit(1)
	}

	mixCfg, err := audio.MixConfigFrom(cfg.Mixer)
	if err != nil {
		slog.Error("invalid mixer config", "error", err)
		os.Exit(1)
	}
	lib := music.NewLibrary(cfg.Music.Dir)

	render := workers.NewRenderWorker(
		speech,
		audio.NewMixer(audio.NewOfflineEngine(), music.DirLoader{Library: lib}, mixCfg),
		gallery.NewService(gallery.NewPgRepository(db), store, cfg.Storage.Bucket),
		queue.NewRedisStatusStore(rc),
	)

	srv := queue.NewServer(cfg.Redis, concurrency)

	slog.Info("starting worker", "concurrency", concurrency, "tts_backend", speech.Name())
	if err := srv.Run(queue.NewMux(render)); err != nil {
		slog.Error("worker error", "error", err)
		os.Exit(1)
	}
}
