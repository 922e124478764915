package queue

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/nikhilbhutani/listenloved/internal/config"
)

// Renders are enqueued on "default"; the other queues are kept for manual
// reprioritisation through asynq tooling.
var queueWeights = map[string]int{
	"critical": 6,
	"default":  3,
	"low":      1,
}

func NewServer(cfg config.RedisConfig, concurrency int) *asynq.Server {
	return asynq.NewServer(RedisOpt(cfg), asynq.Config{
		Concurrency: concurrency,
		Queues:      queueWeights,
	})
}

// NewMux routes render tasks to render and logs every task outcome.
func NewMux(render asynq.Handler) *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.Use(logTasks)
	mux.Handle(TypeAffirmationRender, render)
	return mux
}

func logTasks(next asynq.Handler) asynq.Handler {
	return asynq.HandlerFunc(func(ctx context.Context, t *asynq.Task) error {
		start := time.Now()
		id, _ := asynq.GetTaskID(ctx)
		retry, _ := asynq.GetRetryCount(ctx)

		err := next.ProcessTask(ctx, t)

		attrs := []any{
			"type", t.Type(),
			"task_id", id,
			"retry", retry,
			"duration_ms", time.Since(start).Milliseconds(),
		}
		if err != nil {
			slog.Warn("task failed", append(attrs, "error", err)...)
			return err
		}
		slog.Debug("task done", attrs...)
		return nil
	})
}
