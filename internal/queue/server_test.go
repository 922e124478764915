package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
)

func TestMuxRoutesRenderTasks(t *testing.T) {
	var got []string
	mux := NewMux(asynq.HandlerFunc(func(_ context.Context, task *asynq.Task) error {
		got = append(got, string(task.Payload()))
		return nil
	}))

	if err := mux.ProcessTask(t.Context(), asynq.NewTask(TypeAffirmationRender, []byte("job-1"))); err != nil {
		t.Fatalf("ProcessTask: %v", err)
	}
	if len(got) != 1 || got[0] != "job-1" {
		t.Errorf("handled = %v", got)
	}

	if err := mux.ProcessTask(t.Context(), asynq.NewTask("affirmation:unknown", nil)); err == nil {
		t.Error("unknown task type accepted")
	}
}

func TestMuxPassesHandlerErrors(t *testing.T) {
	boom := errors.New("tts down")
	mux := NewMux(asynq.HandlerFunc(func(context.Context, *asynq.Task) error { return boom }))
	if err := mux.ProcessTask(t.Context(), asynq.NewTask(TypeAffirmationRender, nil)); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want %v", err, boom)
	}
}
