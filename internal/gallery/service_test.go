package gallery

import (
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/storage"
)

func newTestService(t *testing.T) (*Service, *MemoryRepository, *storage.MemoryStorage) {
	t.Helper()
	repo := NewMemoryRepository()
	clock := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	repo.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	store := storage.NewMemoryStorage()
	return NewService(repo, store, "affirmations"), repo, store
}

func TestSaveAndFetch(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := t.Context()

	e, err := svc.Save(ctx, SaveRequest{
		Owner:       "owner-1",
		Audio:       []byte("RIFF...."),
		Format:      audio.FormatWAV,
		Persona:     "a wise friend",
		Voice:       "sage",
		MusicVolume: 140,
	})
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if e.Summary != "a wise friend" || e.MusicVolume != 100 {
		t.Errorf("entry = %+v", e)
	}
	if !strings.HasPrefix(e.ObjectKey, "owner-1/") || !strings.HasSuffix(e.ObjectKey, ".wav") {
		t.Errorf("object key = %s", e.ObjectKey)
	}
	if store.Len() != 1 {
		t.Fatalf("stored objects = %d", store.Len())
	}

	rc, got, err := svc.Audio(ctx, "owner-1", e.ID)
	if err != nil {
		t.Fatalf("Audio: %v", err)
	}
	data, _ := io.ReadAll(rc)
	rc.Close()
	if string(data) != "RIFF...." || got.Format != audio.FormatWAV {
		t.Errorf("audio = %q, format %s", data, got.Format)
	}

	if _, _, err := svc.Audio(ctx, "someone-else", e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("other owner err = %v", err)
	}
}

func TestSavePrunesToMaxItems(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := t.Context()

	var ids []uuid.UUID
	for i := 0; i < MaxItems+3; i++ {
		e, err := svc.Save(ctx, SaveRequest{Owner: "o", Audio: []byte{byte(i)}, Voice: "alloy"})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, e.ID)
	}
	svc.Save(ctx, SaveRequest{Owner: "other", Audio: []byte{1}, Voice: "alloy"})

	list, err := svc.List(ctx, "o")
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != MaxItems {
		t.Fatalf("kept %d entries, want %d", len(list), MaxItems)
	}
	if list[0].ID != ids[len(ids)-1] {
		t.Error("list is not newest first")
	}
	for _, old := range ids[:3] {
		if _, err := svc.Get(ctx, "o", old); !errors.Is(err, ErrNotFound) {
			t.Errorf("old entry %s survived", old)
		}
	}
	if store.Len() != MaxItems+1 {
		t.Errorf("stored objects = %d, want %d", store.Len(), MaxItems+1)
	}
}

func TestDelete(t *testing.T) {
	svc, _, store := newTestService(t)
	ctx := t.Context()
	e, _ := svc.Save(ctx, SaveRequest{Owner: "o", Audio: []byte("x"), Voice: "alloy"})

	if err := svc.Delete(ctx, "intruder", e.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("intruder delete err = %v", err)
	}
	if err := svc.Delete(ctx, "o", e.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Len() != 0 {
		t.Error("audio not removed")
	}
	if err := svc.Delete(ctx, "o", e.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete err = %v", err)
	}
}

func TestSaveValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Save(t.Context(), SaveRequest{Audio: []byte("x")}); err == nil {
		t.Error("missing owner accepted")
	}
	if _, err := svc.Save(t.Context(), SaveRequest{Owner: "o"}); !errors.Is(err, audio.ErrNoSpeech) {
		t.Errorf("empty audio err = %v", err)
	}
}

func TestDefaultSummary(t *testing.T) {
	if got := DefaultSummary("Mom", ""); got != "Mom" {
		t.Errorf("got %q", got)
	}
	if got := DefaultSummary("Mom", "exam tomorrow"); got != "Mom — exam tomorrow" {
		t.Errorf("got %q", got)
	}
	long := DefaultSummary("할머니", strings.Repeat("가", 200))
	if n := len([]rune(long)); n != 100 {
		t.Errorf("long summary has %d runes", n)
	}
}
