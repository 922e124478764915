package storage

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/nikhilbhutani/listenloved/internal/config"
)

func TestSupabaseRoundTrip(t *testing.T) {
	objects := map[string]string{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer service-key" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		key := strings.TrimPrefix(r.URL.Path, "/storage/v1/object/")
		switch r.Method {
		case http.MethodPost:
			if r.Header.Get("Content-Type") != "audio/wav" {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			b, _ := io.ReadAll(r.Body)
			objects[key] = string(b)
		case http.MethodGet:
			v, ok := objects[key]
			if !ok {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			io.WriteString(w, v)
		case http.MethodDelete:
			delete(objects, key)
		}
	}))
	defer srv.Close()

	s := NewSupabaseStorage(srv.URL+"/", "service-key")
	ctx := t.Context()
	if err := s.Upload(ctx, "affirmations", "owner/a.wav", strings.NewReader("RIFF"), "audio/wav"); err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if _, ok := objects["affirmations/owner/a.wav"]; !ok {
		t.Fatalf("objects = %v", objects)
	}

	rc, err := s.Download(ctx, "affirmations", "owner/a.wav")
	if err != nil {
		t.Fatalf("Download: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "RIFF" {
		t.Errorf("downloaded %q", b)
	}

	if err := s.Delete(ctx, "affirmations", "owner/a.wav"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Download(ctx, "affirmations", "owner/a.wav"); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestSupabaseUploadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota", http.StatusInsufficientStorage)
	}))
	defer srv.Close()
	err := NewSupabaseStorage(srv.URL, "k").Upload(t.Context(), "b", "p", strings.NewReader("x"), "audio/mpeg")
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInsufficientStorage || apiErr.Body != "quota" {
		t.Fatalf("err = %v", err)
	}
}

func TestSupabaseNotFoundBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, `{"statusCode":"404","error":"not_found","message":"Object not found"}`)
	}))
	defer srv.Close()
	_, err := NewSupabaseStorage(srv.URL, "k").Download(t.Context(), "b", "gone.wav")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryStorage(t *testing.T) {
	m := NewMemoryStorage()
	ctx := t.Context()
	m.Upload(ctx, "b", "k", strings.NewReader("data"), "audio/mpeg")
	if m.Len() != 1 {
		t.Fatal("not stored")
	}
	rc, err := m.Download(ctx, "b", "k")
	if err != nil {
		t.Fatal(err)
	}
	rc.Close()
	m.Delete(ctx, "b", "k")
	if _, err := m.Download(ctx, "b", "k"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestNewRequiresSettings(t *testing.T) {
	ctx := t.Context()
	if _, err := New(ctx, config.StorageConfig{Backend: "supabase"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("supabase err = %v", err)
	}
	if _, err := New(ctx, config.StorageConfig{Backend: "minio"}); !errors.Is(err, ErrNotConfigured) {
		t.Errorf("minio err = %v", err)
	}
	if _, err := New(ctx, config.StorageConfig{Backend: "tape"}); err == nil {
		t.Error("unknown backend accepted")
	}
	s, err := New(ctx, config.StorageConfig{Backend: "memory"})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := s.(*MemoryStorage); !ok {
		t.Errorf("backend = %T", s)
	}
}
