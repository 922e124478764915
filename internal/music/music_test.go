package music

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nikhilbhutani/listenloved/internal/fallback"
)

func writeFiles(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("data:"+n), 0o644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestLibraryListSortedMP3Only(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "b.mp3", "a.MP3", "notes.txt", "c.mp3")
	if err := os.Mkdir(filepath.Join(dir, "sub.mp3"), 0o755); err != nil {
		t.Fatal(err)
	}

	got, err := NewLibrary(dir).List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	want := []string{"a.MP3", "b.mp3", "c.mp3"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List = %v, want %v", got, want)
	}
}

func TestLibraryListMissingDir(t *testing.T) {
	if _, err := NewLibrary(filepath.Join(t.TempDir(), "nope")).List(); err == nil {
		t.Fatal("expected error")
	}
}

func TestLibraryOpen(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "calm.mp3")
	lib := NewLibrary(dir)

	f, err := lib.Open("calm.mp3")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(f)
	f.Close()
	if string(data) != "data:calm.mp3" {
		t.Errorf("read %q", data)
	}

	for _, name := range []string{"missing.mp3", "../calm.mp3", "sub/calm.mp3", "", ".."} {
		if _, err := lib.Open(name); !errors.Is(err, ErrTrackNotFound) {
			t.Errorf("Open(%q) err = %v, want ErrTrackNotFound", name, err)
		}
	}
	if !lib.Exists("calm.mp3") || lib.Exists("../calm.mp3") {
		t.Error("Exists disagrees with Open")
	}
}

func TestDirLoader(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, "x.mp3")
	rc, err := DirLoader{Library: NewLibrary(dir)}.Load(t.Context(), "x.mp3")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	rc.Close()
}

func TestCatalog(t *testing.T) {
	c := DefaultCatalog()

	if f, ok := c.File(LabelLullaby); !ok || f != "lullaby-acoustic-guitar-438657.mp3" {
		t.Errorf("File(lullaby) = %q, %v", f, ok)
	}
	if f, ok := c.File(LabelNone); !ok || f != "" {
		t.Errorf("File(none) = %q, %v", f, ok)
	}
	if _, ok := c.File("jazz"); ok {
		t.Error("unknown label resolved")
	}
	if l := c.Label("cinematic-ambient-348342.mp3"); l != LabelCinematic {
		t.Errorf("Label = %q", l)
	}
	if l := c.Label("other.mp3"); l != LabelNone {
		t.Errorf("Label(unknown) = %q", l)
	}
	want := []string{"ambient", "cheerful", "cinematic", "lullaby", "none"}
	if got := c.Labels(); !reflect.DeepEqual(got, want) {
		t.Errorf("Labels = %v, want %v", got, want)
	}
}

func TestHTTPLoaderFallsBackOn404(t *testing.T) {
	missing := httptest.NewServer(http.NotFoundHandler())
	defer missing.Close()
	serving := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/calm.mp3" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte("mp3 bytes"))
	}))
	defer serving.Close()

	fc, err := fallback.New([]string{missing.URL, serving.URL}, nil)
	if err != nil {
		t.Fatal(err)
	}
	rc, err := HTTPLoader{Client: fc}.Load(t.Context(), "calm.mp3")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	if string(data) != "mp3 bytes" {
		t.Errorf("body = %q", data)
	}
}

func TestHTTPLoaderStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	fc, _ := fallback.New([]string{srv.URL}, nil)
	_, err := HTTPLoader{Client: fc}.Load(t.Context(), "calm.mp3")
	var se *HTTPStatusError
	if !errors.As(err, &se) || se.Code != http.StatusInternalServerError {
		t.Fatalf("err = %v, want HTTPStatusError 500", err)
	}
}

func TestHTTPLoaderRejectsTraversal(t *testing.T) {
	fc, _ := fallback.New([]string{"http://127.0.0.1:1"}, nil)
	if _, err := (HTTPLoader{Client: fc}).Load(t.Context(), "../secret"); !errors.Is(err, ErrTrackNotFound) {
		t.Fatalf("err = %v", err)
	}
}
