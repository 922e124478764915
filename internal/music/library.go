// Package music serves the background-music tracks: a directory of MP3s on
// the server side and loaders that hand track bytes to the mixer.
package music

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var ErrTrackNotFound = errors.New("music: track not found")

// Library is a flat directory of .mp3 tracks.
type Library struct {
	dir string
}

func NewLibrary(dir string) *Library {
	return &Library{dir: dir}
}

func (l *Library) Dir() string { return l.dir }

// List returns the sorted file names of every .mp3 in the directory.
func (l *Library) List() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		return nil, fmt.Errorf("read music dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(e.Name()), ".mp3") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// Open returns the named track. Names must be bare file names inside the
// library.
func (l *Library) Open(name string) (*os.File, error) {
	if !validName(name) {
		return nil, fmt.Errorf("%w: %q", ErrTrackNotFound, name)
	}
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %q", ErrTrackNotFound, name)
		}
		return nil, fmt.Errorf("open track %s: %w", name, err)
	}
	return f, nil
}

// Exists reports whether Open would succeed for name.
func (l *Library) Exists(name string) bool {
	if !validName(name) {
		return false
	}
	info, err := os.Stat(filepath.Join(l.dir, name))
	return err == nil && info.Mode().IsRegular()
}

func validName(name string) bool {
	if name == "" || name == "." || name == ".." {
		return false
	}
	return !strings.ContainsAny(name, `/\`) && filepath.Base(name) == name
}

// DirLoader loads tracks straight from a Library.
type DirLoader struct {
	Library *Library
}

func (d DirLoader) Load(ctx context.Context, id string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return d.Library.Open(id)
}
