package gallery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/listenloved/internal/audio"
	"github.com/nikhilbhutani/listenloved/internal/storage"
)

const summaryMaxRunes = 100

type SaveRequest struct {
	Owner        string
	Audio        []byte
	Format       audio.Format
	Persona      string
	Tone         string
	Instructions string
	Voice        string
	Music        string
	MusicVolume  int
	Summary      string
	Duration     float64
}

type Service struct {
	repo     Repository
	store    storage.Storage
	bucket   string
	maxItems int
}

func NewService(repo Repository, store storage.Storage, bucket string) *Service {
	return &Service{repo: repo, store: store, bucket: bucket, maxItems: MaxItems}
}

// Save uploads the audio, records the entry and prunes the owner's gallery
// down to MaxItems.
func (s *Service) Save(ctx context.Context, req SaveRequest) (*Entry, error) {
	if req.Owner == "" {
		return nil, errors.New("gallery: owner is required")
	}
	if len(req.Audio) == 0 {
		return nil, audio.ErrNoSpeech
	}
	format := req.Format
	if format == "" {
		format = audio.FormatMP3
	}

	e := &Entry{
		ID:           uuid.New(),
		Owner:        req.Owner,
		Persona:      req.Persona,
		Tone:         req.Tone,
		Instructions: req.Instructions,
		Voice:        req.Voice,
		Music:        req.Music,
		MusicVolume:  clampVolume(req.MusicVolume),
		Summary:      req.Summary,
		Format:       format,
		Duration:     req.Duration,
	}
	if strings.TrimSpace(e.Summary) == "" {
		e.Summary = DefaultSummary(req.Persona, req.Instructions)
	}
	e.ObjectKey = fmt.Sprintf("%s/%s.%s", e.Owner, e.ID, format.Extension())

	if err := s.store.Upload(ctx, s.bucket, e.ObjectKey, bytes.NewReader(req.Audio), format.MIMEType()); err != nil {
		return nil, fmt.Errorf("store affirmation audio: %w", err)
	}
	if err := s.repo.Insert(ctx, e); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), s.bucket, e.ObjectKey); delErr != nil {
			slog.Warn("remove orphaned audio", "key", e.ObjectKey, "error", delErr)
		}
		return nil, err
	}

	if err := s.prune(ctx, e.Owner); err != nil {
		slog.Warn("prune gallery", "owner", e.Owner, "error", err)
	}
	return e, nil
}

func (s *Service) prune(ctx context.Context, owner string) error {
	old, err := s.repo.Overflow(ctx, owner, s.maxItems)
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range old {
		if err := s.repo.Delete(ctx, owner, e.ID); err != nil && !errors.Is(err, ErrNotFound) {
			errs = append(errs, err)
			continue
		}
		if err := s.store.Delete(ctx, s.bucket, e.ObjectKey); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// List returns the owner's entries, newest first.
func (s *Service) List(ctx context.Context, owner string) ([]Entry, error) {
	return s.repo.List(ctx, owner, s.maxItems)
}

func (s *Service) Get(ctx context.Context, owner string, id uuid.UUID) (*Entry, error) {
	return s.repo.Get(ctx, owner, id)
}

// Audio opens the stored audio of one entry. The caller closes the reader.
func (s *Service) Audio(ctx context.Context, owner string, id uuid.UUID) (io.ReadCloser, *Entry, error) {
	e, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return nil, nil, err
	}
	rc, err := s.store.Download(ctx, s.bucket, e.ObjectKey)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, ErrNotFound
		}
		return nil, nil, err
	}
	return rc, e, nil
}

func (s *Service) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	e, err := s.repo.Get(ctx, owner, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, owner, id); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, s.bucket, e.ObjectKey); err != nil {
		slog.Warn("delete affirmation audio", "key", e.ObjectKey, "error", err)
	}
	return nil
}

// DefaultSummary is persona, then " — " and the instructions when given,
// cut to 100 characters.
func DefaultSummary(persona, instructions string) string {
	s := persona
	if instructions != "" {
		s += " — " + instructions
	}
	if utf8.RuneCountInString(s) <= summaryMaxRunes {
		return s
	}
	return string([]rune(s)[:summaryMaxRunes])
}

func clampVolume(v int) int {
	return max(0, min(v, 100))
}

func audioFormat(s string) audio.Format {
	switch audio.Format(s) {
	case audio.FormatWAV, audio.FormatWebM:
		return audio.Format(s)
	default:
		return audio.FormatMP3
	}
}
