// Package gallery stores each owner's most recent rendered affirmations.
package gallery

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nikhilbhutani/listenloved/internal/audio"
)

// MaxItems is how many entries an owner keeps; older ones are pruned.
const MaxItems = 10

var ErrNotFound = errors.New("gallery: entry not found")

type Entry struct {
	ID           uuid.UUID    `json:"id"`
	Owner        string       `json:"-"`
	Persona      string       `json:"persona"`
	Tone         string       `json:"tone"`
	Instructions string       `json:"customInstructions"`
	Voice        string       `json:"voice"`
	Music        string       `json:"music"`
	MusicVolume  int          `json:"musicVolume"`
	Summary      string       `json:"oneLineSummary"`
	Format       audio.Format `json:"format"`
	ObjectKey    string       `json:"-"`
	Duration     float64      `json:"durationSeconds"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// Repository persists entry metadata. List and Overflow are newest first.
type Repository interface {
	Insert(ctx context.Context, e *Entry) error
	Get(ctx context.Context, owner string, id uuid.UUID) (*Entry, error)
	List(ctx context.Context, owner string, limit int) ([]Entry, error)
	// Overflow returns the owner's entries beyond the newest keep.
	Overflow(ctx context.Context, owner string, keep int) ([]Entry, error)
	Delete(ctx context.Context, owner string, id uuid.UUID) error
}
