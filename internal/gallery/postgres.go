package gallery

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	db *pgxpool.Pool
}

func NewPgRepository(db *pgxpool.Pool) *PgRepository {
	return &PgRepository{db: db}
}

const entryColumns = `id, owner, persona, tone, instructions, voice, music, music_volume, summary, format, object_key, duration_secs, created_at`

func (r *PgRepository) Insert(ctx context.Context, e *Entry) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO affirmations (id, owner, persona, tone, instructions, voice, music, music_volume, summary, format, object_key, duration_secs)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		 RETURNING created_at`,
		e.ID, e.Owner, e.Persona, e.Tone, e.Instructions, e.Voice, e.Music, e.MusicVolume,
		e.Summary, string(e.Format), e.ObjectKey, e.Duration,
	).Scan(&e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert affirmation: %w", err)
	}
	return nil
}

func (r *PgRepository) Get(ctx context.Context, owner string, id uuid.UUID) (*Entry, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM affirmations WHERE owner = $1 AND id = $2`, owner, id)
	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get affirmation: %w", err)
	}
	return e, nil
}

func (r *PgRepository) List(ctx context.Context, owner string, limit int) ([]Entry, error) {
	return r.query(ctx,
		`SELECT `+entryColumns+` FROM affirmations WHERE owner = $1
		 ORDER BY created_at DESC, id LIMIT $2`, owner, limit)
}

func (r *PgRepository) Overflow(ctx context.Context, owner string, keep int) ([]Entry, error) {
	return r.query(ctx,
		`SELECT `+entryColumns+` FROM affirmations WHERE owner = $1
		 ORDER BY created_at DESC, id OFFSET $2`, owner, keep)
}

func (r *PgRepository) Delete(ctx context.Context, owner string, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM affirmations WHERE owner = $1 AND id = $2`, owner, id)
	if err != nil {
		return fmt.Errorf("delete affirmation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PgRepository) query(ctx context.Context, sql string, args ...any) ([]Entry, error) {
	rows, err := r.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, fmt.Errorf("query affirmations: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan affirmation: %w", err)
		}
		entries = append(entries, *e)
	}
	return entries, rows.Err()
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	var format string
	if err := row.Scan(&e.ID, &e.Owner, &e.Persona, &e.Tone, &e.Instructions, &e.Voice, &e.Music,
		&e.MusicVolume, &e.Summary, &format, &e.ObjectKey, &e.Duration, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Format = audioFormat(format)
	return &e, nil
}
