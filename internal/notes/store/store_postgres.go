package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inkpad/internal/notes/models"
	id "inkpad/pkg/domain"
	"inkpad/pkg/requestcontext"
)

// PostgresStore persists notes in PostgreSQL. All owner scoping happens in
// the WHERE clause, never in Go code after the fact.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Schema creates the notes table. Applied at startup; the IF NOT EXISTS
// makes it safe to run on every boot.
const Schema = `
CREATE TABLE IF NOT EXISTS notes (
	id         UUID PRIMARY KEY,
	author_id  UUID NOT NULL,
	text       TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS notes_author_created_idx ON notes (author_id, created_at DESC);
`

// Migrate applies the schema.
func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("apply notes schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Create(ctx context.Context, note *models.Note) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO notes (id, author_id, text, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		note.ID.String(), note.AuthorID.String(), note.Text, note.CreatedAt, note.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert note: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetByID(ctx context.Context, owner id.UserID, noteID id.NoteID) (*models.Note, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT id, author_id, text, created_at, updated_at
		 FROM notes WHERE id = $1 AND author_id = $2`,
		noteID.String(), owner.String(),
	)
	return scanNote(row)
}

func (s *PostgresStore) UpdateText(ctx context.Context, owner id.UserID, noteID id.NoteID, text string) (*models.Note, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE notes SET text = $3, updated_at = $4
		 WHERE id = $1 AND author_id = $2
		 RETURNING id, author_id, text, created_at, updated_at`,
		noteID.String(), owner.String(), text, requestcontext.Now(ctx),
	)
	return scanNote(row)
}

func (s *PostgresStore) Delete(ctx context.Context, owner id.UserID, noteID id.NoteID) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM notes WHERE id = $1 AND author_id = $2`,
		noteID.String(), owner.String(),
	)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return notFound()
	}
	return nil
}

func (s *PostgresStore) ListByAuthor(ctx context.Context, owner id.UserID) ([]*models.Note, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, author_id, text, created_at, updated_at
		 FROM notes WHERE author_id = $1 ORDER BY created_at DESC`,
		owner.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var notes []*models.Note
	for rows.Next() {
		note, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, note)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

func (s *PostgresStore) NewestID(ctx context.Context, owner id.UserID) (id.NoteID, bool, error) {
	var raw string
	err := s.pool.QueryRow(ctx,
		`SELECT id FROM notes WHERE author_id = $1 ORDER BY created_at DESC LIMIT 1`,
		owner.String(),
	).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return id.NoteID{}, false, nil
	}
	if err != nil {
		return id.NoteID{}, false, fmt.Errorf("newest note id: %w", err)
	}

	noteID, err := id.ParseNoteID(raw)
	if err != nil {
		return id.NoteID{}, false, err
	}
	return noteID, true, nil
}

func scanNote(row pgx.Row) (*models.Note, error) {
	var (
		note           models.Note
		rawID, rawAuth string
	)
	err := row.Scan(&rawID, &rawAuth, &note.Text, &note.CreatedAt, &note.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("scan note: %w", err)
	}

	if note.ID, err = id.ParseNoteID(rawID); err != nil {
		return nil, err
	}
	if note.AuthorID, err = id.ParseUserID(rawAuth); err != nil {
		return nil, err
	}
	return &note, nil
}
