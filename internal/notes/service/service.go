// Package service implements note CRUD with owner scoping and input
// sanitization applied before anything touches the store.
package service

import (
	"context"
	"errors"
	"log/slog"

	"inkpad/internal/notes/models"
	"inkpad/internal/notes/ports"
	"inkpad/internal/sanitize"
	id "inkpad/pkg/domain"
	dErrors "inkpad/pkg/domain-errors"
	"inkpad/pkg/requestcontext"
)

// NoteStore is re-exported for callers that wire the service.
type NoteStore = ports.NoteStore

type Service struct {
	store  NoteStore
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func New(store NoteStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("note store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Create inserts an empty note owned by the caller and returns it.
func (s *Service) Create(ctx context.Context, owner id.UserID) (*models.Note, error) {
	return s.createWithID(ctx, owner, id.NewNoteID())
}

// CreateWithID inserts an empty note under a client-chosen ID, letting the
// client render optimistically before the round trip completes.
func (s *Service) CreateWithID(ctx context.Context, owner id.UserID, noteID id.NoteID) (*models.Note, error) {
	if noteID.IsNil() {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "note id is required")
	}
	return s.createWithID(ctx, owner, noteID)
}

func (s *Service) createWithID(ctx context.Context, owner id.UserID, noteID id.NoteID) (*models.Note, error) {
	if owner.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "Unauthorized")
	}

	now := requestcontext.Now(ctx)
	note := &models.Note{
		ID:        noteID,
		AuthorID:  owner,
		Text:      "",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, note); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "note created",
		"note_id", note.ID.String(), "request_id", requestcontext.RequestID(ctx))
	return note, nil
}

// Get returns the caller's note.
func (s *Service) Get(ctx context.Context, owner id.UserID, noteID id.NoteID) (*models.Note, error) {
	return s.store.GetByID(ctx, owner, noteID)
}

// UpdateText validates and cleans the text, then writes it owner-scoped.
// The cleaned form is what gets stored; the caller sees it in the result.
func (s *Service) UpdateText(ctx context.Context, owner id.UserID, noteID id.NoteID, text string) (*models.Note, error) {
	if err := sanitize.ValidateNoteText(text); err != nil {
		return nil, err
	}
	return s.store.UpdateText(ctx, owner, noteID, sanitize.CleanText(text))
}

// Delete removes the caller's note.
func (s *Service) Delete(ctx context.Context, owner id.UserID, noteID id.NoteID) error {
	return s.store.Delete(ctx, owner, noteID)
}

// ListByOwner returns the caller's notes, newest first.
func (s *Service) ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Note, error) {
	return s.store.ListByAuthor(ctx, owner)
}

// Snapshots returns the AI projection of the caller's notes, newest first.
func (s *Service) Snapshots(ctx context.Context, owner id.UserID) ([]models.Snapshot, error) {
	notes, err := s.store.ListByAuthor(ctx, owner)
	if err != nil {
		return nil, err
	}
	snapshots := make([]models.Snapshot, 0, len(notes))
	for _, note := range notes {
		snapshots = append(snapshots, note.Snapshot())
	}
	return snapshots, nil
}

// NewestNoteID returns the most recently created note's ID, if any.
func (s *Service) NewestNoteID(ctx context.Context, owner id.UserID) (id.NoteID, bool, error) {
	return s.store.NewestID(ctx, owner)
}

// GetOrCreateNewest returns the newest note's ID, creating an empty note
// when the owner has none. Two concurrent callers may both create; that
// leaves one extra empty note and both land somewhere valid, which is an
// acceptable outcome for a navigation helper.
func (s *Service) GetOrCreateNewest(ctx context.Context, owner id.UserID) (id.NoteID, error) {
	noteID, found, err := s.store.NewestID(ctx, owner)
	if err != nil {
		return id.NoteID{}, err
	}
	if found {
		return noteID, nil
	}

	note, err := s.Create(ctx, owner)
	if err != nil {
		return id.NoteID{}, err
	}
	return note.ID, nil
}
