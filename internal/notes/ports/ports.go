// Package ports defines the shared interfaces of the notes module.
package ports

import (
	"context"

	"inkpad/internal/notes/models"
	id "inkpad/pkg/domain"
)

// NoteStore persists notes. Every read and write that names a note also
// names its owner, and implementations must scope the operation to both:
// a noteID belonging to another user behaves exactly like a missing note.
type NoteStore interface {
	// Create inserts a new note. A duplicate ID is an error.
	Create(ctx context.Context, note *models.Note) error

	// GetByID returns the note, or a not-found error when it does not
	// exist or belongs to someone else.
	GetByID(ctx context.Context, owner id.UserID, noteID id.NoteID) (*models.Note, error)

	// UpdateText replaces the note's text and bumps UpdatedAt.
	UpdateText(ctx context.Context, owner id.UserID, noteID id.NoteID, text string) (*models.Note, error)

	// Delete removes the note, or returns a not-found error.
	Delete(ctx context.Context, owner id.UserID, noteID id.NoteID) error

	// ListByAuthor returns the owner's notes, newest CreatedAt first.
	ListByAuthor(ctx context.Context, owner id.UserID) ([]*models.Note, error)

	// NewestID returns the ID of the owner's most recently created note.
	// found is false when the owner has no notes.
	NewestID(ctx context.Context, owner id.UserID) (noteID id.NoteID, found bool, err error)
}
