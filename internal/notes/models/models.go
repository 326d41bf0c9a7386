// Package models defines the notes domain types.
package models

import (
	"time"

	id "inkpad/pkg/domain"
)

// Note is a single text note owned by exactly one user.
type Note struct {
	ID        id.NoteID `json:"id"`
	AuthorID  id.UserID `json:"authorId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Snapshot is the projection handed to the AI pipeline: content and
// timestamps only. Note IDs and author IDs never enter a prompt.
type Snapshot struct {
	Text      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Snapshot projects the note for prompt assembly.
func (n *Note) Snapshot() Snapshot {
	return Snapshot{Text: n.Text, CreatedAt: n.CreatedAt, UpdatedAt: n.UpdatedAt}
}
