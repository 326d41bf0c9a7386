// Package store provides NoteStore implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"inkpad/internal/notes/models"
	id "inkpad/pkg/domain"
	dErrors "inkpad/pkg/domain-errors"
	"inkpad/pkg/requestcontext"
)

// InMemoryStore is the development and test backend.
type InMemoryStore struct {
	mu    sync.RWMutex
	notes map[id.NoteID]*models.Note
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{notes: make(map[id.NoteID]*models.Note)}
}

func notFound() error {
	return dErrors.New(dErrors.CodeNotFound, "note not found")
}

func (s *InMemoryStore) Create(_ context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.notes[note.ID]; exists {
		return dErrors.New(dErrors.CodeInvalidInput, "note id already exists")
	}
	copied := *note
	s.notes[note.ID] = &copied
	return nil
}

func (s *InMemoryStore) GetByID(_ context.Context, owner id.UserID, noteID id.NoteID) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	note, ok := s.notes[noteID]
	if !ok || note.AuthorID != owner {
		return nil, notFound()
	}
	copied := *note
	return &copied, nil
}

func (s *InMemoryStore) UpdateText(ctx context.Context, owner id.UserID, noteID id.NoteID, text string) (*models.Note, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[noteID]
	if !ok || note.AuthorID != owner {
		return nil, notFound()
	}
	note.Text = text
	note.UpdatedAt = requestcontext.Now(ctx)
	copied := *note
	return &copied, nil
}

func (s *InMemoryStore) Delete(_ context.Context, owner id.UserID, noteID id.NoteID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	note, ok := s.notes[noteID]
	if !ok || note.AuthorID != owner {
		return notFound()
	}
	delete(s.notes, noteID)
	return nil
}

func (s *InMemoryStore) ListByAuthor(_ context.Context, owner id.UserID) ([]*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*models.Note
	for _, note := range s.notes {
		if note.AuthorID == owner {
			copied := *note
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *InMemoryStore) NewestID(ctx context.Context, owner id.UserID) (id.NoteID, bool, error) {
	notes, err := s.ListByAuthor(ctx, owner)
	if err != nil || len(notes) == 0 {
		return id.NoteID{}, false, err
	}
	return notes[0].ID, true, nil
}
