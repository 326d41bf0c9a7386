// Package domain holds the typed identifiers shared across the service.
// Distinct UUID wrappers keep a note ID from ever being passed where a user
// ID is expected; the compiler enforces what a code review might miss.
package domain

import (
	"github.com/google/uuid"

	dErrors "inkpad/pkg/domain-errors"
)

// UserID identifies a principal resolved by the session gate.
type UserID uuid.UUID

// NoteID identifies a single note row.
type NoteID uuid.UUID

// ParseUserID parses and validates a user ID string.
// IDs must be valid, non-empty, non-nil UUIDs.
func ParseUserID(s string) (UserID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return UserID{}, err
	}
	return UserID(u), nil
}

// ParseNoteID parses and validates a note ID string.
func ParseNoteID(s string) (NoteID, error) {
	u, err := parseUUID(s)
	if err != nil {
		return NoteID{}, err
	}
	return NoteID(u), nil
}

// NewNoteID returns a fresh random note ID.
func NewNoteID() NoteID {
	return NoteID(uuid.New())
}

func (id UserID) String() string { return uuid.UUID(id).String() }
func (id UserID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

func (id NoteID) String() string { return uuid.UUID(id).String() }
func (id NoteID) IsNil() bool    { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps the wrappers JSON-compatible as plain UUID strings.

func (id UserID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *UserID) UnmarshalText(b []byte) error {
	parsed, err := ParseUserID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func (id NoteID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

func (id *NoteID) UnmarshalText(b []byte) error {
	parsed, err := ParseNoteID(string(b))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func parseUUID(s string) (uuid.UUID, error) {
	if s == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be empty")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.Wrap(err, dErrors.CodeInvalidInput, "id must be a valid UUID")
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "id cannot be the nil UUID")
	}
	return u, nil
}
