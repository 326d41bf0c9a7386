// Package handler exposes the notes HTTP API.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"inkpad/internal/notes/models"
	id "inkpad/pkg/domain"
	dErrors "inkpad/pkg/domain-errors"
	"inkpad/pkg/platform/httputil"
	"inkpad/pkg/requestcontext"
)

// Service defines the note operations the handler consumes.
type Service interface {
	Create(ctx context.Context, owner id.UserID) (*models.Note, error)
	Get(ctx context.Context, owner id.UserID, noteID id.NoteID) (*models.Note, error)
	UpdateText(ctx context.Context, owner id.UserID, noteID id.NoteID, text string) (*models.Note, error)
	Delete(ctx context.Context, owner id.UserID, noteID id.NoteID) error
	ListByOwner(ctx context.Context, owner id.UserID) ([]*models.Note, error)
	NewestNoteID(ctx context.Context, owner id.UserID) (id.NoteID, bool, error)
}

type Handler struct {
	notes  Service
	logger *slog.Logger
}

func New(notes Service, logger *slog.Logger) *Handler {
	return &Handler{notes: notes, logger: logger}
}

// Register mounts the notes routes. The router passed in already carries
// the guard chain (origin, rate limit, session) and RequireUser.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/create-new-note", h.handleCreate)
	r.Get("/api/fetch-newest-note", h.handleFetchNewest)
	r.Get("/api/notes", h.handleList)
	r.Get("/api/notes/{noteID}", h.handleGet)
	r.Put("/api/notes/{noteID}", h.handleUpdate)
	r.Delete("/api/notes/{noteID}", h.handleDelete)
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	note, err := h.notes.Create(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to create note", err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]string{"noteId": note.ID.String()})
}

func (h *Handler) handleFetchNewest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	noteID, found, err := h.notes.NewestNoteID(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to fetch newest note", err)
		return
	}

	// Absent is not an error: the client creates a first note on null.
	var newest *string
	if found {
		s := noteID.String()
		newest = &s
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]*string{"newestNoteId": newest})
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	notes, err := h.notes.ListByOwner(ctx, requestcontext.UserID(ctx))
	if err != nil {
		h.writeError(ctx, w, "failed to list notes", err)
		return
	}
	if notes == nil {
		notes = []*models.Note{}
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]any{"notes": notes})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	noteID, ok := h.noteIDParam(w, r)
	if !ok {
		return
	}

	note, err := h.notes.Get(ctx, requestcontext.UserID(ctx), noteID)
	if err != nil {
		h.writeError(ctx, w, "failed to get note", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, note)
}

type updateNoteRequest struct {
	Text string `json:"text"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	noteID, ok := h.noteIDParam(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeJSON[updateNoteRequest](w, r)
	if !ok {
		return
	}

	note, err := h.notes.UpdateText(ctx, requestcontext.UserID(ctx), noteID, req.Text)
	if err != nil {
		h.writeError(ctx, w, "failed to update note", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, note)
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	noteID, ok := h.noteIDParam(w, r)
	if !ok {
		return
	}

	if err := h.notes.Delete(ctx, requestcontext.UserID(ctx), noteID); err != nil {
		h.writeError(ctx, w, "failed to delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) noteIDParam(w http.ResponseWriter, r *http.Request) (id.NoteID, bool) {
	noteID, err := id.ParseNoteID(chi.URLParam(r, "noteID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.NoteID{}, false
	}
	return noteID, true
}

func (h *Handler) writeError(ctx context.Context, w http.ResponseWriter, msg string, err error) {
	switch dErrors.CodeOf(err) {
	case dErrors.CodeNotFound, dErrors.CodeInvalidInput, dErrors.CodeUnauthorized:
		h.logger.WarnContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	default:
		h.logger.ErrorContext(ctx, msg, "error", err, "request_id", requestcontext.RequestID(ctx))
	}
	httputil.WriteError(w, err)
}
