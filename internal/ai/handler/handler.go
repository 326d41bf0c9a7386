// Package handler exposes the AI query endpoint.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	dErrors "inkpad/pkg/domain-errors"
	"inkpad/pkg/platform/httputil"
	"inkpad/pkg/requestcontext"
)

// Service defines the orchestrator surface the handler consumes.
type Service interface {
	Ask(ctx context.Context, questions, priorAnswers []string) (string, error)
}

type Handler struct {
	ai     Service
	logger *slog.Logger
}

func New(ai Service, logger *slog.Logger) *Handler {
	return &Handler{ai: ai, logger: logger}
}

// Register mounts the AI route. The caller wires the AI rate policy into
// the orchestrator itself, so this route only needs the common guard chain.
func (h *Handler) Register(r chi.Router) {
	r.Post("/api/ask-ai", h.handleAsk)
}

type askRequest struct {
	Questions    []string `json:"questions"`
	PriorAnswers []string `json:"priorAnswers"`
}

type askResponse struct {
	Answer string `json:"answer"`
}

func (h *Handler) handleAsk(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	req, ok := httputil.DecodeJSON[askRequest](w, r)
	if !ok {
		return
	}

	answer, err := h.ai.Ask(ctx, req.Questions, req.PriorAnswers)
	if err != nil {
		switch dErrors.CodeOf(err) {
		case dErrors.CodeUnauthorized, dErrors.CodeRateLimited, dErrors.CodeInvalidInput:
			h.logger.WarnContext(ctx, "AI query rejected",
				"error", err, "request_id", requestcontext.RequestID(ctx))
		default:
			h.logger.ErrorContext(ctx, "AI query failed",
				"error", err, "request_id", requestcontext.RequestID(ctx))
		}
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, askResponse{Answer: answer})
}
