// Package service implements the AI orchestrator: guards first, then one
// bounded model call over the caller's own notes.
package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"inkpad/internal/ai/llm"
	"inkpad/internal/ai/metrics"
	"inkpad/internal/ai/prompt"
	notemodels "inkpad/internal/notes/models"
	rlmodels "inkpad/internal/ratelimit/models"
	"inkpad/internal/sanitize"
	id "inkpad/pkg/domain"
	dErrors "inkpad/pkg/domain-errors"
	"inkpad/pkg/requestcontext"
)

const (
	// EmptyNotesAnswer is the fixed empty-state reply; no model call is made.
	EmptyNotesAnswer = "You don't have any notes yet."
	// fallbackAnswer covers a model reply with no content.
	fallbackAnswer = "A response could not be generated. Please try again."
)

// NotesReader supplies the caller's notes, newest first.
type NotesReader interface {
	Snapshots(ctx context.Context, owner id.UserID) ([]notemodels.Snapshot, error)
}

// Acquirer consumes from a named rate policy.
type Acquirer interface {
	Acquire(ctx context.Context, name rlmodels.PolicyName, identifier string) (*rlmodels.Result, error)
}

type Service struct {
	notes     NotesReader
	limiter   Acquirer
	completer llm.ChatCompleter
	logger    *slog.Logger
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(notes NotesReader, limiter Acquirer, completer llm.ChatCompleter, opts ...Option) (*Service, error) {
	if notes == nil || limiter == nil || completer == nil {
		return nil, errors.New("notes reader, limiter, and completer are required")
	}
	s := &Service{
		notes:     notes,
		limiter:   limiter,
		completer: completer,
		logger:    slog.Default(),
		tracer:    otel.Tracer("inkpad/ai"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Ask answers questions about the caller's notes. Guards run in order and
// abort before the model is ever invoked: identity, then the AI rate
// policy, then the empty-notes short circuit.
func (s *Service) Ask(ctx context.Context, questions, priorAnswers []string) (string, error) {
	identity, ok := requestcontext.Identity(ctx)
	if !ok {
		s.record("unauthorized")
		return "", dErrors.New(dErrors.CodeUnauthorized, "You must be logged in to ask AI questions")
	}

	if len(questions) == 0 {
		s.record("invalid")
		return "", dErrors.New(dErrors.CodeInvalidInput, "at least one question is required")
	}
	if len(priorAnswers) > len(questions) {
		s.record("invalid")
		return "", dErrors.New(dErrors.CodeInvalidInput, "more answers than questions")
	}

	result, err := s.limiter.Acquire(ctx, rlmodels.PolicyAI, identity.UserID.String())
	if err != nil {
		// Fail open like the HTTP limiter: a broken budget backend must not
		// take the feature down.
		s.logger.ErrorContext(ctx, "AI rate limit check failed, allowing request", "error", err)
	} else if !result.Allowed {
		s.record("rate_limited")
		return "", dErrors.New(dErrors.CodeRateLimited, "Too many requests. Please try again later.")
	}

	snapshots, err := s.notes.Snapshots(ctx, identity.UserID)
	if err != nil {
		s.record("error")
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load notes")
	}
	if len(snapshots) == 0 {
		s.record("empty_notes")
		return EmptyNotesAnswer, nil
	}

	messages := prompt.BuildMessages(ctx, snapshots, questions, priorAnswers)

	answer, err := s.complete(ctx, messages)
	if err != nil {
		s.record("upstream_error")
		s.logger.ErrorContext(ctx, "model call failed",
			"error", err, "request_id", requestcontext.RequestID(ctx))
		return "", dErrors.Wrap(err, dErrors.CodeUpstream, "AI request failed")
	}
	if answer == "" {
		s.record("empty_answer")
		return fallbackAnswer, nil
	}

	s.record("ok")
	return sanitize.ModelOutput(answer), nil
}

func (s *Service) complete(ctx context.Context, messages []llm.Message) (string, error) {
	ctx, span := s.tracer.Start(ctx, "llm.complete",
		trace.WithAttributes(attribute.Int("llm.messages", len(messages))))
	defer span.End()

	start := time.Now()
	answer, err := s.completer.Complete(ctx, messages)
	if s.metrics != nil {
		s.metrics.ObserveModelLatency(time.Since(start))
	}
	if err != nil {
		span.RecordError(err)
		return "", err
	}
	return answer, nil
}

func (s *Service) record(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordQuery(outcome)
	}
}
