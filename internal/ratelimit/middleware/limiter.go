package middleware

import (
	"context"
	"log/slog"

	"inkpad/internal/ratelimit/metrics"
	"inkpad/internal/ratelimit/models"
	"inkpad/pkg/platform/audit"
)

// Acquirer is the limiter surface the middleware and orchestrator consume.
type Acquirer interface {
	Acquire(ctx context.Context, name models.PolicyName, identifier string) (*models.Result, error)
}

// Limiter composes a primary (shared-store) acquirer with an in-process
// fallback behind a circuit breaker. Every request probes the primary; after
// five consecutive primary errors the breaker opens and decisions come from
// the fallback until three consecutive primary checks succeed again.
type Limiter struct {
	primary  Acquirer
	fallback Acquirer
	breaker  *CircuitBreaker
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    audit.Publisher
}

type LimiterOption func(*Limiter)

func WithLimiterMetrics(m *metrics.Metrics) LimiterOption {
	return func(l *Limiter) { l.metrics = m }
}

func WithLimiterAuditPublisher(publisher audit.Publisher) LimiterOption {
	return func(l *Limiter) { l.audit = publisher }
}

// NewLimiter creates a Limiter. fallback may be nil, in which case primary
// errors always propagate to the caller.
func NewLimiter(primary, fallback Acquirer, logger *slog.Logger, opts ...LimiterOption) *Limiter {
	l := &Limiter{
		primary:  primary,
		fallback: fallback,
		breaker:  newCircuitBreaker(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Limiter) Acquire(ctx context.Context, name models.PolicyName, identifier string) (*models.Result, error) {
	result, err := l.primary.Acquire(ctx, name, identifier)
	if err == nil {
		if l.breaker.RecordSuccess() {
			l.setDegraded(false)
		}
		return result, nil
	}

	open := l.breaker.RecordFailure()
	if !open || l.fallback == nil {
		return nil, err
	}

	l.setDegraded(true)
	l.logger.WarnContext(ctx, "rate limit primary store unavailable, serving from fallback",
		"error", err, "policy", name)
	audit.Log(ctx, l.logger, l.audit, audit.Event{
		Action: audit.ActionRateLimitDegraded,
		Reason: string(name),
	})

	result, fbErr := l.fallback.Acquire(ctx, name, identifier)
	if fbErr != nil {
		return nil, fbErr
	}
	result.Degraded = true
	return result, nil
}

func (l *Limiter) setDegraded(degraded bool) {
	if l.metrics != nil {
		l.metrics.SetDegraded(degraded)
	}
}
