// Package service implements the rate limiter's decision logic over a
// pluggable bucket store.
package service

import (
	"context"
	"errors"
	"log/slog"

	"inkpad/internal/platform/config"
	"inkpad/internal/ratelimit/metrics"
	"inkpad/internal/ratelimit/models"
	"inkpad/internal/ratelimit/ports"
	dErrors "inkpad/pkg/domain-errors"
	"inkpad/pkg/platform/audit"
	"inkpad/pkg/requestcontext"
)

// BucketStore is re-exported so callers can depend on the service package
// without importing ports directly.
type BucketStore = ports.BucketStore

// Service resolves named policies and applies the atomic check-and-increment
// against the bucket store.
type Service struct {
	buckets  BucketStore
	policies map[models.PolicyName]models.Policy
	logger   *slog.Logger
	metrics  *metrics.Metrics
	audit    audit.Publisher
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) { s.audit = publisher }
}

// New builds a Service with the three named policies from configuration.
func New(buckets BucketStore, cfg config.RateLimitConfig, opts ...Option) (*Service, error) {
	if buckets == nil {
		return nil, errors.New("bucket store is required")
	}

	policies := map[models.PolicyName]models.Policy{
		models.PolicyAPI:  {Name: models.PolicyAPI, Limit: cfg.APILimit, Window: cfg.APIWindow},
		models.PolicyAI:   {Name: models.PolicyAI, Limit: cfg.AILimit, Window: cfg.AIWindow},
		models.PolicyAuth: {Name: models.PolicyAuth, Limit: cfg.AuthLimit, Window: cfg.AuthWindow},
	}
	for _, p := range policies {
		if err := p.Validate(); err != nil {
			return nil, err
		}
	}

	s := &Service{buckets: buckets, policies: policies}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Acquire consumes one token from the bucket for (policy, identifier).
//
// An unknown policy is default-deny: misconfiguration must never disable a
// budget silently.
func (s *Service) Acquire(ctx context.Context, name models.PolicyName, identifier string) (*models.Result, error) {
	policy, ok := s.policies[name]
	if !ok {
		if s.logger != nil {
			s.logger.ErrorContext(ctx, "rate limit policy not configured", "policy", name)
		}
		return &models.Result{
			Allowed:    false,
			ResetAt:    requestcontext.Now(ctx),
			RetryAfter: 60,
		}, nil
	}

	key := models.BucketKey(policy.Name, identifier)
	result, err := s.buckets.Allow(ctx, key, policy.Limit, policy.Window)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "rate limit check failed")
	}

	if s.metrics != nil {
		s.metrics.RecordCheck(string(policy.Name), result.Allowed)
	}
	if !result.Allowed {
		audit.Log(ctx, s.logger, s.audit, audit.Event{
			Action: audit.ActionRateLimitExceeded,
			Reason: string(policy.Name),
		})
	}

	return result, nil
}
