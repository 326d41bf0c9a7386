// Package middleware provides HTTP rate limiting with a shared primary
// store, an in-process fallback, and a circuit breaker between them.
package middleware

import (
	"log/slog"
	"net/http"
	"strconv"

	"inkpad/internal/ratelimit/models"
	"inkpad/pkg/platform/httputil"
	"inkpad/pkg/platform/privacy"
	"inkpad/pkg/requestcontext"
)

// ExceededMessage is the client-facing denial text, shared with callers
// that enforce a budget in-service rather than through this middleware.
const ExceededMessage = "Too many requests. Please try again later."

// Middleware enforces named rate limit policies on HTTP routes.
type Middleware struct {
	limiter  Acquirer
	logger   *slog.Logger
	disabled bool
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) { m.disabled = disabled }
}

func New(limiter Acquirer, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{limiter: limiter, logger: logger}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// PerIP enforces the named policy keyed by client IP.
//
// A limiter backend error fails open: availability of the application is
// worth more than a best-effort budget, and the event is logged for
// operators. Deliberate denials are never affected.
func (m *Middleware) PerIP(policy models.PolicyName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)

			result, err := m.limiter.Acquire(ctx, policy, ip)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
					"error", err, "policy", policy, "ip_prefix", privacy.AnonymizeIP(ip))
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// PerUser enforces the named policy keyed by the authenticated user ID.
// Requests without a resolved identity fall back to IP keying so the
// budget still applies when this runs outside the authenticated chain.
func (m *Middleware) PerUser(policy models.PolicyName) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if m.disabled {
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			identifier := requestcontext.ClientIP(ctx)
			if userID := requestcontext.UserID(ctx); !userID.IsNil() {
				identifier = userID.String()
			}

			result, err := m.limiter.Acquire(ctx, policy, identifier)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed, allowing request",
					"error", err, "policy", policy)
				next.ServeHTTP(w, r)
				return
			}

			addRateLimitHeaders(w, result)

			if !result.Allowed {
				writeRateLimitExceeded(w, result)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// addRateLimitHeaders is set on every limited response, allowed or not, so
// well-behaved clients can pace themselves.
func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	if result == nil {
		return
	}
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
	if result.Degraded {
		w.Header().Set("X-RateLimit-Status", "degraded")
	}
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, map[string]string{
		"error": ExceededMessage,
	})
}
