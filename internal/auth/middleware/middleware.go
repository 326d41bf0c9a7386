// Package middleware attaches resolved identities to requests and guards
// routes that require one.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"inkpad/internal/auth/models"
	"inkpad/pkg/platform/httputil"
	"inkpad/pkg/requestcontext"
)

// Resolver is the session gate surface the middleware consumes.
type Resolver interface {
	Resolve(ctx context.Context, accessToken string) (models.Identity, bool)
}

type Middleware struct {
	gate         Resolver
	accessCookie string
	logger       *slog.Logger
}

func New(gate Resolver, accessCookie string, logger *slog.Logger) *Middleware {
	return &Middleware{gate: gate, accessCookie: accessCookie, logger: logger}
}

// TokenFromRequest extracts the access token: Authorization bearer header
// first, then the provider's access cookie. Empty when neither is present.
func (m *Middleware) TokenFromRequest(r *http.Request) string {
	if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
		return after
	}
	if cookie, err := r.Cookie(m.accessCookie); err == nil {
		return cookie.Value
	}
	return ""
}

// WithUser resolves the request's token, if any, and attaches the identity
// to the context. It never rejects; unauthenticated requests continue with
// no identity and downstream guards decide what that means.
func (m *Middleware) WithUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := m.TokenFromRequest(r)
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}

		ctx := r.Context()
		identity, ok := m.gate.Resolve(ctx, token)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}

		ctx = requestcontext.WithIdentity(ctx, requestcontext.IdentityValue{
			UserID: identity.UserID,
			Email:  identity.Email,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireUser rejects requests that reached it without a resolved identity.
func (m *Middleware) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if _, ok := requestcontext.Identity(ctx); !ok {
			m.logger.WarnContext(ctx, "unauthenticated request rejected",
				"path", r.URL.Path, "request_id", requestcontext.RequestID(ctx))
			httputil.WriteJSON(w, http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r)
	})
}
