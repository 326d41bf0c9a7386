package origin

import (
	"log/slog"
	"net/http"

	"inkpad/pkg/platform/audit"
	"inkpad/pkg/platform/httputil"
	"inkpad/pkg/platform/privacy"
	"inkpad/pkg/requestcontext"
)

// Middleware enforces the origin allow-list at the edge. Rejections
// short-circuit before rate limiting, session resolution or any business
// logic runs; passes for allow-listed origins get the CORS response headers
// browsers need to accept the round trip.
type Middleware struct {
	guard  *Guard
	logger *slog.Logger
	audit  audit.Publisher
}

func NewMiddleware(guard *Guard, logger *slog.Logger, publisher audit.Publisher) *Middleware {
	return &Middleware{guard: guard, logger: logger, audit: publisher}
}

// Handler wraps next with the origin check.
func (m *Middleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		declared := r.Header.Get("Origin")

		if m.guard.Check(declared) == Reject {
			ctx := r.Context()
			m.logger.WarnContext(ctx, "request rejected by origin guard",
				"origin", declared,
				"path", r.URL.Path,
				"ip_prefix", privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
				"request_id", requestcontext.RequestID(ctx),
			)
			audit.Log(ctx, m.logger, m.audit, audit.Event{
				Action:   audit.ActionOriginRejected,
				IPPrefix: privacy.AnonymizeIP(requestcontext.ClientIP(ctx)),
				Reason:   declared,
			})
			httputil.WriteJSON(w, http.StatusForbidden, map[string]string{
				"error": "CORS policy violation: Origin not allowed",
			})
			return
		}

		if m.guard.Allowed(declared) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", declared)
			h.Set("Access-Control-Allow-Credentials", "true")
			h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		}

		// Preflight is answered at the edge; it must not reach handlers.
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
