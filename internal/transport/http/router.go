// Package httptransport assembles the HTTP surface: the guard chain in its
// required order (origin check, rate limit, session resolution), the page
// routes with edge routing, and the authenticated API.
package httptransport

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	aihandler "inkpad/internal/ai/handler"
	authmiddleware "inkpad/internal/auth/middleware"
	noteshandler "inkpad/internal/notes/handler"
	"inkpad/internal/origin"
	rlmiddleware "inkpad/internal/ratelimit/middleware"
	"inkpad/internal/ratelimit/models"
	"inkpad/pkg/platform/httputil"
	"inkpad/pkg/platform/middleware/metadata"
	"inkpad/pkg/platform/middleware/requestid"
)

// Dependencies carries everything the router mounts. All fields are required.
type Dependencies struct {
	Logger *slog.Logger

	Origin    *origin.Middleware
	RateLimit *rlmiddleware.Middleware
	Auth      *authmiddleware.Middleware

	// Locator backs edge routing's get-or-create redirect on "/".
	Locator authmiddleware.NoteLocator

	Notes *noteshandler.Handler
	AI    *aihandler.Handler
}

// NewRouter builds the full route tree.
//
// Operational endpoints (/healthz, /metrics) sit outside the guard chain so
// probes and scrapers are never throttled or CORS-checked. Everything else
// passes origin → rate limit → session resolution, in that order.
func NewRouter(deps Dependencies) chi.Router {
	r := chi.NewRouter()

	r.Use(requestid.RequestID)
	r.Use(metadata.ClientMetadata)

	r.Get("/healthz", handleHealthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		r.Use(deps.Origin.Handler)
		r.Use(deps.RateLimit.PerIP(models.PolicyAPI))
		r.Use(deps.Auth.WithUser)

		// Page shells. The client app renders them; the server only
		// enforces the navigation rules.
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.EdgeRouting(deps.Locator))
			r.Get("/", servePage)
		})
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimit.PerIP(models.PolicyAuth))
			r.Use(deps.Auth.EdgeRouting(deps.Locator))
			r.Get("/login", servePage)
			r.Get("/sign-up", servePage)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireUser)
			deps.Notes.Register(r)
			deps.AI.Register(r)
		})
	})

	return r
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// servePage answers page routes that edge routing let through. The HTML
// shell itself ships with the client; this keeps the routes resolvable when
// the service runs standalone.
func servePage(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("<!doctype html><title>inkpad</title>\n"))
}
