package middleware

import (
	"context"
	"net/http"
	"net/url"

	id "inkpad/pkg/domain"
	"inkpad/pkg/requestcontext"
)

// NoteLocator finds or creates the note an authenticated user should land
// on. Implemented by the notes service; declared here so routing does not
// depend on the notes domain directly.
type NoteLocator interface {
	GetOrCreateNewest(ctx context.Context, owner id.UserID) (id.NoteID, error)
}

// EdgeRouting reproduces the app-shell navigation rules on the page routes:
//
//   - an authenticated user on /login or /sign-up is sent back to /
//   - an authenticated user on / without a noteId is sent to their newest
//     note, creating one first if they have none
//
// Unauthenticated requests are never redirected; the pages themselves
// render the signed-out state.
func (m *Middleware) EdgeRouting(locator NoteLocator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, authed := requestcontext.Identity(ctx)

			switch r.URL.Path {
			case "/login", "/sign-up":
				if authed {
					http.Redirect(w, r, "/", http.StatusFound)
					return
				}

			case "/":
				if authed && r.URL.Query().Get("noteId") == "" {
					noteID, err := locator.GetOrCreateNewest(ctx, identity.UserID)
					if err != nil {
						// Routing convenience must not take the page down.
						m.logger.ErrorContext(ctx, "newest note lookup failed, rendering without redirect", "error", err)
						break
					}
					u := url.URL{Path: "/", RawQuery: url.Values{"noteId": {noteID.String()}}.Encode()}
					http.Redirect(w, r, u.String(), http.StatusFound)
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}
