// Package requestid assigns every request a correlation ID.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"inkpad/pkg/requestcontext"
)

// Header is the correlation header honored on ingress and set on egress.
const Header = "X-Request-Id"

// RequestID reuses the inbound X-Request-Id when present, otherwise
// generates one, and echoes it on the response for client-side correlation.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get(Header)
		if reqID == "" {
			reqID = uuid.NewString()
		}

		w.Header().Set(Header, reqID)

		ctx := requestcontext.WithRequestID(r.Context(), reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
