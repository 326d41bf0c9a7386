// Package origin validates cross-origin requests against the configured
// allow-list before they reach business logic.
package origin

// Decision is the outcome of an origin check.
type Decision int

const (
	// Pass means the request may proceed. Allowed reports whether CORS
	// response headers should be attached (only for allow-listed origins).
	Pass Decision = iota
	// Reject means the declared origin is not allow-listed.
	Reject
)

// Guard holds the configured origin allow-list. It makes a pure pass/reject
// decision and never touches application state.
type Guard struct {
	allowed map[string]struct{}
}

// NewGuard builds a Guard from the deployment's allowed origins.
func NewGuard(allowedOrigins []string) *Guard {
	allowed := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o != "" {
			allowed[o] = struct{}{}
		}
	}
	return &Guard{allowed: allowed}
}

// Check evaluates a request's declared origin.
//
// An empty origin always passes: same-origin requests carry no Origin
// header, and its absence is not a signal of attack. A declared origin
// passes only when allow-listed.
func (g *Guard) Check(origin string) Decision {
	if origin == "" {
		return Pass
	}
	if _, ok := g.allowed[origin]; ok {
		return Pass
	}
	return Reject
}

// Allowed reports whether the origin is explicitly allow-listed, i.e.
// whether CORS headers should be attached to the response.
func (g *Guard) Allowed(origin string) bool {
	_, ok := g.allowed[origin]
	return origin != "" && ok
}
