// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// Context keys and getter/setter functions live here so that services can
// consume values set by middleware without importing net/http. Middleware
// sets values; services and tests read or inject them:
//
//	identity, ok := requestcontext.Identity(ctx)
//	requestID := requestcontext.RequestID(ctx)
//	ctx = requestcontext.WithIdentity(ctx, identity)
package requestcontext

import (
	"context"
	"time"

	id "inkpad/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	identityKey    struct{}
	clientIPKey    struct{}
	userAgentKey   struct{}
	deviceInfoKey  struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// IdentityValue is the resolved principal for a request. It is set by the
// session gate once per request and discarded at request end; handlers must
// never accept a principal from client-supplied parameters.
type IdentityValue struct {
	UserID id.UserID
	Email  string
}

// Identity retrieves the resolved identity from the context.
// The second return is false when no identity was resolved.
func Identity(ctx context.Context) (IdentityValue, bool) {
	v, ok := ctx.Value(identityKey{}).(IdentityValue)
	return v, ok
}

// WithIdentity injects a resolved identity into the context.
func WithIdentity(ctx context.Context, identity IdentityValue) context.Context {
	return context.WithValue(ctx, identityKey{}, identity)
}

// UserID retrieves the authenticated user ID from the context.
// Returns the zero value (nil UUID) if no identity was resolved.
func UserID(ctx context.Context) id.UserID {
	if v, ok := Identity(ctx); ok {
		return v.UserID
	}
	return id.UserID{}
}

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the raw User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
// Useful for service unit tests that don't run the full HTTP middleware chain.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	ctx = context.WithValue(ctx, userAgentKey{}, userAgent)
	return ctx
}

// DeviceInfo retrieves the parsed browser/OS summary ("Firefox on Linux")
// from the context. Used for audit logging of auth-adjacent events.
func DeviceInfo(ctx context.Context) string {
	if d, ok := ctx.Value(deviceInfoKey{}).(string); ok {
		return d
	}
	return ""
}

// WithDeviceInfo injects a parsed device summary into the context.
func WithDeviceInfo(ctx context.Context, info string) context.Context {
	return context.WithValue(ctx, deviceInfoKey{}, info)
}

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context, pinning "now" for tests
// and batch operations.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
