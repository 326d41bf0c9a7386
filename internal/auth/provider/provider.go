// Package provider resolves access tokens against the external identity
// provider.
package provider

import (
	"context"

	"inkpad/internal/auth/models"
)

// Provider resolves an opaque access token to the identity it represents.
// A token that is invalid, expired, or unknown yields an error; callers
// treat any error as "no identity".
type Provider interface {
	Resolve(ctx context.Context, accessToken string) (*models.Identity, error)
}

// Factory builds a fresh Provider for each request. Resolution state is
// request-scoped: nothing identity-related is cached across requests, so a
// revoked token stops working on the very next call.
type Factory func() Provider
