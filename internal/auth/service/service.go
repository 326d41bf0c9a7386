// Package service implements the session gate: per-request resolution of
// access tokens to identities.
package service

import (
	"context"
	"errors"
	"log/slog"

	"inkpad/internal/auth/models"
	"inkpad/internal/auth/provider"
	dErrors "inkpad/pkg/domain-errors"
	"inkpad/pkg/platform/audit"
)

// Gate resolves tokens through a fresh provider instance per request.
type Gate struct {
	newProvider provider.Factory
	logger      *slog.Logger
	audit       audit.Publisher
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) { g.logger = logger }
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(g *Gate) { g.audit = publisher }
}

// New creates a Gate. The factory is required.
func New(newProvider provider.Factory, opts ...Option) (*Gate, error) {
	if newProvider == nil {
		return nil, errors.New("provider factory is required")
	}
	g := &Gate{newProvider: newProvider, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Resolve maps an access token to an identity. Fail-closed: every failure
// mode, including provider outages, yields "no identity", so a handler can
// only refuse, never act on a guessed principal. Unexpected provider errors
// are logged and audited; a plainly invalid token is just absent.
func (g *Gate) Resolve(ctx context.Context, accessToken string) (models.Identity, bool) {
	if accessToken == "" {
		return models.Identity{}, false
	}

	identity, err := g.newProvider().Resolve(ctx, accessToken)
	if err != nil {
		if !dErrors.HasCode(err, dErrors.CodeUnauthorized) {
			g.logger.ErrorContext(ctx, "identity resolution failed, treating as unauthenticated", "error", err)
			audit.Log(ctx, g.logger, g.audit, audit.Event{
				Action: audit.ActionIdentityResolveErr,
				Reason: dErrors.MessageOf(err),
			})
		}
		return models.Identity{}, false
	}

	return *identity, true
}
