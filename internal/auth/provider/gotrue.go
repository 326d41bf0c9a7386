package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"inkpad/internal/auth/models"
	"inkpad/internal/platform/config"
	id "inkpad/pkg/domain"
	dErrors "inkpad/pkg/domain-errors"
)

// GoTrueProvider resolves tokens by asking the identity provider's user
// endpoint. The provider stays the single source of truth for token
// validity; this process holds no credential state.
type GoTrueProvider struct {
	baseURL string
	anonKey string
	client  *http.Client
}

// NewGoTrue creates a provider against cfg.ProviderURL.
func NewGoTrue(cfg config.AuthConfig) *GoTrueProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &GoTrueProvider{
		baseURL: cfg.ProviderURL,
		anonKey: cfg.AnonKey,
		client:  &http.Client{Timeout: timeout},
	}
}

// userResponse is the subset of the provider's user object we consume.
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Resolve validates the token with GET /auth/v1/user.
func (p *GoTrueProvider) Resolve(ctx context.Context, accessToken string) (*models.Identity, error) {
	if accessToken == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "missing access token")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, fmt.Errorf("build user request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("apikey", p.anonKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("identity provider request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read identity provider response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "invalid or expired token")
	}
	if resp.StatusCode != http.StatusOK {
		return nil, dErrors.Newf(dErrors.CodeInternal, "identity provider returned status %d", resp.StatusCode)
	}

	var user userResponse
	if err := json.Unmarshal(body, &user); err != nil {
		return nil, fmt.Errorf("decode identity provider response: %w", err)
	}

	userID, err := id.ParseUserID(user.ID)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnauthorized, "identity provider returned malformed user id")
	}

	return &models.Identity{UserID: userID, Email: user.Email}, nil
}
