// Package models defines the auth domain types.
package models

import id "inkpad/pkg/domain"

// Identity is the principal resolved from a validated access token. It is
// derived per request and never persisted; the identity provider owns all
// credential state.
type Identity struct {
	UserID id.UserID
	Email  string
}
