package models

import (
	"time"

	dErrors "inkpad/pkg/domain-errors"
)

// PolicyName identifies one of the named rate limit policies.
type PolicyName string

const (
	// PolicyAPI: general API endpoints, keyed by client IP.
	PolicyAPI PolicyName = "api"
	// PolicyAI: the model-query path, keyed by authenticated user ID.
	// Tighter than the API policy because each call has real monetary cost
	// against the external model.
	PolicyAI PolicyName = "ai"
	// PolicyAuth: login/signup attempts, keyed by IP, to blunt
	// credential-stuffing.
	PolicyAuth PolicyName = "auth"
)

// IsValid checks if the policy name is one of the supported values.
func (p PolicyName) IsValid() bool {
	switch p {
	case PolicyAPI, PolicyAI, PolicyAuth:
		return true
	}
	return false
}

// Policy defines a request budget: at most Limit acquisitions per Window
// for a single key.
type Policy struct {
	Name   PolicyName
	Limit  int
	Window time.Duration
}

// Validate enforces the policy invariants.
func (p Policy) Validate() error {
	if !p.Name.IsValid() {
		return dErrors.Newf(dErrors.CodeInvalidInput, "unknown rate limit policy %q", p.Name)
	}
	if p.Limit <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "rate limit must be positive")
	}
	if p.Window <= 0 {
		return dErrors.New(dErrors.CodeInvalidInput, "rate limit window must be positive")
	}
	return nil
}

// Result represents the outcome of a rate limit acquisition.
type Result struct {
	Allowed   bool      `json:"allowed"`
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"reset_at"`
	// RetryAfter is in seconds and only set when not allowed.
	RetryAfter int `json:"retry_after,omitempty"`
	// Degraded is set when the decision came from the in-process fallback
	// store instead of the shared primary.
	Degraded bool `json:"degraded,omitempty"`
}
