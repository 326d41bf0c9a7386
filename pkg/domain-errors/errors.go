// Package domainerrors defines the error taxonomy shared by services and the
// HTTP layer. Services wrap causes with a code; the transport layer maps the
// code to a status and decides which descriptions are safe to echo.
package domainerrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code classifies an error for transport mapping and client retry decisions.
type Code string

const (
	// CodeUnauthorized: no resolved identity. User-facing as "please log in".
	CodeUnauthorized Code = "unauthorized"
	// CodeRateLimited: a rate budget is exhausted. Carries retry-after semantics.
	CodeRateLimited Code = "rate_limited"
	// CodeInvalidInput: input outside accepted constraints (e.g. oversized note text).
	CodeInvalidInput Code = "invalid_input"
	// CodeOriginForbidden: cross-origin request from an origin not on the allow-list.
	CodeOriginForbidden Code = "origin_forbidden"
	// CodeNotFound: the addressed resource does not exist or is not owned by the caller.
	CodeNotFound Code = "not_found"
	// CodeUpstream: the external model or identity provider failed. The cause is
	// logged but never echoed to the client.
	CodeUpstream Code = "upstream_error"
	// CodeInternal: everything else. Description is omitted from responses.
	CodeInternal Code = "internal_error"
)

// Error carries a code, a human-readable message and an optional cause.
type Error struct {
	Code    Code
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.cause }

// New creates a domain error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Newf creates a domain error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an underlying cause.
func Wrap(cause error, code Code, message string) error {
	if cause == nil {
		return nil
	}
	return &Error{Code: code, Message: message, cause: cause}
}

// HasCode reports whether err carries the given code anywhere in its chain.
func HasCode(err error, code Code) bool {
	var de *Error
	if errors.As(err, &de) {
		return de.Code == code
	}
	return false
}

// CodeOf extracts the code from err, defaulting to CodeInternal.
func CodeOf(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// MessageOf extracts the domain message from err, empty when err is not a
// domain error.
func MessageOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ToHTTPStatus maps an error code to its HTTP response status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeRateLimited:
		return http.StatusTooManyRequests
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeOriginForbidden:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeUpstream:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
