// Package audit defines the security audit event model and the publisher
// contract. Domain logic emits events; sinks (Kafka, no-op) fan them out.
package audit

import (
	"context"
	"log/slog"
	"time"

	"inkpad/pkg/requestcontext"
)

// Event captures a security-relevant action. Keep it transport-agnostic so
// sinks can serialize it however they need.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	UserID    string    `json:"user_id,omitempty"`
	// IPPrefix is the anonymized client network, never the full address.
	IPPrefix  string `json:"ip_prefix,omitempty"`
	Reason    string `json:"reason,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Device    string `json:"device,omitempty"`
}

// Actions emitted by the request-guard chain.
const (
	ActionOriginRejected     = "origin_rejected"
	ActionRateLimitExceeded  = "rate_limit_exceeded"
	ActionRateLimitDegraded  = "rate_limit_degraded"
	ActionIdentityResolveErr = "identity_resolve_failed"
)

// Publisher emits audit events for security-relevant operations.
// Emit must never block request handling for long; sinks buffer or drop.
type Publisher interface {
	Emit(ctx context.Context, event Event) error
	Close() error
}

// Log emits an event to both the structured logger and the publisher.
// The publisher may be nil; publish failures are logged, not propagated,
// because an audit outage must not fail user requests.
func Log(ctx context.Context, logger *slog.Logger, publisher Publisher, event Event) {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.Device == "" {
		event.Device = requestcontext.DeviceInfo(ctx)
	}
	if event.UserID == "" {
		if userID := requestcontext.UserID(ctx); !userID.IsNil() {
			event.UserID = userID.String()
		}
	}

	if logger != nil {
		logger.InfoContext(ctx, event.Action,
			"log_type", "audit",
			"user_id", event.UserID,
			"ip_prefix", event.IPPrefix,
			"reason", event.Reason,
			"request_id", event.RequestID,
			"device", event.Device,
		)
	}

	if publisher == nil {
		return
	}
	if err := publisher.Emit(ctx, event); err != nil && logger != nil {
		logger.WarnContext(ctx, "failed to emit audit event", "action", event.Action, "error", err)
	}
}
