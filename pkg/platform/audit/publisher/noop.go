package publisher

import (
	"context"

	"inkpad/pkg/platform/audit"
)

// Noop discards audit events. Used when no brokers are configured so call
// sites never have to nil-check the publisher.
type Noop struct{}

func NewNoop() Noop { return Noop{} }

func (Noop) Emit(context.Context, audit.Event) error { return nil }
func (Noop) Close() error                            { return nil }
