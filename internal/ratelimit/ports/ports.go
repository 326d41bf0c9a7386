// Package ports defines the shared interfaces of the ratelimit module.
package ports

import (
	"context"
	"time"

	"inkpad/internal/ratelimit/models"
)

// BucketStore manages rate limit counters. Implementations must make the
// check-and-increment atomic for a single key; cross-process atomicity is
// only guaranteed by shared-store implementations.
type BucketStore interface {
	// Allow checks if a request is allowed and consumes one token if so.
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)

	// Reset clears the rate limit counter for a key.
	Reset(ctx context.Context, key string) error

	// CurrentCount returns the current request count in the window.
	CurrentCount(ctx context.Context, key string) (int, error)
}
