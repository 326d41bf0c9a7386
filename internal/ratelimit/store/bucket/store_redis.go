package bucket

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"inkpad/internal/ratelimit/models"
)

// incrScript performs the check-and-increment atomically server-side:
// increment, start the window on first hit, report count and remaining TTL.
// An expired key is simply gone, so its bucket is logically empty.
var incrScript = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
return {count, ttl}
`)

// RedisBucketStore implements ports.BucketStore on a shared Redis instance,
// giving cross-process atomicity for multi-instance deployments.
type RedisBucketStore struct {
	client redis.UniversalClient
}

// NewRedis creates a Redis-backed bucket store.
func NewRedis(client redis.UniversalClient) *RedisBucketStore {
	return &RedisBucketStore{client: client}
}

// Allow checks if a request is allowed and consumes one token if so.
func (s *RedisBucketStore) Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error) {
	raw, err := incrScript.Run(ctx, s.client, []string{key}, window.Milliseconds()).Result()
	if err != nil {
		return nil, fmt.Errorf("rate limit script: %w", err)
	}

	vals, ok := raw.([]any)
	if !ok || len(vals) != 2 {
		return nil, fmt.Errorf("rate limit script: unexpected reply %T", raw)
	}
	count, ok1 := vals[0].(int64)
	ttlMillis, ok2 := vals[1].(int64)
	if !ok1 || !ok2 {
		return nil, fmt.Errorf("rate limit script: unexpected reply values")
	}

	if ttlMillis < 0 {
		// PTTL reports -1 for keys without expiry; treat as a fresh window.
		ttlMillis = window.Milliseconds()
	}
	resetAt := time.Now().Add(time.Duration(ttlMillis) * time.Millisecond)

	if int(count) <= limit {
		return &models.Result{
			Allowed:   true,
			Limit:     limit,
			Remaining: limit - int(count),
			ResetAt:   resetAt,
		}, nil
	}

	retryAfter := int(ttlMillis / 1000)
	if retryAfter < 1 {
		retryAfter = 1
	}
	return &models.Result{
		Allowed:    false,
		Limit:      limit,
		Remaining:  0,
		ResetAt:    resetAt,
		RetryAfter: retryAfter,
	}, nil
}

// Reset clears the rate limit counter for a key.
func (s *RedisBucketStore) Reset(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

// CurrentCount returns the current request count for a key.
func (s *RedisBucketStore) CurrentCount(ctx context.Context, key string) (int, error) {
	n, err := s.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("rate limit count: %w", err)
	}
	return n, nil
}
