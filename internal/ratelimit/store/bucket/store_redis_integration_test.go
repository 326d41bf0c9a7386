//go:build integration

package bucket_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"inkpad/internal/ratelimit/store/bucket"
	"inkpad/pkg/testutil/containers"
)

type RedisStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *bucket.RedisBucketStore
}

func TestRedisStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisStoreSuite))
}

func (s *RedisStoreSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.store = bucket.NewRedis(s.redis.Client)
}

func (s *RedisStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisStoreSuite) TestWindowExhaustion() {
	ctx := context.Background()

	for i := range 5 {
		result, err := s.store.Allow(ctx, "key", 5, time.Minute)
		s.Require().NoError(err)
		s.True(result.Allowed, "request %d should be allowed", i+1)
		s.Equal(5-i-1, result.Remaining)
	}

	result, err := s.store.Allow(ctx, "key", 5, time.Minute)
	s.Require().NoError(err)
	s.False(result.Allowed)
	s.Zero(result.Remaining)
	s.GreaterOrEqual(result.RetryAfter, 1)
}

// TestConcurrentAllow verifies the Lua script enforces the limit atomically
// across concurrent callers (sum of allowed == limit).
func (s *RedisStoreSuite) TestConcurrentAllow() {
	ctx := context.Background()
	const limit = 10
	const goroutines = 50

	var wg sync.WaitGroup
	var allowed atomic.Int32

	for range goroutines {
		wg.Go(func() {
			result, err := s.store.Allow(ctx, "concurrent", limit, time.Minute)
			s.Require().NoError(err)
			if result.Allowed {
				allowed.Add(1)
			}
		})
	}
	wg.Wait()

	s.Equal(int32(limit), allowed.Load())

	count, err := s.store.CurrentCount(ctx, "concurrent")
	s.Require().NoError(err)
	s.Equal(goroutines, count)
}

func (s *RedisStoreSuite) TestWindowExpiry() {
	ctx := context.Background()

	for range 2 {
		_, err := s.store.Allow(ctx, "short", 2, 500*time.Millisecond)
		s.Require().NoError(err)
	}
	result, err := s.store.Allow(ctx, "short", 2, 500*time.Millisecond)
	s.Require().NoError(err)
	s.False(result.Allowed)

	time.Sleep(600 * time.Millisecond)

	result, err = s.store.Allow(ctx, "short", 2, 500*time.Millisecond)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisStoreSuite) TestReset() {
	ctx := context.Background()

	for range 3 {
		_, err := s.store.Allow(ctx, "resettable", 3, time.Minute)
		s.Require().NoError(err)
	}
	s.Require().NoError(s.store.Reset(ctx, "resettable"))

	count, err := s.store.CurrentCount(ctx, "resettable")
	s.Require().NoError(err)
	s.Zero(count)

	result, err := s.store.Allow(ctx, "resettable", 3, time.Minute)
	s.Require().NoError(err)
	s.True(result.Allowed)
}

func (s *RedisStoreSuite) TestKeysAreIndependent() {
	ctx := context.Background()

	_, err := s.store.Allow(ctx, "a", 1, time.Minute)
	s.Require().NoError(err)
	denied, err := s.store.Allow(ctx, "a", 1, time.Minute)
	s.Require().NoError(err)
	s.False(denied.Allowed)

	other, err := s.store.Allow(ctx, "b", 1, time.Minute)
	s.Require().NoError(err)
	s.True(other.Allowed)
}
