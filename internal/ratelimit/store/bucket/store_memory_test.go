package bucket

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"inkpad/internal/ratelimit/models"
)

const (
	testLimit  = 10
	testWindow = time.Minute
)

type InMemoryBucketStoreSuite struct {
	suite.Suite
	store *InMemoryBucketStore
	ctx   context.Context
}

func TestInMemoryBucketStoreSuite(t *testing.T) {
	suite.Run(t, new(InMemoryBucketStoreSuite))
}

func (s *InMemoryBucketStoreSuite) SetupTest() {
	s.store = NewInMemoryBucketStore()
	s.ctx = context.Background()
}

func (s *InMemoryBucketStoreSuite) TestAllow() {
	s.Run("first request allowed", func() {
		result, err := s.store.Allow(s.ctx, "test:key:allow:first", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(testLimit-1, result.Remaining)
	})

	s.Run("requests up to limit allowed", func() {
		var result *models.Result
		var err error
		for range testLimit {
			result, err = s.store.Allow(s.ctx, "test:key:allow:limit", testLimit, testWindow)
		}
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit, result.Limit)
		s.Equal(0, result.Remaining)
	})

	s.Run("request over limit denied with retry hint", func() {
		for range testLimit {
			_, err := s.store.Allow(s.ctx, "test:key:allow:over", testLimit, testWindow)
			require.NoError(s.T(), err)
		}
		result, err := s.store.Allow(s.ctx, "test:key:allow:over", testLimit, testWindow)
		s.Require().NoError(err)
		s.False(result.Allowed)
		s.Equal(0, result.Remaining)
		s.Positive(result.RetryAfter)
		s.False(result.ResetAt.IsZero())
	})

	s.Run("after window expires requests allowed", func() {
		_, err := s.store.Allow(s.ctx, "test:key:allow:reset", testLimit, testWindow)
		s.Require().NoError(err)

		s.store.mu.Lock()
		if sw, exists := s.store.buckets["test:key:allow:reset"]; exists {
			sw.timestamps = []time.Time{}
		}
		s.store.mu.Unlock()

		result, err := s.store.Allow(s.ctx, "test:key:allow:reset", testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
		s.Equal(testLimit-1, result.Remaining)
	})

	s.Run("expired timestamps free capacity", func() {
		key := "test:key:allow:slide"
		for range testLimit {
			_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
			require.NoError(s.T(), err)
		}

		s.store.mu.Lock()
		sw := s.store.buckets[key]
		sw.timestamps[0] = time.Now().Add(-testWindow - time.Second)
		s.store.mu.Unlock()

		result, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
		s.True(result.Allowed)
	})
}

func (s *InMemoryBucketStoreSuite) TestReset() {
	for range testLimit {
		_, err := s.store.Allow(s.ctx, "test:key:reset", testLimit, testWindow)
		s.Require().NoError(err)
	}

	err := s.store.Reset(s.ctx, "test:key:reset")
	s.Require().NoError(err)

	result, err := s.store.Allow(s.ctx, "test:key:reset", testLimit, testWindow)
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.Equal(testLimit-1, result.Remaining)
}

func (s *InMemoryBucketStoreSuite) TestCurrentCount() {
	for range 3 {
		_, err := s.store.Allow(s.ctx, "test:key:count", testLimit, testWindow)
		s.Require().NoError(err)
	}

	n, err := s.store.CurrentCount(s.ctx, "test:key:count")
	s.Require().NoError(err)
	s.Equal(3, n)

	n, err = s.store.CurrentCount(s.ctx, "test:key:missing")
	s.Require().NoError(err)
	s.Equal(0, n)
}

// TestCurrentCountConcurrent exercises concurrent counting on one key, where
// each call compacts the window's timestamp slice. Run with -race.
func (s *InMemoryBucketStoreSuite) TestCurrentCountConcurrent() {
	key := "test:key:count:concurrent"
	for range 5 {
		_, err := s.store.Allow(s.ctx, key, testLimit, testWindow)
		s.Require().NoError(err)
	}

	var wg sync.WaitGroup
	for range 50 {
		wg.Go(func() {
			n, err := s.store.CurrentCount(s.ctx, key)
			s.Require().NoError(err)
			s.Equal(5, n)
		})
	}
	wg.Wait()
}

func (s *InMemoryBucketStoreSuite) TestConcurrent() {
	limit := 100 // Different from testLimit for concurrency testing
	key := "test:key:concurrent"
	var wg sync.WaitGroup
	var mu sync.Mutex
	allowedCount := 0

	for range 200 {
		wg.Go(func() {
			result, err := s.store.Allow(s.ctx, key, limit, testWindow)
			s.Require().NoError(err)
			if result.Allowed {
				mu.Lock()
				allowedCount++
				mu.Unlock()
			}
		})
	}

	wg.Wait()
	s.Equal(limit, allowedCount)
}
