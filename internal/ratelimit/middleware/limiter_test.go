package middleware

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"inkpad/internal/ratelimit/models"
)

// stubAcquirer scripts primary/fallback behavior for limiter tests.
type stubAcquirer struct {
	err    error
	calls  int
	result models.Result
}

func (a *stubAcquirer) Acquire(_ context.Context, _ models.PolicyName, _ string) (*models.Result, error) {
	a.calls++
	if a.err != nil {
		return nil, a.err
	}
	r := a.result
	return &r, nil
}

func allowedResult() models.Result {
	return models.Result{
		Allowed:   true,
		Limit:     10,
		Remaining: 9,
		ResetAt:   time.Now().Add(10 * time.Second),
	}
}

type LimiterSuite struct {
	suite.Suite
	ctx context.Context
}

func TestLimiterSuite(t *testing.T) {
	suite.Run(t, new(LimiterSuite))
}

func (s *LimiterSuite) SetupTest() {
	s.ctx = context.Background()
}

func (s *LimiterSuite) TestHealthyPrimary() {
	primary := &stubAcquirer{result: allowedResult()}
	fallback := &stubAcquirer{result: allowedResult()}
	limiter := NewLimiter(primary, fallback, slog.Default())

	result, err := limiter.Acquire(s.ctx, models.PolicyAPI, "10.0.0.1")
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.False(result.Degraded)
	s.Equal(0, fallback.calls)
}

func (s *LimiterSuite) TestErrorsPropagateBeforeCircuitOpens() {
	primary := &stubAcquirer{err: errors.New("connection refused")}
	fallback := &stubAcquirer{result: allowedResult()}
	limiter := NewLimiter(primary, fallback, slog.Default())

	for range 4 {
		_, err := limiter.Acquire(s.ctx, models.PolicyAPI, "10.0.0.1")
		s.Require().Error(err)
	}
	s.Equal(0, fallback.calls)
}

func (s *LimiterSuite) TestFallbackAfterCircuitOpens() {
	primary := &stubAcquirer{err: errors.New("connection refused")}
	fallback := &stubAcquirer{result: allowedResult()}
	limiter := NewLimiter(primary, fallback, slog.Default())

	for range 4 {
		_, _ = limiter.Acquire(s.ctx, models.PolicyAPI, "10.0.0.1")
	}

	result, err := limiter.Acquire(s.ctx, models.PolicyAPI, "10.0.0.1")
	s.Require().NoError(err)
	s.True(result.Allowed)
	s.True(result.Degraded)
	s.Equal(1, fallback.calls)
}

func (s *LimiterSuite) TestCircuitClosesAfterRecovery() {
	primary := &stubAcquirer{err: errors.New("connection refused")}
	fallback := &stubAcquirer{result: allowedResult()}
	limiter := NewLimiter(primary, fallback, slog.Default())

	for range 5 {
		_, _ = limiter.Acquire(s.ctx, models.PolicyAPI, "10.0.0.1")
	}
	s.True(limiter.breaker.IsOpen())

	primary.err = nil
	primary.result = allowedResult()
	for range 3 {
		result, err := limiter.Acquire(s.ctx, models.PolicyAPI, "10.0.0.1")
		s.Require().NoError(err)
		s.False(result.Degraded)
	}
	s.False(limiter.breaker.IsOpen())
}

func (s *LimiterSuite) TestNilFallbackPropagatesErrors() {
	primary := &stubAcquirer{err: errors.New("connection refused")}
	limiter := NewLimiter(primary, nil, slog.Default())

	for range 10 {
		_, err := limiter.Acquire(s.ctx, models.PolicyAPI, "10.0.0.1")
		s.Require().Error(err)
	}
}
