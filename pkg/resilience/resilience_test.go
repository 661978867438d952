package resilience_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/pkg/resilience"
)

var errBroker = errors.New("broker unavailable")

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func failing(context.Context) error    { return errBroker }
func succeeding(context.Context) error { return nil }

func TestCircuitBreaker(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)}
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{
		ErrorThreshold:   2,
		Timeout:          time.Minute,
		SuccessThreshold: 1,
	}, clock.Now)
	ctx := context.Background()

	require.ErrorIs(t, cb.Execute(ctx, failing), errBroker)
	assert.Equal(t, resilience.StateClosed, cb.State())

	require.ErrorIs(t, cb.Execute(ctx, failing), errBroker)
	assert.Equal(t, resilience.StateOpen, cb.State())

	calls := 0
	err := cb.Execute(ctx, func(context.Context) error { calls++; return nil })
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Zero(t, calls)

	clock.Advance(time.Minute)
	require.ErrorIs(t, cb.Execute(ctx, failing), errBroker)
	assert.Equal(t, resilience.StateOpen, cb.State(), "failed probe reopens the circuit")

	clock.Advance(time.Minute)
	require.NoError(t, cb.Execute(ctx, succeeding))
	assert.Equal(t, resilience.StateClosed, cb.State())
}

func TestCircuitBreaker_SuccessResetsFailures(t *testing.T) {
	cb := resilience.NewCircuitBreaker("test", resilience.CircuitBreakerConfig{
		ErrorThreshold: 2, Timeout: time.Minute, SuccessThreshold: 1,
	}, nil)
	ctx := context.Background()

	_ = cb.Execute(ctx, failing)
	require.NoError(t, cb.Execute(ctx, succeeding))
	_ = cb.Execute(ctx, failing)

	assert.Equal(t, resilience.StateClosed, cb.State())
}

func TestRetry(t *testing.T) {
	cfg := resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: time.Millisecond,
		MaxBackoff:     2 * time.Millisecond,
		BackoffFactor:  2,
	}

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := resilience.NewRetry("test", cfg).Execute(context.Background(), func(context.Context) error {
			calls++
			if calls < 3 {
				return errBroker
			}
			return nil
		})

		require.NoError(t, err)
		assert.Equal(t, 3, calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		calls := 0
		err := resilience.NewRetry("test", cfg).Execute(context.Background(), func(context.Context) error {
			calls++
			return errBroker
		})

		require.ErrorIs(t, err, errBroker)
		assert.Equal(t, 3, calls)
	})

	t.Run("does not retry non retryable errors", func(t *testing.T) {
		permanent := errors.New("permanent")
		custom := cfg
		custom.ShouldRetry = func(err error) bool { return !errors.Is(err, permanent) }

		calls := 0
		err := resilience.NewRetry("test", custom).Execute(context.Background(), func(context.Context) error {
			calls++
			return permanent
		})

		require.ErrorIs(t, err, permanent)
		assert.Equal(t, 1, calls)
	})

	t.Run("stops when context is canceled", func(t *testing.T) {
		slow := cfg
		slow.InitialBackoff = time.Hour
		slow.MaxBackoff = time.Hour

		ctx, cancel := context.WithCancel(context.Background())
		calls := 0
		err := resilience.NewRetry("test", slow).Execute(ctx, func(context.Context) error {
			calls++
			cancel()
			return errBroker
		})

		require.ErrorIs(t, err, resilience.ErrContextCanceled)
		require.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, calls)
	})
}

func TestPolicy(t *testing.T) {
	policy := resilience.NewPolicy("test",
		resilience.CircuitBreakerConfig{ErrorThreshold: 1, Timeout: time.Hour, SuccessThreshold: 1},
		resilience.RetryConfig{MaxAttempts: 2, InitialBackoff: time.Millisecond, BackoffFactor: 1},
		nil,
	)
	ctx := context.Background()

	calls := 0
	err := policy.Execute(ctx, func(context.Context) error {
		calls++
		return errBroker
	})
	require.ErrorIs(t, err, errBroker)
	assert.Equal(t, 2, calls, "one breaker call covers the whole retry series")
	assert.Equal(t, resilience.StateOpen, policy.State())

	err = policy.Execute(ctx, succeeding)
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
}
