package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"authcore/internal/auth/app"
	"authcore/internal/auth/metrics"
)

func TestResetJanitorSweep(t *testing.T) {
	t.Run("clears expired tokens and counts them", func(t *testing.T) {
		repo := new(mockUserRepository)
		repo.On("ClearExpiredResets", mock.Anything, testNow).Return(int64(3), nil).Once()

		reg := prometheus.NewRegistry()
		janitor := app.NewResetJanitor(repo, time.Minute, fixedClock, metrics.New(reg))

		n, err := janitor.Sweep(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(3), n)

		count, err := testutil.GatherAndCount(reg, "authcore_expired_resets_cleared_total")
		require.NoError(t, err)
		assert.Equal(t, 1, count)
		repo.AssertExpectations(t)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(mockUserRepository)
		repo.On("ClearExpiredResets", mock.Anything, testNow).Return(int64(0), ErrDatabaseConnection).Once()

		_, err := app.NewResetJanitor(repo, time.Minute, fixedClock, nil).Sweep(context.Background())
		require.ErrorIs(t, err, ErrDatabaseConnection)
	})
}

func TestResetJanitorRunStopsOnCancel(t *testing.T) {
	repo := new(mockUserRepository)
	repo.On("ClearExpiredResets", mock.Anything, mock.Anything).Return(int64(0), nil).Maybe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		app.NewResetJanitor(repo, 5*time.Millisecond, nil, nil).Run(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop after cancel")
	}
}

func TestResetJanitorDisabled(t *testing.T) {
	done := make(chan struct{})
	go func() {
		app.NewResetJanitor(new(mockUserRepository), 0, nil, nil).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor with zero interval must return immediately")
	}
}
