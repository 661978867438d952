package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/auth/metrics"
)

func TestMetricsRegisterAndCount(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	m.LoginAttempt(metrics.OutcomeSuccess)
	m.LoginAttempt(metrics.OutcomeSuccess)
	m.LoginAttempt(metrics.OutcomeInvalidCredentials)
	m.ResetRequested(metrics.OutcomeSuccess)
	m.ResetCompleted(metrics.OutcomeExpired)
	m.SessionValidation(metrics.OutcomeInvalidated)
	m.PasswordChange(metrics.OutcomeSuccess)
	m.Rehashed()
	m.RateLimited("/api/v1/auth/login")
	m.ResetsCleared(4)
	m.ResetsCleared(0)
	m.ObserveHTTP("/api/v1/auth/login", "POST", "200", 0.01)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)

	count, err := testutil.GatherAndCount(reg, "authcore_login_attempts_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count, "two outcome series expected")

	count, err = testutil.GatherAndCount(reg, "http_requests_total", "http_request_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestMetricsDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	metrics.New(reg)

	assert.Panics(t, func() { metrics.New(reg) })
}

func TestNilMetricsAreNoop(t *testing.T) {
	var m *metrics.Metrics

	assert.NotPanics(t, func() {
		m.LoginAttempt(metrics.OutcomeSuccess)
		m.SessionValidation(metrics.OutcomeSuccess)
		m.PasswordChange(metrics.OutcomeSuccess)
		m.ResetRequested(metrics.OutcomeSuccess)
		m.ResetCompleted(metrics.OutcomeSuccess)
		m.Rehashed()
		m.RateLimited("x")
		m.ResetsCleared(1)
		m.ObserveHTTP("/", "GET", "200", 0)
	})
}
