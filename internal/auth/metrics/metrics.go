// Package metrics содержит prometheus метрики сервиса аутентификации.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Исходы операций.
const (
	OutcomeSuccess            = "success"
	OutcomeInvalidCredentials = "invalid_credentials"
	OutcomeInactive           = "inactive"
	OutcomeWeakPassword       = "weak_password"
	OutcomeExpired            = "expired"
	OutcomeMismatch           = "mismatch"
	OutcomeAbsent             = "absent"
	OutcomeInvalidated        = "invalidated"
	OutcomeInvalid            = "invalid"
	OutcomeUnknownAccount     = "unknown_account"
	OutcomeError              = "error"
)

const namespace = "authcore"

// Metrics объединяет счетчики и гистограммы сервиса.
// Нулевой указатель допустим: все методы становятся no-op.
type Metrics struct {
	logins          *prometheus.CounterVec
	sessions        *prometheus.CounterVec
	passwordChanges *prometheus.CounterVec
	resetRequests   *prometheus.CounterVec
	resetCompletes  *prometheus.CounterVec
	rehashes        prometheus.Counter
	rateLimited     *prometheus.CounterVec
	resetsCleared   prometheus.Counter
	httpRequests    *prometheus.CounterVec
	httpLatency     *prometheus.HistogramVec
}

// New создает метрики и регистрирует их в reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Login attempts by outcome.",
		}, []string{"outcome"}),
		sessions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_validations_total",
			Help:      "Session validations by outcome.",
		}, []string{"outcome"}),
		passwordChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_changes_total",
			Help:      "Password changes by outcome.",
		}, []string{"outcome"}),
		resetRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_reset_requests_total",
			Help:      "Password reset requests by outcome.",
		}, []string{"outcome"}),
		resetCompletes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_reset_completions_total",
			Help:      "Password reset completions by outcome.",
		}, []string{"outcome"}),
		rehashes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "password_rehashes_total",
			Help:      "Stored hashes upgraded after successful login.",
		}),
		rateLimited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rate_limited_total",
			Help:      "Requests rejected by the rate limiter.",
		}, []string{"route"}),
		resetsCleared: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expired_resets_cleared_total",
			Help:      "Expired reset tokens removed by the janitor.",
		}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Count of HTTP requests",
		}, []string{"path", "method", "status"}),
		httpLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Latency of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"path", "method"}),
	}

	reg.MustRegister(
		m.logins,
		m.sessions,
		m.passwordChanges,
		m.resetRequests,
		m.resetCompletes,
		m.rehashes,
		m.rateLimited,
		m.resetsCleared,
		m.httpRequests,
		m.httpLatency,
	)

	return m
}

// LoginAttempt учитывает попытку входа.
func (m *Metrics) LoginAttempt(outcome string) {
	if m == nil {
		return
	}
	m.logins.WithLabelValues(outcome).Inc()
}

// SessionValidation учитывает проверку сессии.
func (m *Metrics) SessionValidation(outcome string) {
	if m == nil {
		return
	}
	m.sessions.WithLabelValues(outcome).Inc()
}

// PasswordChange учитывает смену пароля.
func (m *Metrics) PasswordChange(outcome string) {
	if m == nil {
		return
	}
	m.passwordChanges.WithLabelValues(outcome).Inc()
}

// ResetRequested учитывает запрос сброса.
func (m *Metrics) ResetRequested(outcome string) {
	if m == nil {
		return
	}
	m.resetRequests.WithLabelValues(outcome).Inc()
}

// ResetCompleted учитывает завершение сброса.
func (m *Metrics) ResetCompleted(outcome string) {
	if m == nil {
		return
	}
	m.resetCompletes.WithLabelValues(outcome).Inc()
}

// Rehashed учитывает обновление хеша при входе.
func (m *Metrics) Rehashed() {
	if m == nil {
		return
	}
	m.rehashes.Inc()
}

// RateLimited учитывает отклоненный лимитером запрос.
func (m *Metrics) RateLimited(route string) {
	if m == nil {
		return
	}
	m.rateLimited.WithLabelValues(route).Inc()
}

// ResetsCleared учитывает удаленные просроченные токены.
func (m *Metrics) ResetsCleared(n int64) {
	if m == nil || n <= 0 {
		return
	}
	m.resetsCleared.Add(float64(n))
}

// ObserveHTTP учитывает завершенный HTTP запрос.
func (m *Metrics) ObserveHTTP(path, method, status string, seconds float64) {
	if m == nil {
		return
	}
	m.httpRequests.WithLabelValues(path, method, status).Inc()
	m.httpLatency.WithLabelValues(path, method).Observe(seconds)
}
