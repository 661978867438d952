package middleware_test

import (
	"context"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/auth/adapters/http/middleware"
)

type stubLimiter struct {
	allowed bool
	err     error
	keys    []string
}

func (s *stubLimiter) Allow(_ context.Context, key string, _ int, _ time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.allowed, s.err
}

func newLimitedApp(limiter *stubLimiter, rule middleware.RateRule) *fiber.App {
	app := fiber.New()
	app.Post("/login", middleware.NewRateLimitMiddleware(limiter, rule, nil), func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusNoContent)
	})
	return app
}

func TestRateLimitMiddleware(t *testing.T) {
	rule := middleware.RateRule{Name: "login", Limit: 5, Window: time.Minute}

	tests := []struct {
		name           string
		limiter        *stubLimiter
		rule           middleware.RateRule
		wantStatus     int
		wantRetryAfter string
	}{
		{
			name:       "allowed",
			limiter:    &stubLimiter{allowed: true},
			rule:       rule,
			wantStatus: fiber.StatusNoContent,
		},
		{
			name:           "blocked",
			limiter:        &stubLimiter{allowed: false},
			rule:           rule,
			wantStatus:     fiber.StatusTooManyRequests,
			wantRetryAfter: "60",
		},
		{
			name:       "store error passes request through",
			limiter:    &stubLimiter{allowed: false, err: errors.New("redis: connection refused")},
			rule:       rule,
			wantStatus: fiber.StatusNoContent,
		},
		{
			name:       "zero rule disables limiting",
			limiter:    &stubLimiter{allowed: false},
			rule:       middleware.RateRule{Name: "login"},
			wantStatus: fiber.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newLimitedApp(tt.limiter, tt.rule)

			resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
			require.NoError(t, err)
			defer resp.Body.Close()

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantRetryAfter, resp.Header.Get(fiber.HeaderRetryAfter))
		})
	}
}

func TestRateLimitMiddleware_KeyIncludesRule(t *testing.T) {
	limiter := &stubLimiter{allowed: true}
	app := newLimitedApp(limiter, middleware.RateRule{Name: "forgot", Limit: 1, Window: time.Minute})

	resp, err := app.Test(httptest.NewRequest(fiber.MethodPost, "/login", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	require.Len(t, limiter.keys, 1)
	assert.True(t, strings.HasPrefix(limiter.keys[0], "forgot:"), limiter.keys[0])
}
