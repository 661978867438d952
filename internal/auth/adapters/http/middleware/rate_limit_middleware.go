package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"authcore/internal/auth/metrics"
	svc "authcore/internal/auth/ports/services"
	"authcore/pkg/logger"
)

// RateRule задает лимит запросов на маршрут с одного IP.
type RateRule struct {
	Name   string
	Limit  int
	Window time.Duration
}

// NewRateLimitMiddleware ограничивает частоту запросов по ключу IP + имя правила.
// Ошибка хранилища лимитера не блокирует запрос.
func NewRateLimitMiddleware(limiter svc.RateLimiter, rule RateRule, m *metrics.Metrics) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		if limiter == nil || rule.Limit <= 0 || rule.Window <= 0 {
			return ctx.Next()
		}

		requestCtx := RequestContext(ctx)
		key := rule.Name + ":" + ctx.IP()

		allowed, err := limiter.Allow(requestCtx, key, rule.Limit, rule.Window)
		if err != nil {
			logger.Log(requestCtx).Warn(requestCtx, "rate limiter unavailable",
				zap.String("rule", rule.Name), zap.Error(err))
			return ctx.Next()
		}

		ctx.Set("X-RateLimit-Limit", strconv.Itoa(rule.Limit))

		if !allowed {
			m.RateLimited(rule.Name)
			ctx.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(rule.Window.Seconds())))
			return ctx.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests",
			})
		}

		return ctx.Next()
	}
}
