package middleware

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v3"

	"authcore/internal/auth/metrics"
)

// NewMetricsMiddleware учитывает число и длительность запросов по шаблону маршрута.
func NewMetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				status = fe.Code
			}
		}

		m.ObserveHTTP(ctx.Route().Path, ctx.Method(), strconv.Itoa(status), time.Since(start).Seconds())
		return err
	}
}
