// Package http содержит компоненты HTTP сервера сервиса аутентификации.
package http

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"authcore/internal/auth/adapters/http/handlers"
	"authcore/internal/auth/adapters/http/middleware"
	"authcore/internal/auth/metrics"
	"authcore/internal/auth/ports/api"
	svc "authcore/internal/auth/ports/services"
)

// Dependencies содержит все, что нужно маршрутизатору.
type Dependencies struct {
	Auth     api.AuthUseCase
	Users    api.UserUseCase
	Limiter  svc.RateLimiter
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer

	LoginLimit  middleware.RateRule
	ForgotLimit middleware.RateRule
}

// NewApp создает fiber приложение с общим обработчиком ошибок.
func NewApp(appName string, readTimeout, writeTimeout time.Duration) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      appName,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		ErrorHandler: handlers.ErrorHandler,
	})
}

// SetupRouter настраивает маршрутизацию для HTTP сервера.
func SetupRouter(app *fiber.App, deps Dependencies) {
	authHandler := handlers.NewAuthHandler(deps.Auth)
	userHandler := handlers.NewUserHandler(deps.Auth, deps.Users)

	// Middleware для всех запросов.
	app.Use(middleware.NewRequestIDMiddleware())
	app.Use(middleware.NewLoggerMiddleware())
	app.Use(middleware.NewRecoveryMiddleware())
	app.Use(middleware.NewMetricsMiddleware(deps.Metrics))

	if deps.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	app.Get("/healthz", func(c fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	// API версии 1.
	apiV1 := app.Group("/api/v1")

	// Auth routes (публичные).
	authRoutes := apiV1.Group("/auth")
	authRoutes.Post("/register", authHandler.Register)
	authRoutes.Group("/login", middleware.NewRateLimitMiddleware(deps.Limiter, deps.LoginLimit, deps.Metrics)).
		Post("", authHandler.Login)
	authRoutes.Group("/password/forgot", middleware.NewRateLimitMiddleware(deps.Limiter, deps.ForgotLimit, deps.Metrics)).
		Post("", authHandler.ForgotPassword)
	authRoutes.Post("/password/reset", authHandler.ResetPassword)

	// Защищенные маршруты.
	userRoutes := apiV1.Group("/user")
	userRoutes.Use(middleware.NewAuthMiddleware(deps.Auth))
	userRoutes.Get("/me", userHandler.GetProfile)
	userRoutes.Patch("/me/password", userHandler.UpdatePassword)
	userRoutes.Delete("/me", userHandler.DeleteMe)

	// Обработчик для несуществующих маршрутов.
	app.Use(func(c fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Route not found",
		})
	})
}
