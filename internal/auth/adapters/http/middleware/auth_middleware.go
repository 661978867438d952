package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
	"authcore/internal/auth/ports/api"
	"authcore/pkg/logger"
)

// Константы для логирования.
const (
	LogAuthMiddleware = "auth middleware"

	ErrorNoAuthHeader       = "no authorization header provided"
	ErrorInvalidTokenFormat = "invalid token format"
	ErrorUnauthorized       = "Unauthorized"
	ErrorSessionCheck       = "session check failed"

	localsUser = "user"
)

// NewAuthMiddleware проверяет bearer токен сессии и кладет пользователя в Locals.
func NewAuthMiddleware(auth api.AuthUseCase) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx).With(zap.String("middleware", "auth"))
		log.Debug(requestCtx, LogAuthMiddleware)

		authHeader := ctx.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			log.Debug(requestCtx, ErrorNoAuthHeader)
			return unauthorized(ctx)
		}

		token, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			log.Debug(requestCtx, ErrorInvalidTokenFormat)
			return unauthorized(ctx)
		}

		user, err := auth.ValidateSession(requestCtx, strings.TrimSpace(token))
		if err != nil {
			if errors.Is(err, services.ErrInvalidSession) ||
				errors.Is(err, services.ErrSessionInvalidated) ||
				errors.Is(err, services.ErrAccountInactive) {
				log.Debug(requestCtx, ErrorUnauthorized, zap.Error(err))
				return unauthorized(ctx)
			}
			log.Error(requestCtx, ErrorSessionCheck, zap.Error(err))
			return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Internal Server Error",
			})
		}

		ctx.Locals(localsUser, user)
		return ctx.Next()
	}
}

// CurrentUser возвращает пользователя, установленного NewAuthMiddleware.
func CurrentUser(ctx fiber.Ctx) (*entities.User, bool) {
	user, ok := ctx.Locals(localsUser).(*entities.User)
	return user, ok && user != nil
}

func unauthorized(ctx fiber.Ctx) error {
	ctx.Set(fiber.HeaderWWWAuthenticate, "Bearer")
	return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": ErrorUnauthorized,
	})
}
