package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"authcore/internal/auth/adapters/http/dto"
	"authcore/internal/auth/adapters/http/middleware"
	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
	"authcore/internal/auth/ports/api"
	"authcore/pkg/logger"
	"authcore/pkg/validation"
)

// Константы для логирования.
const (
	LogHandlerGetProfile     = "user handler: get profile"
	LogHandlerUpdatePassword = "user handler: update password"
	LogHandlerDeleteMe       = "user handler: delete me"
)

// UserHandler содержит обработчики для аутентифицированного пользователя.
type UserHandler struct {
	auth  api.AuthUseCase
	users api.UserUseCase
}

// NewUserHandler создает новый экземпляр обработчика пользователя.
func NewUserHandler(auth api.AuthUseCase, users api.UserUseCase) *UserHandler {
	return &UserHandler{auth: auth, users: users}
}

// GetProfile возвращает профиль текущего пользователя.
func (h *UserHandler) GetProfile(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerGetProfile)

	current, ok := middleware.CurrentUser(ctx)
	if !ok {
		return writeError(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	user, err := h.users.GetUserProfile(requestCtx, current.ID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return writeError(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
		}
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, fiber.StatusInternalServerError, MsgInternalError)
	}

	return writeJSON(ctx, fiber.StatusOK, dto.NewUserProfile(user))
}

// UpdatePassword меняет пароль после проверки текущего и возвращает новую сессию.
func (h *UserHandler) UpdatePassword(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerUpdatePassword)

	current, ok := middleware.CurrentUser(ctx)
	if !ok {
		return writeError(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	var req dto.UpdatePasswordRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return writeValidationError(ctx, err)
	}
	if err := validation.Struct(req); err != nil {
		return writeValidationError(ctx, err)
	}

	session, err := h.auth.UpdatePassword(requestCtx, current.ID, req.CurrentPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrWeakPassword):
			return writeJSON(ctx, fiber.StatusBadRequest, dto.ErrorResponse{
				Error: MsgInvalidPayload, Details: weakPasswordDetails("new_password", err),
			})
		case errors.Is(err, services.ErrInvalidCredentials):
			return writeJSON(ctx, fiber.StatusUnauthorized, dto.ErrorResponse{
				Error: MsgCurrentPassword, Field: "current_password",
			})
		case errors.Is(err, services.ErrAccountInactive), errors.Is(err, entities.ErrUserNotFound):
			return writeError(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
		}
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, fiber.StatusInternalServerError, MsgInternalError)
	}

	return writeJSON(ctx, fiber.StatusOK, dto.NewSessionResponse(session))
}

// DeleteMe мягко удаляет учетную запись текущего пользователя.
func (h *UserHandler) DeleteMe(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerDeleteMe)

	current, ok := middleware.CurrentUser(ctx)
	if !ok {
		return writeError(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
	}

	if err := h.users.Deactivate(requestCtx, current.ID); err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			return writeError(ctx, fiber.StatusUnauthorized, MsgUnauthorized)
		}
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, fiber.StatusInternalServerError, MsgInternalError)
	}

	return ctx.SendStatus(fiber.StatusNoContent)
}
