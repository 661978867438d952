package handlers

import (
	"errors"
	"strings"

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
	LogHandlerRegister       = "auth handler: register"
	LogHandlerLogin          = "auth handler: login"
	LogHandlerForgotPassword = "auth handler: forgot password"
	LogHandlerResetPassword  = "auth handler: reset password"

	ErrorInvalidRequest       = "invalid request"
	ErrorFailedToServeRequest = "failed to serve request"
)

// AuthHandler содержит публичные HTTP обработчики аутентификации.
type AuthHandler struct {
	auth api.AuthUseCase
}

// NewAuthHandler создает новый экземпляр обработчика авторизации.
func NewAuthHandler(auth api.AuthUseCase) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// Register обрабатывает запрос на регистрацию нового пользователя.
func (h *AuthHandler) Register(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerRegister)

	var req dto.RegisterRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return writeValidationError(ctx, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	req.Username = strings.TrimSpace(req.Username)
	if err := validation.Struct(req); err != nil {
		return writeValidationError(ctx, err)
	}

	user, err := h.auth.Register(requestCtx, req.Email, req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailAlreadyExists):
			return writeJSON(ctx, fiber.StatusConflict, dto.ErrorResponse{Error: MsgEmailTaken, Field: "email"})
		case errors.Is(err, services.ErrUsernameAlreadyExists):
			return writeJSON(ctx, fiber.StatusConflict, dto.ErrorResponse{Error: MsgUsernameTaken, Field: "username"})
		case errors.Is(err, services.ErrWeakPassword):
			return writeJSON(ctx, fiber.StatusBadRequest, dto.ErrorResponse{
				Error: MsgInvalidPayload, Details: weakPasswordDetails("password", err),
			})
		case errors.Is(err, entities.ErrInvalidEmail):
			return writeJSON(ctx, fiber.StatusBadRequest, dto.ErrorResponse{
				Error: MsgInvalidPayload, Details: map[string]string{"email": "must be a valid email"},
			})
		case errors.Is(err, entities.ErrEmptyUsername):
			return writeJSON(ctx, fiber.StatusBadRequest, dto.ErrorResponse{
				Error: MsgInvalidPayload, Details: map[string]string{"username": "is required"},
			})
		}
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, fiber.StatusInternalServerError, MsgInternalError)
	}

	return writeJSON(ctx, fiber.StatusCreated, dto.NewUserProfile(user))
}

// Login обрабатывает запрос на вход пользователя. Неверные учетные данные
// и неактивная учетная запись дают один и тот же ответ.
func (h *AuthHandler) Login(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerLogin)

	var req dto.LoginRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return writeValidationError(ctx, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return writeValidationError(ctx, err)
	}

	session, err := h.auth.Authenticate(requestCtx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) || errors.Is(err, services.ErrAccountInactive) {
			return writeJSON(ctx, fiber.StatusUnauthorized, dto.ErrorResponse{
				Error: MsgInvalidCredentials, Field: "email",
			})
		}
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, fiber.StatusInternalServerError, MsgInternalError)
	}

	return writeJSON(ctx, fiber.StatusOK, dto.NewSessionResponse(session))
}

// ForgotPassword всегда отвечает одинаково для существующих и неизвестных email.
func (h *AuthHandler) ForgotPassword(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerForgotPassword)

	var req dto.ForgotPasswordRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return writeValidationError(ctx, err)
	}
	req.Email = strings.TrimSpace(req.Email)
	if err := validation.Struct(req); err != nil {
		return writeValidationError(ctx, err)
	}

	if _, err := h.auth.RequestPasswordReset(requestCtx, req.Email); err != nil {
		if errors.Is(err, entities.ErrInvalidEmail) {
			return writeJSON(ctx, fiber.StatusBadRequest, dto.ErrorResponse{
				Error: MsgInvalidPayload, Details: map[string]string{"email": "must be a valid email"},
			})
		}
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, fiber.StatusInternalServerError, MsgInternalError)
	}

	return writeJSON(ctx, fiber.StatusAccepted, dto.MessageResponse{Message: MsgResetSent})
}

// ResetPassword погашает токен сброса. Истекший, чужой и отсутствующий токен неразличимы.
func (h *AuthHandler) ResetPassword(ctx fiber.Ctx) error {
	requestCtx := middleware.RequestContext(ctx)
	log := logger.Log(requestCtx)
	log.Debug(requestCtx, LogHandlerResetPassword)

	var req dto.ResetPasswordRequest
	if err := ctx.Bind().JSON(&req); err != nil {
		log.Debug(requestCtx, ErrorInvalidRequest, zap.Error(err))
		return writeValidationError(ctx, err)
	}
	req.Token = strings.TrimSpace(req.Token)
	if err := validation.Struct(req); err != nil {
		return writeValidationError(ctx, err)
	}

	if err := h.auth.ResetPassword(requestCtx, req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, services.ErrWeakPassword):
			return writeJSON(ctx, fiber.StatusBadRequest, dto.ErrorResponse{
				Error: MsgInvalidPayload, Details: weakPasswordDetails("new_password", err),
			})
		case isResetFailure(err):
			return writeError(ctx, fiber.StatusBadRequest, MsgResetInvalid)
		}
		log.Error(requestCtx, ErrorFailedToServeRequest, zap.Error(err))
		return writeError(ctx, fiber.StatusInternalServerError, MsgInternalError)
	}

	return writeJSON(ctx, fiber.StatusOK, dto.MessageResponse{Message: MsgPasswordReset})
}
