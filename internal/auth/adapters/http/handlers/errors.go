// Package handlers содержит HTTP обработчики сервиса аутентификации.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v3"

	"authcore/internal/auth/adapters/http/dto"
	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
	"authcore/pkg/validation"
)

// Сообщения, видимые клиенту.
const (
	MsgInvalidCredentials = "Invalid email or password"
	MsgResetInvalid       = "Reset link is invalid or has expired"
	MsgResetSent          = "If an account exists for this email, a reset link has been sent"
	MsgPasswordReset      = "Password has been reset"
	MsgInvalidPayload     = "invalid payload"
	MsgInternalError      = "Internal Server Error"
	MsgEmailTaken         = "Email is already registered"
	MsgUsernameTaken      = "Username is already taken"
	MsgCurrentPassword    = "Current password is incorrect"
	MsgUnauthorized       = "Unauthorized"
)

// ErrorHandler - обработчик ошибок fiber для ошибок, не оформленных обработчиками.
func ErrorHandler(ctx fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := MsgInternalError

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	return ctx.Status(code).JSON(dto.ErrorResponse{Error: msg})
}

func writeJSON(ctx fiber.Ctx, status int, body any) error {
	return ctx.Status(status).JSON(body)
}

func writeError(ctx fiber.Ctx, status int, msg string) error {
	return writeJSON(ctx, status, dto.ErrorResponse{Error: msg})
}

func writeValidationError(ctx fiber.Ctx, err error) error {
	return writeJSON(ctx, fiber.StatusBadRequest, dto.ErrorResponse{
		Error:   MsgInvalidPayload,
		Details: validation.ToDetails(err),
	})
}

// weakPasswordDetails описывает нарушение политики пароля для поля field.
func weakPasswordDetails(field string, err error) map[string]string {
	switch {
	case errors.Is(err, entities.ErrPasswordTooShort):
		return map[string]string{field: entities.ErrPasswordTooShort.Error()}
	case errors.Is(err, entities.ErrPasswordTooLong):
		return map[string]string{field: entities.ErrPasswordTooLong.Error()}
	case errors.Is(err, entities.ErrPasswordTooWeak):
		return map[string]string{field: entities.ErrPasswordTooWeak.Error()}
	default:
		return map[string]string{field: services.ErrWeakPassword.Error()}
	}
}

// isResetFailure объединяет все причины отказа в сбросе в одну видимую клиенту.
func isResetFailure(err error) bool {
	return errors.Is(err, services.ErrResetTokenExpired) ||
		errors.Is(err, services.ErrResetTokenMismatch) ||
		errors.Is(err, services.ErrResetTokenAbsent) ||
		errors.Is(err, services.ErrAccountInactive)
}
