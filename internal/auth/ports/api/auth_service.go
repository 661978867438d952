// Package api определяет входящие порты сервиса аутентификации.
package api

import (
	"context"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
)

// AuthUseCase определяет основной порт для операций аутентификации.
type AuthUseCase interface {
	Register(ctx context.Context, email, username, password string) (*entities.User, error)

	Authenticate(ctx context.Context, email, password string) (*services.Session, error)

	ValidateSession(ctx context.Context, token string) (*entities.User, error)

	ChangePassword(ctx context.Context, userID, newPassword string) error

	UpdatePassword(ctx context.Context, userID, currentPassword, newPassword string) (*services.Session, error)

	// RequestPasswordReset возвращает пустую строку, если активной учетной записи нет.
	RequestPasswordReset(ctx context.Context, email string) (string, error)

	ResetPassword(ctx context.Context, token, newPassword string) error
}
