package services

import (
	"context"
	"time"

	"authcore/internal/auth/domain/services"
)

// ResetTokenService выпускает и проверяет токены сброса пароля.
type ResetTokenService interface {
	Issue(ctx context.Context, now time.Time) (*services.ResetToken, error)

	Validate(presented string, storedHash *string, storedExpiry *time.Time, now time.Time) error

	HashToken(token string) string
}

// ResetNotification - данные для доставки токена сброса пользователю.
type ResetNotification struct {
	UserID    string
	Email     string
	Username  string
	Token     string
	ExpiresAt time.Time
}

// ResetNotifier передает токен сброса во внешнюю доставку.
type ResetNotifier interface {
	NotifyPasswordReset(ctx context.Context, n ResetNotification) error
}
