// Package services содержит доменные типы и ошибки сервисов аутентификации.
package services

import (
	"errors"
	"time"

	"authcore/internal/auth/domain/entities"
)

// Ошибки домена аутентификации.
var (
	ErrInvalidCredentials    = errors.New("invalid email or password")
	ErrAccountInactive       = errors.New("account is inactive")
	ErrEmailAlreadyExists    = errors.New("user with this email already exists")
	ErrUsernameAlreadyExists = errors.New("user with this username already exists")
	ErrInvalidSession        = errors.New("invalid session")
	ErrSessionInvalidated    = errors.New("session was issued before the last password change")
	ErrTokenGenerationFailed = errors.New("failed to generate authentication tokens")
)

// Session представляет выданный артефакт сессии.
type Session struct {
	User      *entities.User
	Token     string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// ChangedPasswordAfter сообщает, был ли пароль сменен строго позже выдачи сессии.
// Обе стороны сравниваются с точностью до секунды.
func ChangedPasswordAfter(sessionIssuedAt time.Time, passwordChangedAt *time.Time) bool {
	if passwordChangedAt == nil {
		return false
	}
	return passwordChangedAt.Unix() > sessionIssuedAt.Unix()
}
