// Package dto содержит объекты передачи данных HTTP границы сервиса.
package dto

import (
	"time"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
)

// RegisterRequest содержит данные для регистрации пользователя.
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,pwd"`
}

// LoginRequest содержит данные для входа пользователя.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,max=255"`
}

// ForgotPasswordRequest содержит email для выпуска токена сброса.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email,max=255"`
}

// ResetPasswordRequest содержит токен сброса и новый пароль.
type ResetPasswordRequest struct {
	Token       string `json:"token" validate:"required,max=512"`
	NewPassword string `json:"new_password" validate:"required,pwd"`
}

// UpdatePasswordRequest содержит текущий и новый пароль.
type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required,max=255"`
	NewPassword     string `json:"new_password" validate:"required,pwd"`
}

// UserProfileResponse - публичный профиль. Хеши сюда не попадают.
type UserProfileResponse struct {
	ID                string     `json:"id"`
	Username          string     `json:"username"`
	Email             string     `json:"email"`
	Role              string     `json:"role"`
	Photo             *string    `json:"photo,omitempty"`
	Active            bool       `json:"active"`
	Verified          bool       `json:"verified"`
	PasswordChangedAt *time.Time `json:"password_changed_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// SessionResponse содержит выданную сессию.
type SessionResponse struct {
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
	User      UserProfileResponse `json:"user"`
}

// MessageResponse - ответ без данных.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse - тело ответа с ошибкой.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Field   string            `json:"field,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// NewUserProfile строит публичный профиль из сущности.
func NewUserProfile(user *entities.User) UserProfileResponse {
	return UserProfileResponse{
		ID:                user.ID,
		Username:          user.Username,
		Email:             user.Email,
		Role:              string(user.Role),
		Photo:             user.Photo,
		Active:            user.Active,
		Verified:          user.Verified,
		PasswordChangedAt: user.PasswordChangedAt,
		CreatedAt:         user.CreatedAt,
	}
}

// NewSessionResponse строит ответ с сессией.
func NewSessionResponse(session *services.Session) SessionResponse {
	return SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      NewUserProfile(session.User),
	}
}
