// Package entities содержит сущности домена аутентификации.
package entities

import (
	"errors"
	"time"
)

// Определяем ошибки домена пользователя как константы.
var (
	ErrEmptyUserID       = errors.New("user ID cannot be empty")
	ErrInvalidEmail      = errors.New("invalid email format")
	ErrEmptyUsername     = errors.New("username cannot be empty")
	ErrPasswordTooShort  = errors.New("password must contain at least 8 characters")
	ErrPasswordTooLong   = errors.New("password must contain at most 255 characters")
	ErrPasswordTooWeak   = errors.New("password must contain at least one letter and one digit")
	ErrEmptyPasswordHash = errors.New("password hash cannot be empty")
	ErrUserNotFound      = errors.New("user not found")
)

// Role - уровень доступа пользователя.
type Role string

// Поддерживаемые роли.
const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid сообщает, известна ли роль.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// State - состояние учетной записи относительно аутентификации.
type State string

// Состояния учетной записи.
const (
	StateActiveUnverified State = "active_unverified"
	StateActiveVerified   State = "active_verified"
	StateInactive         State = "inactive"
)

// User представляет основную сущность домена пользователя.
// Хеши пароля и токена сброса никогда не сериализуются.
type User struct {
	ID                     string     `json:"id"`
	Username               string     `json:"username"`
	Email                  string     `json:"email"`
	Role                   Role       `json:"role"`
	Photo                  *string    `json:"photo,omitempty"`
	PasswordHash           string     `json:"-"`
	PasswordChangedAt      *time.Time `json:"password_changed_at,omitempty"`
	PasswordResetTokenHash *string    `json:"-"`
	PasswordResetExpires   *time.Time `json:"-"`
	Active                 bool       `json:"active"`
	Verified               bool       `json:"verified"`
	CreatedAt              time.Time  `json:"created_at"`
	UpdatedAt              time.Time  `json:"updated_at"`
}

// NewUser создает активную неподтвержденную учетную запись с ролью по умолчанию.
func NewUser(email, username, passwordHash string) *User {
	return &User{
		Email:        email,
		Username:     username,
		Role:         RoleUser,
		PasswordHash: passwordHash,
		Active:       true,
	}
}

// State возвращает текущее состояние учетной записи.
func (u *User) State() State {
	switch {
	case !u.Active:
		return StateInactive
	case u.Verified:
		return StateActiveVerified
	default:
		return StateActiveUnverified
	}
}

// SetPassword заменяет хеш пароля, фиксирует момент смены с точностью до секунды
// и снимает любой ожидающий сброс.
func (u *User) SetPassword(hash string, at time.Time) error {
	if hash == "" {
		return ErrEmptyPasswordHash
	}

	changedAt := at.UTC().Truncate(time.Second)
	u.PasswordHash = hash
	u.PasswordChangedAt = &changedAt
	u.ClearResetToken()

	return nil
}

// SetResetToken сохраняет хеш токена сброса вместе со сроком его действия.
func (u *User) SetResetToken(hash string, expires time.Time) {
	expiresAt := expires.UTC()
	u.PasswordResetTokenHash = &hash
	u.PasswordResetExpires = &expiresAt
}

// ClearResetToken снимает оба поля сброса одновременно.
func (u *User) ClearResetToken() {
	u.PasswordResetTokenHash = nil
	u.PasswordResetExpires = nil
}

// HasPendingReset сообщает, ожидает ли учетная запись сброса пароля.
func (u *User) HasPendingReset() bool {
	return u.PasswordResetTokenHash != nil && u.PasswordResetExpires != nil
}
