package services

import (
	"errors"
	"time"
)

// Ошибки проверки токена сброса пароля.
var (
	ErrResetTokenExpired  = errors.New("reset token has expired")
	ErrResetTokenMismatch = errors.New("reset token does not match")
	ErrResetTokenAbsent   = errors.New("no password reset is outstanding")
)

// Параметры токена сброса.
const (
	ResetTokenBytes = 32
	DefaultResetTTL = 10 * time.Minute
)

// ResetToken - результат выпуска токена сброса. Token передается пользователю один раз,
// в хранилище попадают только Hash и ExpiresAt.
type ResetToken struct {
	Token     string
	Hash      string
	ExpiresAt time.Time
}
