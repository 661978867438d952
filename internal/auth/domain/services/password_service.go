package services

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"

	"authcore/internal/auth/domain/entities"
)

// PasswordErrors содержит ошибки, связанные с паролями.
var (
	ErrHashingFailed   = errors.New("failed to hash password")
	ErrInvalidPassword = errors.New("invalid password")
	ErrWeakPassword    = errors.New("password does not satisfy policy")
	ErrMalformedHash   = errors.New("malformed password hash")
)

// Границы длины пароля в символах.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 255
)

// ValidatePassword проверяет пароль на соответствие политике.
// Ошибка всегда оборачивает ErrWeakPassword и конкретную причину.
func ValidatePassword(password string, requireComplexity bool) error {
	length := utf8.RuneCountInString(password)
	if length < MinPasswordLength {
		return fmt.Errorf("%w: %w", ErrWeakPassword, entities.ErrPasswordTooShort)
	}
	if length > MaxPasswordLength {
		return fmt.Errorf("%w: %w", ErrWeakPassword, entities.ErrPasswordTooLong)
	}

	if !requireComplexity {
		return nil
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("%w: %w", ErrWeakPassword, entities.ErrPasswordTooWeak)
	}

	return nil
}
