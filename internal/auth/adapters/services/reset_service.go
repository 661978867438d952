package services

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"time"

	"authcore/internal/auth/domain/services"
)

const errMsgReadingToken = "failed to read random token bytes"

// ServiceResetToken выпускает одноразовые токены сброса. В хранилище попадает только SHA-256.
type ServiceResetToken struct {
	ttl  time.Duration
	rand io.Reader
}

// NewResetToken создает генератор токенов сброса.
func NewResetToken(ttl time.Duration) *ServiceResetToken {
	return NewResetTokenWithReader(ttl, rand.Reader)
}

// NewResetTokenWithReader позволяет подменить источник случайности.
func NewResetTokenWithReader(ttl time.Duration, r io.Reader) *ServiceResetToken {
	if ttl <= 0 {
		ttl = services.DefaultResetTTL
	}
	return &ServiceResetToken{ttl: ttl, rand: r}
}

// Issue выпускает новый токен со сроком действия now + TTL.
func (s *ServiceResetToken) Issue(_ context.Context, now time.Time) (*services.ResetToken, error) {
	raw := make([]byte, services.ResetTokenBytes)
	if _, err := io.ReadFull(s.rand, raw); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errMsgReadingToken, services.ErrTokenGenerationFailed, err)
	}

	token := base64.RawURLEncoding.EncodeToString(raw)

	return &services.ResetToken{
		Token:     token,
		Hash:      s.HashToken(token),
		ExpiresAt: now.UTC().Add(s.ttl),
	}, nil
}

// Validate проверяет предъявленный токен: сначала наличие сброса, затем срок, затем совпадение.
func (s *ServiceResetToken) Validate(presented string, storedHash *string, storedExpiry *time.Time, now time.Time) error {
	if storedHash == nil || storedExpiry == nil {
		return services.ErrResetTokenAbsent
	}
	if now.After(*storedExpiry) {
		return services.ErrResetTokenExpired
	}
	if presented == "" {
		return services.ErrResetTokenMismatch
	}

	computed := s.HashToken(presented)
	if subtle.ConstantTimeCompare([]byte(computed), []byte(*storedHash)) != 1 {
		return services.ErrResetTokenMismatch
	}

	return nil
}

// HashToken возвращает hex SHA-256 токена.
func (s *ServiceResetToken) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
