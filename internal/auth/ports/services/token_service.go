package services

import (
	"context"
	"time"

	"authcore/internal/auth/domain/services"
)

// TokenService определяет интерфейс для операций с токенами сессии.
type TokenService interface {
	GenerateSessionToken(ctx context.Context, userID, username, role string) (string, time.Time, time.Time, error)

	ValidateSessionToken(ctx context.Context, token string) (*services.JWTClaims, error)
}
