package api

import (
	"context"

	"authcore/internal/auth/domain/entities"
)

// UserUseCase определяет основной порт для пользовательских операций
type UserUseCase interface {
	GetUserProfile(ctx context.Context, userID string) (*entities.User, error)

	MarkVerified(ctx context.Context, userID string) error

	Deactivate(ctx context.Context, userID string) error
}
