// Package repositories определяет порты хранилища учетных записей.
package repositories

import (
	"context"
	"time"

	"authcore/internal/auth/domain/entities"
)

// UserMutation изменяет загруженную под блокировкой учетную запись.
// Ошибка отменяет транзакцию целиком.
type UserMutation func(user *entities.User) error

// UserRepository определяет интерфейс для операций сохранения данных пользователем.
type UserRepository interface {
	Create(ctx context.Context, user *entities.User) (*entities.User, error)

	FindByID(ctx context.Context, id string) (*entities.User, error)

	FindByEmail(ctx context.Context, email string) (*entities.User, error)

	FindByUsername(ctx context.Context, username string) (*entities.User, error)

	FindByResetTokenHash(ctx context.Context, tokenHash string) (*entities.User, error)

	// UpdateLocked блокирует строку учетной записи, применяет fn и сохраняет
	// учетные данные одной транзакцией.
	UpdateLocked(ctx context.Context, id string, fn UserMutation) (*entities.User, error)

	// ClearResetTokenIfMatches снимает поля сброса, только если сохранен именно этот хеш.
	ClearResetTokenIfMatches(ctx context.Context, id, tokenHash string) (bool, error)

	ClearExpiredResets(ctx context.Context, now time.Time) (int64, error)
}
