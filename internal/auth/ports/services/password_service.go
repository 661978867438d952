// Package services определяет исходящие порты сервиса аутентификации.
package services

import "context"

// PasswordService определяет операции для манипулирования паролем.
type PasswordService interface {
	Hash(ctx context.Context, password string) (string, error)

	// Verify возвращает (false, nil) при несовпадении и ошибку для поврежденного хеша.
	Verify(ctx context.Context, password, hash string) (bool, error)

	NeedsRehash(hash string) bool
}
