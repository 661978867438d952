package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
)

const (
	errMsgFailedToGenerateHash = "failed to generate password hash"
	errMsgErrorComparingHash   = "error comparing password with hash"
	errMsgCostTooHigh          = "bcrypt cost above verification ceiling"

	// bcryptMaxInput - предел входа bcrypt в байтах.
	bcryptMaxInput = 72
	// bcryptVerifyCostCeiling - наибольшая стоимость, которую Verify примет из хранимого хеша,
	// если настроенная стоимость не выше.
	bcryptVerifyCostCeiling = 14
)

// ServiceBcrypt реализует интерфейс PasswordService на bcrypt.
// Используется для проверки унаследованных хешей и как альтернативный алгоритм.
type ServiceBcrypt struct {
	cost int
}

// NewBcrypt создает новый экземпляр сервиса bcrypt.
func NewBcrypt(cost int) *ServiceBcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &ServiceBcrypt{cost: cost}
}

// IsBcryptHash сообщает, похож ли хеш на bcrypt.
func IsBcryptHash(hash string) bool {
	return strings.HasPrefix(hash, "$2a$") ||
		strings.HasPrefix(hash, "$2b$") ||
		strings.HasPrefix(hash, "$2y$")
}

// Hash хэширует пароль с помощью bcrypt.
func (s *ServiceBcrypt) Hash(_ context.Context, password string) (string, error) {
	if err := checkPasswordInput(password); err != nil {
		return "", err
	}

	hashedBytes, err := bcrypt.GenerateFromPassword(bcryptInput(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("%s: %w: %w", errMsgFailedToGenerateHash, services.ErrHashingFailed, err)
	}

	return string(hashedBytes), nil
}

// Verify проверяет соответствие пароля хэшу.
// Для паролей длиннее 72 байт дополнительно проверяется усеченный ввод:
// так хешировали унаследованные записи.
func (s *ServiceBcrypt) Verify(_ context.Context, password, hash string) (bool, error) {
	if password == "" {
		return false, nil
	}
	if !IsBcryptHash(hash) {
		return false, services.ErrMalformedHash
	}

	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false, fmt.Errorf("%s: %w: %w", errMsgErrorComparingHash, services.ErrMalformedHash, err)
	}
	if cost > s.maxVerifyCost() {
		return false, fmt.Errorf("%s: %d: %w", errMsgCostTooHigh, cost, services.ErrMalformedHash)
	}

	ok, err := compareBcrypt(hash, bcryptInput(password))
	if err != nil || ok || len(password) <= bcryptMaxInput {
		return ok, err
	}

	return compareBcrypt(hash, []byte(password)[:bcryptMaxInput])
}

func (s *ServiceBcrypt) maxVerifyCost() int {
	return max(s.cost, bcryptVerifyCostCeiling)
}

func compareBcrypt(hash string, input []byte) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), input)
	if err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return false, nil
		}
		return false, fmt.Errorf("%s: %w: %w", errMsgErrorComparingHash, services.ErrMalformedHash, err)
	}
	return true, nil
}

// bcryptInput возвращает пароль как есть, если он помещается в 72 байта,
// иначе base64 от SHA-256 (44 байта).
func bcryptInput(password string) []byte {
	if len(password) <= bcryptMaxInput {
		return []byte(password)
	}
	sum := sha256.Sum256([]byte(password))
	return []byte(base64.StdEncoding.EncodeToString(sum[:]))
}

// NeedsRehash возвращает true, если хеш не bcrypt или создан с другой стоимостью.
func (s *ServiceBcrypt) NeedsRehash(hash string) bool {
	if !IsBcryptHash(hash) {
		return true
	}
	cost, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return true
	}
	return cost != s.cost
}

// checkPasswordInput отклоняет пустой и слишком длинный ввод до хеширования.
func checkPasswordInput(password string) error {
	if password == "" {
		return services.ErrInvalidPassword
	}
	if utf8.RuneCountInString(password) > services.MaxPasswordLength {
		return fmt.Errorf("%w: %w", services.ErrInvalidPassword, entities.ErrPasswordTooLong)
	}
	return nil
}
