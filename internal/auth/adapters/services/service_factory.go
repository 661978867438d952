// Package services предоставляет фабрику для создания и доступа к различным сервисам аутентификации,
// таким как сервисы работы с паролями, токенами сессии и токенами сброса.
package services

import (
	"strings"
	"time"

	"authcore/internal/auth/ports/services"
)

// Поддерживаемые алгоритмы хеширования новых паролей.
const (
	AlgorithmArgon2id = "argon2id"
	AlgorithmBcrypt   = "bcrypt"
)

// FactoryConfig содержит настройки всех сервисов.
type FactoryConfig struct {
	JWTSecretKey string
	JWTIssuer    string
	SessionTTL   time.Duration
	Algorithm    string
	Argon2       Argon2Params
	BcryptCost   int
	ResetTTL     time.Duration
	Now          func() time.Time
}

// ServiceFactory создает все необходимые сервисы для аутентификации.
type ServiceFactory struct {
	passwordService services.PasswordService
	tokenService    services.TokenService
	resetService    services.ResetTokenService
}

// NewServiceFactory создает новую фабрику сервисов.
func NewServiceFactory(cfg FactoryConfig) *ServiceFactory {
	bcryptSvc := NewBcrypt(cfg.BcryptCost)

	var passwordService services.PasswordService = NewArgon2(cfg.Argon2, bcryptSvc)
	if strings.EqualFold(cfg.Algorithm, AlgorithmBcrypt) {
		passwordService = bcryptSvc
	}

	return &ServiceFactory{
		passwordService: passwordService,
		tokenService:    NewJWT(cfg.JWTSecretKey, cfg.JWTIssuer, cfg.SessionTTL, cfg.Now),
		resetService:    NewResetToken(cfg.ResetTTL),
	}
}

// PasswordService возвращает сервис для работы с паролями.
func (f *ServiceFactory) PasswordService() services.PasswordService {
	return f.passwordService
}

// TokenService возвращает сервис для работы с токенами сессии.
func (f *ServiceFactory) TokenService() services.TokenService {
	return f.tokenService
}

// ResetTokenService возвращает генератор токенов сброса.
func (f *ServiceFactory) ResetTokenService() services.ResetTokenService {
	return f.resetService
}
