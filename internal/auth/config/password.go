package config

import (
	"strings"

	"authcore/internal/auth/adapters/services"
)

// PasswordConfig содержит настройки хеширования и политики паролей.
type PasswordConfig struct {
	Algorithm     string `yaml:"algorithm" env:"AUTH_PASSWORD_ALGORITHM" env-default:"argon2id"`
	BcryptCost    int    `yaml:"bcrypt_cost" env:"AUTH_BCRYPT_COST" env-default:"12"`
	Argon2Memory  uint32 `yaml:"argon2_memory_kb" env:"AUTH_ARGON2_MEMORY_KB" env-default:"65536"`
	Argon2Time    uint32 `yaml:"argon2_time" env:"AUTH_ARGON2_TIME" env-default:"1"`
	Argon2Threads uint8  `yaml:"argon2_threads" env:"AUTH_ARGON2_THREADS" env-default:"4"`
	Complexity    bool   `yaml:"complexity" env:"AUTH_PASSWORD_COMPLEXITY" env-default:"false"`
}

// Argon2Params возвращает параметры argon2id для фабрики сервисов.
func (p *PasswordConfig) Argon2Params() services.Argon2Params {
	return services.Argon2Params{
		MemoryKB: p.Argon2Memory,
		Time:     p.Argon2Time,
		Threads:  p.Argon2Threads,
	}
}

// Validate проверяет алгоритм и параметры хеширования.
func (p *PasswordConfig) Validate() error {
	switch strings.ToLower(p.Algorithm) {
	case services.AlgorithmArgon2id:
		if p.Argon2Memory == 0 || p.Argon2Time == 0 || p.Argon2Threads == 0 {
			return ErrInvalidArgon2Params
		}
	case services.AlgorithmBcrypt:
	default:
		return ErrUnknownAlgorithm
	}
	return nil
}
