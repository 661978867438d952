// Package config содержит конфигурацию сервиса аутентификации.
package config

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	pkgconfig "authcore/pkg/config"
	"authcore/pkg/logger"
)

// ServiceName - имя сервиса в логах и метриках.
const ServiceName = "authcore"

// Константы ошибок и сообщений для конфигурации.
const (
	LogConfigLoaded     = "authentication service configuration"
	ErrFailedLoadConfig = "failed to load configuration"
	ErrInvalidConfig    = "invalid configuration"
)

var (
	ErrEmptyJWTSecret      = errors.New("jwt secret key must be set")
	ErrUnknownAlgorithm    = errors.New("unknown password hashing algorithm")
	ErrNonPositiveTTL      = errors.New("ttl must be positive")
	ErrInvalidArgon2Params = errors.New("argon2 parameters must be positive")
)

// Config представляет полную конфигурацию приложения.
type Config struct {
	Postgres  PostgresConfig  `yaml:"postgres"`
	HTTP      HTTPConfig      `yaml:"http"`
	JWT       JWTConfig       `yaml:"jwt"`
	Password  PasswordConfig  `yaml:"password"`
	Reset     ResetConfig     `yaml:"reset"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
	RabbitMQ  RabbitMQConfig  `yaml:"rabbitmq"`
	Logging   LoggingConfig   `yaml:"logging"`
	Shutdown  ShutdownConfig  `yaml:"shutdown"`
}

// Load загружает и проверяет конфигурацию сервиса.
func Load(ctx context.Context) (*Config, error) {
	cfg, err := pkgconfig.Load[Config](ctx, ServiceName)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", ErrFailedLoadConfig, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", ErrInvalidConfig, err)
	}

	logger.Log(ctx).Info(ctx, LogConfigLoaded,
		zap.String("postgres_host", cfg.Postgres.Host),
		zap.Int("postgres_port", cfg.Postgres.Port),
		zap.String("http_address", cfg.HTTP.GetAddress()),
		zap.String("password_algorithm", cfg.Password.Algorithm),
		zap.Duration("session_ttl", cfg.JWT.SessionTTL),
		zap.Duration("reset_ttl", cfg.Reset.TokenTTL),
		zap.Bool("redis_enabled", cfg.Redis.Enabled),
		zap.Bool("rabbitmq_enabled", cfg.RabbitMQ.Enabled()),
		zap.String("log_level", cfg.Logging.Level),
		zap.String("log_mode", cfg.Logging.Mode),
		zap.Int("shutdown_timeout_seconds", cfg.Shutdown.Timeout))

	return cfg, nil
}

// Validate проверяет значения, для которых нет безопасного значения по умолчанию.
func (c *Config) Validate() error {
	if c.JWT.SecretKey == "" {
		return ErrEmptyJWTSecret
	}
	if c.JWT.SessionTTL <= 0 || c.Reset.TokenTTL <= 0 {
		return ErrNonPositiveTTL
	}
	return c.Password.Validate()
}
