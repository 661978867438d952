package config

import "time"

// JWTConfig содержит настройки токенов сессии.
type JWTConfig struct {
	SecretKey  string        `yaml:"secret_key" env:"AUTH_JWT_SECRET_KEY" env-required:"true"`
	Issuer     string        `yaml:"issuer" env:"AUTH_JWT_ISSUER" env-default:"authcore"`
	SessionTTL time.Duration `yaml:"session_ttl" env:"AUTH_JWT_SESSION_TTL" env-default:"24h"`
}
