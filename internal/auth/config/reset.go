package config

import "time"

// ResetConfig содержит настройки сброса пароля.
type ResetConfig struct {
	TokenTTL        time.Duration `yaml:"token_ttl" env:"AUTH_RESET_TOKEN_TTL" env-default:"10m"`
	URL             string        `yaml:"url" env:"AUTH_RESET_URL" env-default:"http://localhost:3000/reset-password"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"AUTH_RESET_CLEANUP_INTERVAL" env-default:"1h"`
}
