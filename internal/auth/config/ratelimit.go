package config

import "time"

// RateLimitConfig содержит лимиты для маршрутов входа и запроса сброса.
type RateLimitConfig struct {
	LoginLimit   int           `yaml:"login_limit" env:"AUTH_RATE_LIMIT_LOGIN" env-default:"10"`
	LoginWindow  time.Duration `yaml:"login_window" env:"AUTH_RATE_LIMIT_LOGIN_WINDOW" env-default:"1m"`
	ForgotLimit  int           `yaml:"forgot_limit" env:"AUTH_RATE_LIMIT_FORGOT" env-default:"5"`
	ForgotWindow time.Duration `yaml:"forgot_window" env:"AUTH_RATE_LIMIT_FORGOT_WINDOW" env-default:"15m"`
}
