package services

import (
	"context"
	"time"
)

// RateLimiter ограничивает число попыток по ключу в окне.
type RateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}
