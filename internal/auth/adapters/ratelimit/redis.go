// Package ratelimit содержит реализации ограничителя частоты попыток.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	svc "authcore/internal/auth/ports/services"
)

const keyPrefix = "authcore:rl:"

// incrExpireScript атомарно увеличивает счетчик и ставит TTL окна при первом обращении.
var incrExpireScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisLimiter - распределенный лимитер с фиксированным окном.
type RedisLimiter struct {
	rdb redis.Scripter
}

// NewRedisLimiter создает лимитер поверх клиента Redis.
func NewRedisLimiter(rdb redis.Scripter) svc.RateLimiter {
	return &RedisLimiter{rdb: rdb}
}

// Allow возвращает false, если в текущем окне для key уже было limit попыток.
func (l *RedisLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if limit <= 0 || window <= 0 {
		return true, nil
	}

	count, err := incrExpireScript.Run(ctx, l.rdb, []string{keyPrefix + key}, window.Milliseconds()).Int64()
	if err != nil {
		return true, fmt.Errorf("rate limit script: %w", err)
	}

	return count <= int64(limit), nil
}
