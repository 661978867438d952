package config

import (
	"time"

	"authcore/pkg/db/redis"
)

// RedisConfig содержит настройки Redis для распределенного лимитера.
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled" env:"AUTH_REDIS_ENABLED" env-default:"false"`
	Host     string        `yaml:"host" env:"AUTH_REDIS_HOST" env-default:"redis"`
	Port     int           `yaml:"port" env:"AUTH_REDIS_PORT" env-default:"6379"`
	Password string        `yaml:"password" env:"AUTH_REDIS_PASSWORD" env-default:""`
	DB       int           `yaml:"db" env:"AUTH_REDIS_DB" env-default:"0"`
	PoolSize int           `yaml:"pool_size" env:"AUTH_REDIS_POOL_SIZE" env-default:"10"`
	Timeout  time.Duration `yaml:"timeout" env:"AUTH_REDIS_TIMEOUT" env-default:"5s"`
}

// ToRedisConfig переводит настройки в конфигурацию клиента.
func (r *RedisConfig) ToRedisConfig() *redis.Config {
	return &redis.Config{
		Host:     r.Host,
		Port:     r.Port,
		Password: r.Password,
		DB:       r.DB,
		PoolSize: r.PoolSize,
		Timeout:  r.Timeout,
	}
}
