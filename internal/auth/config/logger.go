package config

import (
	"authcore/pkg/logger"
)

// LoggingConfig содержит настройки логирования.
type LoggingConfig struct {
	Level      string `yaml:"level" env:"AUTH_LOGGER_LEVEL" env-default:"info"`
	Mode       string `yaml:"mode" env:"AUTH_LOGGER_MODE" env-default:"development"`
	File       string `yaml:"file" env:"AUTH_LOGGER_FILE" env-default:""`
	MaxSizeMB  int    `yaml:"max_size_mb" env:"AUTH_LOGGER_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `yaml:"max_backups" env:"AUTH_LOGGER_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `yaml:"max_age_days" env:"AUTH_LOGGER_MAX_AGE_DAYS" env-default:"28"`
	Compress   bool   `yaml:"compress" env:"AUTH_LOGGER_COMPRESS" env-default:"true"`
}

// GetEnvironment получает строку режима в logger.Environment.
func (l *LoggingConfig) GetEnvironment() logger.Environment {
	if l.Mode == "production" {
		return logger.Production
	}
	return logger.Development
}

// Rotation возвращает настройки ротации файла логов.
func (l *LoggingConfig) Rotation() logger.RotationConfig {
	return logger.RotationConfig{
		Filename:   l.File,
		MaxSizeMB:  l.MaxSizeMB,
		MaxBackups: l.MaxBackups,
		MaxAgeDays: l.MaxAgeDays,
		Compress:   l.Compress,
	}
}

// NewLogger создает логгер по настройкам, с файлом при заданном AUTH_LOGGER_FILE.
func (l *LoggingConfig) NewLogger() (*logger.Logger, error) {
	if l.File != "" {
		return logger.NewLoggerWithRotation(l.GetEnvironment(), l.Level, l.Rotation())
	}
	return logger.NewLogger(l.GetEnvironment(), l.Level)
}
