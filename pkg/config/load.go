// Package config предоставляет функциональность для загрузки конфигурации из переменных окружения.
package config

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"go.uber.org/zap"

	"authcore/pkg/logger"
)

// FileEnv - переменная окружения с путем к необязательному .env файлу.
const FileEnv = "AUTH_CONFIG_FILE"

const (
	msgLoadingConfiguration    = "loading configuration"
	msgConfigurationLoaded     = "configuration loaded successfully"
	msgFailedLoadConfiguration = "failed to load configuration"
	msgConfigFileMissing       = "config file not found, using environment only"

	errFailedCreateLogger      = "failed to create logger"
	errFailedLoadConfiguration = "failed to load configuration"

	attrService = "service"
	attrPath    = "path"
)

// Load читает конфигурацию типа T: сначала файл из AUTH_CONFIG_FILE (если задан), затем окружение.
func Load[T any](ctx context.Context, serviceName string) (*T, error) {
	log, err := logger.FromContext(ctx)
	if err != nil {
		log, err = logger.NewLogger(logger.Development, "info")
		if err != nil {
			return nil, fmt.Errorf("%s: %w", errFailedCreateLogger, err)
		}
		ctx = logger.NewContext(ctx, log)
	}

	envPath := os.Getenv(FileEnv)

	log.Info(ctx, msgLoadingConfiguration,
		zap.String(attrService, serviceName),
		zap.String(attrPath, envPath))

	var cfg T

	if envPath != "" {
		if _, statErr := os.Stat(envPath); errors.Is(statErr, os.ErrNotExist) {
			log.Warn(ctx, msgConfigFileMissing, zap.String(attrPath, envPath))
			envPath = ""
		}
	}

	if envPath != "" {
		err = cleanenv.ReadConfig(envPath, &cfg)
	} else {
		err = cleanenv.ReadEnv(&cfg)
	}
	if err != nil {
		log.Error(ctx, msgFailedLoadConfiguration,
			zap.String(attrService, serviceName),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errFailedLoadConfiguration, err)
	}

	log.Info(ctx, msgConfigurationLoaded,
		zap.String(attrService, serviceName))

	return &cfg, nil
}
