// Package main реализует точку входа службы аутентификации.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"

	authhttp "authcore/internal/auth/adapters/http"
	"authcore/internal/auth/adapters/http/middleware"
	"authcore/internal/auth/adapters/notify"
	"authcore/internal/auth/adapters/postgres"
	"authcore/internal/auth/adapters/ratelimit"
	"authcore/internal/auth/adapters/services"
	"authcore/internal/auth/app"
	"authcore/internal/auth/config"
	"authcore/internal/auth/db"
	"authcore/internal/auth/metrics"
	svc "authcore/internal/auth/ports/services"
	"authcore/pkg/db/redis"
	"authcore/pkg/logger"
	"authcore/pkg/rabbitmq"
	"authcore/pkg/resilience"
	"authcore/pkg/shutdown"
)

// Константы для переменных окружения.
const (
	EnvLoggerMode  = "AUTH_LOGGER_MODE"
	EnvLoggerLevel = "AUTH_LOGGER_LEVEL"
)

// Константы для сообщений об ошибках.
const (
	ErrInitLogger           = "failed to initialize logger"
	ErrSyncLogger           = "failed to sync logger"
	ErrLoadConfig           = "failed to load configuration"
	ErrInitLoggerWithConfig = "failed to initialize logger with configuration settings"
	ErrInitDB               = "failed to initialize database"
	ErrInitRedis            = "redis unavailable, falling back to in-memory rate limiter"
	ErrInitRabbitMQ         = "failed to connect to rabbitmq"
	ErrStartHTTP            = "failed to start HTTP server"
	ErrCloseRedis           = "failed to close redis client"
)

// Константы для игнорируемых ошибок.
const (
	ErrSyncStderr = "sync /dev/stderr: invalid argument"
	ErrSyncStdout = "sync /dev/stdout: invalid argument"
)

// Константы для сообщений сервиса.
const (
	LogServiceStarted      = "authentication service started"
	LogServiceShutdownDone = "authentication service shutdown complete"
	LogClosingDB           = "closing database connections"
	LogClosingRedis        = "closing redis client"
	LogClosingRabbitMQ     = "closing rabbitmq publisher"
	LogStoppingHTTP        = "stopping HTTP server"
	LogStoppingJanitor     = "stopping reset janitor"
	LogInitRepo            = "initializing repositories"
	LogInitServices        = "initializing services"
	LogInitUseCases        = "initializing use cases"
	LogInitRateLimiter     = "initializing rate limiter"
	LogInitNotifier        = "initializing reset notifier"
	LogInitHTTPServer      = "initializing HTTP server"
	LogStartingHTTP        = "starting HTTP server"
)

func main() {
	env := logger.Development
	if strings.ToLower(os.Getenv(EnvLoggerMode)) == "production" {
		env = logger.Production
	}

	log, err := logger.NewLogger(env, os.Getenv(EnvLoggerLevel))
	if err != nil {
		panic(ErrInitLogger + ": " + err.Error())
	}

	logger.SetGlobalLogger(log)

	ctx := logger.NewRequestIDContext(context.Background(), "")

	var exitCode int

	func() {
		defer func() {
			if err := log.Sync(); err != nil {
				errMsg := err.Error()
				if strings.Contains(errMsg, ErrSyncStderr) || strings.Contains(errMsg, ErrSyncStdout) {
					return
				}
				if _, writeErr := fmt.Fprintf(os.Stderr, "%s: %v\n", ErrSyncLogger, err); writeErr != nil {
					panic(writeErr)
				}
			}
		}()

		cfg, err := config.Load(ctx)
		if err != nil {
			log.Error(ctx, ErrLoadConfig, zap.Error(err))
			exitCode = 1
			return
		}

		finalLogger, err := cfg.Logging.NewLogger()
		if err != nil {
			log.Error(ctx, ErrInitLoggerWithConfig, zap.Error(err))
			exitCode = 1
			return
		}
		logger.SetGlobalLogger(finalLogger)
		log = finalLogger

		database, err := db.New(ctx, &cfg.Postgres)
		if err != nil {
			log.Error(ctx, ErrInitDB, zap.Error(err))
			exitCode = 1
			return
		}

		log.Info(ctx, LogServiceStarted,
			zap.String("environment", string(cfg.Logging.GetEnvironment())),
			zap.String("log_level", cfg.Logging.Level),
			zap.String("startup_time", time.Now().Format(time.RFC3339)))

		registry := prometheus.NewRegistry()
		registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		authMetrics := metrics.New(registry)

		log.Info(ctx, LogInitRepo)
		repoFactory := postgres.NewRepositoryFactory(database.Pool())
		userRepo := repoFactory.UserRepository()

		log.Info(ctx, LogInitServices)
		serviceFactory := services.NewServiceFactory(services.FactoryConfig{
			JWTSecretKey: cfg.JWT.SecretKey,
			JWTIssuer:    cfg.JWT.Issuer,
			SessionTTL:   cfg.JWT.SessionTTL,
			Algorithm:    cfg.Password.Algorithm,
			Argon2:       cfg.Password.Argon2Params(),
			BcryptCost:   cfg.Password.BcryptCost,
			ResetTTL:     cfg.Reset.TokenTTL,
		})

		log.Info(ctx, LogInitRateLimiter, zap.Bool("redis", cfg.Redis.Enabled))
		limiter, redisClient := newRateLimiter(ctx, log, &cfg.Redis)

		log.Info(ctx, LogInitNotifier, zap.Bool("rabbitmq", cfg.RabbitMQ.Enabled()))
		notifier, publisher, err := newNotifier(ctx, &cfg.RabbitMQ, cfg.Reset.URL)
		if err != nil {
			log.Error(ctx, ErrInitRabbitMQ, zap.Error(err))
			database.Close(ctx)
			exitCode = 1
			return
		}

		log.Info(ctx, LogInitUseCases)
		authUseCase := app.NewAuthUseCase(
			userRepo,
			serviceFactory.PasswordService(),
			serviceFactory.TokenService(),
			serviceFactory.ResetTokenService(),
			notifier,
			app.WithMetrics(authMetrics),
			app.WithPasswordComplexity(cfg.Password.Complexity),
		)
		userUseCase := app.NewUserUseCase(userRepo)

		janitorCtx, stopJanitor := context.WithCancel(ctx)
		janitorDone := make(chan struct{})
		go func() {
			defer close(janitorDone)
			app.NewResetJanitor(userRepo, cfg.Reset.CleanupInterval, nil, authMetrics).Run(janitorCtx)
		}()

		log.Info(ctx, LogInitHTTPServer)
		server := authhttp.NewApp(config.ServiceName, cfg.HTTP.ReadTimeout, cfg.HTTP.WriteTimeout)
		authhttp.SetupRouter(server, authhttp.Dependencies{
			Auth:     authUseCase,
			Users:    userUseCase,
			Limiter:  limiter,
			Metrics:  authMetrics,
			Gatherer: registry,
			LoginLimit: middleware.RateRule{
				Name: "login", Limit: cfg.RateLimit.LoginLimit, Window: cfg.RateLimit.LoginWindow,
			},
			ForgotLimit: middleware.RateRule{
				Name: "forgot", Limit: cfg.RateLimit.ForgotLimit, Window: cfg.RateLimit.ForgotWindow,
			},
		})

		log.Info(ctx, LogStartingHTTP, zap.String("address", cfg.HTTP.GetAddress()))
		go func() {
			if err := server.Listen(cfg.HTTP.GetAddress(), fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
				log.Error(ctx, ErrStartHTTP, zap.Error(err))
			}
		}()

		shutdown.Wait(ctx, cfg.Shutdown.GetTimeout(),
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingHTTP)
				return server.ShutdownWithContext(ctx)
			},
			func(ctx context.Context) error {
				log.Info(ctx, LogStoppingJanitor)
				stopJanitor()
				select {
				case <-janitorDone:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			},
			func(ctx context.Context) error {
				if publisher == nil {
					return nil
				}
				log.Info(ctx, LogClosingRabbitMQ)
				return publisher.Close(ctx)
			},
			func(ctx context.Context) error {
				if redisClient == nil {
					return nil
				}
				log.Info(ctx, LogClosingRedis)
				if err := redisClient.Close(); err != nil {
					return fmt.Errorf("%s: %w", ErrCloseRedis, err)
				}
				return nil
			},
		)

		log.Info(ctx, LogClosingDB)
		database.Close(ctx)

		log.Info(ctx, LogServiceShutdownDone)
	}()

	if exitCode != 0 {
		os.Exit(exitCode)
	}
}

// newRateLimiter возвращает Redis лимитер, если Redis настроен и доступен, иначе процессный.
func newRateLimiter(ctx context.Context, log *logger.Logger, cfg *config.RedisConfig) (svc.RateLimiter, *redis.Client) {
	if !cfg.Enabled {
		return ratelimit.NewMemoryLimiter(nil), nil
	}

	client, err := redis.NewClient(ctx, cfg.ToRedisConfig())
	if err != nil {
		log.Warn(ctx, ErrInitRedis, zap.Error(err))
		return ratelimit.NewMemoryLimiter(nil), nil
	}

	return ratelimit.NewRedisLimiter(client.RawClient()), client
}

// newNotifier возвращает публикатор писем в RabbitMQ или логирующий notifier без брокера.
func newNotifier(ctx context.Context, cfg *config.RabbitMQConfig, resetURL string) (svc.ResetNotifier, *rabbitmq.Publisher, error) {
	if !cfg.Enabled() {
		return notify.NewLogNotifier(), nil, nil
	}

	publisher, err := rabbitmq.NewPublisher(ctx, cfg.URL, cfg.Queue)
	if err != nil {
		return nil, nil, err
	}

	policy := resilience.NewPolicy("reset-mail",
		resilience.DefaultCircuitBreakerConfig(), resilience.DefaultRetryConfig(), nil)

	return notify.NewResilientNotifier(notify.NewRabbitNotifier(publisher, resetURL), policy), publisher, nil
}
