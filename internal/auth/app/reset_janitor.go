package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"authcore/internal/auth/metrics"
	"authcore/internal/auth/ports/repositories"
	"authcore/pkg/logger"
)

const (
	msgJanitorStarted = "reset janitor started"
	msgJanitorStopped = "reset janitor stopped"
	msgJanitorSweep   = "expired reset tokens swept"
	msgErrSweep       = "failed to sweep expired reset tokens"
)

// ResetJanitor периодически снимает истекшие токены сброса.
// Истечение проверяется и при погашении, так что janitor только убирает мусор.
type ResetJanitor struct {
	userRepo repositories.UserRepository
	interval time.Duration
	now      func() time.Time
	metrics  *metrics.Metrics
}

// NewResetJanitor создает janitor. Нулевой now заменяется на time.Now.
func NewResetJanitor(
	userRepo repositories.UserRepository, interval time.Duration, now func() time.Time, m *metrics.Metrics,
) *ResetJanitor {
	if now == nil {
		now = time.Now
	}
	return &ResetJanitor{userRepo: userRepo, interval: interval, now: now, metrics: m}
}

// Run выполняет очистку с заданным интервалом до отмены ctx.
func (j *ResetJanitor) Run(ctx context.Context) {
	log := logger.Log(ctx).With(zap.String("component", "reset_janitor"))
	if j.interval <= 0 {
		return
	}

	log.Info(ctx, msgJanitorStarted, zap.Duration("interval", j.interval))
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Info(ctx, msgJanitorStopped)
			return
		case <-ticker.C:
			_, _ = j.Sweep(ctx)
		}
	}
}

// Sweep однократно снимает все истекшие токены сброса.
func (j *ResetJanitor) Sweep(ctx context.Context) (int64, error) {
	log := logger.Log(ctx).With(zap.String("component", "reset_janitor"))

	n, err := j.userRepo.ClearExpiredResets(ctx, j.now())
	if err != nil {
		log.Error(ctx, msgErrSweep, zap.Error(err))
		return 0, err
	}

	if n > 0 {
		log.Debug(ctx, msgJanitorSweep, zap.Int64("count", n))
		j.metrics.ResetsCleared(n)
	}
	return n, nil
}
