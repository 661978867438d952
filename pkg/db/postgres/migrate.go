package postgres

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"authcore/pkg/logger"
)

// Константы для сообщений об ошибках миграций.
const (
	ErrCreateMigrationInstance = "failed to create migration instance"
	ErrApplyMigrations         = "failed to apply migrations"
	ErrMigrationSource         = "invalid migrations source"
	ErrReadVersion             = "failed to read schema version"
)

var (
	// ErrNoMigrations возвращается, если в каталоге нет ни одного *.up.sql.
	ErrNoMigrations = errors.New("no up migrations found")
	// ErrDirtySchema означает, что предыдущая миграция оборвалась и нужна ручная правка.
	ErrDirtySchema = errors.New("database schema is dirty")
)

const fileScheme = "file://"

// CheckMigrationsSource проверяет, что file:// источник существует и содержит миграции.
// Остальные схемы проверяются самим golang-migrate.
func CheckMigrationsSource(migrationsPath string) (int, error) {
	dir, ok := strings.CutPrefix(migrationsPath, fileScheme)
	if !ok {
		return 0, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", ErrMigrationSource, err)
	}

	var ups int
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".up.sql") {
			ups++
		}
	}
	if ups == 0 {
		return 0, fmt.Errorf("%s: %s: %w", ErrMigrationSource, filepath.Clean(dir), ErrNoMigrations)
	}
	return ups, nil
}

// MigrateDSN применяет миграции из migrationsPath и сообщает итоговую версию схемы.
func MigrateDSN(ctx context.Context, dsn string, migrationsPath string) error {
	log := logger.Log(ctx).With(
		zap.String("component", "postgres"),
		zap.String("migrations_path", migrationsPath))

	count, err := CheckMigrationsSource(migrationsPath)
	if err != nil {
		log.Error(ctx, ErrMigrationSource, zap.Error(err))
		return err
	}

	m, err := migrate.New(migrationsPath, dsn)
	if err != nil {
		log.Error(ctx, ErrCreateMigrationInstance, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrCreateMigrationInstance, err)
	}
	defer func() {
		srcErr, dbErr := m.Close()
		if srcErr != nil || dbErr != nil {
			log.Warn(ctx, "failed to close migrator",
				zap.NamedError("source_error", srcErr),
				zap.NamedError("database_error", dbErr))
		}
	}()

	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		log.Error(ctx, ErrApplyMigrations, zap.Error(upErr))
		return fmt.Errorf("%s: %w", ErrApplyMigrations, upErr)
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		log.Error(ctx, ErrReadVersion, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrReadVersion, err)
	}
	if dirty {
		log.Error(ctx, ErrApplyMigrations, zap.Uint("version", version), zap.Error(ErrDirtySchema))
		return fmt.Errorf("%s: version %d: %w", ErrApplyMigrations, version, ErrDirtySchema)
	}

	if errors.Is(upErr, migrate.ErrNoChange) {
		log.Info(ctx, LogSchemaUpToDate, zap.Uint("version", version))
		return nil
	}
	log.Info(ctx, LogMigrationsApplied, zap.Uint("version", version), zap.Int("available", count))
	return nil
}
