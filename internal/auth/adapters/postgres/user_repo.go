// Package postgres содержит реализацию репозиториев сервиса аутентификации на pgx.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
	"authcore/internal/auth/ports/repositories"
	"authcore/pkg/logger"
)

// PgxPoolInterface - подмножество pgxpool.Pool, достаточное для репозиториев и pgxmock.
type PgxPoolInterface interface {
	QueryRow(ctx context.Context, query string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, query string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, query string, args ...interface{}) (pgx.Rows, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Коды ошибок Postgres.
const (
	pgUniqueViolation      = "23505"
	pgInvalidTextRepresent = "22P02"

	constraintEmailKey    = "users_email_key"
	constraintUsernameKey = "users_username_key"
)

const userColumns = `id, username, email, role, photo, password_hash, password_changed_at,
        password_reset_token_hash, password_reset_expires, active, verified, created_at, updated_at`

const (
	queryInsertUser = `
        INSERT INTO users (username, email, role, photo, password_hash, active, verified)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING ` + userColumns

	querySelectByID = `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1`

	querySelectByEmail = `
        SELECT ` + userColumns + `
        FROM users
        WHERE email = $1`

	querySelectByUsername = `
        SELECT ` + userColumns + `
        FROM users
        WHERE username = $1`

	querySelectByResetHash = `
        SELECT ` + userColumns + `
        FROM users
        WHERE password_reset_token_hash = $1`

	querySelectForUpdate = `
        SELECT ` + userColumns + `
        FROM users
        WHERE id = $1
        FOR UPDATE`

	queryUpdateCredentials = `
        UPDATE users
        SET password_hash = $2, password_changed_at = $3, password_reset_token_hash = $4,
            password_reset_expires = $5, active = $6, verified = $7, updated_at = $8
        WHERE id = $1`

	queryClearResetIfMatches = `
        UPDATE users
        SET password_reset_token_hash = NULL, password_reset_expires = NULL, updated_at = $3
        WHERE id = $1 AND password_reset_token_hash = $2`

	queryClearExpiredResets = `
        UPDATE users
        SET password_reset_token_hash = NULL, password_reset_expires = NULL, updated_at = $1
        WHERE password_reset_expires IS NOT NULL AND password_reset_expires < $1`
)

const (
	msgUserNotFound         = "user not found"
	msgErrQueryingUser      = "error querying user"
	msgErrCreatingUser      = "error creating user"
	msgErrBeginTx           = "error starting transaction"
	msgErrLockingUser       = "error locking user"
	msgMutationRejected     = "mutation rejected, rolling back"
	msgErrUpdatingUser      = "error updating user"
	msgErrCommitTx          = "error committing transaction"
	msgErrRollbackTx        = "error rolling back transaction"
	msgErrClearingReset     = "error clearing reset token"
	msgErrClearingExpired   = "error clearing expired reset tokens"
	msgUserUpdated          = "user credentials updated"
	msgExpiredResetsCleared = "expired reset tokens cleared"
	msgDuplicateUser        = "duplicate user"
)

// UserRepository реализует интерфейс repositories.UserRepository для работы с Postgres.
type UserRepository struct {
	pool PgxPoolInterface
}

// NewUserRepository создает новый экземпляр репозитория пользователей.
func NewUserRepository(pool PgxPoolInterface) repositories.UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entities.User, error) {
	var (
		user entities.User
		role string
	)

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&role,
		&user.Photo,
		&user.PasswordHash,
		&user.PasswordChangedAt,
		&user.PasswordResetTokenHash,
		&user.PasswordResetExpires,
		&user.Active,
		&user.Verified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	user.Role = entities.Role(role)
	return &user, nil
}

// isNotFound сообщает, означает ли ошибка отсутствие строки или невалидный UUID.
func isNotFound(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgInvalidTextRepresent
}

func (r *UserRepository) findOne(ctx context.Context, method, query, arg string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", method))

	user, err := scanUser(r.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if isNotFound(err) {
			log.Debug(ctx, msgUserNotFound)
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, msgErrQueryingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", msgErrQueryingUser, err)
	}

	return user, nil
}

// FindByID находит пользователя по ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return r.findOne(ctx, "FindByID", querySelectByID, id)
}

// FindByEmail находит пользователя по email.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return r.findOne(ctx, "FindByEmail", querySelectByEmail, email)
}

// FindByUsername находит пользователя по имени.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return r.findOne(ctx, "FindByUsername", querySelectByUsername, username)
}

// FindByResetTokenHash находит пользователя с ожидающим сбросом по хешу токена.
func (r *UserRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*entities.User, error) {
	return r.findOne(ctx, "FindByResetTokenHash", querySelectByResetHash, tokenHash)
}

// Create создает нового пользователя.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "Create"))

	role := user.Role
	if role == "" {
		role = entities.RoleUser
	}

	created, err := scanUser(r.pool.QueryRow(ctx, queryInsertUser,
		user.Username,
		user.Email,
		string(role),
		user.Photo,
		user.PasswordHash,
		user.Active,
		user.Verified,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			log.Debug(ctx, msgDuplicateUser, zap.String("constraint", pgErr.ConstraintName))
			if pgErr.ConstraintName == constraintUsernameKey {
				return nil, services.ErrUsernameAlreadyExists
			}
			return nil, services.ErrEmailAlreadyExists
		}
		log.Error(ctx, msgErrCreatingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", msgErrCreatingUser, err)
	}

	return created, nil
}

// UpdateLocked выполняет SELECT ... FOR UPDATE, применяет fn и сохраняет учетные данные
// в той же транзакции. Ошибка fn откатывает транзакцию и возвращается как есть.
func (r *UserRepository) UpdateLocked(
	ctx context.Context, id string, fn repositories.UserMutation,
) (*entities.User, error) {
	log := logger.Log(ctx).With(
		zap.String("repository", "user"),
		zap.String("method", "UpdateLocked"),
		zap.String("userID", id),
	)

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		log.Error(ctx, msgErrBeginTx, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", msgErrBeginTx, err)
	}

	user, err := scanUser(tx.QueryRow(ctx, querySelectForUpdate, id))
	if err != nil {
		r.rollback(ctx, tx, log)
		if isNotFound(err) {
			log.Debug(ctx, msgUserNotFound)
			return nil, entities.ErrUserNotFound
		}
		log.Error(ctx, msgErrLockingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", msgErrLockingUser, err)
	}

	if err := fn(user); err != nil {
		log.Debug(ctx, msgMutationRejected, zap.Error(err))
		r.rollback(ctx, tx, log)
		return nil, err
	}

	user.UpdatedAt = time.Now().UTC()

	if _, err := tx.Exec(ctx, queryUpdateCredentials,
		user.ID,
		user.PasswordHash,
		user.PasswordChangedAt,
		user.PasswordResetTokenHash,
		user.PasswordResetExpires,
		user.Active,
		user.Verified,
		user.UpdatedAt,
	); err != nil {
		r.rollback(ctx, tx, log)
		log.Error(ctx, msgErrUpdatingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", msgErrUpdatingUser, err)
	}

	if err := tx.Commit(ctx); err != nil {
		log.Error(ctx, msgErrCommitTx, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", msgErrCommitTx, err)
	}

	log.Debug(ctx, msgUserUpdated)
	return user, nil
}

func (r *UserRepository) rollback(ctx context.Context, tx pgx.Tx, log *logger.Logger) {
	if err := tx.Rollback(ctx); err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		log.Error(ctx, msgErrRollbackTx, zap.Error(err))
	}
}

// ClearResetTokenIfMatches снимает поля сброса, только если сохранен tokenHash.
func (r *UserRepository) ClearResetTokenIfMatches(ctx context.Context, id, tokenHash string) (bool, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "ClearResetTokenIfMatches"))

	tag, err := r.pool.Exec(ctx, queryClearResetIfMatches, id, tokenHash, time.Now().UTC())
	if err != nil {
		log.Error(ctx, msgErrClearingReset, zap.Error(err))
		return false, fmt.Errorf("%s: %w", msgErrClearingReset, err)
	}

	return tag.RowsAffected() > 0, nil
}

// ClearExpiredResets снимает все истекшие токены сброса и возвращает число затронутых записей.
func (r *UserRepository) ClearExpiredResets(ctx context.Context, now time.Time) (int64, error) {
	log := logger.Log(ctx).With(zap.String("repository", "user"), zap.String("method", "ClearExpiredResets"))

	tag, err := r.pool.Exec(ctx, queryClearExpiredResets, now.UTC())
	if err != nil {
		log.Error(ctx, msgErrClearingExpired, zap.Error(err))
		return 0, fmt.Errorf("%s: %w", msgErrClearingExpired, err)
	}

	if n := tag.RowsAffected(); n > 0 {
		log.Info(ctx, msgExpiredResetsCleared, zap.Int64("count", n))
	}
	return tag.RowsAffected(), nil
}
