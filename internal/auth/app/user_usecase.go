package app

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
	"authcore/internal/auth/ports/api"
	"authcore/internal/auth/ports/repositories"
	"authcore/pkg/logger"
)

const (
	methodGetUserProfile = "GetUserProfile"
	methodMarkVerified   = "MarkVerified"
	methodDeactivate     = "Deactivate"

	msgRequestingProfile   = "requesting user profile"
	msgEmptyUserIDProvided = "empty user ID provided"
	msgProfileRetrieved    = "user profile successfully retrieved"
	msgUserVerified        = "user marked as verified"
	msgUserDeactivated     = "user deactivated"

	msgErrFindingUserByID = "failed to find user by ID"

	errCtxFetchingProfile = "fetching user profile"
	errCtxMarkingVerified = "marking user verified"
	errCtxDeactivating    = "deactivating user"
)

// UserUseCaseImpl реализует интерфейс UserUseCase.
type UserUseCaseImpl struct {
	userRepo repositories.UserRepository
}

// NewUserUseCase создает новый экземпляр сервиса пользователя.
func NewUserUseCase(userRepo repositories.UserRepository) api.UserUseCase {
	return &UserUseCaseImpl{
		userRepo: userRepo,
	}
}

// GetUserProfile получает профиль пользователя по ID.
func (u *UserUseCaseImpl) GetUserProfile(ctx context.Context, userID string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodGetUserProfile), zap.String("userID", userID))
	log.Debug(ctx, msgRequestingProfile)

	if userID == "" {
		log.Debug(ctx, msgEmptyUserIDProvided)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUserID, entities.ErrEmptyUserID)
	}

	user, err := u.userRepo.FindByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, entities.ErrUserNotFound) {
			log.Error(ctx, msgErrFindingUserByID, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxFetchingProfile, err)
	}

	log.Info(ctx, msgProfileRetrieved)
	return user, nil
}

// MarkVerified переводит активную учетную запись в подтвержденное состояние.
func (u *UserUseCaseImpl) MarkVerified(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodMarkVerified), zap.String("userID", userID))

	if userID == "" {
		log.Debug(ctx, msgEmptyUserIDProvided)
		return fmt.Errorf("%s: %w", errCtxValidatingUserID, entities.ErrEmptyUserID)
	}

	if _, err := u.userRepo.UpdateLocked(ctx, userID, func(user *entities.User) error {
		if !user.Active {
			return services.ErrAccountInactive
		}
		user.Verified = true
		return nil
	}); err != nil {
		return fmt.Errorf("%s: %w", errCtxMarkingVerified, err)
	}

	log.Info(ctx, msgUserVerified)
	return nil
}

// Deactivate мягко удаляет учетную запись. Ожидающий сброс снимается.
func (u *UserUseCaseImpl) Deactivate(ctx context.Context, userID string) error {
	log := logger.Log(ctx).With(zap.String("method", methodDeactivate), zap.String("userID", userID))

	if userID == "" {
		log.Debug(ctx, msgEmptyUserIDProvided)
		return fmt.Errorf("%s: %w", errCtxValidatingUserID, entities.ErrEmptyUserID)
	}

	if _, err := u.userRepo.UpdateLocked(ctx, userID, func(user *entities.User) error {
		user.Active = false
		user.ClearResetToken()
		return nil
	}); err != nil {
		return fmt.Errorf("%s: %w", errCtxDeactivating, err)
	}

	log.Info(ctx, msgUserDeactivated)
	return nil
}
