package app_test

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
	"authcore/internal/auth/ports/repositories"
	svc "authcore/internal/auth/ports/services"
)

type mockUserRepository struct {
	mock.Mock
}

func (m *mockUserRepository) Create(ctx context.Context, user *entities.User) (*entities.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *mockUserRepository) FindByID(ctx context.Context, id string) (*entities.User, error) {
	return m.find(m.Called(ctx, id))
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entities.User, error) {
	return m.find(m.Called(ctx, email))
}

func (m *mockUserRepository) FindByUsername(ctx context.Context, username string) (*entities.User, error) {
	return m.find(m.Called(ctx, username))
}

func (m *mockUserRepository) FindByResetTokenHash(ctx context.Context, tokenHash string) (*entities.User, error) {
	return m.find(m.Called(ctx, tokenHash))
}

func (m *mockUserRepository) find(args mock.Arguments) (*entities.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	clone := *args.Get(0).(*entities.User)
	return &clone, args.Error(1)
}

// UpdateLocked применяет fn к копии пользователя, заданного в Return.
func (m *mockUserRepository) UpdateLocked(
	ctx context.Context, id string, fn repositories.UserMutation,
) (*entities.User, error) {
	args := m.Called(ctx, id, fn)
	if err := args.Error(1); err != nil {
		return nil, err
	}
	clone := *args.Get(0).(*entities.User)
	if err := fn(&clone); err != nil {
		return nil, err
	}
	return &clone, nil
}

func (m *mockUserRepository) ClearResetTokenIfMatches(ctx context.Context, id, tokenHash string) (bool, error) {
	args := m.Called(ctx, id, tokenHash)
	return args.Bool(0), args.Error(1)
}

func (m *mockUserRepository) ClearExpiredResets(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type mockPasswordService struct {
	mock.Mock
}

func (m *mockPasswordService) Hash(ctx context.Context, password string) (string, error) {
	args := m.Called(ctx, password)
	return args.String(0), args.Error(1)
}

func (m *mockPasswordService) Verify(ctx context.Context, password, hash string) (bool, error) {
	args := m.Called(ctx, password, hash)
	return args.Bool(0), args.Error(1)
}

func (m *mockPasswordService) NeedsRehash(hash string) bool {
	return m.Called(hash).Bool(0)
}

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) GenerateSessionToken(
	ctx context.Context, userID, username, role string,
) (string, time.Time, time.Time, error) {
	args := m.Called(ctx, userID, username, role)
	return args.String(0), args.Get(1).(time.Time), args.Get(2).(time.Time), args.Error(3)
}

func (m *mockTokenService) ValidateSessionToken(ctx context.Context, token string) (*services.JWTClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.JWTClaims), args.Error(1)
}

type mockResetService struct {
	mock.Mock
}

func (m *mockResetService) Issue(ctx context.Context, now time.Time) (*services.ResetToken, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ResetToken), args.Error(1)
}

func (m *mockResetService) Validate(presented string, storedHash *string, storedExpiry *time.Time, now time.Time) error {
	return m.Called(presented, storedHash, storedExpiry, now).Error(0)
}

func (m *mockResetService) HashToken(token string) string {
	return m.Called(token).String(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyPasswordReset(ctx context.Context, n svc.ResetNotification) error {
	return m.Called(ctx, n).Error(0)
}

type mocks struct {
	repo     *mockUserRepository
	password *mockPasswordService
	token    *mockTokenService
	reset    *mockResetService
	notifier *mockNotifier
}

func newMocks() *mocks {
	return &mocks{
		repo:     new(mockUserRepository),
		password: new(mockPasswordService),
		token:    new(mockTokenService),
		reset:    new(mockResetService),
		notifier: new(mockNotifier),
	}
}

func (m *mocks) assertExpectations(t mock.TestingT) {
	m.repo.AssertExpectations(t)
	m.password.AssertExpectations(t)
	m.token.AssertExpectations(t)
	m.reset.AssertExpectations(t)
	m.notifier.AssertExpectations(t)
}
