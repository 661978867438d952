package http_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
)

type MockAuthUseCase struct {
	mock.Mock
}

func (m *MockAuthUseCase) Register(ctx context.Context, email, username, password string) (*entities.User, error) {
	args := m.Called(ctx, email, username, password)
	user, _ := args.Get(0).(*entities.User)
	return user, args.Error(1)
}

func (m *MockAuthUseCase) Authenticate(ctx context.Context, email, password string) (*services.Session, error) {
	args := m.Called(ctx, email, password)
	session, _ := args.Get(0).(*services.Session)
	return session, args.Error(1)
}

func (m *MockAuthUseCase) ValidateSession(ctx context.Context, token string) (*entities.User, error) {
	args := m.Called(ctx, token)
	user, _ := args.Get(0).(*entities.User)
	return user, args.Error(1)
}

func (m *MockAuthUseCase) ChangePassword(ctx context.Context, userID, newPassword string) error {
	args := m.Called(ctx, userID, newPassword)
	return args.Error(0)
}

func (m *MockAuthUseCase) UpdatePassword(
	ctx context.Context, userID, currentPassword, newPassword string,
) (*services.Session, error) {
	args := m.Called(ctx, userID, currentPassword, newPassword)
	session, _ := args.Get(0).(*services.Session)
	return session, args.Error(1)
}

func (m *MockAuthUseCase) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	args := m.Called(ctx, email)
	return args.String(0), args.Error(1)
}

func (m *MockAuthUseCase) ResetPassword(ctx context.Context, token, newPassword string) error {
	args := m.Called(ctx, token, newPassword)
	return args.Error(0)
}

type MockUserUseCase struct {
	mock.Mock
}

func (m *MockUserUseCase) GetUserProfile(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	user, _ := args.Get(0).(*entities.User)
	return user, args.Error(1)
}

func (m *MockUserUseCase) MarkVerified(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserUseCase) Deactivate(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}
