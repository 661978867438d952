package app

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
	"authcore/internal/auth/metrics"
	"authcore/internal/auth/ports/api"
	"authcore/internal/auth/ports/repositories"
	svc "authcore/internal/auth/ports/services"
	"authcore/pkg/logger"
)

const (
	methodRegister             = "Register"
	methodAuthenticate         = "Authenticate"
	methodValidateSession      = "ValidateSession"
	methodChangePassword       = "ChangePassword"
	methodUpdatePassword       = "UpdatePassword"
	methodRequestPasswordReset = "RequestPasswordReset"
	methodResetPassword        = "ResetPassword"
	methodIssueSession         = "issueSession"

	msgStartRegistration     = "starting user registration"
	msgInvalidEmailFormat    = "invalid email format"
	msgEmptyUsername         = "empty username provided"
	msgInvalidPassword       = "password rejected by policy"
	msgEmailExists           = "user with this email already exists"
	msgUsernameExists        = "user with this username already exists"
	msgUserRegistered        = "user registered successfully"
	msgLoginAttempt          = "login attempt"
	msgLoginNonExistent      = "login attempt with non-existent email"
	msgInvalidPasswordAuth   = "invalid password provided"
	msgMalformedStoredHash   = "stored password hash is malformed"
	msgLoginInactive         = "login attempt on inactive account"
	msgUserLoggedIn          = "user logged in successfully"
	msgPasswordRehashed      = "password hash upgraded"
	msgRehashSkipped         = "password hash changed concurrently, rehash skipped"
	msgSessionRejected       = "session token rejected"
	msgSessionUnknownUser    = "session references unknown user"
	msgSessionInactive       = "session of inactive account"
	msgSessionInvalidated    = "session predates password change"
	msgSessionValid          = "session validated"
	msgChangingPassword      = "changing password"
	msgPasswordChanged       = "password changed"
	msgCurrentPasswordWrong  = "current password does not match"
	msgResetRequested        = "password reset requested"
	msgResetUnknownEmail     = "password reset requested for unknown email"
	msgResetInactiveAccount  = "password reset requested for inactive account"
	msgResetIssued           = "password reset token issued"
	msgResetTokenRejected    = "reset token rejected"
	msgResetExpiredCleared   = "expired reset token cleared"
	msgResetCompleted        = "password reset completed"
	msgSessionIssued         = "session issued"
	msgErrCheckExistingUser  = "failed to check existing user"
	msgErrHashPassword       = "failed to hash password"
	msgErrCreateUser         = "failed to create user"
	msgErrFindingUser        = "error finding user"
	msgErrRehash             = "failed to upgrade password hash"
	msgErrUpdatingUser       = "failed to update user"
	msgErrIssuingReset       = "failed to issue reset token"
	msgErrNotifying          = "failed to deliver reset token"
	msgErrClearingReset      = "failed to clear reset token"
	msgErrGenerateSession    = "failed to generate session token"
	msgErrPreparingDummyHash = "failed to prepare dummy hash"

	errCtxValidatingEmail    = "validating email"
	errCtxValidatingUsername = "validating username"
	errCtxValidatingPassword = "validating password"
	errCtxValidatingUserID   = "validating user ID"
	errCtxCheckingUser       = "checking existing user"
	errCtxEmailRegistered    = "email already registered"
	errCtxUsernameTaken      = "username already taken"
	errCtxHashingPassword    = "hashing password"
	errCtxCreatingUser       = "creating user"
	errCtxInvalidCredentials = "invalid credentials"
	errCtxAccountInactive    = "account inactive"
	errCtxFindingUser        = "finding user"
	errCtxValidatingSession  = "validating session"
	errCtxUpdatingPassword   = "updating password"
	errCtxIssuingReset       = "issuing reset token"
	errCtxStoringReset       = "storing reset token"
	errCtxConsumingReset     = "consuming reset token"
	errCtxGeneratingSession  = "generating session"
)

// dummyPassword хешируется один раз и проверяется для неизвестных email,
// чтобы время ответа не выдавало существование учетной записи.
const dummyPassword = "authcore-timing-equalizer-0"

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

var errHashChanged = errors.New("password hash changed concurrently")

// Option настраивает AuthUseCaseImpl.
type Option func(*AuthUseCaseImpl)

// WithClock задает источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(a *AuthUseCaseImpl) {
		if now != nil {
			a.now = now
		}
	}
}

// WithMetrics включает счетчики исходов.
func WithMetrics(m *metrics.Metrics) Option {
	return func(a *AuthUseCaseImpl) { a.metrics = m }
}

// WithPasswordComplexity требует в пароле хотя бы одну букву и одну цифру.
func WithPasswordComplexity(required bool) Option {
	return func(a *AuthUseCaseImpl) { a.requireComplexity = required }
}

// AuthUseCaseImpl реализует интерфейс AuthUseCase.
type AuthUseCaseImpl struct {
	userRepo    repositories.UserRepository
	passwordSvc svc.PasswordService
	tokenSvc    svc.TokenService
	resetSvc    svc.ResetTokenService
	notifier    svc.ResetNotifier
	metrics     *metrics.Metrics

	now               func() time.Time
	requireComplexity bool

	dummyOnce sync.Once
	dummyHash string
}

// NewAuthUseCase создает новый экземпляр сервиса аутентификации.
func NewAuthUseCase(
	userRepo repositories.UserRepository,
	passwordSvc svc.PasswordService,
	tokenSvc svc.TokenService,
	resetSvc svc.ResetTokenService,
	notifier svc.ResetNotifier,
	opts ...Option,
) api.AuthUseCase {
	a := &AuthUseCaseImpl{
		userRepo:    userRepo,
		passwordSvc: passwordSvc,
		tokenSvc:    tokenSvc,
		resetSvc:    resetSvc,
		notifier:    notifier,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Register создает активную неподтвержденную учетную запись.
func (a *AuthUseCaseImpl) Register(ctx context.Context, email, username, password string) (*entities.User, error) {
	email = normalizeEmail(email)
	username = strings.TrimSpace(username)

	log := logger.Log(ctx).With(zap.String("method", methodRegister), zap.String("email", email))
	log.Debug(ctx, msgStartRegistration)

	if err := validateEmail(email); err != nil {
		log.Debug(ctx, msgInvalidEmailFormat, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}
	if username == "" {
		log.Debug(ctx, msgEmptyUsername)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUsername, entities.ErrEmptyUsername)
	}
	if err := services.ValidatePassword(password, a.requireComplexity); err != nil {
		log.Debug(ctx, msgInvalidPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	if _, err := a.userRepo.FindByEmail(ctx, email); err == nil {
		log.Debug(ctx, msgEmailExists)
		return nil, fmt.Errorf("%s: %w", errCtxEmailRegistered, services.ErrEmailAlreadyExists)
	} else if !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}

	if _, err := a.userRepo.FindByUsername(ctx, username); err == nil {
		log.Debug(ctx, msgUsernameExists)
		return nil, fmt.Errorf("%s: %w", errCtxUsernameTaken, services.ErrUsernameAlreadyExists)
	} else if !errors.Is(err, entities.ErrUserNotFound) {
		log.Error(ctx, msgErrCheckExistingUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCheckingUser, err)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	createdUser, err := a.userRepo.Create(ctx, entities.NewUser(email, username, hashedPassword))
	if err != nil {
		log.Error(ctx, msgErrCreateUser, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", errCtxCreatingUser, err)
	}

	log.Info(ctx, msgUserRegistered, zap.String("userID", createdUser.ID))
	return createdUser, nil
}

// Authenticate проверяет email и пароль и выдает сессию.
// Неизвестный email и неверный пароль неразличимы для вызывающего.
func (a *AuthUseCaseImpl) Authenticate(ctx context.Context, email, password string) (*services.Session, error) {
	email = normalizeEmail(email)

	log := logger.Log(ctx).With(zap.String("method", methodAuthenticate), zap.String("email", email))
	log.Debug(ctx, msgLoginAttempt)

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			a.verifyDummy(ctx, password)
			log.Debug(ctx, msgLoginNonExistent)
			a.metrics.LoginAttempt(metrics.OutcomeInvalidCredentials)
			return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		a.metrics.LoginAttempt(metrics.OutcomeError)
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	log = log.With(zap.String("userID", user.ID))

	if !a.verify(ctx, log, password, user.PasswordHash) {
		log.Debug(ctx, msgInvalidPasswordAuth)
		a.metrics.LoginAttempt(metrics.OutcomeInvalidCredentials)
		return nil, fmt.Errorf("%s: %w", errCtxInvalidCredentials, services.ErrInvalidCredentials)
	}

	if !user.Active {
		log.Info(ctx, msgLoginInactive)
		a.metrics.LoginAttempt(metrics.OutcomeInactive)
		return nil, fmt.Errorf("%s: %w", errCtxAccountInactive, services.ErrAccountInactive)
	}

	if a.passwordSvc.NeedsRehash(user.PasswordHash) {
		a.rehash(ctx, log, user, password)
	}

	session, err := a.issueSession(ctx, user)
	if err != nil {
		a.metrics.LoginAttempt(metrics.OutcomeError)
		return nil, err
	}

	log.Info(ctx, msgUserLoggedIn)
	a.metrics.LoginAttempt(metrics.OutcomeSuccess)
	return session, nil
}

// ValidateSession проверяет токен сессии и возвращает ее владельца.
func (a *AuthUseCaseImpl) ValidateSession(ctx context.Context, token string) (*entities.User, error) {
	log := logger.Log(ctx).With(zap.String("method", methodValidateSession))

	claims, err := a.tokenSvc.ValidateSessionToken(ctx, token)
	if err != nil {
		log.Debug(ctx, msgSessionRejected, zap.Error(err))
		a.metrics.SessionValidation(metrics.OutcomeInvalid)
		return nil, fmt.Errorf("%s: %w: %w", errCtxValidatingSession, services.ErrInvalidSession, err)
	}

	log = log.With(zap.String("userID", claims.UserID))

	user, err := a.userRepo.FindByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgSessionUnknownUser)
			a.metrics.SessionValidation(metrics.OutcomeInvalid)
			return nil, fmt.Errorf("%s: %w", errCtxValidatingSession, services.ErrInvalidSession)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		a.metrics.SessionValidation(metrics.OutcomeError)
		return nil, fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	if !user.Active {
		log.Debug(ctx, msgSessionInactive)
		a.metrics.SessionValidation(metrics.OutcomeInactive)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingSession, services.ErrAccountInactive)
	}

	if services.ChangedPasswordAfter(claims.IssuedAt, user.PasswordChangedAt) {
		log.Debug(ctx, msgSessionInvalidated)
		a.metrics.SessionValidation(metrics.OutcomeInvalidated)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingSession, services.ErrSessionInvalidated)
	}

	log.Debug(ctx, msgSessionValid)
	a.metrics.SessionValidation(metrics.OutcomeSuccess)
	return user, nil
}

// ChangePassword устанавливает новый пароль, обновляет момент смены
// и снимает ожидающий сброс одной транзакцией.
func (a *AuthUseCaseImpl) ChangePassword(ctx context.Context, userID, newPassword string) error {
	log := logger.Log(ctx).With(zap.String("method", methodChangePassword), zap.String("userID", userID))
	log.Debug(ctx, msgChangingPassword)

	if userID == "" {
		return fmt.Errorf("%s: %w", errCtxValidatingUserID, entities.ErrEmptyUserID)
	}
	if err := services.ValidatePassword(newPassword, a.requireComplexity); err != nil {
		log.Debug(ctx, msgInvalidPassword, zap.Error(err))
		a.metrics.PasswordChange(metrics.OutcomeWeakPassword)
		return fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, newPassword)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		a.metrics.PasswordChange(metrics.OutcomeError)
		return fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	now := a.now()
	if _, err := a.userRepo.UpdateLocked(ctx, userID, func(user *entities.User) error {
		if !user.Active {
			return services.ErrAccountInactive
		}
		return user.SetPassword(hashedPassword, now)
	}); err != nil {
		a.metrics.PasswordChange(outcomeOf(err))
		if !isExpectedFailure(err) {
			log.Error(ctx, msgErrUpdatingUser, zap.Error(err))
		}
		return fmt.Errorf("%s: %w", errCtxUpdatingPassword, err)
	}

	log.Info(ctx, msgPasswordChanged)
	a.metrics.PasswordChange(metrics.OutcomeSuccess)
	return nil
}

// UpdatePassword меняет пароль после проверки текущего и выдает новую сессию.
// Проверка текущего пароля выполняется под блокировкой учетной записи.
func (a *AuthUseCaseImpl) UpdatePassword(
	ctx context.Context, userID, currentPassword, newPassword string,
) (*services.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", methodUpdatePassword), zap.String("userID", userID))
	log.Debug(ctx, msgChangingPassword)

	if userID == "" {
		return nil, fmt.Errorf("%s: %w", errCtxValidatingUserID, entities.ErrEmptyUserID)
	}
	if err := services.ValidatePassword(newPassword, a.requireComplexity); err != nil {
		log.Debug(ctx, msgInvalidPassword, zap.Error(err))
		a.metrics.PasswordChange(metrics.OutcomeWeakPassword)
		return nil, fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, newPassword)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		a.metrics.PasswordChange(metrics.OutcomeError)
		return nil, fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	now := a.now()
	user, err := a.userRepo.UpdateLocked(ctx, userID, func(user *entities.User) error {
		if !user.Active {
			return services.ErrAccountInactive
		}
		if !a.verify(ctx, log, currentPassword, user.PasswordHash) {
			log.Debug(ctx, msgCurrentPasswordWrong)
			return services.ErrInvalidCredentials
		}
		return user.SetPassword(hashedPassword, now)
	})
	if err != nil {
		a.metrics.PasswordChange(outcomeOf(err))
		if !isExpectedFailure(err) {
			log.Error(ctx, msgErrUpdatingUser, zap.Error(err))
		}
		return nil, fmt.Errorf("%s: %w", errCtxUpdatingPassword, err)
	}

	log.Info(ctx, msgPasswordChanged)
	a.metrics.PasswordChange(metrics.OutcomeSuccess)

	return a.issueSession(ctx, user)
}

// RequestPasswordReset выпускает токен сброса для активной учетной записи
// и передает его уведомителю. Для неизвестных и неактивных учетных записей
// возвращается пустая строка без ошибки.
func (a *AuthUseCaseImpl) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	email = normalizeEmail(email)

	log := logger.Log(ctx).With(zap.String("method", methodRequestPasswordReset), zap.String("email", email))
	log.Debug(ctx, msgResetRequested)

	if err := validateEmail(email); err != nil {
		log.Debug(ctx, msgInvalidEmailFormat, zap.Error(err))
		return "", fmt.Errorf("%s: %w", errCtxValidatingEmail, err)
	}

	user, err := a.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgResetUnknownEmail)
			a.metrics.ResetRequested(metrics.OutcomeUnknownAccount)
			return "", nil
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		a.metrics.ResetRequested(metrics.OutcomeError)
		return "", fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	log = log.With(zap.String("userID", user.ID))

	if !user.Active {
		log.Debug(ctx, msgResetInactiveAccount)
		a.metrics.ResetRequested(metrics.OutcomeInactive)
		return "", nil
	}

	token, err := a.resetSvc.Issue(ctx, a.now())
	if err != nil {
		log.Error(ctx, msgErrIssuingReset, zap.Error(err))
		a.metrics.ResetRequested(metrics.OutcomeError)
		return "", fmt.Errorf("%s: %w: %w", errCtxIssuingReset, services.ErrTokenGenerationFailed, err)
	}

	if _, err := a.userRepo.UpdateLocked(ctx, user.ID, func(u *entities.User) error {
		if !u.Active {
			return services.ErrAccountInactive
		}
		u.SetResetToken(token.Hash, token.ExpiresAt)
		return nil
	}); err != nil {
		if errors.Is(err, services.ErrAccountInactive) || errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgResetInactiveAccount)
			a.metrics.ResetRequested(metrics.OutcomeInactive)
			return "", nil
		}
		log.Error(ctx, msgErrUpdatingUser, zap.Error(err))
		a.metrics.ResetRequested(metrics.OutcomeError)
		return "", fmt.Errorf("%s: %w", errCtxStoringReset, err)
	}

	if a.notifier != nil {
		if err := a.notifier.NotifyPasswordReset(ctx, svc.ResetNotification{
			UserID:    user.ID,
			Email:     user.Email,
			Username:  user.Username,
			Token:     token.Token,
			ExpiresAt: token.ExpiresAt,
		}); err != nil {
			log.Error(ctx, msgErrNotifying, zap.Error(err))
			a.clearReset(ctx, log, user.ID, token.Hash)
			a.metrics.ResetRequested(metrics.OutcomeError)
			return "", nil
		}
	}

	log.Info(ctx, msgResetIssued, zap.Time("expiresAt", token.ExpiresAt))
	a.metrics.ResetRequested(metrics.OutcomeSuccess)
	return token.Token, nil
}

// ResetPassword погашает токен сброса и устанавливает новый пароль.
// Проверка токена повторяется под блокировкой, поэтому токен используется не более одного раза.
func (a *AuthUseCaseImpl) ResetPassword(ctx context.Context, token, newPassword string) error {
	log := logger.Log(ctx).With(zap.String("method", methodResetPassword))

	if err := services.ValidatePassword(newPassword, a.requireComplexity); err != nil {
		log.Debug(ctx, msgInvalidPassword, zap.Error(err))
		a.metrics.ResetCompleted(metrics.OutcomeWeakPassword)
		return fmt.Errorf("%s: %w", errCtxValidatingPassword, err)
	}

	now := a.now()
	tokenHash := a.resetSvc.HashToken(token)

	user, err := a.userRepo.FindByResetTokenHash(ctx, tokenHash)
	if err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			log.Debug(ctx, msgResetTokenRejected, zap.Error(services.ErrResetTokenAbsent))
			a.metrics.ResetCompleted(metrics.OutcomeAbsent)
			return fmt.Errorf("%s: %w", errCtxConsumingReset, services.ErrResetTokenAbsent)
		}
		log.Error(ctx, msgErrFindingUser, zap.Error(err))
		a.metrics.ResetCompleted(metrics.OutcomeError)
		return fmt.Errorf("%s: %w", errCtxFindingUser, err)
	}

	log = log.With(zap.String("userID", user.ID))

	if err := a.resetSvc.Validate(token, user.PasswordResetTokenHash, user.PasswordResetExpires, now); err != nil {
		return a.rejectReset(ctx, log, user.ID, tokenHash, err)
	}

	hashedPassword, err := a.passwordSvc.Hash(ctx, newPassword)
	if err != nil {
		log.Error(ctx, msgErrHashPassword, zap.Error(err))
		a.metrics.ResetCompleted(metrics.OutcomeError)
		return fmt.Errorf("%s: %w", errCtxHashingPassword, err)
	}

	if _, err := a.userRepo.UpdateLocked(ctx, user.ID, func(u *entities.User) error {
		if !u.Active {
			return services.ErrAccountInactive
		}
		if err := a.resetSvc.Validate(token, u.PasswordResetTokenHash, u.PasswordResetExpires, now); err != nil {
			return err
		}
		return u.SetPassword(hashedPassword, now)
	}); err != nil {
		if errors.Is(err, entities.ErrUserNotFound) {
			err = services.ErrResetTokenAbsent
		}
		return a.rejectReset(ctx, log, user.ID, tokenHash, err)
	}

	log.Info(ctx, msgResetCompleted)
	a.metrics.ResetCompleted(metrics.OutcomeSuccess)
	return nil
}

func (a *AuthUseCaseImpl) rejectReset(ctx context.Context, log *logger.Logger, userID, tokenHash string, err error) error {
	switch {
	case errors.Is(err, services.ErrResetTokenExpired):
		log.Debug(ctx, msgResetTokenRejected, zap.Error(err))
		a.clearReset(ctx, log, userID, tokenHash)
		a.metrics.ResetCompleted(metrics.OutcomeExpired)
	case errors.Is(err, services.ErrResetTokenMismatch):
		log.Debug(ctx, msgResetTokenRejected, zap.Error(err))
		a.metrics.ResetCompleted(metrics.OutcomeMismatch)
	case errors.Is(err, services.ErrResetTokenAbsent):
		log.Debug(ctx, msgResetTokenRejected, zap.Error(err))
		a.metrics.ResetCompleted(metrics.OutcomeAbsent)
	case errors.Is(err, services.ErrAccountInactive):
		log.Debug(ctx, msgResetTokenRejected, zap.Error(err))
		a.metrics.ResetCompleted(metrics.OutcomeInactive)
	default:
		log.Error(ctx, msgErrUpdatingUser, zap.Error(err))
		a.metrics.ResetCompleted(metrics.OutcomeError)
	}
	return fmt.Errorf("%s: %w", errCtxConsumingReset, err)
}

// clearReset снимает токен, только если в записи все еще сохранен tokenHash.
func (a *AuthUseCaseImpl) clearReset(ctx context.Context, log *logger.Logger, userID, tokenHash string) {
	cleared, err := a.userRepo.ClearResetTokenIfMatches(ctx, userID, tokenHash)
	if err != nil {
		log.Error(ctx, msgErrClearingReset, zap.Error(err))
		return
	}
	if cleared {
		log.Debug(ctx, msgResetExpiredCleared)
	}
}

// verify сводит поврежденный хеш к неуспешной проверке.
func (a *AuthUseCaseImpl) verify(ctx context.Context, log *logger.Logger, password, hash string) bool {
	ok, err := a.passwordSvc.Verify(ctx, password, hash)
	if err != nil {
		if errors.Is(err, services.ErrMalformedHash) {
			log.Warn(ctx, msgMalformedStoredHash, zap.Error(err))
		} else {
			log.Debug(ctx, msgInvalidPasswordAuth, zap.Error(err))
		}
		return false
	}
	return ok
}

func (a *AuthUseCaseImpl) verifyDummy(ctx context.Context, password string) {
	a.dummyOnce.Do(func() {
		hash, err := a.passwordSvc.Hash(ctx, dummyPassword)
		if err != nil {
			logger.Log(ctx).Warn(ctx, msgErrPreparingDummyHash, zap.Error(err))
			return
		}
		a.dummyHash = hash
	})
	if a.dummyHash == "" {
		return
	}
	_, _ = a.passwordSvc.Verify(ctx, password, a.dummyHash)
}

// rehash обновляет хеш пароля без изменения момента смены пароля.
func (a *AuthUseCaseImpl) rehash(ctx context.Context, log *logger.Logger, user *entities.User, password string) {
	newHash, err := a.passwordSvc.Hash(ctx, password)
	if err != nil {
		log.Warn(ctx, msgErrRehash, zap.Error(err))
		return
	}

	oldHash := user.PasswordHash
	updated, err := a.userRepo.UpdateLocked(ctx, user.ID, func(u *entities.User) error {
		if u.PasswordHash != oldHash {
			return errHashChanged
		}
		u.PasswordHash = newHash
		return nil
	})
	if err != nil {
		if errors.Is(err, errHashChanged) {
			log.Debug(ctx, msgRehashSkipped)
			return
		}
		log.Warn(ctx, msgErrRehash, zap.Error(err))
		return
	}

	*user = *updated
	log.Info(ctx, msgPasswordRehashed)
	a.metrics.Rehashed()
}

func (a *AuthUseCaseImpl) issueSession(ctx context.Context, user *entities.User) (*services.Session, error) {
	log := logger.Log(ctx).With(zap.String("method", methodIssueSession), zap.String("userID", user.ID))

	token, issuedAt, expiresAt, err := a.tokenSvc.GenerateSessionToken(ctx, user.ID, user.Username, string(user.Role))
	if err != nil {
		log.Error(ctx, msgErrGenerateSession, zap.Error(err))
		return nil, fmt.Errorf("%s: %w: %w", errCtxGeneratingSession, services.ErrTokenGenerationFailed, err)
	}

	log.Debug(ctx, msgSessionIssued, zap.Time("expiresAt", expiresAt))
	return &services.Session{
		User:      user,
		Token:     token,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

func outcomeOf(err error) string {
	switch {
	case errors.Is(err, services.ErrAccountInactive):
		return metrics.OutcomeInactive
	case errors.Is(err, services.ErrInvalidCredentials):
		return metrics.OutcomeInvalidCredentials
	case errors.Is(err, entities.ErrUserNotFound):
		return metrics.OutcomeUnknownAccount
	default:
		return metrics.OutcomeError
	}
}

func isExpectedFailure(err error) bool {
	return errors.Is(err, services.ErrAccountInactive) ||
		errors.Is(err, services.ErrInvalidCredentials) ||
		errors.Is(err, entities.ErrUserNotFound)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Валидация email.
func validateEmail(email string) error {
	if email == "" || len(email) > 255 || !emailRegex.MatchString(email) {
		return entities.ErrInvalidEmail
	}
	return nil
}
