package app_test

import (
	"context"
	"strconv"
	"sync"
	"time"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
	"authcore/internal/auth/ports/repositories"
)

// memoryUserRepository хранит учетные записи в памяти. Один мьютекс
// сериализует UpdateLocked так же, как блокировка строки в Postgres.
type memoryUserRepository struct {
	mu     sync.Mutex
	users  map[string]*entities.User
	nextID int
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: make(map[string]*entities.User)}
}

func cloneUser(u *entities.User) *entities.User {
	c := *u
	if u.PasswordChangedAt != nil {
		t := *u.PasswordChangedAt
		c.PasswordChangedAt = &t
	}
	if u.PasswordResetTokenHash != nil {
		h := *u.PasswordResetTokenHash
		c.PasswordResetTokenHash = &h
	}
	if u.PasswordResetExpires != nil {
		t := *u.PasswordResetExpires
		c.PasswordResetExpires = &t
	}
	return &c
}

func (r *memoryUserRepository) Create(_ context.Context, user *entities.User) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, services.ErrEmailAlreadyExists
		}
		if u.Username == user.Username {
			return nil, services.ErrUsernameAlreadyExists
		}
	}

	r.nextID++
	stored := cloneUser(user)
	stored.ID = "user-" + strconv.Itoa(r.nextID)
	if stored.Role == "" {
		stored.Role = entities.RoleUser
	}
	r.users[stored.ID] = stored
	return cloneUser(stored), nil
}

func (r *memoryUserRepository) findBy(match func(u *entities.User) bool) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, u := range r.users {
		if match(u) {
			return cloneUser(u), nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r *memoryUserRepository) FindByID(_ context.Context, id string) (*entities.User, error) {
	return r.findBy(func(u *entities.User) bool { return u.ID == id })
}

func (r *memoryUserRepository) FindByEmail(_ context.Context, email string) (*entities.User, error) {
	return r.findBy(func(u *entities.User) bool { return u.Email == email })
}

func (r *memoryUserRepository) FindByUsername(_ context.Context, username string) (*entities.User, error) {
	return r.findBy(func(u *entities.User) bool { return u.Username == username })
}

func (r *memoryUserRepository) FindByResetTokenHash(_ context.Context, tokenHash string) (*entities.User, error) {
	return r.findBy(func(u *entities.User) bool {
		return u.PasswordResetTokenHash != nil && *u.PasswordResetTokenHash == tokenHash
	})
}

func (r *memoryUserRepository) UpdateLocked(
	_ context.Context, id string, fn repositories.UserMutation,
) (*entities.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.users[id]
	if !ok {
		return nil, entities.ErrUserNotFound
	}

	working := cloneUser(stored)
	if err := fn(working); err != nil {
		return nil, err
	}

	r.users[id] = working
	return cloneUser(working), nil
}

func (r *memoryUserRepository) ClearResetTokenIfMatches(_ context.Context, id, tokenHash string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[id]
	if !ok || u.PasswordResetTokenHash == nil || *u.PasswordResetTokenHash != tokenHash {
		return false, nil
	}
	u.ClearResetToken()
	return true, nil
}

func (r *memoryUserRepository) ClearExpiredResets(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for _, u := range r.users {
		if u.PasswordResetExpires != nil && u.PasswordResetExpires.Before(now) {
			u.ClearResetToken()
			n++
		}
	}
	return n, nil
}

func (r *memoryUserRepository) get(id string) *entities.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id])
}
