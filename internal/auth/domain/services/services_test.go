package services_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"authcore/internal/auth/domain/entities"
	"authcore/internal/auth/domain/services"
)

func TestChangedPasswordAfter(t *testing.T) {
	issued := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	ptr := func(t time.Time) *time.Time { return &t }

	tests := []struct {
		name      string
		changedAt *time.Time
		want      bool
	}{
		{"never changed", nil, false},
		{"changed before issue", ptr(issued.Add(-time.Hour)), false},
		{"changed in same second", ptr(issued.Add(900 * time.Millisecond)), false},
		{"changed one second later", ptr(issued.Add(time.Second)), true},
		{"changed long after", ptr(issued.Add(24 * time.Hour)), true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, services.ChangedPasswordAfter(issued, tc.changedAt))
		})
	}

	t.Run("sub-second issue time is truncated", func(t *testing.T) {
		changed := issued
		assert.False(t, services.ChangedPasswordAfter(issued.Add(500*time.Millisecond), &changed))
	})

	t.Run("absent for any issue time", func(t *testing.T) {
		for _, at := range []time.Time{{}, issued, time.Now().Add(100 * time.Hour)} {
			assert.False(t, services.ChangedPasswordAfter(at, nil))
		}
	})
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name       string
		password   string
		complexity bool
		wantCause  error
	}{
		{"valid", "longenough1", false, nil},
		{"exactly min", "12345678", false, nil},
		{"exactly max", strings.Repeat("a", services.MaxPasswordLength), false, nil},
		{"multibyte counted as runes", strings.Repeat("ж", 8), false, nil},
		{"too short", "short1", false, entities.ErrPasswordTooShort},
		{"empty", "", false, entities.ErrPasswordTooShort},
		{"too long", strings.Repeat("a", services.MaxPasswordLength+1), false, entities.ErrPasswordTooLong},
		{"letters only without complexity", "abcdefgh", false, nil},
		{"letters only with complexity", "abcdefgh", true, entities.ErrPasswordTooWeak},
		{"digits only with complexity", "12345678", true, entities.ErrPasswordTooWeak},
		{"mixed with complexity", "abcdefg1", true, nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := services.ValidatePassword(tc.password, tc.complexity)
			if tc.wantCause == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, services.ErrWeakPassword)
			require.ErrorIs(t, err, tc.wantCause)
		})
	}
}
