package services_test

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authcore/internal/auth/adapters/services"
	"authcore/internal/auth/domain/entities"
	domainservices "authcore/internal/auth/domain/services"
)

//nolint:gosec
const (
	testSecret   = "test-secret-key"
	testIssuer   = "authcore-test"
	testPassword = "longenough1"

	msgHashVerifiable       = "created hash should be verifiable"
	msgWrongPasswordRejects = "different password must not verify"
	msgSaltedHashes         = "hashes of same password should differ due to salt"
)

var fastArgon2 = services.Argon2Params{MemoryKB: 1024, Time: 1, Threads: 1}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("entropy exhausted") }

func TestArgon2HashAndVerify(t *testing.T) {
	ctx := context.Background()
	svc := services.NewArgon2(fastArgon2, services.NewBcrypt(bcrypt.MinCost))

	passwords := []string{testPassword, "pässwörd-ünïcode", strings.Repeat("x", domainservices.MaxPasswordLength)}
	for _, p := range passwords {
		hash, err := svc.Hash(ctx, p)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=1024,t=1,p=1$"))

		ok, err := svc.Verify(ctx, p, hash)
		require.NoError(t, err)
		assert.True(t, ok, msgHashVerifiable)

		ok, err = svc.Verify(ctx, p+"x", hash)
		require.NoError(t, err)
		assert.False(t, ok, msgWrongPasswordRejects)
	}

	first, err := svc.Hash(ctx, testPassword)
	require.NoError(t, err)
	second, err := svc.Hash(ctx, testPassword)
	require.NoError(t, err)
	assert.NotEqual(t, first, second, msgSaltedHashes)
}

func TestArgon2HashRejectsInput(t *testing.T) {
	ctx := context.Background()
	svc := services.NewArgon2(fastArgon2, nil)

	hash, err := svc.Hash(ctx, "")
	require.ErrorIs(t, err, domainservices.ErrInvalidPassword)
	assert.Empty(t, hash)

	hash, err = svc.Hash(ctx, strings.Repeat("x", domainservices.MaxPasswordLength+1))
	require.ErrorIs(t, err, entities.ErrPasswordTooLong)
	assert.Empty(t, hash)
}

func TestArgon2HashFailsWithoutEntropy(t *testing.T) {
	svc := services.NewArgon2WithReader(fastArgon2, nil, failingReader{})

	hash, err := svc.Hash(context.Background(), testPassword)
	require.ErrorIs(t, err, domainservices.ErrHashingFailed)
	assert.Empty(t, hash)
}

func TestArgon2VerifyMalformedHash(t *testing.T) {
	svc := services.NewArgon2(fastArgon2, nil)

	malformed := []string{
		"",
		"plaintext",
		"$argon2id$",
		"$argon2id$v=19$m=1024,t=1,p=1$onlyfive",
		"$argon2id$v=18$m=1024,t=1,p=1$c29tZXNhbHQ$c29tZWtleQ",
		"$argon2id$v=19$m=abc,t=1,p=1$c29tZXNhbHQ$c29tZWtleQ",
		"$argon2id$v=19$m=1024,t=1,p=0$c29tZXNhbHQ$c29tZWtleQ",
		"$argon2id$v=19$m=1024,t=1,p=1$!!!$c29tZWtleQ",
		"$argon2id$v=19$m=1024,t=1,p=1$c29tZXNhbHQ$",
		"$argon2id$v=19$m=8192,t=1,p=1$c29tZXNhbHQ$c29tZWtleQ",
		"$argon2id$v=19$m=1024,t=2000,p=1$c29tZXNhbHQ$c29tZWtleQ",
		"$argon2id$v=19$m=1024,t=1,p=64$c29tZXNhbHQ$c29tZWtleQ",
		"$argon2id$v=19$m=4294967295,t=4294967295,p=255$c29tZXNhbHQ$c29tZWtleQ",
	}

	for _, hash := range malformed {
		t.Run(hash, func(t *testing.T) {
			ok, err := svc.Verify(context.Background(), testPassword, hash)
			require.ErrorIs(t, err, domainservices.ErrMalformedHash)
			assert.False(t, ok)
		})
	}
}

func TestArgon2VerifiesLegacyBcrypt(t *testing.T) {
	ctx := context.Background()
	legacy := services.NewBcrypt(bcrypt.MinCost)
	svc := services.NewArgon2(fastArgon2, legacy)

	legacyHash, err := legacy.Hash(ctx, testPassword)
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, testPassword, legacyHash)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, svc.NeedsRehash(legacyHash), "bcrypt hashes must be upgraded")
}

func TestArgon2NeedsRehash(t *testing.T) {
	ctx := context.Background()
	svc := services.NewArgon2(fastArgon2, nil)

	current, err := svc.Hash(ctx, testPassword)
	require.NoError(t, err)
	assert.False(t, svc.NeedsRehash(current))

	stronger := services.NewArgon2(services.Argon2Params{MemoryKB: 2048, Time: 2, Threads: 1}, nil)
	assert.True(t, stronger.NeedsRehash(current))
	assert.True(t, svc.NeedsRehash("garbage"))
}

func TestArgon2VerifyWithinCeiling(t *testing.T) {
	ctx := context.Background()
	heavier := services.NewArgon2(services.Argon2Params{MemoryKB: 4096, Time: 4, Threads: 2}, nil)
	svc := services.NewArgon2(fastArgon2, nil)

	hash, err := heavier.Hash(ctx, testPassword)
	require.NoError(t, err)

	ok, err := svc.Verify(ctx, testPassword, hash)
	require.NoError(t, err)
	assert.True(t, ok, "hashes up to four times the configured cost must still verify")
	assert.True(t, svc.NeedsRehash(hash))
}

func TestBcryptService(t *testing.T) {
	ctx := context.Background()
	svc := services.NewBcrypt(bcrypt.MinCost)

	hash, err := svc.Hash(ctx, testPassword)
	require.NoError(t, err)
	assert.True(t, services.IsBcryptHash(hash))

	ok, err := svc.Verify(ctx, testPassword, hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.Verify(ctx, "wrongpass1", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.Verify(ctx, testPassword, "$2a$10$short")
	require.ErrorIs(t, err, domainservices.ErrMalformedHash)
	assert.False(t, ok)

	ok, err = svc.Verify(ctx, testPassword, "$argon2id$v=19$m=1,t=1,p=1$a$b")
	require.ErrorIs(t, err, domainservices.ErrMalformedHash)
	assert.False(t, ok)

	assert.False(t, svc.NeedsRehash(hash))
	assert.True(t, services.NewBcrypt(bcrypt.MinCost+1).NeedsRehash(hash))
	assert.True(t, svc.NeedsRehash("$argon2id$v=19$m=1,t=1,p=1$a$b"))
}

func TestBcryptLongPasswords(t *testing.T) {
	ctx := context.Background()
	svc := services.NewBcrypt(bcrypt.MinCost)

	for _, n := range []int{72, 73, 100, domainservices.MaxPasswordLength} {
		password := strings.Repeat("a", n-1) + "1"
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			require.NoError(t, domainservices.ValidatePassword(password, true))

			hash, err := svc.Hash(ctx, password)
			require.NoError(t, err)

			ok, err := svc.Verify(ctx, password, hash)
			require.NoError(t, err)
			assert.True(t, ok)

			ok, err = svc.Verify(ctx, strings.Repeat("a", n-1)+"2", hash)
			require.NoError(t, err)
			assert.False(t, ok, "a password differing in the last byte must not verify")
		})
	}

	t.Run("legacy truncated hash", func(t *testing.T) {
		password := strings.Repeat("b", 99) + "1"
		legacyHash, err := bcrypt.GenerateFromPassword([]byte(password)[:72], bcrypt.MinCost)
		require.NoError(t, err)

		ok, err := svc.Verify(ctx, password, string(legacyHash))
		require.NoError(t, err)
		assert.True(t, ok)
	})
}

func TestBcryptVerifyRejectsExcessiveCost(t *testing.T) {
	ctx := context.Background()
	svc := services.NewBcrypt(bcrypt.MinCost)

	hash, err := svc.Hash(ctx, testPassword)
	require.NoError(t, err)

	expensive := "$2a$31$" + hash[len("$2a$04$"):]
	ok, err := svc.Verify(ctx, testPassword, expensive)
	require.ErrorIs(t, err, domainservices.ErrMalformedHash)
	assert.False(t, ok)
}

func TestJWTGenerateAndValidate(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 750_000_000, time.UTC)
	clock := func() time.Time { return now }

	svc := services.NewJWT(testSecret, testIssuer, time.Hour, clock)

	token, issuedAt, expiresAt, err := svc.GenerateSessionToken(ctx, "user-1", "alice", "user")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.Equal(t, now.Truncate(time.Second), issuedAt, "iat must be whole seconds")
	assert.Equal(t, issuedAt.Add(time.Hour), expiresAt)

	claims, err := svc.ValidateSessionToken(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, issuedAt.Unix(), claims.IssuedAt.Unix())
}

func TestJWTValidateFailures(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	current := now
	clock := func() time.Time { return current }

	svc := services.NewJWT(testSecret, testIssuer, time.Minute, clock)
	token, _, _, err := svc.GenerateSessionToken(ctx, "user-1", "alice", "user")
	require.NoError(t, err)

	t.Run("expired", func(t *testing.T) {
		current = now.Add(2 * time.Minute)
		t.Cleanup(func() { current = now })

		_, err := svc.ValidateSessionToken(ctx, token)
		require.ErrorIs(t, err, domainservices.ErrExpiredJWTToken)
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := services.NewJWT("other-secret", testIssuer, time.Minute, clock)
		_, err := other.ValidateSessionToken(ctx, token)
		require.ErrorIs(t, err, domainservices.ErrInvalidJWTToken)
	})

	t.Run("wrong issuer", func(t *testing.T) {
		other := services.NewJWT(testSecret, "someone-else", time.Minute, clock)
		_, err := other.ValidateSessionToken(ctx, token)
		require.ErrorIs(t, err, domainservices.ErrInvalidJWTToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := svc.ValidateSessionToken(ctx, "not-a-token")
		require.ErrorIs(t, err, domainservices.ErrInvalidJWTToken)
	})

	t.Run("none algorithm rejected", func(t *testing.T) {
		unsigned := jwt.NewWithClaims(jwt.SigningMethodNone, services.Claims{
			UserID: "user-1",
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				Issuer:    testIssuer,
			},
		})
		raw, err := unsigned.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = svc.ValidateSessionToken(ctx, raw)
		require.ErrorIs(t, err, domainservices.ErrInvalidJWTToken)
	})

	t.Run("missing user id", func(t *testing.T) {
		raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, services.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				IssuedAt:  jwt.NewNumericDate(now),
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
				Issuer:    testIssuer,
			},
		}).SignedString([]byte(testSecret))
		require.NoError(t, err)

		_, err = svc.ValidateSessionToken(ctx, raw)
		require.ErrorIs(t, err, domainservices.ErrInvalidJWTToken)
	})
}

func TestJWTEmptySecret(t *testing.T) {
	svc := services.NewJWT("", testIssuer, time.Minute, nil)

	_, _, _, err := svc.GenerateSessionToken(context.Background(), "user-1", "alice", "user")
	require.ErrorIs(t, err, domainservices.ErrGeneratingJWTToken)
}

func TestResetTokenIssue(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := services.NewResetToken(0)

	issued, err := svc.Issue(context.Background(), now)
	require.NoError(t, err)

	assert.Len(t, issued.Token, 43, "32 bytes base64url without padding")
	assert.Len(t, issued.Hash, 64, "hex sha-256")
	assert.NotEqual(t, issued.Token, issued.Hash)
	assert.Equal(t, svc.HashToken(issued.Token), issued.Hash)
	assert.Equal(t, now.Add(domainservices.DefaultResetTTL), issued.ExpiresAt)

	other, err := svc.Issue(context.Background(), now)
	require.NoError(t, err)
	assert.NotEqual(t, issued.Token, other.Token)
}

func TestResetTokenIssueFailsWithoutEntropy(t *testing.T) {
	svc := services.NewResetTokenWithReader(time.Minute, failingReader{})

	issued, err := svc.Issue(context.Background(), time.Now())
	require.ErrorIs(t, err, domainservices.ErrTokenGenerationFailed)
	assert.Nil(t, issued)
}

func TestResetTokenValidate(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	svc := services.NewResetToken(10 * time.Minute)

	issued, err := svc.Issue(context.Background(), now)
	require.NoError(t, err)

	hash := issued.Hash
	expires := issued.ExpiresAt

	tests := []struct {
		name      string
		presented string
		hash      *string
		expiry    *time.Time
		now       time.Time
		want      error
	}{
		{"valid", issued.Token, &hash, &expires, now.Add(time.Minute), nil},
		{"valid at exact expiry", issued.Token, &hash, &expires, expires, nil},
		{"absent hash", issued.Token, nil, &expires, now, domainservices.ErrResetTokenAbsent},
		{"absent expiry", issued.Token, &hash, nil, now, domainservices.ErrResetTokenAbsent},
		{"absent both", issued.Token, nil, nil, now, domainservices.ErrResetTokenAbsent},
		{"expired with matching token", issued.Token, &hash, &expires, expires.Add(time.Second), domainservices.ErrResetTokenExpired},
		{"mismatch", "some-other-token", &hash, &expires, now, domainservices.ErrResetTokenMismatch},
		{"empty presented", "", &hash, &expires, now, domainservices.ErrResetTokenMismatch},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := svc.Validate(tc.presented, tc.hash, tc.expiry, tc.now)
			if tc.want == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestServiceFactory(t *testing.T) {
	t.Run("argon2id by default", func(t *testing.T) {
		factory := services.NewServiceFactory(services.FactoryConfig{
			JWTSecretKey: testSecret,
			SessionTTL:   time.Hour,
			Argon2:       fastArgon2,
			BcryptCost:   bcrypt.MinCost,
		})

		require.NotNil(t, factory.TokenService())
		require.NotNil(t, factory.ResetTokenService())

		hash, err := factory.PasswordService().Hash(context.Background(), testPassword)
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(hash, "$argon2id$"))
	})

	t.Run("bcrypt when configured", func(t *testing.T) {
		factory := services.NewServiceFactory(services.FactoryConfig{
			JWTSecretKey: testSecret,
			SessionTTL:   time.Hour,
			Algorithm:    services.AlgorithmBcrypt,
			BcryptCost:   bcrypt.MinCost,
		})

		hash, err := factory.PasswordService().Hash(context.Background(), testPassword)
		require.NoError(t, err)
		assert.True(t, services.IsBcryptHash(hash))
	})
}
