package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/argon2"

	"authcore/internal/auth/domain/services"
)

const (
	argon2Prefix  = "$argon2id$"
	argon2SaltLen = 16
	argon2KeyLen  = 32

	errMsgReadingSalt   = "failed to read salt"
	errMsgInvalidHash   = "invalid argon2id hash"
	errMsgParamsTooHigh = "argon2id parameters above verification ceiling"

	argon2CostFactor  = 4
	argon2MinTimeCeil = 10
	argon2ThreadsCeil = 16
)

// Argon2Params - настраиваемая стоимость argon2id.
type Argon2Params struct {
	MemoryKB uint32
	Time     uint32
	Threads  uint8
}

// DefaultArgon2Params возвращает рекомендованные OWASP параметры.
func DefaultArgon2Params() Argon2Params {
	return Argon2Params{MemoryKB: 64 * 1024, Time: 1, Threads: 4}
}

// ServiceArgon2 реализует PasswordService: новые хеши argon2id, bcrypt только проверяется.
type ServiceArgon2 struct {
	params Argon2Params
	rand   io.Reader
	legacy *ServiceBcrypt
}

// NewArgon2 создает сервис argon2id с проверкой унаследованных bcrypt хешей.
func NewArgon2(params Argon2Params, legacy *ServiceBcrypt) *ServiceArgon2 {
	return NewArgon2WithReader(params, legacy, rand.Reader)
}

// NewArgon2WithReader позволяет подменить источник случайности.
func NewArgon2WithReader(params Argon2Params, legacy *ServiceBcrypt, r io.Reader) *ServiceArgon2 {
	defaults := DefaultArgon2Params()
	if params.MemoryKB == 0 {
		params.MemoryKB = defaults.MemoryKB
	}
	if params.Time == 0 {
		params.Time = defaults.Time
	}
	if params.Threads == 0 {
		params.Threads = defaults.Threads
	}
	if legacy == nil {
		legacy = NewBcrypt(0)
	}
	return &ServiceArgon2{params: params, rand: r, legacy: legacy}
}

// Hash хэширует пароль argon2id и кодирует результат в формате PHC.
func (s *ServiceArgon2) Hash(_ context.Context, password string) (string, error) {
	if err := checkPasswordInput(password); err != nil {
		return "", err
	}

	salt := make([]byte, argon2SaltLen)
	if _, err := io.ReadFull(s.rand, salt); err != nil {
		return "", fmt.Errorf("%s: %w: %w", errMsgReadingSalt, services.ErrHashingFailed, err)
	}

	key := argon2.IDKey([]byte(password), salt, s.params.Time, s.params.MemoryKB, s.params.Threads, argon2KeyLen)

	return fmt.Sprintf("$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		s.params.MemoryKB,
		s.params.Time,
		s.params.Threads,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}

// Verify проверяет пароль за постоянное время.
func (s *ServiceArgon2) Verify(ctx context.Context, password, hash string) (bool, error) {
	if IsBcryptHash(hash) {
		return s.legacy.Verify(ctx, password, hash)
	}

	decoded, err := decodeArgon2(hash)
	if err != nil {
		return false, err
	}
	if err := s.checkCeiling(decoded.params); err != nil {
		return false, err
	}

	computed := argon2.IDKey([]byte(password), decoded.salt,
		decoded.params.Time, decoded.params.MemoryKB, decoded.params.Threads, uint32(len(decoded.key)))

	return subtle.ConstantTimeCompare(computed, decoded.key) == 1, nil
}

// NeedsRehash возвращает true для не-argon2id хешей и хешей с устаревшими параметрами.
func (s *ServiceArgon2) NeedsRehash(hash string) bool {
	decoded, err := decodeArgon2(hash)
	if err != nil {
		return true
	}
	return decoded.params != s.params
}

// checkCeiling отклоняет хеши, чьи параметры заметно дороже настроенных:
// память не больше 4x, проходов не больше max(10, 4x), потоков не больше 16.
func (s *ServiceArgon2) checkCeiling(p Argon2Params) error {
	maxMemory := uint64(s.params.MemoryKB) * argon2CostFactor
	maxTime := max(uint64(argon2MinTimeCeil), uint64(s.params.Time)*argon2CostFactor)
	maxThreads := max(argon2ThreadsCeil, int(s.params.Threads))

	if uint64(p.MemoryKB) > maxMemory || uint64(p.Time) > maxTime || int(p.Threads) > maxThreads {
		return fmt.Errorf("%s: m=%d,t=%d,p=%d: %w",
			errMsgParamsTooHigh, p.MemoryKB, p.Time, p.Threads, services.ErrMalformedHash)
	}
	return nil
}

type argon2Hash struct {
	params Argon2Params
	salt   []byte
	key    []byte
}

func decodeArgon2(encoded string) (*argon2Hash, error) {
	if !strings.HasPrefix(encoded, argon2Prefix) {
		return nil, services.ErrMalformedHash
	}

	parts := strings.Split(encoded, "$")
	if len(parts) != 6 {
		return nil, fmt.Errorf("%s: %w", errMsgInvalidHash, services.ErrMalformedHash)
	}

	var version int
	if _, err := fmt.Sscanf(parts[2], "v=%d", &version); err != nil || version != argon2.Version {
		return nil, fmt.Errorf("%s: unsupported version: %w", errMsgInvalidHash, services.ErrMalformedHash)
	}

	var memory, iterations, threads uint32
	if _, err := fmt.Sscanf(parts[3], "m=%d,t=%d,p=%d", &memory, &iterations, &threads); err != nil {
		return nil, fmt.Errorf("%s: %w: %w", errMsgInvalidHash, services.ErrMalformedHash, err)
	}
	if memory == 0 || iterations == 0 || threads == 0 || threads > 255 {
		return nil, fmt.Errorf("%s: bad parameters: %w", errMsgInvalidHash, services.ErrMalformedHash)
	}

	salt, err := base64.RawStdEncoding.DecodeString(parts[4])
	if err != nil || len(salt) == 0 {
		return nil, fmt.Errorf("%s: bad salt: %w", errMsgInvalidHash, services.ErrMalformedHash)
	}

	key, err := base64.RawStdEncoding.DecodeString(parts[5])
	if err != nil || len(key) == 0 || len(key) > 1024 {
		return nil, fmt.Errorf("%s: bad key: %w", errMsgInvalidHash, services.ErrMalformedHash)
	}

	return &argon2Hash{
		params: Argon2Params{MemoryKB: memory, Time: iterations, Threads: uint8(threads)},
		salt:   salt,
		key:    key,
	}, nil
}
