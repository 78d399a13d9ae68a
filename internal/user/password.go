package user

import (
	"errors"
	"strings"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"nearmex/internal/apperr"
)

// MinPasswordLength applies to registration and password reset alike.
const MinPasswordLength = 6

// ValidatePassword enforces the password policy: at least MinPasswordLength
// characters, not all whitespace, and short enough for bcrypt.
func ValidatePassword(pw string) error {
	if strings.TrimSpace(pw) == "" {
		return apperr.Invalid("Password is required")
	}
	if utf8.RuneCountInString(pw) < MinPasswordLength {
		return apperr.Invalid("Password must be at least 6 characters")
	}
	if len(pw) > 72 {
		return apperr.Invalid("Password must be at most 72 bytes")
	}
	return nil
}

// Hasher wraps bcrypt with a fixed cost.
type Hasher struct {
	cost int
}

func NewHasher(cost int) *Hasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) Hash(pw string) (string, error) {
	if pw == "" {
		return "", apperr.Invalid("Password is required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pw), h.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return "", apperr.Invalid("Password must be at most 72 bytes")
		}
		return "", apperr.Transient(err)
	}
	return string(hash), nil
}

// Verify reports whether pw matches hash. A malformed hash is a mismatch.
func (h *Hasher) Verify(pw, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}
