// Package auth provides password hashing, the account password
// policy, and access-token handling.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

const bcryptCost = 10

// Policy errors mirror the messages the registration form shows.
var (
	ErrPasswordTooShort  = errors.New("password must be at least 8 characters")
	ErrPasswordUppercase = errors.New("password must contain at least 1 uppercase letter (A-Z)")
	ErrPasswordLowercase = errors.New("password must contain at least 1 lowercase letter (a-z)")
	ErrPasswordDigit     = errors.New("password must contain at least 1 number (0-9)")
	ErrPasswordSpecial   = errors.New("password must contain at least 1 special character (!@#$%^&*()_+-=)")
)

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// IsPasswordPolicyError reports whether err is one of the policy
// errors above. Handlers use it to surface the message verbatim
// instead of a generic server error.
func IsPasswordPolicyError(err error) bool {
	for _, policy := range []error{
		ErrPasswordTooShort,
		ErrPasswordUppercase,
		ErrPasswordLowercase,
		ErrPasswordDigit,
		ErrPasswordSpecial,
	} {
		if errors.Is(err, policy) {
			return true
		}
	}
	return false
}

// ValidatePassword enforces the account password policy. Checks run in
// a fixed order so the caller reports the first unmet requirement.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return ErrPasswordTooShort
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'A' && r <= 'Z' }) {
		return ErrPasswordUppercase
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= 'a' && r <= 'z' }) {
		return ErrPasswordLowercase
	}
	if !strings.ContainsFunc(password, func(r rune) bool { return r >= '0' && r <= '9' }) {
		return ErrPasswordDigit
	}
	if !strings.ContainsAny(password, specialChars) {
		return ErrPasswordSpecial
	}
	return nil
}

// HashPassword hashes a password with bcrypt.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword reports whether the password matches the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// NewResetToken returns a 64-character hex token for password resets.
func NewResetToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}
	return hex.EncodeToString(b), nil
}
