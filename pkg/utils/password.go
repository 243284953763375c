package utils

import (
	"errors"
	"fmt"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 10

// PasswordHasher hashes and compares stored credentials.
type PasswordHasher interface {
	Hash(plain string) (string, error)
	Compare(plain, digest string) bool
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher(cost int) *BcryptHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plain string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), h.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(bytes), nil
}

func (h *BcryptHasher) Compare(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

// PasswordPolicy decides whether a new password is strong enough.
type PasswordPolicy func(password string) error

var (
	ErrPasswordTooShort  = errors.New("password is too short")
	ErrPasswordNoUpper   = errors.New("password must contain an uppercase letter")
	ErrPasswordNoLower   = errors.New("password must contain a lowercase letter")
	ErrPasswordNoDigit   = errors.New("password must contain a digit")
	ErrPasswordNoSpecial = errors.New("password must contain a special character")
	ErrPasswordTooLong   = errors.New("password must be at most 72 bytes")
)

// bcrypt rejects longer inputs.
const maxBcryptPasswordSize = 72

// NewPasswordPolicy requires minLength characters and at least one upper,
// lower, digit and special character.
func NewPasswordPolicy(minLength int) PasswordPolicy {
	if minLength <= 0 {
		minLength = 8
	}

	return func(password string) error {
		if len([]rune(password)) < minLength {
			return fmt.Errorf("%w: minimum length is %d", ErrPasswordTooShort, minLength)
		}
		if len(password) > maxBcryptPasswordSize {
			return ErrPasswordTooLong
		}

		var upper, lower, digit, special bool
		for _, r := range password {
			switch {
			case unicode.IsUpper(r):
				upper = true
			case unicode.IsLower(r):
				lower = true
			case unicode.IsDigit(r):
				digit = true
			case unicode.IsPunct(r) || unicode.IsSymbol(r):
				special = true
			}
		}

		switch {
		case !upper:
			return ErrPasswordNoUpper
		case !lower:
			return ErrPasswordNoLower
		case !digit:
			return ErrPasswordNoDigit
		case !special:
			return ErrPasswordNoSpecial
		}
		return nil
	}
}
