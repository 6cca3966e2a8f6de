package identity

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// bcryptCost makes hashing deliberately slow to resist offline brute force.
const bcryptCost = 12

const specialChars = `!@#$%^&*()_+-=[]{};':"\|,.<>/?`

// HashPassword derives an irreversible salted hash from a plaintext password.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plaintext matches the stored hash.
// bcrypt's comparison is constant-time.
func CheckPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// ValidatePassword enforces the platform password policy: 8-16 characters
// with at least one uppercase letter and one special character.
func ValidatePassword(plaintext string) error {
	if len(plaintext) < 8 || len(plaintext) > 16 {
		return ErrWeakPassword
	}

	var hasUpper, hasSpecial bool
	for _, r := range plaintext {
		if unicode.IsUpper(r) {
			hasUpper = true
		}
		if strings.ContainsRune(specialChars, r) {
			hasSpecial = true
		}
	}

	if !hasUpper || !hasSpecial {
		return ErrWeakPassword
	}
	return nil
}
