package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// HashPassword generates a salted hash of the given plaintext. Hashing the
// same input twice yields different outputs.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// CheckPassword reports whether the plaintext matches the stored hash. A
// malformed hash yields false, never an error, so callers cannot tell a
// corrupt record apart from a wrong password.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
