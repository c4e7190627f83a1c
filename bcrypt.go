package auth

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// HashPassword will generate a salted password hash. Two calls with the
// same input produce different hashes, so stored values must never be
// compared for equality.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", ErrNoEmptyString
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost())
	return string(h), err
}

// ComparePasswordAndHash will validate the given cleartext password
// against a stored hash in constant time. Malformed hashes report a
// mismatch rather than an internal failure.
func ComparePasswordAndHash(password, hash string) error {
	// bcrypt distinguishes mismatches from malformed hashes; both must
	// surface as the same opaque credential failure.
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrMismatchedHashAndPassword
	}
	return nil
}

// RandomPasswordHash produces a hash for an unguessable throwaway
// password, used when provisioning accounts without credentials.
func RandomPasswordHash() string {
	pwd := uuid.New()

	h, err := HashPassword(pwd.String())
	if err != nil {
		return RandomPasswordHash()
	}

	return h
}
