package auth

import "github.com/google/uuid"

// newTokenID mints the jti claim for issued tokens.
func newTokenID() string {
	return uuid.NewString()
}

// IsUUID reports whether the identifier parses as a UUID, which is how
// store lookups decide between id, email, and username resolution.
func IsUUID(identifier string) bool {
	_, err := uuid.Parse(identifier)
	return err == nil
}
