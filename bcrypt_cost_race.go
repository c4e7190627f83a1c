//go:build race

package auth

import "golang.org/x/crypto/bcrypt"

// HashCost mirrors the production default so callers can still read it.
var HashCost = 12

func passwordHashCost() int {
	// Reduce cost for race-enabled builds so test suites can run with strict timeouts.
	return bcrypt.DefaultCost
}
