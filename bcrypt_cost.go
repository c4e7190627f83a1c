//go:build !race

package auth

// HashCost is the bcrypt work factor applied to new password hashes.
var HashCost = 12

func passwordHashCost() int {
	return HashCost
}
