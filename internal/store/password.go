package store

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// HashPassword returns the bcrypt hash of password at the given cost.
// A cost of zero selects bcrypt.DefaultCost. Passwords bcrypt refuses, such
// as ones longer than 72 bytes, are reported as ErrInvalidEntity.
func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("%w: password: %w", ErrInvalidEntity, err)
	}
	return string(hash), nil
}
