package usecase

import (
	"strings"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher hashes and verifies room passwords.
// Both operations are slow on purpose and must not run on the hub goroutine.
type PasswordHasher struct {
	cost int
}

// NewPasswordHasher creates a hasher; an out of range cost falls back to bcrypt.DefaultCost
func NewPasswordHasher(cost int) *PasswordHasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &PasswordHasher{cost: cost}
}

// Hash returns the bcrypt hash of a trimmed password, or "" for an empty one
func (h *PasswordHasher) Hash(password string) (string, error) {
	password = strings.TrimSpace(password)
	if password == "" {
		return "", nil
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares in constant time
func (h *PasswordHasher) Verify(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(strings.TrimSpace(password)))
	return err == nil
}
