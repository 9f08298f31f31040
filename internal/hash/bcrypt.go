package hash

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"fyf-go/internal/fyf"
)

// BcryptHasher implements the PasswordHasher interface with bcrypt.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. cost <= 0 selects the bcrypt
// default cost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost <= 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

func (h *BcryptHasher) Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// Compile-time check that BcryptHasher implements fyf.PasswordHasher
var _ fyf.PasswordHasher = (*BcryptHasher)(nil)
