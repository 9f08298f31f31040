package hash

import (
	"fmt"

	"fyf-go/internal/config"
	"fyf-go/internal/fyf"
)

// NewHasherFromConfig creates a PasswordHasher implementation based on the
// hasher config type.
func NewHasherFromConfig(cfg config.HasherConfig) (fyf.PasswordHasher, error) {
	switch cfg.Type {
	case "bcrypt", "":
		return NewBcryptHasher(cfg.BcryptCost), nil
	case "plain":
		return NewPlainHasher(), nil
	default:
		return nil, fmt.Errorf("unknown hasher type: %s", cfg.Type)
	}
}
