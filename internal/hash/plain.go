package hash

import "fyf-go/internal/fyf"

// PlainHasher stores passwords as-is. Only for tests and throwaway
// development setups; never configure it in production.
type PlainHasher struct{}

func NewPlainHasher() *PlainHasher { return &PlainHasher{} }

func (*PlainHasher) Hash(plaintext string) (string, error) { return plaintext, nil }

func (*PlainHasher) Verify(hash, plaintext string) bool { return hash == plaintext }

// Compile-time check that PlainHasher implements fyf.PasswordHasher
var _ fyf.PasswordHasher = (*PlainHasher)(nil)
