package hash

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Parallel()

	// MinCost keeps the test fast; production uses DefaultCost.
	h := NewBcryptHasher(bcrypt.MinCost)

	hashed, err := h.Hash("s3cret")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if hashed == "s3cret" {
		t.Error("Hash() returned the plaintext")
	}

	if !h.Verify(hashed, "s3cret") {
		t.Error("Verify(correct password) = false")
	}
	if h.Verify(hashed, "wrong") {
		t.Error("Verify(wrong password) = true")
	}
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	h := NewBcryptHasher(0)
	if h.cost != bcrypt.DefaultCost {
		t.Errorf("cost = %d, want %d", h.cost, bcrypt.DefaultCost)
	}
}

func TestPlainHasher(t *testing.T) {
	t.Parallel()

	h := NewPlainHasher()

	hashed, err := h.Hash("pw")
	if err != nil {
		t.Fatalf("Hash() error = %v", err)
	}
	if !h.Verify(hashed, "pw") {
		t.Error("Verify(correct password) = false")
	}
	if h.Verify(hashed, "other") {
		t.Error("Verify(wrong password) = true")
	}
}
