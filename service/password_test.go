package service

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

// TestPasswordHasher_HashAndCheck ensures that password hashing and verification work together.
func TestPasswordHasher_HashAndCheck(t *testing.T) {
	hasher := NewPasswordHasher(bcrypt.MinCost)
	password := "mySecretPassword123"

	hashedPassword, err := hasher.HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword() returned an unexpected error: %v", err)
	}

	if hashedPassword == password {
		t.Errorf("Hashed password should not be the same as the original password.")
	}

	if !hasher.CheckPasswordHash(password, hashedPassword) {
		t.Errorf("CheckPasswordHash() should have returned true for a matching password, but got false.")
	}

	if hasher.CheckPasswordHash("notMyPassword", hashedPassword) {
		t.Errorf("CheckPasswordHash() should have returned false for a non-matching password, but got true.")
	}
}

func TestNewPasswordHasher_ClampsCost(t *testing.T) {
	if got := NewPasswordHasher(0).cost; got != bcrypt.DefaultCost {
		t.Errorf("cost below minimum: got %d, want %d", got, bcrypt.DefaultCost)
	}
	if got := NewPasswordHasher(99).cost; got != bcrypt.MaxCost {
		t.Errorf("cost above maximum: got %d, want %d", got, bcrypt.MaxCost)
	}
}
