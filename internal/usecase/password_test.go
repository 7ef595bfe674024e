package usecase

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestPasswordHasher(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)

	hash, err := h.Hash("  secret ")
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	if hash == "" || hash == "secret" {
		t.Fatalf("Expected a real hash, got %q", hash)
	}

	if !h.Verify("secret", hash) {
		t.Error("Expected correct password to verify")
	}
	if h.Verify("wrong", hash) {
		t.Error("Expected wrong password to fail")
	}
}

func TestPasswordHasher_EmptyMeansPublic(t *testing.T) {
	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("   ")
	if err != nil || hash != "" {
		t.Errorf("Expected empty hash for blank password, got %q (%v)", hash, err)
	}
}

func TestNewPasswordHasher_CostBounds(t *testing.T) {
	if h := NewPasswordHasher(0); h.cost != bcrypt.DefaultCost {
		t.Errorf("Expected default cost, got %d", h.cost)
	}
	if h := NewPasswordHasher(bcrypt.MinCost); h.cost != bcrypt.MinCost {
		t.Errorf("Expected min cost, got %d", h.cost)
	}
}
