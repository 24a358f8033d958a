package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/nurlan/debtnet/internal/models"
)

func TestJWTRoundTrip(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)
	user := &models.User{ID: "user-1", Email: "alice@example.com"}

	token, err := manager.Generate(user)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	claims, err := manager.Validate(token)
	if err != nil {
		t.Fatalf("Validate failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("UserID mismatch: got %s, want %s", claims.UserID, user.ID)
	}
	if claims.Email != user.Email {
		t.Errorf("Email mismatch: got %s, want %s", claims.Email, user.Email)
	}
}

func TestJWTRejectsWrongSecret(t *testing.T) {
	token, err := NewJWTManager("secret-a", time.Hour).Generate(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	_, err = NewJWTManager("secret-b", time.Hour).Validate(token)
	if !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestJWTRejectsExpiredToken(t *testing.T) {
	manager := NewJWTManager("test-secret", -time.Minute)
	token, err := manager.Generate(&models.User{ID: "user-1"})
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if _, err := manager.Validate(token); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("Expected ErrInvalidToken, got %v", err)
	}
}

func TestRefreshTokensAreUnique(t *testing.T) {
	manager := NewJWTManager("test-secret", time.Hour)

	a, err := manager.NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken failed: %v", err)
	}
	b, err := manager.NewRefreshToken()
	if err != nil {
		t.Fatalf("NewRefreshToken failed: %v", err)
	}
	if a == b {
		t.Error("Refresh tokens must be unique")
	}
	if len(a) != 64 {
		t.Errorf("Expected 64 hex chars, got %d", len(a))
	}
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("s3cretpass")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if err := CheckPassword(hash, "s3cretpass"); err != nil {
		t.Errorf("CheckPassword rejected the right password: %v", err)
	}
	if err := CheckPassword(hash, "wrongpass"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("Expected ErrInvalidCredentials, got %v", err)
	}
	if err := ValidatePassword("short"); !errors.Is(err, ErrWeakPassword) {
		t.Errorf("Expected ErrWeakPassword, got %v", err)
	}
}
