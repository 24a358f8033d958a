package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/nurlan/debtnet/internal/auth"
)

// stubMailer records mail instead of sending it so the tests can fish the
// confirmation code out of the body.
type stubMailer struct {
	to      string
	subject string
	body    string
}

func (m *stubMailer) Send(to, subject, body string) error {
	m.to, m.subject, m.body = to, subject, body
	return nil
}

var codePattern = regexp.MustCompile(`\b(\d{6})\b`)

func (m *stubMailer) code(t *testing.T) string {
	t.Helper()
	match := codePattern.FindStringSubmatch(m.body)
	if match == nil {
		t.Fatalf("No confirmation code in mail body: %q", m.body)
	}
	return match[1]
}

func TestAuthFlow(t *testing.T) {
	store := newServiceStore(t)
	ctx := context.Background()

	mailer := &stubMailer{}
	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	svc := NewAuthService(store, jwtManager, mailer)

	user, err := svc.Register(ctx, "alice", "Alice", "Smith", "alice@example.com", "s3cretpass")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if user.EmailConfirmed {
		t.Error("New accounts must start unconfirmed")
	}
	if mailer.to != "alice@example.com" {
		t.Errorf("Confirmation mail went to %s", mailer.to)
	}

	t.Run("Unconfirmed login is rejected", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alice", "s3cretpass")
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Wrong code is rejected", func(t *testing.T) {
		err := svc.ConfirmEmail(ctx, "alice@example.com", "000000")
		if err == nil {
			t.Error("Expected error for wrong code")
		}
	})

	if err := svc.ConfirmEmail(ctx, "alice@example.com", mailer.code(t)); err != nil {
		t.Fatalf("ConfirmEmail failed: %v", err)
	}

	t.Run("Wrong password is rejected", func(t *testing.T) {
		_, _, err := svc.Login(ctx, "alice", "wrongpass")
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			t.Errorf("Expected ErrInvalidCredentials, got %v", err)
		}
	})

	_, pair, err := svc.Login(ctx, "alice", "s3cretpass")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	claims, err := jwtManager.Validate(pair.AccessToken)
	if err != nil {
		t.Fatalf("Access token validation failed: %v", err)
	}
	if claims.UserID != user.ID {
		t.Errorf("Token user mismatch: got %s, want %s", claims.UserID, user.ID)
	}

	t.Run("Refresh rotates tokens", func(t *testing.T) {
		fresh, err := svc.Refresh(ctx, pair.RefreshToken)
		if err != nil {
			t.Fatalf("Refresh failed: %v", err)
		}
		if fresh.RefreshToken == pair.RefreshToken {
			t.Error("Refresh must mint a new token")
		}

		// The old token is dead now.
		_, err = svc.Refresh(ctx, pair.RefreshToken)
		if !errors.Is(err, auth.ErrInvalidToken) {
			t.Errorf("Expected ErrInvalidToken for a rotated token, got %v", err)
		}
	})
}

func TestRegisterValidation(t *testing.T) {
	store := newServiceStore(t)
	ctx := context.Background()
	svc := NewAuthService(store, auth.NewJWTManager("test-secret", time.Hour), &stubMailer{})

	if _, err := svc.Register(ctx, "bob", "Bob", "", "bob@example.com", "short"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for weak password, got %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "Bob", "", "not-an-email", "s3cretpass"); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput for malformed email, got %v", err)
	}

	if _, err := svc.Register(ctx, "bob", "Bob", "", "bob@example.com", "s3cretpass"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if _, err := svc.Register(ctx, "bob", "Bobby", "", "bob2@example.com", "s3cretpass"); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate username, got %v", err)
	}
	if _, err := svc.Register(ctx, "bobby", "Bobby", "", "bob@example.com", "s3cretpass"); !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict for duplicate email, got %v", err)
	}
}
