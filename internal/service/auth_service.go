package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"github.com/nurlan/debtnet/internal/auth"
	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/notify"
	"github.com/nurlan/debtnet/internal/storage"
)

// TokenPair is an access token plus the refresh token that renews it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// AuthService handles registration, email confirmation and login.
type AuthService struct {
	store      storage.Store
	jwtManager *auth.JWTManager
	mailer     notify.Mailer
}

// NewAuthService creates a new authentication service.
func NewAuthService(store storage.Store, jwtManager *auth.JWTManager, mailer notify.Mailer) *AuthService {
	return &AuthService{store: store, jwtManager: jwtManager, mailer: mailer}
}

// Register creates an unconfirmed user account and mails a confirmation
// code. The account cannot log in until the code is confirmed.
func (s *AuthService) Register(ctx context.Context, username, name, surname, email, password string) (*models.User, error) {
	slog.Info("Register request", "username", username)

	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || name == "" || email == "" {
		return nil, fmt.Errorf("%w: username, name and email are required", ErrInvalidInput)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: malformed email", ErrInvalidInput)
	}
	if err := auth.ValidatePassword(password); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if _, err := s.store.GetUserByUsername(ctx, username); err == nil {
		return nil, fmt.Errorf("%w: username taken", ErrConflict)
	}
	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email already registered", ErrConflict)
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Username:     username,
		Name:         name,
		Surname:      surname,
		Email:        email,
		PasswordHash: hash,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		slog.Error("Registration failed", "username", username, "error", err)
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if err := s.sendConfirmationCode(ctx, user); err != nil {
		return nil, err
	}

	slog.Info("User registered", "user_id", user.ID, "username", username)
	return user, nil
}

// ConfirmEmail checks the mailed code and marks the account confirmed.
func (s *AuthService) ConfirmEmail(ctx context.Context, email, code string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailConfirmed {
		return nil
	}

	if _, err := s.store.GetConfirmationCode(ctx, user.ID, code); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return fmt.Errorf("%w: wrong confirmation code", ErrInvalidInput)
		}
		return err
	}

	user.EmailConfirmed = true
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return fmt.Errorf("failed to confirm user: %w", err)
	}
	if err := s.store.DeleteConfirmationCodes(ctx, user.ID); err != nil {
		slog.Warn("Failed to clean up confirmation codes", "user_id", user.ID, "error", err)
	}

	slog.Info("Email confirmed", "user_id", user.ID)
	return nil
}

// ResendCode invalidates previous confirmation codes and mails a new one.
func (s *AuthService) ResendCode(ctx context.Context, email string) error {
	user, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user.EmailConfirmed {
		return fmt.Errorf("%w: email already confirmed", ErrConflict)
	}

	if err := s.store.DeleteConfirmationCodes(ctx, user.ID); err != nil {
		return fmt.Errorf("failed to drop old codes: %w", err)
	}
	return s.sendConfirmationCode(ctx, user)
}

// Login authenticates a confirmed user and issues a token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*models.User, *TokenPair, error) {
	slog.Info("Login request", "username", username)

	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, nil, auth.ErrInvalidCredentials
	}
	if err := auth.CheckPassword(user.PasswordHash, password); err != nil {
		slog.Warn("Login failed", "username", username)
		return nil, nil, auth.ErrInvalidCredentials
	}
	if !user.EmailConfirmed {
		return nil, nil, fmt.Errorf("%w: email not confirmed", ErrForbidden)
	}

	pair, err := s.issueTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	slog.Info("User logged in", "user_id", user.ID)
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a fresh pair. The old token
// and every other token of the user are invalidated, so a stolen token can
// be used at most once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*TokenPair, error) {
	stored, err := s.store.GetRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, auth.ErrInvalidToken
		}
		return nil, err
	}
	if !stored.Valid {
		// Reuse of a rotated token. Invalidate everything.
		if err := s.store.InvalidateRefreshTokens(ctx, stored.UserID); err != nil {
			slog.Error("Failed to invalidate tokens after reuse", "user_id", stored.UserID, "error", err)
		}
		return nil, auth.ErrInvalidToken
	}

	user, err := s.store.GetUserByID(ctx, stored.UserID)
	if err != nil {
		return nil, err
	}
	return s.issueTokens(ctx, user)
}

func (s *AuthService) issueTokens(ctx context.Context, user *models.User) (*TokenPair, error) {
	access, err := s.jwtManager.Generate(user)
	if err != nil {
		return nil, err
	}
	refresh, err := s.jwtManager.NewRefreshToken()
	if err != nil {
		return nil, err
	}

	if err := s.store.InvalidateRefreshTokens(ctx, user.ID); err != nil {
		return nil, fmt.Errorf("failed to rotate refresh tokens: %w", err)
	}
	token := &models.RefreshToken{UserID: user.ID, Token: refresh, Valid: true}
	if err := s.store.SaveRefreshToken(ctx, token); err != nil {
		return nil, fmt.Errorf("failed to save refresh token: %w", err)
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) sendConfirmationCode(ctx context.Context, user *models.User) error {
	code, err := confirmationCode()
	if err != nil {
		return err
	}
	record := &models.ConfirmationCode{UserID: user.ID, Code: code}
	if err := s.store.CreateConfirmationCode(ctx, record); err != nil {
		return fmt.Errorf("failed to store confirmation code: %w", err)
	}

	body := fmt.Sprintf("Hi %s,\n\nYour confirmation code is %s.\n", user.Name, code)
	if err := s.mailer.Send(user.Email, "Confirm your email", body); err != nil {
		slog.Warn("Confirmation mail failed", "user_id", user.ID, "error", err)
	}
	return nil
}

// confirmationCode returns a random 6-digit code.
func confirmationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", fmt.Errorf("failed to generate confirmation code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
