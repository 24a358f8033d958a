package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

const userColumns = "id, username, name, surname, email, password_hash, email_confirmed, created_at"

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(&user.ID, &user.Username, &user.Name, &user.Surname,
		&user.Email, &user.PasswordHash, &user.EmailConfirmed, &user.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return user, nil
}

// CreateUser persists a new user, generating the ID and timestamp if unset.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt == 0 {
		user.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Username, user.Name, user.Surname, user.Email,
		user.PasswordHash, user.EmailConfirmed, user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ?", id))
}

func (s *SQLiteStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username = ?", username))
}

func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(s.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ?", email))
}

// ListUsers returns one page of users plus the total count.
func (s *SQLiteStore) ListUsers(ctx context.Context, page storage.Page) ([]*models.User, int, error) {
	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM users").Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY created_at, id LIMIT ? OFFSET ?",
		page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	return users, total, rows.Err()
}

func (s *SQLiteStore) UpdateUser(ctx context.Context, user *models.User) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE users SET username = ?, name = ?, surname = ?, email = ?, password_hash = ?, email_confirmed = ? WHERE id = ?",
		user.Username, user.Name, user.Surname, user.Email, user.PasswordHash, user.EmailConfirmed, user.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return requireRowChange(res)
}

func (s *SQLiteStore) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM users WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireRowChange(res)
}

// CreateConfirmationCode stores a pending email confirmation code.
func (s *SQLiteStore) CreateConfirmationCode(ctx context.Context, code *models.ConfirmationCode) error {
	if code.ID == "" {
		code.ID = uuid.New().String()
	}
	if code.CreatedAt == 0 {
		code.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO confirmation_codes (id, user_id, code, created_at) VALUES (?, ?, ?, ?)",
		code.ID, code.UserID, code.Code, code.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert confirmation code: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetConfirmationCode(ctx context.Context, userID, code string) (*models.ConfirmationCode, error) {
	cc := &models.ConfirmationCode{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, code, created_at FROM confirmation_codes WHERE user_id = ? AND code = ?",
		userID, code,
	).Scan(&cc.ID, &cc.UserID, &cc.Code, &cc.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return cc, nil
}

func (s *SQLiteStore) DeleteConfirmationCodes(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM confirmation_codes WHERE user_id = ?", userID)
	if err != nil {
		return fmt.Errorf("failed to delete confirmation codes: %w", err)
	}
	return nil
}

// SaveRefreshToken stores a freshly issued refresh token.
func (s *SQLiteStore) SaveRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	if token.ID == "" {
		token.ID = uuid.New().String()
	}
	if token.CreatedAt == 0 {
		token.CreatedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO refresh_tokens (id, user_id, token, valid, created_at) VALUES (?, ?, ?, ?, ?)",
		token.ID, token.UserID, token.Token, token.Valid, token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert refresh token: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	rt := &models.RefreshToken{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, user_id, token, valid, created_at FROM refresh_tokens WHERE token = ?",
		token,
	).Scan(&rt.ID, &rt.UserID, &rt.Token, &rt.Valid, &rt.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return rt, nil
}

// InvalidateRefreshTokens marks every live token of the user invalid.
// Called on rotation so that only the newest pair works.
func (s *SQLiteStore) InvalidateRefreshTokens(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE refresh_tokens SET valid = 0 WHERE user_id = ? AND valid = 1", userID)
	if err != nil {
		return fmt.Errorf("failed to invalidate refresh tokens: %w", err)
	}
	return nil
}
