package service

import (
	"context"
	"fmt"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

// UserService exposes account lookups and profile updates.
type UserService struct {
	store storage.Store
}

// NewUserService creates a new UserService.
func NewUserService(store storage.Store) *UserService {
	return &UserService{store: store}
}

// Get returns a user by ID.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.store.GetUserByID(ctx, id)
}

// GetByUsername returns a user by username. Used when inviting by name.
func (s *UserService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.store.GetUserByUsername(ctx, username)
}

// List pages through all users.
func (s *UserService) List(ctx context.Context, page storage.Page) ([]*models.User, int, error) {
	return s.store.ListUsers(ctx, page)
}

// UpdateProfile changes the caller's display names.
func (s *UserService) UpdateProfile(ctx context.Context, userID, name, surname string) (*models.User, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.Name = name
	user.Surname = surname
	if err := s.store.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return user, nil
}

// Delete removes the caller's account.
func (s *UserService) Delete(ctx context.Context, userID string) error {
	return s.store.DeleteUser(ctx, userID)
}
