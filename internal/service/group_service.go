package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

// GroupService manages groups and membership checks.
type GroupService struct {
	store storage.Store
}

// NewGroupService creates a new GroupService with the given storage backend.
func NewGroupService(store storage.Store) *GroupService {
	return &GroupService{store: store}
}

// CreateGroup creates a group with the caller as its first member. Other
// users join through invites, never directly.
func (s *GroupService) CreateGroup(ctx context.Context, userID, name, description string) (*models.Group, error) {
	slog.Info("CreateGroup request", "user_id", userID, "name", name)

	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}

	group := &models.Group{
		Name:        name,
		Description: description,
		Members:     []string{userID},
	}
	if err := s.store.CreateGroup(ctx, group); err != nil {
		slog.Error("CreateGroup failed", "error", err)
		return nil, fmt.Errorf("failed to create group: %w", err)
	}

	slog.Info("Group created", "group_id", group.ID)
	return group, nil
}

// GetGroup returns the group if the caller is a member.
func (s *GroupService) GetGroup(ctx context.Context, userID, groupID string) (*models.Group, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	return s.store.GetGroup(ctx, groupID)
}

// ListGroups returns the caller's groups with the total count.
func (s *GroupService) ListGroups(ctx context.Context, userID string, page storage.Page) ([]*models.Group, int, error) {
	return s.store.ListGroupsForUser(ctx, userID, page)
}

// UpdateGroup renames a group. Any member may do it.
func (s *GroupService) UpdateGroup(ctx context.Context, userID, groupID, name, description string) (*models.Group, error) {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, fmt.Errorf("%w: group name is required", ErrInvalidInput)
	}

	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	group.Name = name
	group.Description = description
	if err := s.store.UpdateGroup(ctx, group); err != nil {
		return nil, fmt.Errorf("failed to update group: %w", err)
	}
	return group, nil
}

// DeleteGroup removes a group and, via cascade, its invites and debts.
// Restricted to members; groups with open debts cannot be deleted.
func (s *GroupService) DeleteGroup(ctx context.Context, userID, groupID string) error {
	if err := s.requireMember(ctx, groupID, userID); err != nil {
		return err
	}

	debts, err := s.store.ListGroupDebts(ctx, groupID)
	if err != nil {
		return err
	}
	for _, debt := range debts {
		if !debt.Completed {
			return fmt.Errorf("%w: group has open debts", ErrConflict)
		}
	}

	slog.Info("DeleteGroup", "group_id", groupID, "user_id", userID)
	return s.store.DeleteGroup(ctx, groupID)
}

func (s *GroupService) requireMember(ctx context.Context, groupID, userID string) error {
	isMember, err := s.store.IsGroupMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !isMember {
		return fmt.Errorf("%w: not a group member", ErrForbidden)
	}
	return nil
}
