package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

// InviteService manages group invitations.
type InviteService struct {
	store storage.Store
}

// NewInviteService creates a new InviteService.
func NewInviteService(store storage.Store) *InviteService {
	return &InviteService{store: store}
}

// Invite asks a user to join the group. Only members may invite; members
// and already-invited users are rejected.
func (s *InviteService) Invite(ctx context.Context, inviterID, groupID, invitedUsername string) (*models.GroupInvite, error) {
	isMember, err := s.store.IsGroupMember(ctx, groupID, inviterID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: only members can invite", ErrForbidden)
	}

	invited, err := s.store.GetUserByUsername(ctx, invitedUsername)
	if err != nil {
		return nil, err
	}

	alreadyMember, err := s.store.IsGroupMember(ctx, groupID, invited.ID)
	if err != nil {
		return nil, err
	}
	if alreadyMember {
		return nil, fmt.Errorf("%w: user is already a member", ErrConflict)
	}

	existing, err := s.store.GetInviteForUser(ctx, groupID, invited.ID)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, err
	}
	if existing != nil && existing.Status == models.InviteStatusInvited {
		return nil, fmt.Errorf("%w: user already invited", ErrConflict)
	}

	invite := &models.GroupInvite{
		GroupID:   groupID,
		InviterID: inviterID,
		InvitedID: invited.ID,
	}
	if err := s.store.CreateInvite(ctx, invite); err != nil {
		return nil, fmt.Errorf("failed to create invite: %w", err)
	}

	slog.Info("Invite sent", "group_id", groupID, "invited_id", invited.ID)
	return invite, nil
}

// Accept joins the caller to the group. Only the invited user may accept,
// and only while the invite is pending.
func (s *InviteService) Accept(ctx context.Context, userID, inviteID string) error {
	invite, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.InvitedID != userID {
		return fmt.Errorf("%w: invite addressed to another user", ErrForbidden)
	}
	if invite.Status != models.InviteStatusInvited {
		return fmt.Errorf("%w: invite already resolved", ErrConflict)
	}

	if err := s.store.AcceptInvite(ctx, inviteID); err != nil {
		return fmt.Errorf("failed to accept invite: %w", err)
	}
	slog.Info("Invite accepted", "invite_id", inviteID, "user_id", userID)
	return nil
}

// Decline marks the invite declined.
func (s *InviteService) Decline(ctx context.Context, userID, inviteID string) error {
	invite, err := s.store.GetInvite(ctx, inviteID)
	if err != nil {
		return err
	}
	if invite.InvitedID != userID {
		return fmt.Errorf("%w: invite addressed to another user", ErrForbidden)
	}
	if invite.Status != models.InviteStatusInvited {
		return fmt.Errorf("%w: invite already resolved", ErrConflict)
	}

	return s.store.UpdateInviteStatus(ctx, inviteID, models.InviteStatusDeclined)
}

// ListPending returns the caller's open invites.
func (s *InviteService) ListPending(ctx context.Context, userID string) ([]*models.GroupInvite, error) {
	return s.store.ListPendingInvites(ctx, userID)
}
