package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

// MergeService manages merge requests that fold several groups into one.
type MergeService struct {
	store storage.Store
}

// NewMergeService creates a new MergeService.
func NewMergeService(store storage.Store) *MergeService {
	return &MergeService{store: store}
}

// Request proposes merging two or more groups. The initiator must belong
// to every group; every other member of the involved groups gets one
// pending approval.
func (s *MergeService) Request(ctx context.Context, initiatorID, newName, newDescription string, groupIDs []string) (*models.MergeRequest, error) {
	if len(groupIDs) < 2 {
		return nil, fmt.Errorf("%w: a merge needs at least two groups", ErrInvalidInput)
	}
	if newName == "" {
		return nil, fmt.Errorf("%w: merged group name is required", ErrInvalidInput)
	}
	seen := make(map[string]bool, len(groupIDs))
	for _, groupID := range groupIDs {
		if seen[groupID] {
			return nil, fmt.Errorf("%w: duplicate group in merge", ErrInvalidInput)
		}
		seen[groupID] = true
	}

	approvers := make(map[string]bool)
	for _, groupID := range groupIDs {
		group, err := s.store.GetGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}

		initiatorMember := false
		for _, member := range group.Members {
			if member == initiatorID {
				initiatorMember = true
				continue
			}
			approvers[member] = true
		}
		if !initiatorMember {
			return nil, fmt.Errorf("%w: initiator must belong to every merged group", ErrForbidden)
		}
	}

	request := &models.MergeRequest{
		InitiatorID:    initiatorID,
		NewName:        newName,
		NewDescription: newDescription,
		GroupIDs:       groupIDs,
	}
	for userID := range approvers {
		request.Approvals = append(request.Approvals, models.MergeApproval{UserID: userID})
	}

	if err := s.store.CreateMergeRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create merge request: %w", err)
	}

	slog.Info("Merge requested", "request_id", request.ID, "groups", len(groupIDs), "approvers", len(request.Approvals))

	// No other members means nothing to wait for.
	if len(request.Approvals) == 0 {
		return s.complete(ctx, request)
	}
	return request, nil
}

// Approve records the caller's approval. When it is the last one, the
// merge is executed immediately.
func (s *MergeService) Approve(ctx context.Context, userID, approvalID string) (*models.MergeRequest, error) {
	approval, err := s.store.GetMergeApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if approval.UserID != userID {
		return nil, fmt.Errorf("%w: approval belongs to another user", ErrForbidden)
	}

	request, err := s.store.GetMergeRequest(ctx, approval.MergeRequestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.MergeStatusPending {
		return nil, fmt.Errorf("%w: merge request already resolved", ErrConflict)
	}

	allApproved := true
	for _, a := range request.Approvals {
		if a.ID == approvalID {
			continue
		}
		if !a.Approved {
			allApproved = false
			break
		}
	}

	status := models.MergeStatusPending
	if allApproved {
		status = models.MergeStatusReady
	}
	if err := s.store.ResolveMergeApproval(ctx, approvalID, true, status); err != nil {
		return nil, fmt.Errorf("failed to approve merge: %w", err)
	}

	request, err = s.store.GetMergeRequest(ctx, request.ID)
	if err != nil {
		return nil, err
	}
	if request.Status == models.MergeStatusReady {
		return s.complete(ctx, request)
	}
	return request, nil
}

// Decline kills the merge request. A single decline is final.
func (s *MergeService) Decline(ctx context.Context, userID, approvalID string) error {
	approval, err := s.store.GetMergeApproval(ctx, approvalID)
	if err != nil {
		return err
	}
	if approval.UserID != userID {
		return fmt.Errorf("%w: approval belongs to another user", ErrForbidden)
	}

	request, err := s.store.GetMergeRequest(ctx, approval.MergeRequestID)
	if err != nil {
		return err
	}
	if request.Status != models.MergeStatusPending {
		return fmt.Errorf("%w: merge request already resolved", ErrConflict)
	}

	if err := s.store.ResolveMergeApproval(ctx, approvalID, false, models.MergeStatusDeclined); err != nil {
		return fmt.Errorf("failed to decline merge: %w", err)
	}
	slog.Info("Merge declined", "request_id", request.ID, "user_id", userID)
	return nil
}

// List returns merge requests the caller initiated or can approve.
func (s *MergeService) List(ctx context.Context, userID string) ([]*models.MergeRequest, error) {
	return s.store.ListMergeRequestsForUser(ctx, userID)
}

// ListPendingApprovals returns the caller's open merge approvals.
func (s *MergeService) ListPendingApprovals(ctx context.Context, userID string) ([]*models.MergeApproval, error) {
	return s.store.ListPendingMergeApprovals(ctx, userID)
}

// complete executes a ready merge: the new group gets the union of all
// members and every debt of the old groups.
func (s *MergeService) complete(ctx context.Context, request *models.MergeRequest) (*models.MergeRequest, error) {
	members := make([]string, 0)
	seen := make(map[string]bool)
	for _, groupID := range request.GroupIDs {
		group, err := s.store.GetGroup(ctx, groupID)
		if err != nil {
			return nil, err
		}
		for _, member := range group.Members {
			if !seen[member] {
				seen[member] = true
				members = append(members, member)
			}
		}
	}

	newGroup := &models.Group{
		Name:        request.NewName,
		Description: request.NewDescription,
		Members:     members,
	}
	if err := s.store.CompleteMerge(ctx, request, newGroup); err != nil {
		return nil, fmt.Errorf("failed to complete merge: %w", err)
	}

	slog.Info("Merge completed", "request_id", request.ID, "new_group_id", newGroup.ID)
	return s.store.GetMergeRequest(ctx, request.ID)
}
