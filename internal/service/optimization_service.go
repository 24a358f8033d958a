package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/netting"
	"github.com/nurlan/debtnet/internal/storage"
)

// OptimizationService runs the netting engine over a group's mutual debts
// once the members have signed off.
type OptimizationService struct {
	store           storage.Store
	converter       netting.Converter
	defaultCurrency string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewOptimizationService creates a new OptimizationService. defaultCurrency
// is the ISO code of the reference currency used for netting arithmetic.
func NewOptimizationService(store storage.Store, converter netting.Converter, defaultCurrency string) *OptimizationService {
	return &OptimizationService{
		store:           store,
		converter:       converter,
		defaultCurrency: defaultCurrency,
		locks:           make(map[string]*sync.Mutex),
	}
}

// Request proposes a netting run for the group. Every other member gets a
// pending approval.
func (s *OptimizationService) Request(ctx context.Context, userID, groupID string) (*models.OptimizationRequest, error) {
	group, err := s.store.GetGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}

	isMember := false
	request := &models.OptimizationRequest{GroupID: groupID, InitiatorID: userID}
	for _, member := range group.Members {
		if member == userID {
			isMember = true
			continue
		}
		request.Approvals = append(request.Approvals, models.OptimizationApproval{UserID: member})
	}
	if !isMember {
		return nil, fmt.Errorf("%w: only members can request optimization", ErrForbidden)
	}

	if err := s.store.CreateOptimizationRequest(ctx, request); err != nil {
		return nil, fmt.Errorf("failed to create optimization request: %w", err)
	}

	slog.Info("Optimization requested", "request_id", request.ID, "group_id", groupID)
	return request, nil
}

// Approve records the caller's approval; when everyone approved, the
// request moves to ready.
func (s *OptimizationService) Approve(ctx context.Context, userID, approvalID string) (*models.OptimizationRequest, error) {
	approval, err := s.store.GetOptimizationApproval(ctx, approvalID)
	if err != nil {
		return nil, err
	}
	if approval.UserID != userID {
		return nil, fmt.Errorf("%w: approval belongs to another user", ErrForbidden)
	}

	request, err := s.store.GetOptimizationRequest(ctx, approval.RequestID)
	if err != nil {
		return nil, err
	}
	if request.Status != models.OptimizationStatusPending {
		return nil, fmt.Errorf("%w: optimization request already resolved", ErrConflict)
	}

	if err := s.store.ApproveOptimization(ctx, approvalID); err != nil {
		return nil, fmt.Errorf("failed to approve optimization: %w", err)
	}

	allApproved := true
	for _, a := range request.Approvals {
		if a.ID != approvalID && !a.Approved {
			allApproved = false
			break
		}
	}
	if allApproved {
		if err := s.store.UpdateOptimizationStatus(ctx, request.ID, models.OptimizationStatusReady); err != nil {
			return nil, err
		}
	}

	return s.store.GetOptimizationRequest(ctx, request.ID)
}

// Decline kills the request. A single decline is final.
func (s *OptimizationService) Decline(ctx context.Context, userID, approvalID string) error {
	approval, err := s.store.GetOptimizationApproval(ctx, approvalID)
	if err != nil {
		return err
	}
	if approval.UserID != userID {
		return fmt.Errorf("%w: approval belongs to another user", ErrForbidden)
	}

	request, err := s.store.GetOptimizationRequest(ctx, approval.RequestID)
	if err != nil {
		return err
	}
	if request.Status != models.OptimizationStatusPending {
		return fmt.Errorf("%w: optimization request already resolved", ErrConflict)
	}

	if err := s.store.UpdateOptimizationStatus(ctx, request.ID, models.OptimizationStatusDeclined); err != nil {
		return err
	}
	slog.Info("Optimization declined", "request_id", request.ID, "user_id", userID)
	return nil
}

// List returns optimization requests the caller initiated or can approve.
func (s *OptimizationService) List(ctx context.Context, userID string) ([]*models.OptimizationRequest, error) {
	return s.store.ListOptimizationRequestsForUser(ctx, userID)
}

// ListPendingApprovals returns the caller's open optimization approvals.
func (s *OptimizationService) ListPendingApprovals(ctx context.Context, userID string) ([]*models.OptimizationApproval, error) {
	return s.store.ListPendingOptimizationApprovals(ctx, userID)
}

// Optimize runs the netting engine. Only the initiator may run it, and
// only while the request is pending or ready. Participants are the
// members who approved plus the initiator; their mutual approved debts in
// the group are netted against each other. Runs for the same group are
// serialized so concurrent requests cannot double-settle a debt.
func (s *OptimizationService) Optimize(ctx context.Context, userID, requestID string) ([]*models.Debt, error) {
	request, err := s.store.GetOptimizationRequest(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if request.InitiatorID != userID {
		return nil, fmt.Errorf("%w: only the initiator can run the optimization", ErrForbidden)
	}
	if request.Status != models.OptimizationStatusPending && request.Status != models.OptimizationStatusReady {
		return nil, fmt.Errorf("%w: optimization request already resolved", ErrConflict)
	}

	unlock := s.lockGroup(request.GroupID)
	defer unlock()

	participants := make([]string, 0, len(request.Approvals)+1)
	for _, approval := range request.Approvals {
		if approval.Approved {
			participants = append(participants, approval.UserID)
		}
	}
	participants = append(participants, request.InitiatorID)

	allDebts, err := s.store.ListActiveDebtsAmong(ctx, participants)
	if err != nil {
		return nil, err
	}
	debts := make([]*models.Debt, 0, len(allDebts))
	for _, debt := range allDebts {
		if debt.GroupID == request.GroupID && debt.Approved {
			debts = append(debts, debt)
		}
	}

	reference, err := s.store.GetCurrencyByCode(ctx, s.defaultCurrency)
	if err != nil {
		return nil, err
	}

	balances, err := netting.AggregateBalances(ctx, debts, participants, reference.ID, s.converter)
	if err != nil {
		if errors.Is(err, netting.ErrConversion) {
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return nil, err
	}

	instructions := netting.Reduce(balances, request.GroupID)

	var closedIDs []string
	var newDebts []*models.Debt
	if len(instructions) > 0 {
		newDebts, err = netting.Materialize(ctx, instructions, reference.ID, s.converter)
		if err != nil {
			if errors.Is(err, netting.ErrConversion) {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
			return nil, err
		}
		for _, debt := range debts {
			closedIDs = append(closedIDs, debt.ID)
		}
	}

	if err := s.store.ApplyOptimization(ctx, requestID, closedIDs, newDebts); err != nil {
		return nil, fmt.Errorf("failed to apply optimization: %w", err)
	}

	slog.Info("Optimization applied",
		"request_id", requestID,
		"group_id", request.GroupID,
		"closed", len(closedIDs),
		"created", len(newDebts),
	)
	return newDebts, nil
}

// lockGroup serializes netting runs per group.
func (s *OptimizationService) lockGroup(groupID string) func() {
	s.mu.Lock()
	lock, ok := s.locks[groupID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[groupID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
