package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

// DebtService manages the debt lifecycle up to repayment.
type DebtService struct {
	store storage.Store
}

// NewDebtService creates a new DebtService.
func NewDebtService(store storage.Store) *DebtService {
	return &DebtService{store: store}
}

// ProposeDebtInput carries a debt proposal from the lender.
type ProposeDebtInput struct {
	BorrowerID string
	GroupID    string
	CurrencyID string
	Amount     decimal.Decimal
	DueAt      int64
	RemindAt   int64
}

// Propose creates an unapproved debt owed to the caller. The borrower must
// accept it before it counts toward balances or netting.
func (s *DebtService) Propose(ctx context.Context, lenderID string, input ProposeDebtInput) (*models.Debt, error) {
	slog.Info("Propose debt", "lender_id", lenderID, "borrower_id", input.BorrowerID)

	if input.BorrowerID == lenderID {
		return nil, fmt.Errorf("%w: cannot owe yourself", ErrInvalidInput)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if err := validateDates(input.DueAt, input.RemindAt); err != nil {
		return nil, err
	}

	for _, userID := range []string{lenderID, input.BorrowerID} {
		isMember, err := s.store.IsGroupMember(ctx, input.GroupID, userID)
		if err != nil {
			return nil, err
		}
		if !isMember {
			return nil, fmt.Errorf("%w: both parties must belong to the group", ErrForbidden)
		}
	}

	if _, err := s.store.GetCurrencyByID(ctx, input.CurrencyID); err != nil {
		return nil, fmt.Errorf("%w: unknown currency", ErrInvalidInput)
	}

	debt := &models.Debt{
		LenderID:   lenderID,
		BorrowerID: input.BorrowerID,
		GroupID:    input.GroupID,
		CurrencyID: input.CurrencyID,
		Amount:     input.Amount,
		Remainder:  input.Amount,
		DueAt:      input.DueAt,
		RemindAt:   input.RemindAt,
	}
	if err := s.store.CreateDebt(ctx, debt); err != nil {
		return nil, fmt.Errorf("failed to create debt: %w", err)
	}

	slog.Info("Debt proposed", "debt_id", debt.ID)
	return debt, nil
}

// Accept approves a proposed debt. Only the borrower may accept.
func (s *DebtService) Accept(ctx context.Context, userID, debtID string) (*models.Debt, error) {
	debt, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt.BorrowerID != userID {
		return nil, fmt.Errorf("%w: only the borrower can accept a debt", ErrForbidden)
	}
	if debt.Approved {
		return nil, fmt.Errorf("%w: debt already accepted", ErrConflict)
	}

	debt.Approved = true
	if err := s.store.UpdateDebt(ctx, debt); err != nil {
		return nil, fmt.Errorf("failed to accept debt: %w", err)
	}
	slog.Info("Debt accepted", "debt_id", debtID)
	return debt, nil
}

// UpdateDebtInput carries amendable fields of an unapproved debt.
type UpdateDebtInput struct {
	Amount   decimal.Decimal
	DueAt    int64
	RemindAt int64
}

// Update amends a debt that the borrower has not yet accepted. Only the
// lender may amend.
func (s *DebtService) Update(ctx context.Context, userID, debtID string, input UpdateDebtInput) (*models.Debt, error) {
	debt, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt.LenderID != userID {
		return nil, fmt.Errorf("%w: only the lender can amend a debt", ErrForbidden)
	}
	if debt.Approved {
		return nil, fmt.Errorf("%w: accepted debts cannot be amended", ErrConflict)
	}
	if !input.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}
	if err := validateDates(input.DueAt, input.RemindAt); err != nil {
		return nil, err
	}

	debt.Amount = input.Amount
	debt.Remainder = input.Amount
	debt.DueAt = input.DueAt
	debt.RemindAt = input.RemindAt
	if err := s.store.UpdateDebt(ctx, debt); err != nil {
		return nil, fmt.Errorf("failed to update debt: %w", err)
	}
	return debt, nil
}

// Delete withdraws an unapproved debt proposal. Only the lender may delete.
func (s *DebtService) Delete(ctx context.Context, userID, debtID string) error {
	debt, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return err
	}
	if debt.LenderID != userID {
		return fmt.Errorf("%w: only the lender can withdraw a debt", ErrForbidden)
	}
	if debt.Approved {
		return fmt.Errorf("%w: accepted debts cannot be deleted", ErrConflict)
	}
	return s.store.DeleteDebt(ctx, debtID)
}

// Get returns a debt visible to the caller: a party to it, or any member
// of its group.
func (s *DebtService) Get(ctx context.Context, userID, debtID string) (*models.Debt, error) {
	debt, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt.LenderID == userID || debt.BorrowerID == userID {
		return debt, nil
	}
	isMember, err := s.store.IsGroupMember(ctx, debt.GroupID, userID)
	if err != nil {
		return nil, err
	}
	if !isMember {
		return nil, fmt.Errorf("%w: debt belongs to another group", ErrForbidden)
	}
	return debt, nil
}

// List returns the caller's debts with pagination. The filter's UserID is
// forced to the caller.
func (s *DebtService) List(ctx context.Context, userID string, filter storage.DebtFilter, page storage.Page) ([]*models.Debt, int, error) {
	filter.UserID = userID
	return s.store.ListDebts(ctx, filter, page)
}

// validateDates enforces due >= now and remind <= due when both are set.
func validateDates(dueAt, remindAt int64) error {
	now := time.Now().Unix()
	if dueAt != 0 && dueAt < now {
		return fmt.Errorf("%w: due date is in the past", ErrInvalidInput)
	}
	if remindAt != 0 && remindAt < now {
		return fmt.Errorf("%w: reminder date is in the past", ErrInvalidInput)
	}
	if dueAt != 0 && remindAt != 0 && remindAt > dueAt {
		return fmt.Errorf("%w: reminder date is after the due date", ErrInvalidInput)
	}
	return nil
}
