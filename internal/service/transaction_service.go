package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/nurlan/debtnet/internal/exchange"
	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/netting"
	"github.com/nurlan/debtnet/internal/storage"
)

// TransactionService manages repayments against debts.
type TransactionService struct {
	store     storage.Store
	converter netting.Converter
}

// NewTransactionService creates a new TransactionService.
func NewTransactionService(store storage.Store, converter netting.Converter) *TransactionService {
	return &TransactionService{store: store, converter: converter}
}

// Create proposes a repayment. Only the borrower may pay; an amount in
// another currency is converted into the debt currency first and must not
// exceed the remainder.
func (s *TransactionService) Create(ctx context.Context, userID, debtID, currencyID string, amount decimal.Decimal) (*models.Transaction, error) {
	slog.Info("Create transaction", "debt_id", debtID, "user_id", userID)

	if !amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	debt, err := s.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, err
	}
	if debt.BorrowerID != userID {
		return nil, fmt.Errorf("%w: only the borrower can repay a debt", ErrForbidden)
	}
	if !debt.Approved || debt.Completed {
		return nil, fmt.Errorf("%w: debt is not open for repayment", ErrConflict)
	}

	if currencyID == "" {
		currencyID = debt.CurrencyID
	}
	paid := amount
	if currencyID != debt.CurrencyID {
		paid, err = s.converter.Convert(ctx, amount, currencyID, debt.CurrencyID)
		if err != nil {
			if errors.Is(err, exchange.ErrUnknownCurrency) {
				return nil, fmt.Errorf("%w: unknown currency", ErrInvalidInput)
			}
			return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
	}

	if paid.GreaterThan(debt.Remainder) {
		return nil, fmt.Errorf("%w: repayment exceeds the remainder", ErrInvalidInput)
	}

	txn := &models.Transaction{DebtID: debtID, Amount: paid}
	if err := s.store.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to create transaction: %w", err)
	}

	slog.Info("Transaction created", "transaction_id", txn.ID, "amount", paid.String())
	return txn, nil
}

// Accept approves a repayment and subtracts it from the remainder. Only
// the lender may accept. The debt completes when the remainder hits zero.
func (s *TransactionService) Accept(ctx context.Context, userID, transactionID string) (*models.Debt, error) {
	txn, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Approved {
		return nil, fmt.Errorf("%w: transaction already accepted", ErrConflict)
	}

	debt, err := s.store.GetDebt(ctx, txn.DebtID)
	if err != nil {
		return nil, err
	}
	if debt.LenderID != userID {
		return nil, fmt.Errorf("%w: only the lender can accept a repayment", ErrForbidden)
	}
	if txn.Amount.GreaterThan(debt.Remainder) {
		// The debt shrank since the repayment was proposed.
		return nil, fmt.Errorf("%w: repayment exceeds the remainder", ErrConflict)
	}

	if err := s.store.AcceptTransaction(ctx, transactionID); err != nil {
		return nil, fmt.Errorf("failed to accept transaction: %w", err)
	}

	slog.Info("Transaction accepted", "transaction_id", transactionID, "debt_id", debt.ID)
	return s.store.GetDebt(ctx, debt.ID)
}

// Delete withdraws an unaccepted repayment. Only the borrower who created
// it may withdraw.
func (s *TransactionService) Delete(ctx context.Context, userID, transactionID string) error {
	txn, err := s.store.GetTransaction(ctx, transactionID)
	if err != nil {
		return err
	}
	if txn.Approved {
		return fmt.Errorf("%w: accepted transactions cannot be deleted", ErrConflict)
	}

	debt, err := s.store.GetDebt(ctx, txn.DebtID)
	if err != nil {
		return err
	}
	if debt.BorrowerID != userID {
		return fmt.Errorf("%w: only the borrower can withdraw a repayment", ErrForbidden)
	}
	return s.store.DeleteTransaction(ctx, transactionID)
}

// List returns the caller's repayments with pagination. The filter's
// UserID is forced to the caller unless a debt is named, in which case the
// caller must be a party to it.
func (s *TransactionService) List(ctx context.Context, userID string, filter storage.TransactionFilter, page storage.Page) ([]*models.Transaction, int, error) {
	if filter.DebtID != "" {
		debt, err := s.store.GetDebt(ctx, filter.DebtID)
		if err != nil {
			return nil, 0, err
		}
		if debt.LenderID != userID && debt.BorrowerID != userID {
			return nil, 0, fmt.Errorf("%w: not a party to the debt", ErrForbidden)
		}
		filter.UserID = ""
	} else {
		filter.UserID = userID
	}
	return s.store.ListTransactions(ctx, filter, page)
}
