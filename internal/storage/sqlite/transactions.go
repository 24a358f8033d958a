package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

const transactionColumns = "id, debt_id, amount, approved, created_at"

func scanTransaction(row interface{ Scan(...any) error }) (*models.Transaction, error) {
	txn := &models.Transaction{}
	var amount string
	err := row.Scan(&txn.ID, &txn.DebtID, &amount, &txn.Approved, &txn.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	if txn.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	return txn, nil
}

func (s *SQLiteStore) CreateTransaction(ctx context.Context, txn *models.Transaction) error {
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	if txn.CreatedAt == 0 {
		txn.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO transactions ("+transactionColumns+") VALUES (?, ?, ?, ?, ?)",
		txn.ID, txn.DebtID, txn.Amount.String(), txn.Approved, txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetTransaction(ctx context.Context, id string) (*models.Transaction, error) {
	return scanTransaction(s.db.QueryRowContext(ctx,
		"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id))
}

func (s *SQLiteStore) ListTransactions(ctx context.Context, filter storage.TransactionFilter, page storage.Page) ([]*models.Transaction, int, error) {
	where := "1 = 1"
	var args []any

	if filter.DebtID != "" {
		where += " AND t.debt_id = ?"
		args = append(args, filter.DebtID)
	}
	if filter.UserID != "" {
		switch {
		case filter.Incoming == nil:
			where += " AND (d.lender_id = ? OR d.borrower_id = ?)"
			args = append(args, filter.UserID, filter.UserID)
		case *filter.Incoming:
			where += " AND d.lender_id = ?"
			args = append(args, filter.UserID)
		default:
			where += " AND d.borrower_id = ?"
			args = append(args, filter.UserID)
		}
	}

	const from = " FROM transactions t JOIN debts d ON d.id = t.debt_id WHERE "

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT t.id, t.debt_id, t.amount, t.approved, t.created_at"+from+where+
			" ORDER BY t.created_at DESC LIMIT ? OFFSET ?",
		append(args, page.Limit(), page.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []*models.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	return txns, total, rows.Err()
}

func (s *SQLiteStore) UpdateTransaction(ctx context.Context, txn *models.Transaction) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE transactions SET amount = ?, approved = ? WHERE id = ?",
		txn.Amount.String(), txn.Approved, txn.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	return requireRowChange(res)
}

func (s *SQLiteStore) DeleteTransaction(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM transactions WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	return requireRowChange(res)
}

// AcceptTransaction approves the repayment and applies it to the debt.
// The remainder never goes below zero here; the service layer rejects
// repayments exceeding it before they are created.
func (s *SQLiteStore) AcceptTransaction(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		txn, err := scanTransaction(tx.QueryRowContext(ctx,
			"SELECT "+transactionColumns+" FROM transactions WHERE id = ?", id))
		if err != nil {
			return err
		}

		debt, err := scanDebt(tx.QueryRowContext(ctx,
			"SELECT "+debtColumns+" FROM debts WHERE id = ?", txn.DebtID))
		if err != nil {
			return err
		}

		remainder := debt.Remainder.Sub(txn.Amount)
		completed := remainder.IsZero()

		_, err = tx.ExecContext(ctx,
			"UPDATE transactions SET approved = 1 WHERE id = ?", id)
		if err != nil {
			return fmt.Errorf("failed to approve transaction: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE debts SET remainder = ?, completed = ? WHERE id = ?",
			remainder.String(), completed, debt.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to apply repayment: %w", err)
		}
		return nil
	})
}
