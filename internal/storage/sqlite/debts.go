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

const debtColumns = "id, lender_id, borrower_id, group_id, currency_id, amount, remainder, approved, completed, created_at, due_at, remind_at"

func scanDebt(row interface{ Scan(...any) error }) (*models.Debt, error) {
	debt := &models.Debt{}
	var amount, remainder string
	err := row.Scan(&debt.ID, &debt.LenderID, &debt.BorrowerID, &debt.GroupID,
		&debt.CurrencyID, &amount, &remainder, &debt.Approved, &debt.Completed,
		&debt.CreatedAt, &debt.DueAt, &debt.RemindAt)
	if err != nil {
		return nil, notFound(err)
	}
	if debt.Amount, err = parseDecimal(amount); err != nil {
		return nil, err
	}
	if debt.Remainder, err = parseDecimal(remainder); err != nil {
		return nil, err
	}
	return debt, nil
}

func collectDebts(rows *sql.Rows) ([]*models.Debt, error) {
	defer rows.Close()

	var debts []*models.Debt
	for rows.Next() {
		debt, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, debt)
	}
	return debts, rows.Err()
}

func (s *SQLiteStore) CreateDebt(ctx context.Context, debt *models.Debt) error {
	if debt.ID == "" {
		debt.ID = uuid.New().String()
	}
	if debt.CreatedAt == 0 {
		debt.CreatedAt = time.Now().Unix()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO debts ("+debtColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		debt.ID, debt.LenderID, debt.BorrowerID, debt.GroupID, debt.CurrencyID,
		debt.Amount.String(), debt.Remainder.String(), debt.Approved, debt.Completed,
		debt.CreatedAt, debt.DueAt, debt.RemindAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetDebt(ctx context.Context, id string) (*models.Debt, error) {
	return scanDebt(s.db.QueryRowContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE id = ?", id))
}

func (s *SQLiteStore) ListDebts(ctx context.Context, filter storage.DebtFilter, page storage.Page) ([]*models.Debt, int, error) {
	where := "1 = 1"
	var args []any

	if filter.UserID != "" {
		switch {
		case filter.Borrower == nil:
			where += " AND (lender_id = ? OR borrower_id = ?)"
			args = append(args, filter.UserID, filter.UserID)
		case *filter.Borrower:
			where += " AND borrower_id = ?"
			args = append(args, filter.UserID)
		default:
			where += " AND lender_id = ?"
			args = append(args, filter.UserID)
		}
	}
	if filter.Completed != nil {
		where += " AND completed = ?"
		args = append(args, *filter.Completed)
	}
	if filter.GroupID != "" {
		where += " AND group_id = ?"
		args = append(args, filter.GroupID)
	}

	var total int
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM debts WHERE "+where, args...).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count debts: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE "+where+" ORDER BY created_at DESC LIMIT ? OFFSET ?",
		append(args, page.Limit(), page.Offset())...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list debts: %w", err)
	}
	debts, err := collectDebts(rows)
	if err != nil {
		return nil, 0, err
	}
	return debts, total, nil
}

func (s *SQLiteStore) UpdateDebt(ctx context.Context, debt *models.Debt) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE debts SET lender_id = ?, borrower_id = ?, group_id = ?, currency_id = ?,
		 amount = ?, remainder = ?, approved = ?, completed = ?, due_at = ?, remind_at = ?
		 WHERE id = ?`,
		debt.LenderID, debt.BorrowerID, debt.GroupID, debt.CurrencyID,
		debt.Amount.String(), debt.Remainder.String(), debt.Approved, debt.Completed,
		debt.DueAt, debt.RemindAt, debt.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update debt: %w", err)
	}
	return requireRowChange(res)
}

func (s *SQLiteStore) DeleteDebt(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM debts WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete debt: %w", err)
	}
	return requireRowChange(res)
}

func (s *SQLiteStore) ListActiveDebtsAmong(ctx context.Context, participantIDs []string) ([]*models.Debt, error) {
	if len(participantIDs) == 0 {
		return nil, nil
	}

	in := placeholders(len(participantIDs))
	args := toAnySlice(participantIDs)
	args = append(args, toAnySlice(participantIDs)...)

	rows, err := s.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE completed = 0"+
			" AND lender_id IN ("+in+") AND borrower_id IN ("+in+") ORDER BY created_at",
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list active debts: %w", err)
	}
	return collectDebts(rows)
}

func (s *SQLiteStore) ListOpenDebtsForUser(ctx context.Context, userID, groupID string) ([]*models.Debt, error) {
	query := "SELECT " + debtColumns + " FROM debts WHERE approved = 1 AND completed = 0" +
		" AND (lender_id = ? OR borrower_id = ?)"
	args := []any{userID, userID}
	if groupID != "" {
		query += " AND group_id = ?"
		args = append(args, groupID)
	}

	rows, err := s.db.QueryContext(ctx, query+" ORDER BY created_at", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list open debts: %w", err)
	}
	return collectDebts(rows)
}

func (s *SQLiteStore) ListLenderDebts(ctx context.Context, userID string) ([]*models.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE lender_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list lender debts: %w", err)
	}
	return collectDebts(rows)
}

func (s *SQLiteStore) ListBorrowerDebts(ctx context.Context, userID string) ([]*models.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE borrower_id = ? ORDER BY created_at", userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrower debts: %w", err)
	}
	return collectDebts(rows)
}

func (s *SQLiteStore) ListGroupDebts(ctx context.Context, groupID string) ([]*models.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE group_id = ? ORDER BY created_at", groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group debts: %w", err)
	}
	return collectDebts(rows)
}

func (s *SQLiteStore) DebtsWithReminderBetween(ctx context.Context, from, to int64) ([]*models.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+debtColumns+" FROM debts WHERE completed = 0 AND remind_at >= ? AND remind_at < ?",
		from, to,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder debts: %w", err)
	}
	return collectDebts(rows)
}
