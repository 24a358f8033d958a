package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurlan/debtnet/internal/models"
)

const optimizationColumns = "id, group_id, initiator_id, status, created_at"

func scanOptimizationRequest(row interface{ Scan(...any) error }) (*models.OptimizationRequest, error) {
	request := &models.OptimizationRequest{}
	err := row.Scan(&request.ID, &request.GroupID, &request.InitiatorID,
		&request.Status, &request.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return request, nil
}

// CreateOptimizationRequest stores the request together with one pending
// approval per group member other than the initiator.
func (s *SQLiteStore) CreateOptimizationRequest(ctx context.Context, request *models.OptimizationRequest) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	if request.CreatedAt == 0 {
		request.CreatedAt = time.Now().Unix()
	}
	if request.Status == "" {
		request.Status = models.OptimizationStatusPending
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO optimization_requests ("+optimizationColumns+") VALUES (?, ?, ?, ?, ?)",
			request.ID, request.GroupID, request.InitiatorID, request.Status, request.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert optimization request: %w", err)
		}

		for i := range request.Approvals {
			approval := &request.Approvals[i]
			if approval.ID == "" {
				approval.ID = uuid.New().String()
			}
			approval.RequestID = request.ID
			_, err := tx.ExecContext(ctx,
				"INSERT INTO optimization_approvals (id, request_id, user_id, approved) VALUES (?, ?, ?, ?)",
				approval.ID, approval.RequestID, approval.UserID, approval.Approved,
			)
			if err != nil {
				return fmt.Errorf("failed to insert optimization approval: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetOptimizationRequest(ctx context.Context, id string) (*models.OptimizationRequest, error) {
	request, err := scanOptimizationRequest(s.db.QueryRowContext(ctx,
		"SELECT "+optimizationColumns+" FROM optimization_requests WHERE id = ?", id))
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, request_id, user_id, approved FROM optimization_approvals WHERE request_id = ? ORDER BY user_id",
		id,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load optimization approvals: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var approval models.OptimizationApproval
		err := rows.Scan(&approval.ID, &approval.RequestID, &approval.UserID, &approval.Approved)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimization approval: %w", err)
		}
		request.Approvals = append(request.Approvals, approval)
	}
	return request, rows.Err()
}

func (s *SQLiteStore) ListOptimizationRequestsForUser(ctx context.Context, userID string) ([]*models.OptimizationRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT r.id FROM optimization_requests r
		 LEFT JOIN optimization_approvals a ON a.request_id = r.id
		 WHERE r.initiator_id = ? OR a.user_id = ?
		 ORDER BY r.id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimization requests: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan optimization request id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	requests := make([]*models.OptimizationRequest, 0, len(ids))
	for _, id := range ids {
		request, err := s.GetOptimizationRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func (s *SQLiteStore) ListPendingOptimizationApprovals(ctx context.Context, userID string) ([]*models.OptimizationApproval, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.request_id, a.user_id, a.approved
		 FROM optimization_approvals a
		 JOIN optimization_requests r ON r.id = a.request_id
		 WHERE a.user_id = ? AND a.approved = 0 AND r.status = ?`,
		userID, models.OptimizationStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list optimization approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*models.OptimizationApproval
	for rows.Next() {
		approval := &models.OptimizationApproval{}
		err := rows.Scan(&approval.ID, &approval.RequestID, &approval.UserID, &approval.Approved)
		if err != nil {
			return nil, fmt.Errorf("failed to scan optimization approval: %w", err)
		}
		approvals = append(approvals, approval)
	}
	return approvals, rows.Err()
}

func (s *SQLiteStore) GetOptimizationApproval(ctx context.Context, id string) (*models.OptimizationApproval, error) {
	approval := &models.OptimizationApproval{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, request_id, user_id, approved FROM optimization_approvals WHERE id = ?",
		id,
	).Scan(&approval.ID, &approval.RequestID, &approval.UserID, &approval.Approved)
	if err != nil {
		return nil, notFound(err)
	}
	return approval, nil
}

func (s *SQLiteStore) ApproveOptimization(ctx context.Context, approvalID string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE optimization_approvals SET approved = 1 WHERE id = ?", approvalID)
	if err != nil {
		return fmt.Errorf("failed to approve optimization: %w", err)
	}
	return requireRowChange(res)
}

func (s *SQLiteStore) UpdateOptimizationStatus(ctx context.Context, requestID string, status models.OptimizationStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE optimization_requests SET status = ? WHERE id = ?", status, requestID)
	if err != nil {
		return fmt.Errorf("failed to update optimization status: %w", err)
	}
	return requireRowChange(res)
}

// ApplyOptimization commits the outcome of a netting run in one transaction
// so the ledger never shows the old and new debts side by side.
func (s *SQLiteStore) ApplyOptimization(ctx context.Context, requestID string, closedDebtIDs []string, newDebts []*models.Debt) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if len(closedDebtIDs) > 0 {
			in := placeholders(len(closedDebtIDs))
			_, err := tx.ExecContext(ctx,
				"UPDATE debts SET remainder = '0', completed = 1 WHERE id IN ("+in+")",
				toAnySlice(closedDebtIDs)...,
			)
			if err != nil {
				return fmt.Errorf("failed to close superseded debts: %w", err)
			}
		}

		for _, debt := range newDebts {
			if debt.ID == "" {
				debt.ID = uuid.New().String()
			}
			if debt.CreatedAt == 0 {
				debt.CreatedAt = time.Now().Unix()
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO debts ("+debtColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
				debt.ID, debt.LenderID, debt.BorrowerID, debt.GroupID, debt.CurrencyID,
				debt.Amount.String(), debt.Remainder.String(), debt.Approved, debt.Completed,
				debt.CreatedAt, debt.DueAt, debt.RemindAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert replacement debt: %w", err)
			}
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE optimization_requests SET status = ? WHERE id = ?",
			models.OptimizationStatusOptimized, requestID,
		)
		if err != nil {
			return fmt.Errorf("failed to mark request optimized: %w", err)
		}
		return requireRowChange(res)
	})
}
