package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurlan/debtnet/internal/models"
)

const mergeColumns = "id, initiator_id, new_name, new_description, status, created_at"

func scanMergeRequest(row interface{ Scan(...any) error }) (*models.MergeRequest, error) {
	request := &models.MergeRequest{}
	err := row.Scan(&request.ID, &request.InitiatorID, &request.NewName,
		&request.NewDescription, &request.Status, &request.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return request, nil
}

// CreateMergeRequest stores the request along with its group links and one
// pending approval per affected member (prepared by the service layer).
func (s *SQLiteStore) CreateMergeRequest(ctx context.Context, request *models.MergeRequest) error {
	if request.ID == "" {
		request.ID = uuid.New().String()
	}
	if request.CreatedAt == 0 {
		request.CreatedAt = time.Now().Unix()
	}
	if request.Status == "" {
		request.Status = models.MergeStatusPending
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO merge_requests ("+mergeColumns+") VALUES (?, ?, ?, ?, ?, ?)",
			request.ID, request.InitiatorID, request.NewName, request.NewDescription,
			request.Status, request.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert merge request: %w", err)
		}

		for _, groupID := range request.GroupIDs {
			_, err := tx.ExecContext(ctx,
				"INSERT INTO merge_request_groups (merge_request_id, group_id) VALUES (?, ?)",
				request.ID, groupID,
			)
			if err != nil {
				return fmt.Errorf("failed to link merge group: %w", err)
			}
		}

		for i := range request.Approvals {
			approval := &request.Approvals[i]
			if approval.ID == "" {
				approval.ID = uuid.New().String()
			}
			approval.MergeRequestID = request.ID
			_, err := tx.ExecContext(ctx,
				"INSERT INTO merge_request_approvals (id, merge_request_id, user_id, approved) VALUES (?, ?, ?, ?)",
				approval.ID, approval.MergeRequestID, approval.UserID, approval.Approved,
			)
			if err != nil {
				return fmt.Errorf("failed to insert merge approval: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetMergeRequest(ctx context.Context, id string) (*models.MergeRequest, error) {
	request, err := scanMergeRequest(s.db.QueryRowContext(ctx,
		"SELECT "+mergeColumns+" FROM merge_requests WHERE id = ?", id))
	if err != nil {
		return nil, err
	}
	if err := s.loadMergeDetails(ctx, request); err != nil {
		return nil, err
	}
	return request, nil
}

func (s *SQLiteStore) loadMergeDetails(ctx context.Context, request *models.MergeRequest) error {
	rows, err := s.db.QueryContext(ctx,
		"SELECT group_id FROM merge_request_groups WHERE merge_request_id = ? ORDER BY group_id",
		request.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load merge groups: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var groupID string
		if err := rows.Scan(&groupID); err != nil {
			return fmt.Errorf("failed to scan merge group: %w", err)
		}
		request.GroupIDs = append(request.GroupIDs, groupID)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	approvalRows, err := s.db.QueryContext(ctx,
		"SELECT id, merge_request_id, user_id, approved FROM merge_request_approvals WHERE merge_request_id = ? ORDER BY user_id",
		request.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to load merge approvals: %w", err)
	}
	defer approvalRows.Close()
	for approvalRows.Next() {
		var approval models.MergeApproval
		err := approvalRows.Scan(&approval.ID, &approval.MergeRequestID,
			&approval.UserID, &approval.Approved)
		if err != nil {
			return fmt.Errorf("failed to scan merge approval: %w", err)
		}
		request.Approvals = append(request.Approvals, approval)
	}
	return approvalRows.Err()
}

// ListMergeRequestsForUser returns requests the user initiated or holds an
// approval for.
func (s *SQLiteStore) ListMergeRequestsForUser(ctx context.Context, userID string) ([]*models.MergeRequest, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT r.id FROM merge_requests r
		 LEFT JOIN merge_request_approvals a ON a.merge_request_id = r.id
		 WHERE r.initiator_id = ? OR a.user_id = ?
		 ORDER BY r.id`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list merge requests: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan merge request id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	requests := make([]*models.MergeRequest, 0, len(ids))
	for _, id := range ids {
		request, err := s.GetMergeRequest(ctx, id)
		if err != nil {
			return nil, err
		}
		requests = append(requests, request)
	}
	return requests, nil
}

func (s *SQLiteStore) ListPendingMergeApprovals(ctx context.Context, userID string) ([]*models.MergeApproval, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.merge_request_id, a.user_id, a.approved
		 FROM merge_request_approvals a
		 JOIN merge_requests r ON r.id = a.merge_request_id
		 WHERE a.user_id = ? AND a.approved = 0 AND r.status = ?`,
		userID, models.MergeStatusPending,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list merge approvals: %w", err)
	}
	defer rows.Close()

	var approvals []*models.MergeApproval
	for rows.Next() {
		approval := &models.MergeApproval{}
		err := rows.Scan(&approval.ID, &approval.MergeRequestID,
			&approval.UserID, &approval.Approved)
		if err != nil {
			return nil, fmt.Errorf("failed to scan merge approval: %w", err)
		}
		approvals = append(approvals, approval)
	}
	return approvals, rows.Err()
}

func (s *SQLiteStore) GetMergeApproval(ctx context.Context, id string) (*models.MergeApproval, error) {
	approval := &models.MergeApproval{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, merge_request_id, user_id, approved FROM merge_request_approvals WHERE id = ?",
		id,
	).Scan(&approval.ID, &approval.MergeRequestID, &approval.UserID, &approval.Approved)
	if err != nil {
		return nil, notFound(err)
	}
	return approval, nil
}

func (s *SQLiteStore) ResolveMergeApproval(ctx context.Context, approvalID string, approved bool, status models.MergeStatus) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE merge_request_approvals SET approved = ? WHERE id = ?",
			approved, approvalID,
		)
		if err != nil {
			return fmt.Errorf("failed to update merge approval: %w", err)
		}
		if err := requireRowChange(res); err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			`UPDATE merge_requests SET status = ?
			 WHERE id = (SELECT merge_request_id FROM merge_request_approvals WHERE id = ?)`,
			status, approvalID,
		)
		if err != nil {
			return fmt.Errorf("failed to update merge request status: %w", err)
		}
		return nil
	})
}

// CompleteMerge commits a merge: the new group is created with the union of
// members, the old groups' debts are repointed at it, other merge requests
// touching the old groups lose their links, and the old groups cascade away.
func (s *SQLiteStore) CompleteMerge(ctx context.Context, request *models.MergeRequest, newGroup *models.Group) error {
	if newGroup.ID == "" {
		newGroup.ID = uuid.New().String()
	}
	if newGroup.CreatedAt == 0 {
		newGroup.CreatedAt = time.Now().Unix()
	}

	return s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO groups (id, name, description, created_at) VALUES (?, ?, ?, ?)",
			newGroup.ID, newGroup.Name, newGroup.Description, newGroup.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create merged group: %w", err)
		}

		for _, userID := range newGroup.Members {
			_, err := tx.ExecContext(ctx,
				"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
				newGroup.ID, userID,
			)
			if err != nil {
				return fmt.Errorf("failed to add merged group member: %w", err)
			}
		}

		in := placeholders(len(request.GroupIDs))
		args := append([]any{newGroup.ID}, toAnySlice(request.GroupIDs)...)
		_, err = tx.ExecContext(ctx,
			"UPDATE debts SET group_id = ? WHERE group_id IN ("+in+")", args...)
		if err != nil {
			return fmt.Errorf("failed to move debts: %w", err)
		}

		// Drop competing merge requests that reference the now-gone groups.
		_, err = tx.ExecContext(ctx,
			`DELETE FROM merge_requests WHERE id != ? AND id IN (
			     SELECT merge_request_id FROM merge_request_groups WHERE group_id IN (`+in+`))`,
			append([]any{request.ID}, toAnySlice(request.GroupIDs)...)...,
		)
		if err != nil {
			return fmt.Errorf("failed to drop stale merge requests: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"DELETE FROM groups WHERE id IN ("+in+")", toAnySlice(request.GroupIDs)...)
		if err != nil {
			return fmt.Errorf("failed to delete merged groups: %w", err)
		}

		res, err := tx.ExecContext(ctx,
			"UPDATE merge_requests SET status = ? WHERE id = ?",
			models.MergeStatusCompleted, request.ID,
		)
		if err != nil {
			return fmt.Errorf("failed to complete merge request: %w", err)
		}
		return requireRowChange(res)
	})
}
