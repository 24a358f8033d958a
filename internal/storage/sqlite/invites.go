package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nurlan/debtnet/internal/models"
)

const inviteColumns = "id, group_id, inviter_id, invited_id, status, created_at"

func scanInvite(row interface{ Scan(...any) error }) (*models.GroupInvite, error) {
	invite := &models.GroupInvite{}
	err := row.Scan(&invite.ID, &invite.GroupID, &invite.InviterID,
		&invite.InvitedID, &invite.Status, &invite.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return invite, nil
}

func (s *SQLiteStore) CreateInvite(ctx context.Context, invite *models.GroupInvite) error {
	if invite.ID == "" {
		invite.ID = uuid.New().String()
	}
	if invite.CreatedAt == 0 {
		invite.CreatedAt = time.Now().Unix()
	}
	if invite.Status == "" {
		invite.Status = models.InviteStatusInvited
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO group_invites ("+inviteColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		invite.ID, invite.GroupID, invite.InviterID, invite.InvitedID, invite.Status, invite.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

func (s *SQLiteStore) GetInvite(ctx context.Context, id string) (*models.GroupInvite, error) {
	return scanInvite(s.db.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM group_invites WHERE id = ?", id))
}

// GetInviteForUser finds any invite of the user into the group, regardless
// of status. Used to reject duplicate invites.
func (s *SQLiteStore) GetInviteForUser(ctx context.Context, groupID, invitedID string) (*models.GroupInvite, error) {
	return scanInvite(s.db.QueryRowContext(ctx,
		"SELECT "+inviteColumns+" FROM group_invites WHERE group_id = ? AND invited_id = ?",
		groupID, invitedID))
}

func (s *SQLiteStore) ListPendingInvites(ctx context.Context, invitedID string) ([]*models.GroupInvite, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+inviteColumns+" FROM group_invites WHERE invited_id = ? AND status = ? ORDER BY created_at",
		invitedID, models.InviteStatusInvited,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites: %w", err)
	}
	defer rows.Close()

	var invites []*models.GroupInvite
	for rows.Next() {
		invite, err := scanInvite(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan invite: %w", err)
		}
		invites = append(invites, invite)
	}
	return invites, rows.Err()
}

// AcceptInvite flips the invite to accepted and adds the invited user to
// the group, atomically.
func (s *SQLiteStore) AcceptInvite(ctx context.Context, id string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		invite, err := scanInvite(tx.QueryRowContext(ctx,
			"SELECT "+inviteColumns+" FROM group_invites WHERE id = ?", id))
		if err != nil {
			return err
		}

		_, err = tx.ExecContext(ctx,
			"UPDATE group_invites SET status = ? WHERE id = ?",
			models.InviteStatusAccepted, id,
		)
		if err != nil {
			return fmt.Errorf("failed to update invite: %w", err)
		}

		_, err = tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO group_members (group_id, user_id) VALUES (?, ?)",
			invite.GroupID, invite.InvitedID,
		)
		if err != nil {
			return fmt.Errorf("failed to add group member: %w", err)
		}
		return nil
	})
}

func (s *SQLiteStore) UpdateInviteStatus(ctx context.Context, id string, status models.InviteStatus) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE group_invites SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return fmt.Errorf("failed to update invite status: %w", err)
	}
	return requireRowChange(res)
}
