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

const notificationColumns = "id, debt_id, message, is_read, created_at"

func scanNotification(row interface{ Scan(...any) error }) (*models.Notification, error) {
	n := &models.Notification{}
	err := row.Scan(&n.ID, &n.DebtID, &n.Message, &n.Read, &n.CreatedAt)
	if err != nil {
		return nil, notFound(err)
	}
	return n, nil
}

func (s *SQLiteStore) CreateNotifications(ctx context.Context, notifications []*models.Notification) error {
	if len(notifications) == 0 {
		return nil
	}
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, n := range notifications {
			if n.ID == "" {
				n.ID = uuid.New().String()
			}
			if n.CreatedAt == 0 {
				n.CreatedAt = time.Now().Unix()
			}
			_, err := tx.ExecContext(ctx,
				"INSERT INTO notifications ("+notificationColumns+") VALUES (?, ?, ?, ?, ?)",
				n.ID, n.DebtID, n.Message, n.Read, n.CreatedAt,
			)
			if err != nil {
				return fmt.Errorf("failed to insert notification: %w", err)
			}
		}
		return nil
	})
}

func (s *SQLiteStore) GetNotification(ctx context.Context, id string) (*models.Notification, error) {
	return scanNotification(s.db.QueryRowContext(ctx,
		"SELECT "+notificationColumns+" FROM notifications WHERE id = ?", id))
}

// ListUnreadNotifications pages the unread notifications addressed to the
// borrower of the underlying debt, newest first.
func (s *SQLiteStore) ListUnreadNotifications(ctx context.Context, borrowerID string, page storage.Page) ([]*models.Notification, int, error) {
	const from = ` FROM notifications n
		 JOIN debts d ON d.id = n.debt_id
		 WHERE d.borrower_id = ? AND n.is_read = 0`

	var total int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*)"+from, borrowerID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT n.id, n.debt_id, n.message, n.is_read, n.created_at"+from+
			" ORDER BY n.created_at DESC LIMIT ? OFFSET ?",
		borrowerID, page.Limit(), page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*models.Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}
	return notifications, total, rows.Err()
}

func (s *SQLiteStore) MarkNotificationRead(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	return requireRowChange(res)
}

func (s *SQLiteStore) DeleteNotification(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM notifications WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete notification: %w", err)
	}
	return requireRowChange(res)
}
