package service

import (
	"context"
	"fmt"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

// NotificationService manages in-app debt reminders.
type NotificationService struct {
	store storage.Store
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store storage.Store) *NotificationService {
	return &NotificationService{store: store}
}

// ListUnread returns the caller's unread notifications.
func (s *NotificationService) ListUnread(ctx context.Context, userID string, page storage.Page) ([]*models.Notification, int, error) {
	return s.store.ListUnreadNotifications(ctx, userID, page)
}

// MarkRead marks a notification read. Only the borrower it addresses may.
func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID string) error {
	if err := s.requireRecipient(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.store.MarkNotificationRead(ctx, notificationID)
}

// Delete removes a notification. Only the borrower it addresses may.
func (s *NotificationService) Delete(ctx context.Context, userID, notificationID string) error {
	if err := s.requireRecipient(ctx, userID, notificationID); err != nil {
		return err
	}
	return s.store.DeleteNotification(ctx, notificationID)
}

func (s *NotificationService) requireRecipient(ctx context.Context, userID, notificationID string) error {
	notification, err := s.store.GetNotification(ctx, notificationID)
	if err != nil {
		return err
	}
	debt, err := s.store.GetDebt(ctx, notification.DebtID)
	if err != nil {
		return err
	}
	if debt.BorrowerID != userID {
		return fmt.Errorf("%w: notification addressed to another user", ErrForbidden)
	}
	return nil
}
