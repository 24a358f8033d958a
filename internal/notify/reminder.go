package notify

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

// Reminder is the background job that notifies borrowers about debts whose
// reminder date falls on the current day. Each run scans once; duplicate
// notifications within a day are possible if the interval is shorter than
// 24h, so keep the interval at a day in production.
type Reminder struct {
	store    storage.Store
	mailer   Mailer
	interval time.Duration
}

// NewReminder builds the reminder job.
func NewReminder(store storage.Store, mailer Mailer, interval time.Duration) *Reminder {
	return &Reminder{store: store, mailer: mailer, interval: interval}
}

// Run executes the job immediately and then on every tick until the context
// is cancelled.
func (r *Reminder) Run(ctx context.Context) {
	if err := r.runOnce(ctx); err != nil {
		slog.Error("Reminder run failed", "error", err)
	}

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.runOnce(ctx); err != nil {
				slog.Error("Reminder run failed", "error", err)
			}
		}
	}
}

func (r *Reminder) runOnce(ctx context.Context) error {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	dayEnd := dayStart.Add(24 * time.Hour)

	debts, err := r.store.DebtsWithReminderBetween(ctx, dayStart.Unix(), dayEnd.Unix())
	if err != nil {
		return fmt.Errorf("failed to scan reminder debts: %w", err)
	}
	if len(debts) == 0 {
		return nil
	}

	notifications := make([]*models.Notification, 0, len(debts))
	for _, debt := range debts {
		currency, err := r.store.GetCurrencyByID(ctx, debt.CurrencyID)
		if err != nil {
			return fmt.Errorf("failed to resolve debt currency: %w", err)
		}
		message := fmt.Sprintf("You owe %s %s. The reminder date for this debt is today.",
			debt.Remainder.StringFixed(2), currency.Code)
		notifications = append(notifications, &models.Notification{
			DebtID:  debt.ID,
			Message: message,
		})

		borrower, err := r.store.GetUserByID(ctx, debt.BorrowerID)
		if err != nil {
			return fmt.Errorf("failed to resolve borrower: %w", err)
		}
		if err := r.mailer.Send(borrower.Email, "Debt reminder", message); err != nil {
			slog.Warn("Reminder mail failed", "debt_id", debt.ID, "error", err)
		}
	}

	if err := r.store.CreateNotifications(ctx, notifications); err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}

	slog.Info("Reminder run complete", "debts", len(debts))
	return nil
}
