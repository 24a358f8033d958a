package service

import (
	"context"
	"testing"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/shopspring/decimal"
)

func TestUserRating(t *testing.T) {
	store := newServiceStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	group := seedGroup(t, store, alice, bob)
	usd := currencyID(t, store, "USD")

	svc := NewRatingService(store)

	t.Run("No borrower debts scores 100", func(t *testing.T) {
		score, err := svc.UserRating(ctx, bob.ID)
		if err != nil {
			t.Fatalf("UserRating failed: %v", err)
		}
		if score != 100 {
			t.Errorf("Expected 100, got %f", score)
		}
	})

	// bob repaid one of two accepted debts; a third proposal is still
	// unapproved and must not count.
	repaid := seedDebt(t, store, group, alice, bob, usd, "10")
	repaid.Remainder = decimal.Zero
	repaid.Completed = true
	if err := store.UpdateDebt(ctx, repaid); err != nil {
		t.Fatalf("UpdateDebt failed: %v", err)
	}
	seedDebt(t, store, group, alice, bob, usd, "20")

	unapproved := &models.Debt{
		LenderID:   alice.ID,
		BorrowerID: bob.ID,
		GroupID:    group.ID,
		CurrencyID: usd,
		Amount:     decimal.RequireFromString("30"),
		Remainder:  decimal.RequireFromString("30"),
	}
	if err := store.CreateDebt(ctx, unapproved); err != nil {
		t.Fatalf("CreateDebt failed: %v", err)
	}

	score, err := svc.UserRating(ctx, bob.ID)
	if err != nil {
		t.Fatalf("UserRating failed: %v", err)
	}
	if score != 50 {
		t.Errorf("Expected 50, got %f", score)
	}

	t.Run("GroupRatings covers every member", func(t *testing.T) {
		ratings, err := svc.GroupRatings(ctx, group.ID)
		if err != nil {
			t.Fatalf("GroupRatings failed: %v", err)
		}
		if len(ratings) != 2 {
			t.Fatalf("Expected 2 ratings, got %d", len(ratings))
		}
		if ratings[alice.ID] != 100 {
			t.Errorf("Expected alice at 100, got %f", ratings[alice.ID])
		}
		if ratings[bob.ID] != 50 {
			t.Errorf("Expected bob at 50, got %f", ratings[bob.ID])
		}
	})
}

func TestBalance(t *testing.T) {
	store := newServiceStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	group := seedGroup(t, store, alice, bob)
	usd := currencyID(t, store, "USD")
	kzt := currencyID(t, store, "KZT")

	// alice lends twice in KZT and owes once in USD: KZT is her priority
	// currency and the USD debt converts into it.
	seedDebt(t, store, group, alice, bob, kzt, "10000")
	seedDebt(t, store, group, alice, bob, kzt, "5000")
	seedDebt(t, store, group, bob, alice, usd, "10")

	converter := &stubConverter{rates: map[string]decimal.Decimal{
		usd + "->" + kzt: decimal.RequireFromString("500"),
	}}
	svc := NewBalanceService(store, converter, "USD")

	balance, err := svc.Balance(ctx, alice.ID, "")
	if err != nil {
		t.Fatalf("Balance failed: %v", err)
	}

	if balance.Currency.Code != "KZT" {
		t.Fatalf("Expected KZT priority currency, got %s", balance.Currency.Code)
	}
	if !balance.Income.Equal(decimal.RequireFromString("15000")) {
		t.Errorf("Income mismatch: got %s, want 15000", balance.Income)
	}
	if !balance.Outcome.Equal(decimal.RequireFromString("5000")) {
		t.Errorf("Outcome mismatch: got %s, want 5000", balance.Outcome)
	}
	if !balance.Total.Equal(decimal.RequireFromString("10000")) {
		t.Errorf("Total mismatch: got %s, want 10000", balance.Total)
	}

	t.Run("No lender-side debts falls back to the default currency", func(t *testing.T) {
		carol := seedUser(t, store, "carol")
		balance, err := svc.Balance(ctx, carol.ID, "")
		if err != nil {
			t.Fatalf("Balance failed: %v", err)
		}
		if balance.Currency.Code != "USD" {
			t.Errorf("Expected USD fallback, got %s", balance.Currency.Code)
		}
		if !balance.Total.IsZero() {
			t.Errorf("Expected zero balance, got %s", balance.Total)
		}
	})
}
