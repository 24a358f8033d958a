package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nurlan/debtnet/internal/storage"
)

func TestTransactionFlow(t *testing.T) {
	store := newServiceStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	group := seedGroup(t, store, alice, bob)
	usd := currencyID(t, store, "USD")

	debt := seedDebt(t, store, group, alice, bob, usd, "100")
	svc := NewTransactionService(store, &stubConverter{})

	t.Run("Lender cannot repay", func(t *testing.T) {
		_, err := svc.Create(ctx, alice.ID, debt.ID, usd, decimal.RequireFromString("10"))
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Repayment above remainder is rejected", func(t *testing.T) {
		_, err := svc.Create(ctx, bob.ID, debt.ID, usd, decimal.RequireFromString("100.01"))
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	txn, err := svc.Create(ctx, bob.ID, debt.ID, usd, decimal.RequireFromString("40"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if txn.Approved {
		t.Error("New transaction must await the lender")
	}

	t.Run("Borrower cannot accept", func(t *testing.T) {
		_, err := svc.Accept(ctx, bob.ID, txn.ID)
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	updated, err := svc.Accept(ctx, alice.ID, txn.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if !updated.Remainder.Equal(decimal.RequireFromString("60")) {
		t.Errorf("Remainder mismatch: got %s, want 60", updated.Remainder)
	}

	t.Run("Double accept is rejected", func(t *testing.T) {
		_, err := svc.Accept(ctx, alice.ID, txn.ID)
		if !errors.Is(err, ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})

	t.Run("Full repayment completes the debt", func(t *testing.T) {
		final, err := svc.Create(ctx, bob.ID, debt.ID, usd, decimal.RequireFromString("60"))
		if err != nil {
			t.Fatalf("Create failed: %v", err)
		}
		completed, err := svc.Accept(ctx, alice.ID, final.ID)
		if err != nil {
			t.Fatalf("Accept failed: %v", err)
		}
		if !completed.Completed || !completed.Remainder.IsZero() {
			t.Errorf("Debt should be completed at zero, got remainder %s", completed.Remainder)
		}
	})

	t.Run("Completed debt rejects further repayment", func(t *testing.T) {
		_, err := svc.Create(ctx, bob.ID, debt.ID, usd, decimal.RequireFromString("1"))
		if !errors.Is(err, ErrConflict) {
			t.Errorf("Expected ErrConflict, got %v", err)
		}
	})
}

func TestTransactionCrossCurrency(t *testing.T) {
	store := newServiceStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	group := seedGroup(t, store, alice, bob)
	usd := currencyID(t, store, "USD")
	kzt := currencyID(t, store, "KZT")

	debt := seedDebt(t, store, group, alice, bob, usd, "100")

	converter := &stubConverter{rates: map[string]decimal.Decimal{
		kzt + "->" + usd: decimal.RequireFromString("0.002"),
	}}
	svc := NewTransactionService(store, converter)

	// 25000 KZT at 0.002 is 50 USD against a 100 USD debt.
	txn, err := svc.Create(ctx, bob.ID, debt.ID, kzt, decimal.RequireFromString("25000"))
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if !txn.Amount.Equal(decimal.RequireFromString("50")) {
		t.Errorf("Converted amount mismatch: got %s, want 50", txn.Amount)
	}

	updated, err := svc.Accept(ctx, alice.ID, txn.ID)
	if err != nil {
		t.Fatalf("Accept failed: %v", err)
	}
	if !updated.Remainder.Equal(decimal.RequireFromString("50")) {
		t.Errorf("Remainder mismatch: got %s, want 50", updated.Remainder)
	}
}

func TestTransactionList(t *testing.T) {
	store := newServiceStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	carol := seedUser(t, store, "carol")
	group := seedGroup(t, store, alice, bob, carol)
	usd := currencyID(t, store, "USD")

	debt := seedDebt(t, store, group, alice, bob, usd, "100")
	svc := NewTransactionService(store, &stubConverter{})

	if _, err := svc.Create(ctx, bob.ID, debt.ID, usd, decimal.RequireFromString("10")); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	txns, total, err := svc.List(ctx, bob.ID, storage.TransactionFilter{DebtID: debt.ID}, storage.Page{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if total != 1 || len(txns) != 1 {
		t.Errorf("Expected 1 transaction, got total=%d len=%d", total, len(txns))
	}

	_, _, err = svc.List(ctx, carol.ID, storage.TransactionFilter{DebtID: debt.ID}, storage.Page{})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected ErrForbidden for a non-party, got %v", err)
	}
}
