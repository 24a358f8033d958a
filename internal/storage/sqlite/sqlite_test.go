package sqlite

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "debtnet-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(tempDir) })

	store, err := New(filepath.Join(tempDir, "test.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return store
}

func createTestUser(t *testing.T, store *SQLiteStore, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username:     username,
		Name:         username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
	}
	if err := store.CreateUser(context.Background(), user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	return user
}

func usdID(t *testing.T, store *SQLiteStore) string {
	t.Helper()

	currency, err := store.GetCurrencyByCode(context.Background(), "USD")
	if err != nil {
		t.Fatalf("GetCurrencyByCode failed: %v", err)
	}
	return currency.ID
}

func TestSQLiteStoreUsers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	t.Run("CreateUser generates ID and timestamp", func(t *testing.T) {
		user := createTestUser(t, store, "alice")
		if user.ID == "" {
			t.Error("Expected user ID to be generated")
		}
		if user.CreatedAt == 0 {
			t.Error("Expected CreatedAt to be set")
		}
	})

	t.Run("GetUserByUsername and GetUserByEmail", func(t *testing.T) {
		created := createTestUser(t, store, "bob")

		byName, err := store.GetUserByUsername(ctx, "bob")
		if err != nil {
			t.Fatalf("GetUserByUsername failed: %v", err)
		}
		if byName.ID != created.ID {
			t.Errorf("ID mismatch: got %s, want %s", byName.ID, created.ID)
		}

		byEmail, err := store.GetUserByEmail(ctx, "bob@example.com")
		if err != nil {
			t.Fatalf("GetUserByEmail failed: %v", err)
		}
		if byEmail.ID != created.ID {
			t.Errorf("ID mismatch: got %s, want %s", byEmail.ID, created.ID)
		}
	})

	t.Run("GetUserByID returns ErrNotFound for unknown id", func(t *testing.T) {
		_, err := store.GetUserByID(ctx, "nonexistent-id")
		if !errors.Is(err, storage.ErrNotFound) {
			t.Errorf("Expected ErrNotFound, got %v", err)
		}
	})

	t.Run("UpdateUser persists changes", func(t *testing.T) {
		user := createTestUser(t, store, "carol")
		user.EmailConfirmed = true
		user.Surname = "Jones"

		if err := store.UpdateUser(ctx, user); err != nil {
			t.Fatalf("UpdateUser failed: %v", err)
		}

		got, err := store.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID failed: %v", err)
		}
		if !got.EmailConfirmed {
			t.Error("Expected EmailConfirmed to be true")
		}
		if got.Surname != "Jones" {
			t.Errorf("Surname mismatch: got %s", got.Surname)
		}
	})

	t.Run("Refresh token rotation", func(t *testing.T) {
		user := createTestUser(t, store, "dave")

		token := &models.RefreshToken{UserID: user.ID, Token: "tok-1", Valid: true}
		if err := store.SaveRefreshToken(ctx, token); err != nil {
			t.Fatalf("SaveRefreshToken failed: %v", err)
		}

		if err := store.InvalidateRefreshTokens(ctx, user.ID); err != nil {
			t.Fatalf("InvalidateRefreshTokens failed: %v", err)
		}

		got, err := store.GetRefreshToken(ctx, "tok-1")
		if err != nil {
			t.Fatalf("GetRefreshToken failed: %v", err)
		}
		if got.Valid {
			t.Error("Expected token to be invalidated")
		}
	})
}

func TestSQLiteStoreCurrencies(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	currencies, err := store.ListCurrencies(ctx)
	if err != nil {
		t.Fatalf("ListCurrencies failed: %v", err)
	}
	if len(currencies) < 5 {
		t.Errorf("Expected at least 5 seeded currencies, got %d", len(currencies))
	}

	usd, err := store.GetCurrencyByCode(ctx, "USD")
	if err != nil {
		t.Fatalf("GetCurrencyByCode failed: %v", err)
	}
	if usd.Code != "USD" {
		t.Errorf("Code mismatch: got %s", usd.Code)
	}

	byID, err := store.GetCurrencyByID(ctx, usd.ID)
	if err != nil {
		t.Fatalf("GetCurrencyByID failed: %v", err)
	}
	if byID.Code != "USD" {
		t.Errorf("Code mismatch: got %s", byID.Code)
	}
}

func TestSQLiteStoreGroupsAndInvites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")

	group := &models.Group{Name: "Roommates", Members: []string{alice.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	t.Run("GetGroup returns members", func(t *testing.T) {
		got, err := store.GetGroup(ctx, group.ID)
		if err != nil {
			t.Fatalf("GetGroup failed: %v", err)
		}
		if len(got.Members) != 1 || got.Members[0] != alice.ID {
			t.Errorf("Unexpected members: %v", got.Members)
		}
	})

	t.Run("AcceptInvite adds member atomically", func(t *testing.T) {
		invite := &models.GroupInvite{
			GroupID:   group.ID,
			InviterID: alice.ID,
			InvitedID: bob.ID,
		}
		if err := store.CreateInvite(ctx, invite); err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
		if invite.Status != models.InviteStatusInvited {
			t.Errorf("Expected invited status, got %s", invite.Status)
		}

		if err := store.AcceptInvite(ctx, invite.ID); err != nil {
			t.Fatalf("AcceptInvite failed: %v", err)
		}

		isMember, err := store.IsGroupMember(ctx, group.ID, bob.ID)
		if err != nil {
			t.Fatalf("IsGroupMember failed: %v", err)
		}
		if !isMember {
			t.Error("Expected bob to be a group member after accepting")
		}

		got, err := store.GetInvite(ctx, invite.ID)
		if err != nil {
			t.Fatalf("GetInvite failed: %v", err)
		}
		if got.Status != models.InviteStatusAccepted {
			t.Errorf("Expected accepted status, got %s", got.Status)
		}

		pending, err := store.ListPendingInvites(ctx, bob.ID)
		if err != nil {
			t.Fatalf("ListPendingInvites failed: %v", err)
		}
		if len(pending) != 0 {
			t.Errorf("Expected no pending invites, got %d", len(pending))
		}
	})

	t.Run("ListGroupsForUser pages", func(t *testing.T) {
		groups, total, err := store.ListGroupsForUser(ctx, alice.ID, storage.Page{})
		if err != nil {
			t.Fatalf("ListGroupsForUser failed: %v", err)
		}
		if total != 1 || len(groups) != 1 {
			t.Errorf("Expected 1 group, got total=%d len=%d", total, len(groups))
		}
	})
}

func TestSQLiteStoreDebts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")
	carol := createTestUser(t, store, "carol")
	usd := usdID(t, store)

	group := &models.Group{Name: "Trip", Members: []string{alice.ID, bob.ID, carol.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	newDebt := func(lender, borrower *models.User, amount string, approved bool) *models.Debt {
		d := decimal.RequireFromString(amount)
		debt := &models.Debt{
			LenderID:   lender.ID,
			BorrowerID: borrower.ID,
			GroupID:    group.ID,
			CurrencyID: usd,
			Amount:     d,
			Remainder:  d,
			Approved:   approved,
		}
		if err := store.CreateDebt(ctx, debt); err != nil {
			t.Fatalf("CreateDebt failed: %v", err)
		}
		return debt
	}

	debtAB := newDebt(alice, bob, "125.50", true)
	newDebt(bob, carol, "40", true)
	unapproved := newDebt(carol, alice, "10", false)

	t.Run("Decimal round-trips through TEXT", func(t *testing.T) {
		got, err := store.GetDebt(ctx, debtAB.ID)
		if err != nil {
			t.Fatalf("GetDebt failed: %v", err)
		}
		if !got.Amount.Equal(decimal.RequireFromString("125.50")) {
			t.Errorf("Amount mismatch: got %s", got.Amount)
		}
		if !got.Remainder.Equal(got.Amount) {
			t.Errorf("Remainder mismatch: got %s", got.Remainder)
		}
	})

	t.Run("ListActiveDebtsAmong filters both sides", func(t *testing.T) {
		debts, err := store.ListActiveDebtsAmong(ctx, []string{alice.ID, bob.ID})
		if err != nil {
			t.Fatalf("ListActiveDebtsAmong failed: %v", err)
		}
		if len(debts) != 1 {
			t.Fatalf("Expected 1 debt among alice and bob, got %d", len(debts))
		}
		if debts[0].ID != debtAB.ID {
			t.Errorf("Unexpected debt: %s", debts[0].ID)
		}
	})

	t.Run("ListOpenDebtsForUser skips unapproved", func(t *testing.T) {
		debts, err := store.ListOpenDebtsForUser(ctx, alice.ID, "")
		if err != nil {
			t.Fatalf("ListOpenDebtsForUser failed: %v", err)
		}
		for _, d := range debts {
			if d.ID == unapproved.ID {
				t.Error("Unapproved debt should not be listed as open")
			}
		}
		if len(debts) != 1 {
			t.Errorf("Expected 1 open debt for alice, got %d", len(debts))
		}
	})

	t.Run("ListDebts filter by borrower side", func(t *testing.T) {
		borrower := true
		debts, total, err := store.ListDebts(ctx,
			storage.DebtFilter{UserID: bob.ID, Borrower: &borrower}, storage.Page{})
		if err != nil {
			t.Fatalf("ListDebts failed: %v", err)
		}
		if total != 1 || len(debts) != 1 {
			t.Fatalf("Expected 1 borrower debt for bob, got total=%d len=%d", total, len(debts))
		}
		if debts[0].ID != debtAB.ID {
			t.Errorf("Unexpected debt: %s", debts[0].ID)
		}
	})

	t.Run("DebtsWithReminderBetween", func(t *testing.T) {
		reminded := newDebt(alice, carol, "5", true)
		reminded.RemindAt = 1_000_000
		if err := store.UpdateDebt(ctx, reminded); err != nil {
			t.Fatalf("UpdateDebt failed: %v", err)
		}

		debts, err := store.DebtsWithReminderBetween(ctx, 999_999, 1_000_001)
		if err != nil {
			t.Fatalf("DebtsWithReminderBetween failed: %v", err)
		}
		if len(debts) != 1 || debts[0].ID != reminded.ID {
			t.Errorf("Expected the reminded debt, got %d debts", len(debts))
		}
	})
}

func TestSQLiteStoreAcceptTransaction(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")
	usd := usdID(t, store)

	group := &models.Group{Name: "Pair", Members: []string{alice.ID, bob.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	amount := decimal.RequireFromString("100")
	debt := &models.Debt{
		LenderID:   alice.ID,
		BorrowerID: bob.ID,
		GroupID:    group.ID,
		CurrencyID: usd,
		Amount:     amount,
		Remainder:  amount,
		Approved:   true,
	}
	if err := store.CreateDebt(ctx, debt); err != nil {
		t.Fatalf("CreateDebt failed: %v", err)
	}

	pay := func(amount string) *models.Transaction {
		txn := &models.Transaction{
			DebtID: debt.ID,
			Amount: decimal.RequireFromString(amount),
		}
		if err := store.CreateTransaction(ctx, txn); err != nil {
			t.Fatalf("CreateTransaction failed: %v", err)
		}
		return txn
	}

	t.Run("Partial repayment reduces remainder", func(t *testing.T) {
		txn := pay("40")
		if err := store.AcceptTransaction(ctx, txn.ID); err != nil {
			t.Fatalf("AcceptTransaction failed: %v", err)
		}

		got, err := store.GetDebt(ctx, debt.ID)
		if err != nil {
			t.Fatalf("GetDebt failed: %v", err)
		}
		if !got.Remainder.Equal(decimal.RequireFromString("60")) {
			t.Errorf("Remainder mismatch: got %s, want 60", got.Remainder)
		}
		if got.Completed {
			t.Error("Debt should not be completed yet")
		}

		gotTxn, err := store.GetTransaction(ctx, txn.ID)
		if err != nil {
			t.Fatalf("GetTransaction failed: %v", err)
		}
		if !gotTxn.Approved {
			t.Error("Transaction should be approved")
		}
	})

	t.Run("Full repayment completes the debt", func(t *testing.T) {
		txn := pay("60")
		if err := store.AcceptTransaction(ctx, txn.ID); err != nil {
			t.Fatalf("AcceptTransaction failed: %v", err)
		}

		got, err := store.GetDebt(ctx, debt.ID)
		if err != nil {
			t.Fatalf("GetDebt failed: %v", err)
		}
		if !got.Remainder.IsZero() {
			t.Errorf("Remainder mismatch: got %s, want 0", got.Remainder)
		}
		if !got.Completed {
			t.Error("Debt should be completed at zero remainder")
		}
	})

	t.Run("ListTransactions incoming side", func(t *testing.T) {
		incoming := true
		txns, total, err := store.ListTransactions(ctx,
			storage.TransactionFilter{UserID: alice.ID, Incoming: &incoming}, storage.Page{})
		if err != nil {
			t.Fatalf("ListTransactions failed: %v", err)
		}
		if total != 2 || len(txns) != 2 {
			t.Errorf("Expected 2 incoming transactions, got total=%d len=%d", total, len(txns))
		}
	})
}

func TestSQLiteStoreApplyOptimization(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")
	carol := createTestUser(t, store, "carol")
	usd := usdID(t, store)

	group := &models.Group{Name: "Trip", Members: []string{alice.ID, bob.ID, carol.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	mk := func(lender, borrower *models.User, amount string) *models.Debt {
		d := decimal.RequireFromString(amount)
		debt := &models.Debt{
			LenderID:   lender.ID,
			BorrowerID: borrower.ID,
			GroupID:    group.ID,
			CurrencyID: usd,
			Amount:     d,
			Remainder:  d,
			Approved:   true,
		}
		if err := store.CreateDebt(ctx, debt); err != nil {
			t.Fatalf("CreateDebt failed: %v", err)
		}
		return debt
	}
	old1 := mk(alice, bob, "50")
	old2 := mk(bob, carol, "50")

	request := &models.OptimizationRequest{
		GroupID:     group.ID,
		InitiatorID: alice.ID,
		Status:      models.OptimizationStatusReady,
		Approvals: []models.OptimizationApproval{
			{UserID: bob.ID, Approved: true},
			{UserID: carol.ID, Approved: true},
		},
	}
	if err := store.CreateOptimizationRequest(ctx, request); err != nil {
		t.Fatalf("CreateOptimizationRequest failed: %v", err)
	}

	replacement := decimal.RequireFromString("50")
	newDebt := &models.Debt{
		LenderID:   alice.ID,
		BorrowerID: carol.ID,
		GroupID:    group.ID,
		CurrencyID: usd,
		Amount:     replacement,
		Remainder:  replacement,
		Approved:   true,
	}

	err := store.ApplyOptimization(ctx, request.ID, []string{old1.ID, old2.ID}, []*models.Debt{newDebt})
	if err != nil {
		t.Fatalf("ApplyOptimization failed: %v", err)
	}

	for _, id := range []string{old1.ID, old2.ID} {
		got, err := store.GetDebt(ctx, id)
		if err != nil {
			t.Fatalf("GetDebt failed: %v", err)
		}
		if !got.Completed || !got.Remainder.IsZero() {
			t.Errorf("Superseded debt %s should be completed with zero remainder", id)
		}
	}

	got, err := store.GetDebt(ctx, newDebt.ID)
	if err != nil {
		t.Fatalf("GetDebt failed for replacement: %v", err)
	}
	if !got.Approved || got.Completed {
		t.Error("Replacement debt should be approved and open")
	}

	gotReq, err := store.GetOptimizationRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetOptimizationRequest failed: %v", err)
	}
	if gotReq.Status != models.OptimizationStatusOptimized {
		t.Errorf("Expected optimized status, got %s", gotReq.Status)
	}
	if len(gotReq.Approvals) != 2 {
		t.Errorf("Expected 2 approvals, got %d", len(gotReq.Approvals))
	}

	t.Run("Unknown request rolls everything back", func(t *testing.T) {
		extra := mk(alice, bob, "10")
		err := store.ApplyOptimization(ctx, "nonexistent-id", []string{extra.ID}, nil)
		if !errors.Is(err, storage.ErrNotFound) {
			t.Fatalf("Expected ErrNotFound, got %v", err)
		}

		got, err := store.GetDebt(ctx, extra.ID)
		if err != nil {
			t.Fatalf("GetDebt failed: %v", err)
		}
		if got.Completed {
			t.Error("Debt closure should have been rolled back")
		}
	})
}

func TestSQLiteStoreCompleteMerge(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")
	usd := usdID(t, store)

	group1 := &models.Group{Name: "One", Members: []string{alice.ID, bob.ID}}
	group2 := &models.Group{Name: "Two", Members: []string{alice.ID, bob.ID}}
	for _, g := range []*models.Group{group1, group2} {
		if err := store.CreateGroup(ctx, g); err != nil {
			t.Fatalf("CreateGroup failed: %v", err)
		}
	}

	amount := decimal.RequireFromString("30")
	debt := &models.Debt{
		LenderID:   alice.ID,
		BorrowerID: bob.ID,
		GroupID:    group1.ID,
		CurrencyID: usd,
		Amount:     amount,
		Remainder:  amount,
		Approved:   true,
	}
	if err := store.CreateDebt(ctx, debt); err != nil {
		t.Fatalf("CreateDebt failed: %v", err)
	}

	request := &models.MergeRequest{
		InitiatorID: alice.ID,
		NewName:     "Merged",
		Status:      models.MergeStatusReady,
		GroupIDs:    []string{group1.ID, group2.ID},
		Approvals:   []models.MergeApproval{{UserID: bob.ID, Approved: true}},
	}
	if err := store.CreateMergeRequest(ctx, request); err != nil {
		t.Fatalf("CreateMergeRequest failed: %v", err)
	}

	newGroup := &models.Group{Name: "Merged", Members: []string{alice.ID, bob.ID}}
	if err := store.CompleteMerge(ctx, request, newGroup); err != nil {
		t.Fatalf("CompleteMerge failed: %v", err)
	}

	if _, err := store.GetGroup(ctx, group1.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected old group to be gone, got %v", err)
	}

	movedDebt, err := store.GetDebt(ctx, debt.ID)
	if err != nil {
		t.Fatalf("GetDebt failed: %v", err)
	}
	if movedDebt.GroupID != newGroup.ID {
		t.Errorf("Debt should be moved to the merged group, got %s", movedDebt.GroupID)
	}

	gotReq, err := store.GetMergeRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetMergeRequest failed: %v", err)
	}
	if gotReq.Status != models.MergeStatusCompleted {
		t.Errorf("Expected completed status, got %s", gotReq.Status)
	}
}

func TestSQLiteStoreNotifications(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	alice := createTestUser(t, store, "alice")
	bob := createTestUser(t, store, "bob")
	usd := usdID(t, store)

	group := &models.Group{Name: "Pair", Members: []string{alice.ID, bob.ID}}
	if err := store.CreateGroup(ctx, group); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}

	amount := decimal.RequireFromString("20")
	debt := &models.Debt{
		LenderID:   alice.ID,
		BorrowerID: bob.ID,
		GroupID:    group.ID,
		CurrencyID: usd,
		Amount:     amount,
		Remainder:  amount,
		Approved:   true,
	}
	if err := store.CreateDebt(ctx, debt); err != nil {
		t.Fatalf("CreateDebt failed: %v", err)
	}

	notification := &models.Notification{DebtID: debt.ID, Message: "Debt due soon"}
	if err := store.CreateNotifications(ctx, []*models.Notification{notification}); err != nil {
		t.Fatalf("CreateNotifications failed: %v", err)
	}

	unread, total, err := store.ListUnreadNotifications(ctx, bob.ID, storage.Page{})
	if err != nil {
		t.Fatalf("ListUnreadNotifications failed: %v", err)
	}
	if total != 1 || len(unread) != 1 {
		t.Fatalf("Expected 1 unread notification, got total=%d len=%d", total, len(unread))
	}
	if unread[0].Message != "Debt due soon" {
		t.Errorf("Message mismatch: got %s", unread[0].Message)
	}

	if err := store.MarkNotificationRead(ctx, notification.ID); err != nil {
		t.Fatalf("MarkNotificationRead failed: %v", err)
	}

	_, total, err = store.ListUnreadNotifications(ctx, bob.ID, storage.Page{})
	if err != nil {
		t.Fatalf("ListUnreadNotifications failed: %v", err)
	}
	if total != 0 {
		t.Errorf("Expected no unread notifications, got %d", total)
	}
}
