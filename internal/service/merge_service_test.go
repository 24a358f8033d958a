package service

import (
	"context"
	"errors"
	"testing"

	"github.com/nurlan/debtnet/internal/models"
	"github.com/nurlan/debtnet/internal/storage"
)

func TestMergeLifecycle(t *testing.T) {
	store := newServiceStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	carol := seedUser(t, store, "carol")
	usd := currencyID(t, store, "USD")

	group1 := seedGroup(t, store, alice, bob)
	group2 := seedGroup(t, store, alice, carol)
	debt := seedDebt(t, store, group1, alice, bob, usd, "30")

	svc := NewMergeService(store)

	t.Run("Initiator must belong to every group", func(t *testing.T) {
		_, err := svc.Request(ctx, bob.ID, "Merged", "", []string{group1.ID, group2.ID})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("Expected ErrForbidden, got %v", err)
		}
	})

	t.Run("Single group is rejected", func(t *testing.T) {
		_, err := svc.Request(ctx, alice.ID, "Merged", "", []string{group1.ID})
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Expected ErrInvalidInput, got %v", err)
		}
	})

	request, err := svc.Request(ctx, alice.ID, "Merged", "", []string{group1.ID, group2.ID})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}
	if len(request.Approvals) != 2 {
		t.Fatalf("Expected approvals for bob and carol, got %d", len(request.Approvals))
	}

	// bob and carol both approve; the final approval completes the merge.
	for _, approval := range request.Approvals {
		if _, err := svc.Approve(ctx, approval.UserID, approval.ID); err != nil {
			t.Fatalf("Approve failed: %v", err)
		}
	}

	completed, err := store.GetMergeRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetMergeRequest failed: %v", err)
	}
	if completed.Status != models.MergeStatusCompleted {
		t.Fatalf("Expected completed status, got %s", completed.Status)
	}

	if _, err := store.GetGroup(ctx, group1.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Old group should be deleted, got %v", err)
	}

	movedDebt, err := store.GetDebt(ctx, debt.ID)
	if err != nil {
		t.Fatalf("GetDebt failed: %v", err)
	}
	if movedDebt.GroupID == group1.ID {
		t.Error("Debt should have moved to the merged group")
	}

	newGroup, err := store.GetGroup(ctx, movedDebt.GroupID)
	if err != nil {
		t.Fatalf("GetGroup failed: %v", err)
	}
	if newGroup.Name != "Merged" {
		t.Errorf("New group name mismatch: got %s", newGroup.Name)
	}
	if len(newGroup.Members) != 3 {
		t.Errorf("Expected union of members (3), got %d", len(newGroup.Members))
	}
}

func TestMergeDeclineIsFinal(t *testing.T) {
	store := newServiceStore(t)
	ctx := context.Background()

	alice := seedUser(t, store, "alice")
	bob := seedUser(t, store, "bob")
	carol := seedUser(t, store, "carol")

	group1 := seedGroup(t, store, alice, bob)
	group2 := seedGroup(t, store, alice, carol)

	svc := NewMergeService(store)

	request, err := svc.Request(ctx, alice.ID, "Merged", "", []string{group1.ID, group2.ID})
	if err != nil {
		t.Fatalf("Request failed: %v", err)
	}

	if err := svc.Decline(ctx, request.Approvals[0].UserID, request.Approvals[0].ID); err != nil {
		t.Fatalf("Decline failed: %v", err)
	}

	declined, err := store.GetMergeRequest(ctx, request.ID)
	if err != nil {
		t.Fatalf("GetMergeRequest failed: %v", err)
	}
	if declined.Status != models.MergeStatusDeclined {
		t.Fatalf("Expected declined status, got %s", declined.Status)
	}

	// The other member's approval no longer matters.
	_, err = svc.Approve(ctx, request.Approvals[1].UserID, request.Approvals[1].ID)
	if !errors.Is(err, ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}

	if _, err := store.GetGroup(ctx, group1.ID); err != nil {
		t.Errorf("Groups must survive a declined merge, got %v", err)
	}
}
