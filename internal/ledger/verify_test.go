package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/ledger"
	"github.com/sentra-ppob/api/internal/store"
	"github.com/sentra-ppob/api/internal/store/memory"
)

// pendingEntry seeds one pending outflow entry through the expense service
// and returns its ID.
func pendingEntry(t *testing.T, repo *memory.Store) uuid.UUID {
	t.Helper()
	_, entry, err := ledger.NewExpenseService(repo, &spyRecorder{}).Record(context.Background(), kasirActor(), ledger.RecordExpenseParams{
		Category:    enum.ExpenseCategoryOther,
		Description: "biaya admin",
		Amount:      money("25000"),
	})
	if err != nil {
		t.Fatalf("seed entry: %v", err)
	}
	return entry.ID
}

func TestVerifyEntry(t *testing.T) {
	repo := memory.New()
	entryID := pendingEntry(t, repo)
	rec := &spyRecorder{}
	svc := ledger.NewVerificationService(repo, rec, ledger.RoleAuthorizer{})
	actor := financeActor()

	entry, err := svc.Verify(context.Background(), actor, entryID)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if entry.Status != enum.EntryStatusVerified {
		t.Errorf("status = %s, want VERIFIED", entry.Status)
	}
	if entry.VerifiedBy != actor.Name {
		t.Errorf("verified by = %q, want %q", entry.VerifiedBy, actor.Name)
	}
	if entry.VerifiedAt == nil {
		t.Error("VerifiedAt not set")
	}

	found := false
	for _, ev := range rec.events {
		if ev.Type == enum.ActivityTypeVerify && ev.EntityID == entryID {
			found = true
		}
	}
	if !found {
		t.Error("no VERIFY activity recorded")
	}
}

func TestVerifyRequiresFinanceRole(t *testing.T) {
	repo := memory.New()
	entryID := pendingEntry(t, repo)
	svc := ledger.NewVerificationService(repo, &spyRecorder{}, ledger.RoleAuthorizer{})
	ctx := context.Background()

	for _, actor := range []domain.Actor{loketActor(), kasirActor()} {
		if _, err := svc.Verify(ctx, actor, entryID); !errors.Is(err, ledger.ErrAuth) {
			t.Errorf("%s Verify err = %v, want ErrAuth", actor.Role, err)
		}
		if _, err := svc.Reject(ctx, actor, entryID, "salah"); !errors.Is(err, ledger.ErrAuth) {
			t.Errorf("%s Reject err = %v, want ErrAuth", actor.Role, err)
		}
	}

	owner := domain.Actor{ID: uuid.New(), Name: "Pak Haji", Role: enum.UserRoleOwner}
	if _, err := svc.Verify(ctx, owner, entryID); err != nil {
		t.Errorf("owner Verify err = %v, want nil", err)
	}
}

func TestVerifyTwice(t *testing.T) {
	repo := memory.New()
	entryID := pendingEntry(t, repo)
	svc := ledger.NewVerificationService(repo, &spyRecorder{}, ledger.RoleAuthorizer{})
	ctx := context.Background()

	if _, err := svc.Verify(ctx, financeActor(), entryID); err != nil {
		t.Fatalf("first Verify: %v", err)
	}
	if _, err := svc.Verify(ctx, financeActor(), entryID); !errors.Is(err, ledger.ErrEntryNotPending) {
		t.Errorf("second Verify err = %v, want ErrEntryNotPending", err)
	}
	if _, err := svc.Reject(ctx, financeActor(), entryID, "terlambat"); !errors.Is(err, ledger.ErrEntryNotPending) {
		t.Errorf("Reject after Verify err = %v, want ErrEntryNotPending", err)
	}
}

func TestRejectEntry(t *testing.T) {
	repo := memory.New()
	entryID := pendingEntry(t, repo)
	rec := &spyRecorder{}
	svc := ledger.NewVerificationService(repo, rec, ledger.RoleAuthorizer{})
	ctx := context.Background()

	if _, err := svc.Reject(ctx, financeActor(), entryID, "   "); !errors.Is(err, ledger.ErrEmptyReason) {
		t.Errorf("blank reason err = %v, want ErrEmptyReason", err)
	}

	entry, err := svc.Reject(ctx, financeActor(), entryID, "bukti transfer tidak ada")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if entry.Status != enum.EntryStatusRejected {
		t.Errorf("status = %s, want REJECTED", entry.Status)
	}
	if entry.RejectReason != "bukti transfer tidak ada" {
		t.Errorf("reason = %q", entry.RejectReason)
	}

	alerted := false
	for _, ev := range rec.events {
		if ev.Type == enum.ActivityTypeAlert && ev.EntityID == entryID {
			alerted = true
		}
	}
	if !alerted {
		t.Error("no ALERT activity recorded for rejection")
	}
}

func TestVerifyMissingEntry(t *testing.T) {
	svc := ledger.NewVerificationService(memory.New(), &spyRecorder{}, ledger.RoleAuthorizer{})
	if _, err := svc.Verify(context.Background(), financeActor(), uuid.New()); err == nil {
		t.Error("Verify of missing entry succeeded")
	}
}

func TestListEntriesFilter(t *testing.T) {
	repo := memory.New()
	svc := ledger.NewVerificationService(repo, &spyRecorder{}, ledger.RoleAuthorizer{})
	ctx := context.Background()

	first := pendingEntry(t, repo)
	pendingEntry(t, repo)
	if _, err := svc.Verify(ctx, financeActor(), first); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	pending, err := svc.List(ctx, store.EntryFilter{Status: enum.EntryStatusPending})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(pending) != 1 {
		t.Errorf("pending entries = %d, want 1", len(pending))
	}
	verified, err := svc.List(ctx, store.EntryFilter{Status: enum.EntryStatusVerified})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(verified) != 1 || verified[0].ID != first {
		t.Errorf("verified entries = %d, want the resolved one", len(verified))
	}
}
