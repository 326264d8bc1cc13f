package ledger_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/ledger"
	"github.com/sentra-ppob/api/internal/store/memory"
)

func TestRecordExpense(t *testing.T) {
	repo := memory.New()
	svc := ledger.NewExpenseService(repo, &spyRecorder{})

	exp, entry, err := svc.Record(context.Background(), kasirActor(), ledger.RecordExpenseParams{
		Category:    enum.ExpenseCategoryResellerDeposit,
		Description: "  topup saldo server  ",
		Amount:      money("8000000"),
		ProofRef:    "trf-123",
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if exp.Description != "topup saldo server" {
		t.Errorf("description = %q, not trimmed", exp.Description)
	}
	if entry.ID != exp.EntryID {
		t.Error("entry not linked to expense")
	}
	if entry.Status != enum.EntryStatusPending {
		t.Errorf("entry status = %s, want PENDING", entry.Status)
	}
	if entry.Direction != enum.DirectionOutflow {
		t.Errorf("entry direction = %s, want OUTFLOW", entry.Direction)
	}
	if entry.Source != enum.EntrySourceCustodian {
		t.Errorf("entry source = %s, want CUSTODIAN", entry.Source)
	}
	if entry.ReportID != uuid.Nil {
		t.Errorf("entry report = %s, want nil for custodian expense", entry.ReportID)
	}
	if !entry.Amount.Equal(money("8000000")) {
		t.Errorf("entry amount = %s, want 8000000", entry.Amount)
	}
}

func TestRecordExpenseValidation(t *testing.T) {
	svc := ledger.NewExpenseService(memory.New(), &spyRecorder{})

	valid := ledger.RecordExpenseParams{
		Category:    enum.ExpenseCategoryOther,
		Description: "listrik ruko",
		Amount:      money("150000"),
	}
	cases := []struct {
		name   string
		mutate func(*ledger.RecordExpenseParams)
	}{
		{"unknown category", func(p *ledger.RecordExpenseParams) { p.Category = "GAJI" }},
		{"empty description", func(p *ledger.RecordExpenseParams) { p.Description = "  " }},
		{"zero amount", func(p *ledger.RecordExpenseParams) { p.Amount = decimal.Zero }},
		{"negative amount", func(p *ledger.RecordExpenseParams) { p.Amount = money("-5000") }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := valid
			tc.mutate(&p)
			if _, _, err := svc.Record(context.Background(), kasirActor(), p); !errors.Is(err, ledger.ErrValidation) {
				t.Errorf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestRemoveExpense(t *testing.T) {
	repo := memory.New()
	svc := ledger.NewExpenseService(repo, &spyRecorder{})
	vsvc := ledger.NewVerificationService(repo, &spyRecorder{}, ledger.RoleAuthorizer{})
	ctx := context.Background()

	exp, entry, err := svc.Record(ctx, kasirActor(), ledger.RecordExpenseParams{
		Category:    enum.ExpenseCategoryBankDeposit,
		Description: "setor BCA",
		Amount:      money("500000"),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}

	if err := svc.Remove(ctx, kasirActor(), exp.ID); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	// derived entry goes with it
	if _, err := vsvc.Get(ctx, entry.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("entry after remove err = %v, want ErrNotFound", err)
	}
	if err := svc.Remove(ctx, kasirActor(), exp.ID); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("second remove err = %v, want ErrNotFound", err)
	}
}

func TestRemoveVerifiedExpense(t *testing.T) {
	repo := memory.New()
	svc := ledger.NewExpenseService(repo, &spyRecorder{})
	vsvc := ledger.NewVerificationService(repo, &spyRecorder{}, ledger.RoleAuthorizer{})
	ctx := context.Background()

	exp, entry, err := svc.Record(ctx, kasirActor(), ledger.RecordExpenseParams{
		Category:    enum.ExpenseCategoryBankDeposit,
		Description: "setor BCA",
		Amount:      money("500000"),
	})
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if _, err := vsvc.Verify(ctx, financeActor(), entry.ID); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	if err := svc.Remove(ctx, kasirActor(), exp.ID); !errors.Is(err, ledger.ErrImmutableEntry) {
		t.Errorf("err = %v, want ErrImmutableEntry", err)
	}
}
