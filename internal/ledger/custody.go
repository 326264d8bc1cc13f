package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentra-ppob/api/internal/audit"
	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/store"
)

// CustodyStore defines the repository methods the custody service needs.
// Satisfied by store.Repository; narrow interface for testability.
type CustodyStore interface {
	GetReport(ctx context.Context, id uuid.UUID) (domain.OutletReport, error)
	ListReports(ctx context.Context, f store.ReportFilter) ([]domain.OutletReport, error)
	CreateDeposit(ctx context.Context, dep domain.CashDeposit, entry domain.CashflowEntry) error
	GetDeposit(ctx context.Context, id uuid.UUID) (domain.CashDeposit, error)
	ListDeposits(ctx context.Context, from, to time.Time) ([]domain.CashDeposit, error)
	UpdateDeposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, proofRef string) (domain.CashDeposit, error)
	ListExpenses(ctx context.Context, from, to time.Time) ([]domain.ExpenseEntry, error)
}

// CustodyService converts submitted outlet reports into custodial cash
// deposits. A report can be pulled at most once; the guard is an atomic
// insert-if-absent in the store, so two concurrent pulls cannot both succeed.
type CustodyService struct {
	store CustodyStore
	audit audit.Recorder
}

// NewCustodyService creates a new CustodyService.
func NewCustodyService(s CustodyStore, a audit.Recorder) *CustodyService {
	return &CustodyService{store: s, audit: a}
}

// Pull takes custody of a submitted report's cash. It creates the deposit
// (amount = report total) and, in the same atomic step, the pending inflow
// cashflow entry the finance role will later resolve.
func (s *CustodyService) Pull(ctx context.Context, actor domain.Actor, reportID uuid.UUID) (domain.CashDeposit, domain.CashflowEntry, error) {
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return domain.CashDeposit{}, domain.CashflowEntry{}, mapStoreErr(err, nil)
	}
	if report.Status != enum.ReportStatusSubmitted {
		return domain.CashDeposit{}, domain.CashflowEntry{}, ErrNotSubmitted
	}

	now := time.Now()
	dep := domain.CashDeposit{
		ID:         uuid.New(),
		ReportID:   report.ID,
		OutletName: report.OutletName,
		Amount:     report.Total,
		ProofRef:   report.ProofRef,
		EntryID:    uuid.New(),
		CreatedBy:  actor.ID,
		CreatedAt:  now,
	}
	entry := domain.CashflowEntry{
		ID:          dep.EntryID,
		OccurredAt:  now,
		Source:      enum.EntrySourceOutlet,
		Direction:   enum.DirectionInflow,
		Category:    salesCategoryLabel(report.Items),
		Description: fmt.Sprintf("%s - total penjualan", report.OutletName),
		Amount:      report.Total,
		Status:      enum.EntryStatusPending,
		ProofRef:    report.ProofRef,
		ReportID:    report.ID,
		SourceID:    dep.ID,
		CreatedAt:   now,
	}
	if err := s.store.CreateDeposit(ctx, dep, entry); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return domain.CashDeposit{}, domain.CashflowEntry{}, ErrAlreadyPulled
		}
		return domain.CashDeposit{}, domain.CashflowEntry{}, mapStoreErr(err, nil)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeCreate,
		Action:    fmt.Sprintf("pulled report from %s", report.OutletName),
		EntityID:  dep.ID,
		Detail:    fmt.Sprintf("deposit Rp %s", dep.Amount.StringFixed(0)),
	})
	return dep, entry, nil
}

// EditDeposit adjusts the custodial amount or proof reference while the
// derived entry is still pending. An amount that drifts from the source
// report total additionally raises a system cash-variance alert so finance
// sees the discrepancy in the activity log.
func (s *CustodyService) EditDeposit(ctx context.Context, actor domain.Actor, depositID uuid.UUID, amount decimal.Decimal, proofRef string) (domain.CashDeposit, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return domain.CashDeposit{}, validationf("deposit amount must be positive")
	}

	dep, err := s.store.UpdateDeposit(ctx, depositID, amount, proofRef)
	if err != nil {
		return domain.CashDeposit{}, mapStoreErr(err, ErrImmutableEntry)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeUpdate,
		Action:    "edited cash deposit",
		EntityID:  dep.ID,
		Detail:    fmt.Sprintf("amount Rp %s", dep.Amount.StringFixed(0)),
	})

	if report, err := s.store.GetReport(ctx, dep.ReportID); err == nil && !dep.Amount.Equal(report.Total) {
		sys := domain.SystemActor()
		s.audit.Record(ctx, domain.ActivityEvent{
			ActorName: sys.Name,
			ActorRole: sys.Role,
			Type:      enum.ActivityTypeAlert,
			Action:    fmt.Sprintf("cash variance detected at %s", dep.OutletName),
			EntityID:  dep.ID,
			Detail:    fmt.Sprintf("deposit Rp %s vs report Rp %s", dep.Amount.StringFixed(0), report.Total.StringFixed(0)),
		})
	}
	return dep, nil
}

// SubmittedReports lists reports the custodian can act on in the given date
// range, together with their pull state.
func (s *CustodyService) SubmittedReports(ctx context.Context, from, to time.Time) ([]domain.OutletReport, error) {
	return s.store.ListReports(ctx, store.ReportFilter{
		Status: enum.ReportStatusSubmitted,
		From:   from,
		To:     to,
	})
}

// Deposits lists deposits created in the given date range.
func (s *CustodyService) Deposits(ctx context.Context, from, to time.Time) ([]domain.CashDeposit, error) {
	return s.store.ListDeposits(ctx, from, to)
}

// CustodySummary is the kasir day view: cash taken into custody, cash paid
// out, and the resulting balance.
type CustodySummary struct {
	TotalDeposits decimal.Decimal
	TotalExpenses decimal.Decimal
	Balance       decimal.Decimal
	DepositCount  int
	ExpenseCount  int
}

// Summary computes the custody totals for the given date range.
func (s *CustodyService) Summary(ctx context.Context, from, to time.Time) (CustodySummary, error) {
	deposits, err := s.store.ListDeposits(ctx, from, to)
	if err != nil {
		return CustodySummary{}, err
	}
	expenses, err := s.store.ListExpenses(ctx, from, to)
	if err != nil {
		return CustodySummary{}, err
	}

	sum := CustodySummary{
		TotalDeposits: decimal.Zero,
		TotalExpenses: decimal.Zero,
		DepositCount:  len(deposits),
		ExpenseCount:  len(expenses),
	}
	for _, d := range deposits {
		sum.TotalDeposits = sum.TotalDeposits.Add(d.Amount)
	}
	for _, e := range expenses {
		sum.TotalExpenses = sum.TotalExpenses.Add(e.Amount)
	}
	sum.Balance = sum.TotalDeposits.Sub(sum.TotalExpenses)
	return sum, nil
}

// salesCategoryLabel names the inflow entry after the report's dominant sales
// category. Per-category traceability stays on the line items themselves; the
// entry label is only a display grouping.
func salesCategoryLabel(items []domain.SalesLineItem) string {
	totals := make(map[string]decimal.Decimal)
	for _, it := range items {
		totals[it.Category] = totals[it.Category].Add(it.Total)
	}
	best, bestTotal := "Lainnya", decimal.Zero
	for cat, total := range totals {
		if total.GreaterThan(bestTotal) || (total.Equal(bestTotal) && cat < best) {
			best, bestTotal = cat, total
		}
	}
	return "Penjualan " + best
}
