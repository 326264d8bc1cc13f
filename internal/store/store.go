// Package store defines the storage collaborator contract for the
// reconciliation ledger. Implementations must make every method an atomic
// state transition: the uniqueness and status guards noted per method are
// check-and-set, never read-then-write, and list methods return snapshots.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentra-ppob/api/internal/domain"
)

var (
	// ErrNotFound means the referenced entity does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a uniqueness guard rejected an insert
	// (e.g. a second deposit for the same report).
	ErrDuplicate = errors.New("duplicate")
	// ErrStale means a status guard failed: the entity exists but is no
	// longer in the state the operation requires.
	ErrStale = errors.New("stale state")
	// ErrEmpty means a non-emptiness guard failed: the draft report has no
	// line items left at submit time.
	ErrEmpty = errors.New("empty")
)

// ReportFilter narrows ListReports. Zero values mean "any".
// From/To bound BusinessDate, To exclusive.
type ReportFilter struct {
	OutletID uuid.UUID
	Status   string
	From     time.Time
	To       time.Time
}

// EntryFilter narrows ListEntries. From/To bound OccurredAt, To exclusive.
type EntryFilter struct {
	Status    string
	Direction string
	From      time.Time
	To        time.Time
}

// ActivityFilter narrows ListActivity. From/To bound Timestamp, To exclusive.
type ActivityFilter struct {
	Role string
	Type string
	From time.Time
	To   time.Time
}

type Repository interface {
	// Users
	CreateUser(ctx context.Context, user domain.User) error
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// Outlet daily reports. Item mutations recompute the parent total in
	// the same atomic step and fail with ErrStale once the report left
	// DRAFT. SubmitReport is a DRAFT→SUBMITTED compare-and-set that also
	// guards non-emptiness in the same step: submitting a draft with no
	// line items fails with ErrEmpty, so a concurrent RemoveLineItem can
	// never race an empty report into SUBMITTED.
	CreateReport(ctx context.Context, report domain.OutletReport) (domain.OutletReport, error)
	GetReport(ctx context.Context, id uuid.UUID) (domain.OutletReport, error)
	ListReports(ctx context.Context, f ReportFilter) ([]domain.OutletReport, error)
	AddLineItem(ctx context.Context, reportID uuid.UUID, item domain.SalesLineItem) (domain.OutletReport, error)
	UpdateLineItem(ctx context.Context, reportID uuid.UUID, item domain.SalesLineItem) (domain.OutletReport, error)
	RemoveLineItem(ctx context.Context, reportID, itemID uuid.UUID) (domain.OutletReport, error)
	SubmitReport(ctx context.Context, id uuid.UUID, at time.Time) (domain.OutletReport, error)

	// Custody. CreateDeposit inserts the deposit and its derived pending
	// inflow entry atomically; it is insert-if-absent keyed by
	// deposit.ReportID and fails with ErrDuplicate on a second pull.
	// UpdateDeposit also retargets the linked entry amount/proof and fails
	// with ErrStale once that entry is no longer PENDING.
	CreateDeposit(ctx context.Context, dep domain.CashDeposit, entry domain.CashflowEntry) error
	GetDeposit(ctx context.Context, id uuid.UUID) (domain.CashDeposit, error)
	ListDeposits(ctx context.Context, from, to time.Time) ([]domain.CashDeposit, error)
	UpdateDeposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal, proofRef string) (domain.CashDeposit, error)

	// Expenses. CreateExpense inserts the expense and its derived pending
	// outflow entry atomically. DeleteExpense removes both and fails with
	// ErrStale once the entry is no longer PENDING.
	CreateExpense(ctx context.Context, exp domain.ExpenseEntry, entry domain.CashflowEntry) error
	ListExpenses(ctx context.Context, from, to time.Time) ([]domain.ExpenseEntry, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error

	// Cashflow entries. FinalizeEntry is a PENDING→status compare-and-set;
	// a concurrent second finalization observes ErrStale.
	GetEntry(ctx context.Context, id uuid.UUID) (domain.CashflowEntry, error)
	ListEntries(ctx context.Context, f EntryFilter) ([]domain.CashflowEntry, error)
	FinalizeEntry(ctx context.Context, id uuid.UUID, status, verifiedBy, reason string, at time.Time) (domain.CashflowEntry, error)

	// Activity log, append-only.
	AppendActivity(ctx context.Context, ev domain.ActivityEvent) error
	ListActivity(ctx context.Context, f ActivityFilter) ([]domain.ActivityEvent, error)
}
