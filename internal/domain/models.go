// Package domain holds the entities shared by the ledger core, the storage
// layer, and the HTTP surface. Amounts are rupiah as decimal values; IDs are
// UUIDs minted by the caller so storage implementations stay insert-only.
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// User is an authenticated back-office account. OutletID is uuid.Nil for
// roles that are not outlet-scoped (kasir, finance, owner).
type User struct {
	ID             uuid.UUID
	Username       string
	FullName       string
	HashedPassword string
	Role           string
	OutletID       uuid.UUID
	CreatedAt      time.Time
}

// Actor identifies who performed a ledger operation, for audit and
// verification attribution.
type Actor struct {
	ID   uuid.UUID
	Name string
	Role string
}

// SystemActor is the actor attached to events the system emits on its own,
// such as cash-variance alerts.
func SystemActor() Actor {
	return Actor{Name: "System", Role: "SYSTEM"}
}

// SalesLineItem is one product line of an outlet daily report.
// Total is derived (Quantity × UnitPrice) and recomputed on every edit.
type SalesLineItem struct {
	ID        uuid.UUID
	Name      string
	Category  string
	Quantity  int32
	UnitPrice decimal.Decimal
	Total     decimal.Decimal
}

// OutletReport is the per-outlet daily sales report. It is mutable only while
// in DRAFT; Total always equals the sum of its item totals.
type OutletReport struct {
	ID           uuid.UUID
	OutletID     uuid.UUID
	OutletName   string
	BusinessDate time.Time
	Shift        string
	Status       string
	Items        []SalesLineItem
	Total        decimal.Decimal
	Note         string
	ProofRef     string
	CreatedBy    uuid.UUID
	CreatedAt    time.Time
	SubmittedAt  *time.Time
}

// CashDeposit records custody of one submitted report's cash. Exactly one
// deposit may exist per report. EntryID links the pending inflow entry the
// pull created.
type CashDeposit struct {
	ID         uuid.UUID
	ReportID   uuid.UUID
	OutletName string
	Amount     decimal.Decimal
	ProofRef   string
	EntryID    uuid.UUID
	CreatedBy  uuid.UUID
	CreatedAt  time.Time
}

// ExpenseEntry is a custodian cash outflow, independent of any report.
type ExpenseEntry struct {
	ID          uuid.UUID
	Category    string
	Description string
	Amount      decimal.Decimal
	ProofRef    string
	EntryID     uuid.UUID
	CreatedBy   uuid.UUID
	CreatedAt   time.Time
}

// CashflowEntry is the unit the verification engine operates on. Status moves
// one way only: PENDING → VERIFIED or PENDING → REJECTED, then never again.
// ReportID is uuid.Nil for custodian-sourced entries; SourceID references the
// deposit or expense the entry was derived from.
type CashflowEntry struct {
	ID           uuid.UUID
	OccurredAt   time.Time
	Source       string
	Direction    string
	Category     string
	Description  string
	Amount       decimal.Decimal
	Status       string
	ProofRef     string
	ReportID     uuid.UUID
	SourceID     uuid.UUID
	VerifiedBy   string
	VerifiedAt   *time.Time
	RejectReason string
	CreatedAt    time.Time
}

// ActivityEvent is one append-only audit record. Events are never mutated or
// deleted and are totally ordered by Timestamp.
type ActivityEvent struct {
	ID        uuid.UUID
	Timestamp time.Time
	ActorName string
	ActorRole string
	Type      string
	Action    string
	EntityID  uuid.UUID
	Detail    string
}
