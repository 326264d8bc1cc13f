package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentra-ppob/api/internal/audit"
	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
)

// ExpenseStore defines the repository methods the expense service needs.
// Satisfied by store.Repository; narrow interface for testability.
type ExpenseStore interface {
	CreateExpense(ctx context.Context, exp domain.ExpenseEntry, entry domain.CashflowEntry) error
	ListExpenses(ctx context.Context, from, to time.Time) ([]domain.ExpenseEntry, error)
	DeleteExpense(ctx context.Context, id uuid.UUID) error
}

// ExpenseService records custodian cash outflows. Each expense exists only
// together with its derived pending outflow entry; removing one while still
// pending removes both.
type ExpenseService struct {
	store ExpenseStore
	audit audit.Recorder
}

// NewExpenseService creates a new ExpenseService.
func NewExpenseService(s ExpenseStore, a audit.Recorder) *ExpenseService {
	return &ExpenseService{store: s, audit: a}
}

// RecordExpenseParams is the validated input for recording an expense.
type RecordExpenseParams struct {
	Category    string
	Description string
	Amount      decimal.Decimal
	ProofRef    string
}

// Record creates an expense and its pending outflow cashflow entry.
func (s *ExpenseService) Record(ctx context.Context, actor domain.Actor, p RecordExpenseParams) (domain.ExpenseEntry, domain.CashflowEntry, error) {
	if !enum.IsValidExpenseCategory(p.Category) {
		return domain.ExpenseEntry{}, domain.CashflowEntry{}, validationf("unknown expense category %q", p.Category)
	}
	if strings.TrimSpace(p.Description) == "" {
		return domain.ExpenseEntry{}, domain.CashflowEntry{}, validationf("description is required")
	}
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return domain.ExpenseEntry{}, domain.CashflowEntry{}, validationf("amount must be positive")
	}

	now := time.Now()
	exp := domain.ExpenseEntry{
		ID:          uuid.New(),
		Category:    p.Category,
		Description: strings.TrimSpace(p.Description),
		Amount:      p.Amount,
		ProofRef:    p.ProofRef,
		EntryID:     uuid.New(),
		CreatedBy:   actor.ID,
		CreatedAt:   now,
	}
	entry := domain.CashflowEntry{
		ID:          exp.EntryID,
		OccurredAt:  now,
		Source:      enum.EntrySourceCustodian,
		Direction:   enum.DirectionOutflow,
		Category:    exp.Category,
		Description: exp.Description,
		Amount:      exp.Amount,
		Status:      enum.EntryStatusPending,
		ProofRef:    exp.ProofRef,
		SourceID:    exp.ID,
		CreatedAt:   now,
	}
	if err := s.store.CreateExpense(ctx, exp, entry); err != nil {
		return domain.ExpenseEntry{}, domain.CashflowEntry{}, fmt.Errorf("create expense: %w", err)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeCreate,
		Action:    "recorded expense",
		EntityID:  exp.ID,
		Detail:    fmt.Sprintf("%s: %s, Rp %s", exp.Category, exp.Description, exp.Amount.StringFixed(0)),
	})
	return exp, entry, nil
}

// Remove deletes an expense and its derived entry while the entry is still
// pending. After verification or rejection the pair is immutable.
func (s *ExpenseService) Remove(ctx context.Context, actor domain.Actor, id uuid.UUID) error {
	if err := s.store.DeleteExpense(ctx, id); err != nil {
		return mapStoreErr(err, ErrImmutableEntry)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeUpdate,
		Action:    "removed expense",
		EntityID:  id,
	})
	return nil
}

// List returns expenses created in the given date range.
func (s *ExpenseService) List(ctx context.Context, from, to time.Time) ([]domain.ExpenseEntry, error) {
	return s.store.ListExpenses(ctx, from, to)
}
