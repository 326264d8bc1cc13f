// Package memory is the in-process Repository used for dev/demo mode and
// unit tests. A single RWMutex serializes writes, which makes every guard a
// true check-and-set; reads hand out copies so callers never alias internal
// state.
package memory

import (
	"context"
	"log"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/store"
)

type Store struct {
	mu              sync.RWMutex
	usersByUsername map[string]domain.User
	reports         map[uuid.UUID]*domain.OutletReport
	deposits        map[uuid.UUID]*domain.CashDeposit
	depositByReport map[uuid.UUID]uuid.UUID
	expenses        map[uuid.UUID]*domain.ExpenseEntry
	entries         map[uuid.UUID]*domain.CashflowEntry
	activity        []domain.ActivityEvent
}

// New creates an empty store.
func New() *Store {
	return &Store{
		usersByUsername: make(map[string]domain.User),
		reports:         make(map[uuid.UUID]*domain.OutletReport),
		deposits:        make(map[uuid.UUID]*domain.CashDeposit),
		depositByReport: make(map[uuid.UUID]uuid.UUID),
		expenses:        make(map[uuid.UUID]*domain.ExpenseEntry),
		entries:         make(map[uuid.UUID]*domain.CashflowEntry),
	}
}

// NewSeeded creates a store with one demo account per role. Passwords come
// from SEED_PASSWORD; without it a dev default is used with a warning. This
// path never runs in production (the backend uses PostgreSQL when
// DATABASE_URL is set).
func NewSeeded() *Store {
	s := New()

	password := os.Getenv("SEED_PASSWORD")
	if password == "" {
		password = "sentra123"
		log.Println("[memory-store] WARNING: using default dev password. Set SEED_PASSWORD to override.")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("[memory-store] hash seed password: %v", err)
	}

	outletID := uuid.New()
	now := time.Now()
	for _, u := range []struct {
		username string
		fullName string
		role     string
		outletID uuid.UUID
	}{
		{"loket1", "Loket 1", enum.UserRoleLoket, outletID},
		{"kasir", "Kasir Utama", enum.UserRoleKasir, uuid.Nil},
		{"finance", "Finance Admin", enum.UserRoleFinance, uuid.Nil},
		{"owner", "Owner", enum.UserRoleOwner, uuid.Nil},
	} {
		s.usersByUsername[u.username] = domain.User{
			ID:             uuid.New(),
			Username:       u.username,
			FullName:       u.fullName,
			HashedPassword: string(hash),
			Role:           u.role,
			OutletID:       u.outletID,
			CreatedAt:      now,
		}
	}
	return s
}

// --- Users ---

func (s *Store) CreateUser(_ context.Context, user domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.usersByUsername[user.Username]; ok {
		return store.ErrDuplicate
	}
	s.usersByUsername[user.Username] = user
	return nil
}

func (s *Store) GetUserByUsername(_ context.Context, username string) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.usersByUsername[username]
	if !ok {
		return domain.User{}, store.ErrNotFound
	}
	return u, nil
}

func (s *Store) GetUserByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.usersByUsername {
		if u.ID == id {
			return u, nil
		}
	}
	return domain.User{}, store.ErrNotFound
}

// --- Outlet reports ---

func (s *Store) CreateReport(_ context.Context, report domain.OutletReport) (domain.OutletReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := cloneReport(report)
	s.reports[report.ID] = &r
	return cloneReport(r), nil
}

func (s *Store) GetReport(_ context.Context, id uuid.UUID) (domain.OutletReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reports[id]
	if !ok {
		return domain.OutletReport{}, store.ErrNotFound
	}
	return cloneReport(*r), nil
}

func (s *Store) ListReports(_ context.Context, f store.ReportFilter) ([]domain.OutletReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.OutletReport, 0)
	for _, r := range s.reports {
		if f.OutletID != uuid.Nil && r.OutletID != f.OutletID {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if !inRange(r.BusinessDate, f.From, f.To) {
			continue
		}
		out = append(out, cloneReport(*r))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) AddLineItem(_ context.Context, reportID uuid.UUID, item domain.SalesLineItem) (domain.OutletReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[reportID]
	if !ok {
		return domain.OutletReport{}, store.ErrNotFound
	}
	if r.Status != enum.ReportStatusDraft {
		return domain.OutletReport{}, store.ErrStale
	}
	r.Items = append(r.Items, item)
	recomputeTotal(r)
	return cloneReport(*r), nil
}

func (s *Store) UpdateLineItem(_ context.Context, reportID uuid.UUID, item domain.SalesLineItem) (domain.OutletReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[reportID]
	if !ok {
		return domain.OutletReport{}, store.ErrNotFound
	}
	if r.Status != enum.ReportStatusDraft {
		return domain.OutletReport{}, store.ErrStale
	}
	for i := range r.Items {
		if r.Items[i].ID == item.ID {
			r.Items[i] = item
			recomputeTotal(r)
			return cloneReport(*r), nil
		}
	}
	return domain.OutletReport{}, store.ErrNotFound
}

func (s *Store) RemoveLineItem(_ context.Context, reportID, itemID uuid.UUID) (domain.OutletReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[reportID]
	if !ok {
		return domain.OutletReport{}, store.ErrNotFound
	}
	if r.Status != enum.ReportStatusDraft {
		return domain.OutletReport{}, store.ErrStale
	}
	for i := range r.Items {
		if r.Items[i].ID == itemID {
			r.Items = append(r.Items[:i], r.Items[i+1:]...)
			recomputeTotal(r)
			return cloneReport(*r), nil
		}
	}
	return domain.OutletReport{}, store.ErrNotFound
}

func (s *Store) SubmitReport(_ context.Context, id uuid.UUID, at time.Time) (domain.OutletReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return domain.OutletReport{}, store.ErrNotFound
	}
	if r.Status != enum.ReportStatusDraft {
		return domain.OutletReport{}, store.ErrStale
	}
	if len(r.Items) == 0 {
		return domain.OutletReport{}, store.ErrEmpty
	}
	r.Status = enum.ReportStatusSubmitted
	t := at
	r.SubmittedAt = &t
	return cloneReport(*r), nil
}

// --- Custody ---

func (s *Store) CreateDeposit(_ context.Context, dep domain.CashDeposit, entry domain.CashflowEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.depositByReport[dep.ReportID]; ok {
		return store.ErrDuplicate
	}
	d := dep
	e := entry
	s.deposits[dep.ID] = &d
	s.depositByReport[dep.ReportID] = dep.ID
	s.entries[entry.ID] = &e
	return nil
}

func (s *Store) GetDeposit(_ context.Context, id uuid.UUID) (domain.CashDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.deposits[id]
	if !ok {
		return domain.CashDeposit{}, store.ErrNotFound
	}
	return *d, nil
}

func (s *Store) ListDeposits(_ context.Context, from, to time.Time) ([]domain.CashDeposit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CashDeposit, 0)
	for _, d := range s.deposits {
		if !inRange(d.CreatedAt, from, to) {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateDeposit(_ context.Context, id uuid.UUID, amount decimal.Decimal, proofRef string) (domain.CashDeposit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.deposits[id]
	if !ok {
		return domain.CashDeposit{}, store.ErrNotFound
	}
	e, ok := s.entries[d.EntryID]
	if !ok {
		return domain.CashDeposit{}, store.ErrNotFound
	}
	if e.Status != enum.EntryStatusPending {
		return domain.CashDeposit{}, store.ErrStale
	}
	d.Amount = amount
	e.Amount = amount
	if proofRef != "" {
		d.ProofRef = proofRef
		e.ProofRef = proofRef
	}
	return *d, nil
}

// --- Expenses ---

func (s *Store) CreateExpense(_ context.Context, exp domain.ExpenseEntry, entry domain.CashflowEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	x := exp
	e := entry
	s.expenses[exp.ID] = &x
	s.entries[entry.ID] = &e
	return nil
}

func (s *Store) ListExpenses(_ context.Context, from, to time.Time) ([]domain.ExpenseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ExpenseEntry, 0)
	for _, x := range s.expenses {
		if !inRange(x.CreatedAt, from, to) {
			continue
		}
		out = append(out, *x)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	x, ok := s.expenses[id]
	if !ok {
		return store.ErrNotFound
	}
	e, ok := s.entries[x.EntryID]
	if !ok {
		return store.ErrNotFound
	}
	if e.Status != enum.EntryStatusPending {
		return store.ErrStale
	}
	delete(s.expenses, id)
	delete(s.entries, x.EntryID)
	return nil
}

// --- Cashflow entries ---

func (s *Store) GetEntry(_ context.Context, id uuid.UUID) (domain.CashflowEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[id]
	if !ok {
		return domain.CashflowEntry{}, store.ErrNotFound
	}
	return cloneEntry(*e), nil
}

func (s *Store) ListEntries(_ context.Context, f store.EntryFilter) ([]domain.CashflowEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.CashflowEntry, 0)
	for _, e := range s.entries {
		if f.Status != "" && e.Status != f.Status {
			continue
		}
		if f.Direction != "" && e.Direction != f.Direction {
			continue
		}
		if !inRange(e.OccurredAt, f.From, f.To) {
			continue
		}
		out = append(out, cloneEntry(*e))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OccurredAt.Before(out[j].OccurredAt) })
	return out, nil
}

func (s *Store) FinalizeEntry(_ context.Context, id uuid.UUID, status, verifiedBy, reason string, at time.Time) (domain.CashflowEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return domain.CashflowEntry{}, store.ErrNotFound
	}
	if e.Status != enum.EntryStatusPending {
		return domain.CashflowEntry{}, store.ErrStale
	}
	e.Status = status
	e.VerifiedBy = verifiedBy
	e.RejectReason = reason
	t := at
	e.VerifiedAt = &t
	return cloneEntry(*e), nil
}

// --- Activity ---

func (s *Store) AppendActivity(_ context.Context, ev domain.ActivityEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activity = append(s.activity, ev)
	return nil
}

func (s *Store) ListActivity(_ context.Context, f store.ActivityFilter) ([]domain.ActivityEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ActivityEvent, 0)
	for _, ev := range s.activity {
		if f.Role != "" && ev.ActorRole != f.Role {
			continue
		}
		if f.Type != "" && ev.Type != f.Type {
			continue
		}
		if !inRange(ev.Timestamp, f.From, f.To) {
			continue
		}
		out = append(out, ev)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

// --- Helpers ---

func cloneReport(r domain.OutletReport) domain.OutletReport {
	out := r
	out.Items = make([]domain.SalesLineItem, len(r.Items))
	copy(out.Items, r.Items)
	if r.SubmittedAt != nil {
		t := *r.SubmittedAt
		out.SubmittedAt = &t
	}
	return out
}

func cloneEntry(e domain.CashflowEntry) domain.CashflowEntry {
	out := e
	if e.VerifiedAt != nil {
		t := *e.VerifiedAt
		out.VerifiedAt = &t
	}
	return out
}

func recomputeTotal(r *domain.OutletReport) {
	total := decimal.Zero
	for _, it := range r.Items {
		total = total.Add(it.Total)
	}
	r.Total = total
}

// inRange checks from <= t < to, with zero bounds meaning unbounded.
func inRange(t, from, to time.Time) bool {
	if !from.IsZero() && t.Before(from) {
		return false
	}
	if !to.IsZero() && !t.Before(to) {
		return false
	}
	return true
}
