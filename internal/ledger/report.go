package ledger

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentra-ppob/api/internal/audit"
	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/store"
)

// ReportStore defines the repository methods the report service needs.
// Satisfied by store.Repository; narrow interface for testability.
type ReportStore interface {
	CreateReport(ctx context.Context, report domain.OutletReport) (domain.OutletReport, error)
	GetReport(ctx context.Context, id uuid.UUID) (domain.OutletReport, error)
	ListReports(ctx context.Context, f store.ReportFilter) ([]domain.OutletReport, error)
	AddLineItem(ctx context.Context, reportID uuid.UUID, item domain.SalesLineItem) (domain.OutletReport, error)
	UpdateLineItem(ctx context.Context, reportID uuid.UUID, item domain.SalesLineItem) (domain.OutletReport, error)
	RemoveLineItem(ctx context.Context, reportID, itemID uuid.UUID) (domain.OutletReport, error)
	SubmitReport(ctx context.Context, id uuid.UUID, at time.Time) (domain.OutletReport, error)
}

// ReportService owns the draft→submitted lifecycle of outlet daily reports.
type ReportService struct {
	store ReportStore
	audit audit.Recorder
}

// NewReportService creates a new ReportService.
func NewReportService(s ReportStore, a audit.Recorder) *ReportService {
	return &ReportService{store: s, audit: a}
}

// CreateReportParams is the validated input for opening a draft report.
type CreateReportParams struct {
	OutletID     uuid.UUID
	OutletName   string
	BusinessDate time.Time
	Shift        string
	Note         string
	ProofRef     string
}

// LineItemParams is the input for adding or editing a sales line item.
type LineItemParams struct {
	Name      string
	Category  string
	Quantity  int32
	UnitPrice decimal.Decimal
}

func (p LineItemParams) validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return validationf("item name is required")
	}
	if !enum.IsValidSalesCategory(p.Category) {
		return validationf("unknown sales category %q", p.Category)
	}
	if p.Quantity <= 0 {
		return validationf("quantity must be positive")
	}
	if p.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return validationf("unit price must be positive")
	}
	return nil
}

// Create opens a new draft report for the outlet.
func (s *ReportService) Create(ctx context.Context, actor domain.Actor, p CreateReportParams) (domain.OutletReport, error) {
	if p.OutletID == uuid.Nil {
		return domain.OutletReport{}, validationf("outlet is required")
	}
	if strings.TrimSpace(p.OutletName) == "" {
		return domain.OutletReport{}, validationf("outlet name is required")
	}
	if p.BusinessDate.IsZero() {
		return domain.OutletReport{}, validationf("business date is required")
	}

	report, err := s.store.CreateReport(ctx, domain.OutletReport{
		ID:           uuid.New(),
		OutletID:     p.OutletID,
		OutletName:   p.OutletName,
		BusinessDate: p.BusinessDate,
		Shift:        p.Shift,
		Status:       enum.ReportStatusDraft,
		Total:        decimal.Zero,
		Note:         p.Note,
		ProofRef:     p.ProofRef,
		CreatedBy:    actor.ID,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return domain.OutletReport{}, fmt.Errorf("create report: %w", err)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeCreate,
		Action:    "opened daily report draft",
		EntityID:  report.ID,
		Detail:    fmt.Sprintf("%s, shift %s", report.OutletName, report.Shift),
	})
	return report, nil
}

// Get returns a report with its line items.
func (s *ReportService) Get(ctx context.Context, id uuid.UUID) (domain.OutletReport, error) {
	report, err := s.store.GetReport(ctx, id)
	if err != nil {
		return domain.OutletReport{}, mapStoreErr(err, nil)
	}
	return report, nil
}

// List returns reports matching the filter, newest first.
func (s *ReportService) List(ctx context.Context, f store.ReportFilter) ([]domain.OutletReport, error) {
	return s.store.ListReports(ctx, f)
}

// AddItem appends a line item to a draft report. The item total and the
// report total are recomputed in the same step, keeping
// report.Total == Σ item.Total at all times.
func (s *ReportService) AddItem(ctx context.Context, actor domain.Actor, reportID uuid.UUID, p LineItemParams) (domain.OutletReport, error) {
	if err := p.validate(); err != nil {
		return domain.OutletReport{}, err
	}

	item := domain.SalesLineItem{
		ID:        uuid.New(),
		Name:      strings.TrimSpace(p.Name),
		Category:  p.Category,
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
		Total:     p.UnitPrice.Mul(decimal.NewFromInt32(p.Quantity)),
	}
	report, err := s.store.AddLineItem(ctx, reportID, item)
	if err != nil {
		return domain.OutletReport{}, mapStoreErr(err, ErrImmutableReport)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeUpdate,
		Action:    "added sales item",
		EntityID:  report.ID,
		Detail:    fmt.Sprintf("%s ×%d = Rp %s", item.Name, item.Quantity, item.Total.StringFixed(0)),
	})
	return report, nil
}

// UpdateItem edits an existing line item of a draft report.
func (s *ReportService) UpdateItem(ctx context.Context, actor domain.Actor, reportID, itemID uuid.UUID, p LineItemParams) (domain.OutletReport, error) {
	if err := p.validate(); err != nil {
		return domain.OutletReport{}, err
	}

	item := domain.SalesLineItem{
		ID:        itemID,
		Name:      strings.TrimSpace(p.Name),
		Category:  p.Category,
		Quantity:  p.Quantity,
		UnitPrice: p.UnitPrice,
		Total:     p.UnitPrice.Mul(decimal.NewFromInt32(p.Quantity)),
	}
	report, err := s.store.UpdateLineItem(ctx, reportID, item)
	if err != nil {
		return domain.OutletReport{}, mapStoreErr(err, ErrImmutableReport)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeUpdate,
		Action:    "updated sales item",
		EntityID:  report.ID,
		Detail:    fmt.Sprintf("%s ×%d = Rp %s", item.Name, item.Quantity, item.Total.StringFixed(0)),
	})
	return report, nil
}

// RemoveItem deletes a line item from a draft report.
func (s *ReportService) RemoveItem(ctx context.Context, actor domain.Actor, reportID, itemID uuid.UUID) (domain.OutletReport, error) {
	report, err := s.store.RemoveLineItem(ctx, reportID, itemID)
	if err != nil {
		return domain.OutletReport{}, mapStoreErr(err, ErrImmutableReport)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeUpdate,
		Action:    "removed sales item",
		EntityID:  report.ID,
	})
	return report, nil
}

// SaveDraft confirms the draft status without changing state. It exists so
// the client gets an explicit acknowledgement; a submitted report cannot be
// demoted back to draft.
func (s *ReportService) SaveDraft(ctx context.Context, actor domain.Actor, reportID uuid.UUID) (domain.OutletReport, error) {
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return domain.OutletReport{}, mapStoreErr(err, nil)
	}
	if report.Status != enum.ReportStatusDraft {
		return domain.OutletReport{}, ErrImmutableReport
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeUpdate,
		Action:    "saved report draft",
		EntityID:  report.ID,
	})
	return report, nil
}

// Submit transitions a non-empty draft to SUBMITTED. Submission is terminal
// for edits; resubmitting fails rather than succeeding a second time.
func (s *ReportService) Submit(ctx context.Context, actor domain.Actor, reportID uuid.UUID) (domain.OutletReport, error) {
	report, err := s.store.GetReport(ctx, reportID)
	if err != nil {
		return domain.OutletReport{}, mapStoreErr(err, nil)
	}
	if report.Status != enum.ReportStatusDraft {
		return domain.OutletReport{}, ErrImmutableReport
	}
	if len(report.Items) == 0 {
		return domain.OutletReport{}, ErrEmptyReport
	}

	// The store re-guards the DRAFT→SUBMITTED transition and the
	// non-emptiness check atomically; a concurrent submit or item removal
	// between the reads above and here surfaces as stale or empty.
	report, err = s.store.SubmitReport(ctx, reportID, time.Now())
	if err != nil {
		if errors.Is(err, store.ErrEmpty) {
			return domain.OutletReport{}, ErrEmptyReport
		}
		return domain.OutletReport{}, mapStoreErr(err, ErrImmutableReport)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeSubmit,
		Action:    "submitted daily report",
		EntityID:  report.ID,
		Detail:    fmt.Sprintf("%s, total Rp %s", report.OutletName, report.Total.StringFixed(0)),
	})
	return report, nil
}

// mapStoreErr translates storage sentinel errors into ledger errors.
// stale is the domain meaning of store.ErrStale at this call site.
func mapStoreErr(err error, stale error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return fmt.Errorf("%w: %s", ErrNotFound, err)
	case errors.Is(err, store.ErrStale) && stale != nil:
		return stale
	default:
		return err
	}
}
