package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sentra-ppob/api/internal/audit"
	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/store"
)

// Authorizer decides whether an actor holds the finance-verifier capability.
// Injected rather than hardcoded so role policy stays outside the ledger.
type Authorizer interface {
	CanVerify(actor domain.Actor) bool
}

// RoleAuthorizer grants the verifier capability to finance and owner roles.
type RoleAuthorizer struct{}

func (RoleAuthorizer) CanVerify(actor domain.Actor) bool {
	return actor.Role == enum.UserRoleFinance || actor.Role == enum.UserRoleOwner
}

// EntryStore defines the repository methods the verification service needs.
// Satisfied by store.Repository; narrow interface for testability.
type EntryStore interface {
	GetEntry(ctx context.Context, id uuid.UUID) (domain.CashflowEntry, error)
	ListEntries(ctx context.Context, f store.EntryFilter) ([]domain.CashflowEntry, error)
	FinalizeEntry(ctx context.Context, id uuid.UUID, status, verifiedBy, reason string, at time.Time) (domain.CashflowEntry, error)
}

// VerificationService is the sole authority that resolves pending cashflow
// entries. Transitions are one-way; the store enforces them as a
// compare-and-set so a concurrent second resolution fails instead of
// overwriting the first.
type VerificationService struct {
	store EntryStore
	audit audit.Recorder
	authz Authorizer
}

// NewVerificationService creates a new VerificationService.
func NewVerificationService(s EntryStore, a audit.Recorder, authz Authorizer) *VerificationService {
	return &VerificationService{store: s, audit: a, authz: authz}
}

// Verify resolves a pending entry to VERIFIED, attributed to the actor.
func (s *VerificationService) Verify(ctx context.Context, actor domain.Actor, entryID uuid.UUID) (domain.CashflowEntry, error) {
	if !s.authz.CanVerify(actor) {
		return domain.CashflowEntry{}, fmt.Errorf("%w: %s cannot verify entries", ErrAuth, actor.Role)
	}

	entry, err := s.store.FinalizeEntry(ctx, entryID, enum.EntryStatusVerified, actor.Name, "", time.Now())
	if err != nil {
		return domain.CashflowEntry{}, mapStoreErr(err, ErrEntryNotPending)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeVerify,
		Action:    "verified cashflow entry",
		EntityID:  entry.ID,
		Detail:    fmt.Sprintf("%s Rp %s", entry.Description, entry.Amount.StringFixed(0)),
	})
	return entry, nil
}

// Reject resolves a pending entry to REJECTED. The reason is mandatory: a
// rejection is a clarification request back to the originating source, and
// correction requires that source to create a new entry.
func (s *VerificationService) Reject(ctx context.Context, actor domain.Actor, entryID uuid.UUID, reason string) (domain.CashflowEntry, error) {
	if !s.authz.CanVerify(actor) {
		return domain.CashflowEntry{}, fmt.Errorf("%w: %s cannot reject entries", ErrAuth, actor.Role)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return domain.CashflowEntry{}, ErrEmptyReason
	}

	entry, err := s.store.FinalizeEntry(ctx, entryID, enum.EntryStatusRejected, actor.Name, reason, time.Now())
	if err != nil {
		return domain.CashflowEntry{}, mapStoreErr(err, ErrEntryNotPending)
	}

	s.audit.Record(ctx, domain.ActivityEvent{
		ActorName: actor.Name,
		ActorRole: actor.Role,
		Type:      enum.ActivityTypeAlert,
		Action:    "rejected cashflow entry",
		EntityID:  entry.ID,
		Detail:    reason,
	})
	return entry, nil
}

// Get returns a single entry.
func (s *VerificationService) Get(ctx context.Context, id uuid.UUID) (domain.CashflowEntry, error) {
	entry, err := s.store.GetEntry(ctx, id)
	if err != nil {
		return domain.CashflowEntry{}, mapStoreErr(err, nil)
	}
	return entry, nil
}

// List returns entries matching the filter, ordered by occurrence time.
func (s *VerificationService) List(ctx context.Context, f store.EntryFilter) ([]domain.CashflowEntry, error) {
	return s.store.ListEntries(ctx, f)
}
