package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/ledger"
	"github.com/sentra-ppob/api/internal/middleware"
	"github.com/sentra-ppob/api/internal/store"
)

// EntryHandler handles the finance verification endpoints over cashflow
// entries.
type EntryHandler struct {
	svc     *ledger.VerificationService
	reports *ledger.ReportService
}

func NewEntryHandler(svc *ledger.VerificationService, reports *ledger.ReportService) *EntryHandler {
	return &EntryHandler{svc: svc, reports: reports}
}

// RegisterRoutes registers entry endpoints on the given Chi router.
// Expected to be mounted at /cashflow/entries.
func (h *EntryHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	r.Post("/{id}/verify", h.Verify)
	r.Post("/{id}/reject", h.Reject)
}

// --- Request / Response types ---

type rejectRequest struct {
	Reason string `json:"reason"`
}

type entryResponse struct {
	ID           uuid.UUID  `json:"id"`
	OccurredAt   time.Time  `json:"occurred_at"`
	Source       string     `json:"source"`
	Direction    string     `json:"direction"`
	Category     string     `json:"category"`
	Description  string     `json:"description,omitempty"`
	Amount       string     `json:"amount"`
	Status       string     `json:"status"`
	ProofRef     string     `json:"proof_ref,omitempty"`
	ReportID     uuid.UUID  `json:"report_id,omitempty"`
	SourceID     uuid.UUID  `json:"source_id,omitempty"`
	VerifiedBy   string     `json:"verified_by,omitempty"`
	VerifiedAt   *time.Time `json:"verified_at,omitempty"`
	RejectReason string     `json:"reject_reason,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// entryDetailResponse augments an inflow entry with its source report total
// so finance sees the deposit-vs-report variance before deciding.
type entryDetailResponse struct {
	entryResponse
	ReportTotal string `json:"report_total,omitempty"`
	Variance    string `json:"variance,omitempty"`
}

func toEntryResponse(e domain.CashflowEntry) entryResponse {
	return entryResponse{
		ID:           e.ID,
		OccurredAt:   e.OccurredAt,
		Source:       e.Source,
		Direction:    e.Direction,
		Category:     e.Category,
		Description:  e.Description,
		Amount:       e.Amount.StringFixed(2),
		Status:       e.Status,
		ProofRef:     e.ProofRef,
		ReportID:     e.ReportID,
		SourceID:     e.SourceID,
		VerifiedBy:   e.VerifiedBy,
		VerifiedAt:   e.VerifiedAt,
		RejectReason: e.RejectReason,
		CreatedAt:    e.CreatedAt,
	}
}

// --- Handlers ---

func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	entries, err := h.svc.List(r.Context(), store.EntryFilter{
		Status:    r.URL.Query().Get("status"),
		Direction: r.URL.Query().Get("direction"),
		From:      from,
		To:        to,
	})
	if err != nil {
		writeLedgerError(w, "list entries", err)
		return
	}

	resp := make([]entryResponse, len(entries))
	for i, e := range entries {
		resp[i] = toEntryResponse(e)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	entry, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeLedgerError(w, "get entry", err)
		return
	}

	resp := entryDetailResponse{entryResponse: toEntryResponse(entry)}
	if entry.ReportID != uuid.Nil {
		report, err := h.reports.Get(r.Context(), entry.ReportID)
		switch {
		case err == nil:
			resp.ReportTotal = report.Total.StringFixed(2)
			resp.Variance = entry.Amount.Sub(report.Total).StringFixed(2)
		case !errors.Is(err, ledger.ErrNotFound):
			writeLedgerError(w, "get entry report", err)
			return
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *EntryHandler) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	entry, err := h.svc.Verify(r.Context(), actorFromClaims(claims), id)
	if err != nil {
		writeLedgerError(w, "verify entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}

func (h *EntryHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid entry ID"})
		return
	}

	var req rejectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	entry, err := h.svc.Reject(r.Context(), actorFromClaims(claims), id, req.Reason)
	if err != nil {
		writeLedgerError(w, "reject entry", err)
		return
	}
	writeJSON(w, http.StatusOK, toEntryResponse(entry))
}
