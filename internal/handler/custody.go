package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/ledger"
	"github.com/sentra-ppob/api/internal/middleware"
)

// CustodyHandler handles the kasir cash custody endpoints: pulling submitted
// outlet reports into deposits and the day balance view.
type CustodyHandler struct {
	svc *ledger.CustodyService
}

func NewCustodyHandler(svc *ledger.CustodyService) *CustodyHandler {
	return &CustodyHandler{svc: svc}
}

// RegisterRoutes registers custody endpoints on the given Chi router.
// Expected to be mounted at /custody.
func (h *CustodyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/reports", h.SubmittedReports)
	r.Get("/deposits", h.ListDeposits)
	r.Post("/deposits", h.Pull)
	r.Put("/deposits/{id}", h.EditDeposit)
	r.Get("/summary", h.Summary)
}

// --- Request / Response types ---

type pullRequest struct {
	ReportID string `json:"report_id"`
}

type editDepositRequest struct {
	Amount   string `json:"amount"`
	ProofRef string `json:"proof_ref"`
}

type depositResponse struct {
	ID         uuid.UUID `json:"id"`
	ReportID   uuid.UUID `json:"report_id"`
	OutletName string    `json:"outlet_name"`
	Amount     string    `json:"amount"`
	ProofRef   string    `json:"proof_ref,omitempty"`
	EntryID    uuid.UUID `json:"entry_id"`
	CreatedBy  uuid.UUID `json:"created_by"`
	CreatedAt  time.Time `json:"created_at"`
}

type custodySummaryResponse struct {
	TotalDeposits string `json:"total_deposits"`
	TotalExpenses string `json:"total_expenses"`
	Balance       string `json:"balance"`
	DepositCount  int    `json:"deposit_count"`
	ExpenseCount  int    `json:"expense_count"`
}

func toDepositResponse(d domain.CashDeposit) depositResponse {
	return depositResponse{
		ID:         d.ID,
		ReportID:   d.ReportID,
		OutletName: d.OutletName,
		Amount:     d.Amount.StringFixed(2),
		ProofRef:   d.ProofRef,
		EntryID:    d.EntryID,
		CreatedBy:  d.CreatedBy,
		CreatedAt:  d.CreatedAt,
	}
}

// --- Handlers ---

// SubmittedReports lists submitted outlet reports in the date range, the
// queue the custodian works through.
func (h *CustodyHandler) SubmittedReports(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	reports, err := h.svc.SubmittedReports(r.Context(), from, to)
	if err != nil {
		writeLedgerError(w, "list submitted reports", err)
		return
	}

	resp := make([]reportResponse, len(reports))
	for i, rep := range reports {
		resp[i] = toReportResponse(rep)
	}
	writeJSON(w, http.StatusOK, resp)
}

// Pull takes custody of a submitted report's cash.
func (h *CustodyHandler) Pull(w http.ResponseWriter, r *http.Request) {
	var req pullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	reportID, err := uuid.Parse(req.ReportID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report_id"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	dep, entry, err := h.svc.Pull(r.Context(), actorFromClaims(claims), reportID)
	if err != nil {
		writeLedgerError(w, "pull report", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"deposit": toDepositResponse(dep),
		"entry":   toEntryResponse(entry),
	})
}

func (h *CustodyHandler) ListDeposits(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	deposits, err := h.svc.Deposits(r.Context(), from, to)
	if err != nil {
		writeLedgerError(w, "list deposits", err)
		return
	}

	resp := make([]depositResponse, len(deposits))
	for i, d := range deposits {
		resp[i] = toDepositResponse(d)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *CustodyHandler) EditDeposit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid deposit ID"})
		return
	}

	var req editDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	dep, err := h.svc.EditDeposit(r.Context(), actorFromClaims(claims), id, amount, req.ProofRef)
	if err != nil {
		writeLedgerError(w, "edit deposit", err)
		return
	}
	writeJSON(w, http.StatusOK, toDepositResponse(dep))
}

// Summary returns the custody day view: deposits in, expenses out, balance.
func (h *CustodyHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	sum, err := h.svc.Summary(r.Context(), from, to)
	if err != nil {
		writeLedgerError(w, "custody summary", err)
		return
	}

	writeJSON(w, http.StatusOK, custodySummaryResponse{
		TotalDeposits: sum.TotalDeposits.StringFixed(2),
		TotalExpenses: sum.TotalExpenses.StringFixed(2),
		Balance:       sum.Balance.StringFixed(2),
		DepositCount:  sum.DepositCount,
		ExpenseCount:  sum.ExpenseCount,
	})
}
