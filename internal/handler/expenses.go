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

// ExpenseHandler handles the kasir operational expense endpoints.
type ExpenseHandler struct {
	svc *ledger.ExpenseService
}

func NewExpenseHandler(svc *ledger.ExpenseService) *ExpenseHandler {
	return &ExpenseHandler{svc: svc}
}

// RegisterRoutes registers expense endpoints on the given Chi router.
// Expected to be mounted at /custody/expenses.
func (h *ExpenseHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Record)
	r.Delete("/{id}", h.Remove)
}

// --- Request / Response types ---

type recordExpenseRequest struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	ProofRef    string `json:"proof_ref"`
}

type expenseResponse struct {
	ID          uuid.UUID `json:"id"`
	Category    string    `json:"category"`
	Description string    `json:"description"`
	Amount      string    `json:"amount"`
	ProofRef    string    `json:"proof_ref,omitempty"`
	EntryID     uuid.UUID `json:"entry_id"`
	CreatedBy   uuid.UUID `json:"created_by"`
	CreatedAt   time.Time `json:"created_at"`
}

func toExpenseResponse(x domain.ExpenseEntry) expenseResponse {
	return expenseResponse{
		ID:          x.ID,
		Category:    x.Category,
		Description: x.Description,
		Amount:      x.Amount.StringFixed(2),
		ProofRef:    x.ProofRef,
		EntryID:     x.EntryID,
		CreatedBy:   x.CreatedBy,
		CreatedAt:   x.CreatedAt,
	}
}

// --- Handlers ---

func (h *ExpenseHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	expenses, err := h.svc.List(r.Context(), from, to)
	if err != nil {
		writeLedgerError(w, "list expenses", err)
		return
	}

	resp := make([]expenseResponse, len(expenses))
	for i, x := range expenses {
		resp[i] = toExpenseResponse(x)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ExpenseHandler) Record(w http.ResponseWriter, r *http.Request) {
	var req recordExpenseRequest
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
	exp, entry, err := h.svc.Record(r.Context(), actorFromClaims(claims), ledger.RecordExpenseParams{
		Category:    req.Category,
		Description: req.Description,
		Amount:      amount,
		ProofRef:    req.ProofRef,
	})
	if err != nil {
		writeLedgerError(w, "record expense", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"expense": toExpenseResponse(exp),
		"entry":   toEntryResponse(entry),
	})
}

func (h *ExpenseHandler) Remove(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid expense ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if err := h.svc.Remove(r.Context(), actorFromClaims(claims), id); err != nil {
		writeLedgerError(w, "remove expense", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
