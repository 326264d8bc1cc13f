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
	"github.com/sentra-ppob/api/internal/store"
)

// ReportHandler handles the outlet daily sales report endpoints.
type ReportHandler struct {
	svc *ledger.ReportService
}

func NewReportHandler(svc *ledger.ReportService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// RegisterRoutes registers report endpoints on the given Chi router.
// Expected to be mounted inside an outlet-scoped subrouter: /outlets/{oid}/reports
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Get("/{id}/summary", h.CategorySummary)
	r.Post("/{id}/items", h.AddItem)
	r.Put("/{id}/items/{itemID}", h.UpdateItem)
	r.Delete("/{id}/items/{itemID}", h.RemoveItem)
	r.Post("/{id}/draft", h.SaveDraft)
	r.Post("/{id}/submit", h.Submit)
}

// --- Request / Response types ---

type createReportRequest struct {
	OutletName   string `json:"outlet_name"`
	BusinessDate string `json:"business_date"`
	Shift        string `json:"shift"`
	Note         string `json:"note"`
	ProofRef     string `json:"proof_ref"`
}

type lineItemRequest struct {
	Name      string `json:"name"`
	Category  string `json:"category"`
	Quantity  int32  `json:"quantity"`
	UnitPrice string `json:"unit_price"`
}

type lineItemResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Category  string    `json:"category"`
	Quantity  int32     `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
	Total     string    `json:"total"`
}

type reportResponse struct {
	ID           uuid.UUID          `json:"id"`
	OutletID     uuid.UUID          `json:"outlet_id"`
	OutletName   string             `json:"outlet_name"`
	BusinessDate time.Time          `json:"business_date"`
	Shift        string             `json:"shift,omitempty"`
	Status       string             `json:"status"`
	Items        []lineItemResponse `json:"items"`
	Total        string             `json:"total"`
	Note         string             `json:"note,omitempty"`
	ProofRef     string             `json:"proof_ref,omitempty"`
	CreatedBy    uuid.UUID          `json:"created_by"`
	CreatedAt    time.Time          `json:"created_at"`
	SubmittedAt  *time.Time         `json:"submitted_at,omitempty"`
}

type categorySummaryResponse struct {
	Category string `json:"category"`
	Count    int32  `json:"count"`
	Amount   string `json:"amount"`
}

func toReportResponse(r domain.OutletReport) reportResponse {
	resp := reportResponse{
		ID:           r.ID,
		OutletID:     r.OutletID,
		OutletName:   r.OutletName,
		BusinessDate: r.BusinessDate,
		Shift:        r.Shift,
		Status:       r.Status,
		Items:        make([]lineItemResponse, len(r.Items)),
		Total:        r.Total.StringFixed(2),
		Note:         r.Note,
		ProofRef:     r.ProofRef,
		CreatedBy:    r.CreatedBy,
		CreatedAt:    r.CreatedAt,
		SubmittedAt:  r.SubmittedAt,
	}
	for i, it := range r.Items {
		resp.Items[i] = lineItemResponse{
			ID:        it.ID,
			Name:      it.Name,
			Category:  it.Category,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice.StringFixed(2),
			Total:     it.Total.StringFixed(2),
		}
	}
	return resp
}

// --- Handlers ---

func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	reports, err := h.svc.List(r.Context(), store.ReportFilter{
		OutletID: outletID,
		Status:   r.URL.Query().Get("status"),
		From:     from,
		To:       to,
	})
	if err != nil {
		writeLedgerError(w, "list reports", err)
		return
	}

	resp := make([]reportResponse, len(reports))
	for i, rep := range reports {
		resp[i] = toReportResponse(rep)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) Create(w http.ResponseWriter, r *http.Request) {
	outletID, err := uuid.Parse(chi.URLParam(r, "oid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid outlet ID"})
		return
	}

	var req createReportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	businessDate := time.Now()
	if req.BusinessDate != "" {
		// Same location as the list filters so the date lands on the
		// right side of the Jakarta day boundary.
		businessDate, err = time.ParseInLocation("2006-01-02", req.BusinessDate, jakarta())
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid business_date format"})
			return
		}
	}

	claims := middleware.ClaimsFromContext(r.Context())
	report, err := h.svc.Create(r.Context(), actorFromClaims(claims), ledger.CreateReportParams{
		OutletID:     outletID,
		OutletName:   req.OutletName,
		BusinessDate: businessDate,
		Shift:        req.Shift,
		Note:         req.Note,
		ProofRef:     req.ProofRef,
	})
	if err != nil {
		writeLedgerError(w, "create report", err)
		return
	}

	writeJSON(w, http.StatusCreated, toReportResponse(report))
}

func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report ID"})
		return
	}

	report, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeLedgerError(w, "get report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report))
}

// CategorySummary returns the per-category rollup of a report's line items.
func (h *ReportHandler) CategorySummary(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report ID"})
		return
	}

	report, err := h.svc.Get(r.Context(), id)
	if err != nil {
		writeLedgerError(w, "report summary", err)
		return
	}

	summary := ledger.SummarizeItems(report.Items)
	resp := make([]categorySummaryResponse, len(summary))
	for i, s := range summary {
		resp[i] = categorySummaryResponse{Category: s.Category, Count: s.Count, Amount: s.Amount.StringFixed(2)}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ReportHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	id, params, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	report, err := h.svc.AddItem(r.Context(), actorFromClaims(claims), id, params)
	if err != nil {
		writeLedgerError(w, "add line item", err)
		return
	}
	writeJSON(w, http.StatusCreated, toReportResponse(report))
}

func (h *ReportHandler) UpdateItem(w http.ResponseWriter, r *http.Request) {
	id, params, ok := h.decodeItem(w, r)
	if !ok {
		return
	}

	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	report, err := h.svc.UpdateItem(r.Context(), actorFromClaims(claims), id, itemID, params)
	if err != nil {
		writeLedgerError(w, "update line item", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *ReportHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report ID"})
		return
	}
	itemID, err := uuid.Parse(chi.URLParam(r, "itemID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid item ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	report, err := h.svc.RemoveItem(r.Context(), actorFromClaims(claims), id, itemID)
	if err != nil {
		writeLedgerError(w, "remove line item", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *ReportHandler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	report, err := h.svc.SaveDraft(r.Context(), actorFromClaims(claims), id)
	if err != nil {
		writeLedgerError(w, "save draft", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report))
}

func (h *ReportHandler) Submit(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	report, err := h.svc.Submit(r.Context(), actorFromClaims(claims), id)
	if err != nil {
		writeLedgerError(w, "submit report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportResponse(report))
}

// --- Helpers ---

func (h *ReportHandler) decodeItem(w http.ResponseWriter, r *http.Request) (uuid.UUID, ledger.LineItemParams, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid report ID"})
		return uuid.Nil, ledger.LineItemParams{}, false
	}

	var req lineItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return uuid.Nil, ledger.LineItemParams{}, false
	}

	unitPrice, err := decimal.NewFromString(req.UnitPrice)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid unit_price"})
		return uuid.Nil, ledger.LineItemParams{}, false
	}

	return id, ledger.LineItemParams{
		Name:      req.Name,
		Category:  req.Category,
		Quantity:  req.Quantity,
		UnitPrice: unitPrice,
	}, true
}
