package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/ledger"
	"github.com/sentra-ppob/api/internal/store"
)

// CashflowHandler serves the finance dashboard aggregates: verified totals,
// category breakdowns, trend series, and profit margin.
type CashflowHandler struct {
	svc *ledger.VerificationService
}

func NewCashflowHandler(svc *ledger.VerificationService) *CashflowHandler {
	return &CashflowHandler{svc: svc}
}

// RegisterRoutes registers cashflow aggregate endpoints on the given Chi
// router. Expected to be mounted at /cashflow.
func (h *CashflowHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.Summary)
}

// --- Response types ---

type categoryTotalResponse struct {
	Category string `json:"category"`
	Total    string `json:"total"`
}

type trendPointResponse struct {
	Start   time.Time `json:"start"`
	Inflow  string    `json:"inflow"`
	Outflow string    `json:"outflow"`
}

type marginResponse struct {
	Ratio string `json:"ratio,omitempty"`
	Valid bool   `json:"valid"`
}

type cashflowSummaryResponse struct {
	TotalInflow   string                  `json:"total_inflow"`
	TotalOutflow  string                  `json:"total_outflow"`
	Net           string                  `json:"net"`
	PendingCount  int                     `json:"pending_count"`
	VerifiedCount int                     `json:"verified_count"`
	RejectedCount int                     `json:"rejected_count"`
	ByCategoryIn  []categoryTotalResponse `json:"by_category_inflow"`
	ByCategoryOut []categoryTotalResponse `json:"by_category_outflow"`
	Trend         []trendPointResponse    `json:"trend"`
	Margin        marginResponse          `json:"margin"`
}

// --- Handlers ---

func (h *CashflowHandler) Summary(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	bucket := strings.ToUpper(r.URL.Query().Get("bucket"))
	switch bucket {
	case "":
		bucket = enum.TrendBucketDay
	case enum.TrendBucketDay, enum.TrendBucketWeek, enum.TrendBucketMonth:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "bucket must be DAY, WEEK, or MONTH"})
		return
	}

	entries, err := h.svc.List(r.Context(), store.EntryFilter{From: from, To: to})
	if err != nil {
		writeLedgerError(w, "cashflow summary", err)
		return
	}

	sum := ledger.Summarize(entries)
	margin := ledger.ProfitMargin(sum)

	resp := cashflowSummaryResponse{
		TotalInflow:   sum.TotalInflow.StringFixed(2),
		TotalOutflow:  sum.TotalOutflow.StringFixed(2),
		Net:           sum.Net.StringFixed(2),
		PendingCount:  sum.PendingCount,
		VerifiedCount: sum.VerifiedCount,
		RejectedCount: sum.RejectedCount,
		ByCategoryIn:  toCategoryTotals(ledger.ByCategory(entries, enum.DirectionInflow)),
		ByCategoryOut: toCategoryTotals(ledger.ByCategory(entries, enum.DirectionOutflow)),
		Trend:         toTrendPoints(ledger.Trend(entries, from, to, bucket)),
		Margin:        marginResponse{Valid: margin.Valid},
	}
	if margin.Valid {
		resp.Margin.Ratio = margin.Ratio.StringFixed(4)
	}
	writeJSON(w, http.StatusOK, resp)
}

// --- Helpers ---

func toCategoryTotals(totals []ledger.CategoryTotal) []categoryTotalResponse {
	out := make([]categoryTotalResponse, len(totals))
	for i, t := range totals {
		out[i] = categoryTotalResponse{Category: t.Category, Total: t.Total.StringFixed(2)}
	}
	return out
}

func toTrendPoints(points []ledger.TrendPoint) []trendPointResponse {
	out := make([]trendPointResponse, len(points))
	for i, p := range points {
		out[i] = trendPointResponse{Start: p.Start, Inflow: p.Inflow.StringFixed(2), Outflow: p.Outflow.StringFixed(2)}
	}
	return out
}
