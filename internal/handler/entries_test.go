package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sentra-ppob/api/internal/domain"
	"github.com/sentra-ppob/api/internal/enum"
	"github.com/sentra-ppob/api/internal/store/memory"
)

// pulledEntry runs the outlet→custody leg and returns the pending inflow
// entry ID the finance user will act on.
func pulledEntry(t *testing.T, r chi.Router, repo *memory.Store, loket, kasir domain.User, outletID uuid.UUID) uuid.UUID {
	t.Helper()
	reportID := submitReportHTTP(t, r, loket, outletID, 1, "50000")
	resp := pull(t, r, tokenFor(t, kasir), reportID)
	return resp.Entry.ID
}

func TestVerifyOverHTTP(t *testing.T) {
	r, repo := newEnv(t)
	loket, kasir, finance, _, outletID := seedOutletUsers(t, repo)
	entryID := pulledEntry(t, r, repo, loket, kasir, outletID)
	token := tokenFor(t, finance)

	rr := do(t, r, http.MethodPost, "/cashflow/entries/"+entryID.String()+"/verify", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("verify status = %d: %s", rr.Code, rr.Body)
	}
	var entry entryJSON
	decode(t, rr, &entry)
	if entry.Status != enum.EntryStatusVerified {
		t.Errorf("status = %s, want VERIFIED", entry.Status)
	}
	if entry.VerifiedBy == "" {
		t.Error("verified_by missing")
	}

	// second resolution conflicts
	rr = do(t, r, http.MethodPost, "/cashflow/entries/"+entryID.String()+"/verify", token, nil)
	if rr.Code != http.StatusConflict {
		t.Errorf("double verify status = %d, want 409", rr.Code)
	}
}

func TestRejectOverHTTP(t *testing.T) {
	r, repo := newEnv(t)
	loket, kasir, finance, _, outletID := seedOutletUsers(t, repo)
	entryID := pulledEntry(t, r, repo, loket, kasir, outletID)
	token := tokenFor(t, finance)

	rr := do(t, r, http.MethodPost, "/cashflow/entries/"+entryID.String()+"/reject", token, map[string]string{})
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing reason status = %d, want 400", rr.Code)
	}

	rr = do(t, r, http.MethodPost, "/cashflow/entries/"+entryID.String()+"/reject", token, map[string]string{
		"reason": "bukti tidak jelas",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("reject status = %d: %s", rr.Code, rr.Body)
	}
	var entry struct {
		Status       string `json:"status"`
		RejectReason string `json:"reject_reason"`
	}
	decode(t, rr, &entry)
	if entry.Status != enum.EntryStatusRejected || entry.RejectReason != "bukti tidak jelas" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestEntryDetailVariance(t *testing.T) {
	r, repo := newEnv(t)
	loket, kasir, finance, _, outletID := seedOutletUsers(t, repo)
	reportID := submitReportHTTP(t, r, loket, outletID, 1, "50000")
	kasirToken := tokenFor(t, kasir)
	resp := pull(t, r, kasirToken, reportID)

	// kasir banks less than the report total
	rr := do(t, r, http.MethodPut, "/custody/deposits/"+resp.Deposit.ID.String(), kasirToken, map[string]string{
		"amount": "45000",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("edit deposit status = %d", rr.Code)
	}

	rr = do(t, r, http.MethodGet, "/cashflow/entries/"+resp.Entry.ID.String(), tokenFor(t, finance), nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("get entry status = %d: %s", rr.Code, rr.Body)
	}
	var detail entryJSON
	decode(t, rr, &detail)
	if detail.ReportTotal != "50000.00" {
		t.Errorf("report_total = %s, want 50000.00", detail.ReportTotal)
	}
	if detail.Variance != "-5000.00" {
		t.Errorf("variance = %s, want -5000.00", detail.Variance)
	}
}

func TestEntryListFilters(t *testing.T) {
	r, repo := newEnv(t)
	loket, kasir, finance, _, outletID := seedOutletUsers(t, repo)
	token := tokenFor(t, finance)

	inflow := pulledEntry(t, r, repo, loket, kasir, outletID)
	rr := do(t, r, http.MethodPost, "/custody/expenses", tokenFor(t, kasir), map[string]string{
		"category":    enum.ExpenseCategoryOther,
		"description": "listrik",
		"amount":      "10000",
	})
	if rr.Code != http.StatusCreated {
		t.Fatalf("record expense status = %d", rr.Code)
	}
	rr = do(t, r, http.MethodPost, "/cashflow/entries/"+inflow.String()+"/verify", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rr.Code)
	}

	var entries []entryJSON
	rr = do(t, r, http.MethodGet, "/cashflow/entries?status=PENDING", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	decode(t, rr, &entries)
	if len(entries) != 1 || entries[0].Direction != enum.DirectionOutflow {
		t.Errorf("pending = %d entries, want the outflow only", len(entries))
	}

	rr = do(t, r, http.MethodGet, "/cashflow/entries?direction=INFLOW", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	decode(t, rr, &entries)
	if len(entries) != 1 || entries[0].ID != inflow {
		t.Errorf("inflow filter returned %d entries", len(entries))
	}
}

func TestEntryAccessControl(t *testing.T) {
	r, repo := newEnv(t)
	loket, kasir, _, owner, _ := seedOutletUsers(t, repo)

	rr := do(t, r, http.MethodGet, "/cashflow/entries", tokenFor(t, loket), nil)
	if rr.Code != http.StatusForbidden {
		t.Errorf("loket status = %d, want 403", rr.Code)
	}
	rr = do(t, r, http.MethodGet, "/cashflow/entries", tokenFor(t, kasir), nil)
	if rr.Code != http.StatusForbidden {
		t.Errorf("kasir status = %d, want 403", rr.Code)
	}
	rr = do(t, r, http.MethodGet, "/cashflow/entries", tokenFor(t, owner), nil)
	if rr.Code != http.StatusOK {
		t.Errorf("owner status = %d, want 200", rr.Code)
	}
}

func TestCashflowSummaryOverHTTP(t *testing.T) {
	r, repo := newEnv(t)
	loket, kasir, finance, _, outletID := seedOutletUsers(t, repo)
	token := tokenFor(t, finance)

	entryID := pulledEntry(t, r, repo, loket, kasir, outletID)
	rr := do(t, r, http.MethodPost, "/cashflow/entries/"+entryID.String()+"/verify", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rr.Code)
	}

	rr = do(t, r, http.MethodGet, "/cashflow/summary", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("summary status = %d: %s", rr.Code, rr.Body)
	}
	var sum struct {
		TotalInflow  string `json:"total_inflow"`
		TotalOutflow string `json:"total_outflow"`
		Net          string `json:"net"`
		Trend        []struct {
			Inflow string `json:"inflow"`
		} `json:"trend"`
		Margin struct {
			Ratio string `json:"ratio"`
			Valid bool   `json:"valid"`
		} `json:"margin"`
	}
	decode(t, rr, &sum)
	if sum.TotalInflow != "50000.00" || sum.Net != "50000.00" {
		t.Errorf("summary = %+v", sum)
	}
	if !sum.Margin.Valid {
		t.Error("margin should be valid with verified inflow")
	}
	if len(sum.Trend) == 0 {
		t.Error("trend series empty")
	}

	rr = do(t, r, http.MethodGet, "/cashflow/summary?bucket=HOUR", token, nil)
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad bucket status = %d, want 400", rr.Code)
	}
}

func TestActivityLogOverHTTP(t *testing.T) {
	r, repo := newEnv(t)
	loket, kasir, finance, _, outletID := seedOutletUsers(t, repo)
	token := tokenFor(t, finance)

	entryID := pulledEntry(t, r, repo, loket, kasir, outletID)
	rr := do(t, r, http.MethodPost, "/cashflow/entries/"+entryID.String()+"/verify", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("verify status = %d", rr.Code)
	}

	rr = do(t, r, http.MethodGet, "/activity", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("activity status = %d: %s", rr.Code, rr.Body)
	}
	var events []struct {
		ActorRole string `json:"actor_role"`
		Type      string `json:"type"`
		Action    string `json:"action"`
	}
	decode(t, rr, &events)
	// open, items, submit, pull, verify at minimum
	if len(events) < 5 {
		t.Fatalf("events = %d, want at least 5", len(events))
	}
	last := events[len(events)-1]
	if last.Type != enum.ActivityTypeVerify {
		t.Errorf("last event = %s, want VERIFY", last.Type)
	}

	rr = do(t, r, http.MethodGet, "/activity?type=SUBMIT", token, nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("filtered activity status = %d", rr.Code)
	}
	decode(t, rr, &events)
	if len(events) != 1 || events[0].Type != enum.ActivityTypeSubmit {
		t.Errorf("submit events = %d, want 1", len(events))
	}

	// kasir cannot read the audit trail
	rr = do(t, r, http.MethodGet, "/activity", tokenFor(t, kasir), nil)
	if rr.Code != http.StatusForbidden {
		t.Errorf("kasir status = %d, want 403", rr.Code)
	}
}
