package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/sentra-ppob/api/internal/audit"
	"github.com/sentra-ppob/api/internal/store"
)

// ActivityHandler serves the audit trail view.
type ActivityHandler struct {
	log *audit.Log
}

func NewActivityHandler(log *audit.Log) *ActivityHandler {
	return &ActivityHandler{log: log}
}

// RegisterRoutes registers the activity endpoint on the given Chi router.
func (h *ActivityHandler) RegisterRoutes(r chi.Router) {
	r.Get("/activity", h.List)
}

type activityEventResponse struct {
	ID        uuid.UUID `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	ActorName string    `json:"actor_name"`
	ActorRole string    `json:"actor_role"`
	Type      string    `json:"type"`
	Action    string    `json:"action"`
	EntityID  uuid.UUID `json:"entity_id,omitempty"`
	Detail    string    `json:"detail,omitempty"`
}

func (h *ActivityHandler) List(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	events, err := h.log.Query(r.Context(), store.ActivityFilter{
		Role: r.URL.Query().Get("role"),
		Type: r.URL.Query().Get("type"),
		From: from,
		To:   to,
	})
	if err != nil {
		writeLedgerError(w, "list activity", err)
		return
	}

	resp := make([]activityEventResponse, 0, 64)
	for ev := range events {
		resp = append(resp, activityEventResponse{
			ID:        ev.ID,
			Timestamp: ev.Timestamp,
			ActorName: ev.ActorName,
			ActorRole: ev.ActorRole,
			Type:      ev.Type,
			Action:    ev.Action,
			EntityID:  ev.EntityID,
			Detail:    ev.Detail,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}
