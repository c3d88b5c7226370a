package httpx

import (
	"net/http"

	"github.com/target/citation-poller/internal/core"
	"github.com/target/citation-poller/internal/domain/trigger"
	"github.com/target/citation-poller/internal/service"
)


// TriggerHandlers provides HTTP handlers for poll trigger administration.
type TriggerHandlers struct {
	Svc *service.TriggerService
}

// List returns triggers, optionally filtered by ?campaign_id=.
func (h *TriggerHandlers) List(w http.ResponseWriter, r *http.Request) {
	page, err := ParsePage(r, triggerPageBounds)
	if err != nil {
		WriteAppError(w, err, "invalid_page")
		return
	}
	triggers, err := h.Svc.List(r.Context(), core.ListTriggersOptions{
		CampaignID: r.URL.Query().Get("campaign_id"),
		Limit:      page.Limit,
		Offset:     page.Offset,
	})
	if err != nil {
		WriteAppError(w, err, "list_failed")
		return
	}
	if triggers == nil {
		triggers = []*trigger.Trigger{}
	}
	WriteJSON(w, http.StatusOK, map[string]any{"triggers": triggers, "limit": page.Limit, "offset": page.Offset})
}

// Get returns one trigger by name.
func (h *TriggerHandlers) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Svc.Get(r.Context(), r.PathValue("name"))
	if err != nil {
		WriteAppError(w, err, "get_failed")
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// Put creates or replaces the trigger named in the path.
func (h *TriggerHandlers) Put(w http.ResponseWriter, r *http.Request) {
	var req trigger.UpsertRequest
	if !DecodeJSON(w, r, &req) {
		return
	}
	req.Name = r.PathValue("name")

	t, err := h.Svc.Upsert(r.Context(), req)
	if err != nil {
		WriteAppError(w, err, "upsert_failed")
		return
	}
	WriteJSON(w, http.StatusOK, t)
}

// Delete removes the trigger named in the path.
func (h *TriggerHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.Svc.Delete(r.Context(), r.PathValue("name")); err != nil {
		WriteAppError(w, err, "delete_failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
