package httpx

import (
	"net/http"

	"github.com/target/citation-poller/internal/core"
)

// CampaignHandlers exposes the persisted lookup state of campaigns.
type CampaignHandlers struct {
	Reader core.CampaignReader
}

// Get returns the campaign's lookup status, completion time and citations.
func (h *CampaignHandlers) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.Reader.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err, "get_failed")
		return
	}
	WriteJSON(w, http.StatusOK, c)
}
