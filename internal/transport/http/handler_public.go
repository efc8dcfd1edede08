package httptransport

import (
	"net/http"

	"workflow-event-router/internal/store"
)

type PublicHandlers struct {
	store *store.Store
}

func NewPublicHandlers(st *store.Store) *PublicHandlers {
	return &PublicHandlers{store: st}
}

func (h *PublicHandlers) AuditEntries() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		entries, err := h.store.ListAuditEntries(r.Context(), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"entries": entries})
	}
}

func (h *PublicHandlers) Contributions() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		agentID := r.URL.Query().Get("agent_id")
		if agentID == "" {
			WriteHTTPError(w, http.StatusBadRequest, "agent_id_required")
			return
		}
		limit, offset := ParsePagination(r)
		events, err := h.store.ListContributionEvents(r.Context(), agentID, limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"events": events})
	}
}
