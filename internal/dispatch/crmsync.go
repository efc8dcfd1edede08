package dispatch

import (
	"context"
	"errors"

	"workflow-event-router/internal/normalize"
	"workflow-event-router/internal/store"

	"github.com/rs/zerolog/log"
)

type CRMStore interface {
	ActiveCRMConnection(ctx context.Context, dealRoomID, provider string) (store.CRMConnection, error)
}

// CRM sync statuses. "queued" means accepted but not yet delivered, which is
// deliberately distinct from both skipped and failed: the push to the external
// CRM API happens elsewhere.
const (
	SyncStatusSkipped = "skipped"
	SyncStatusQueued  = "queued"
)

type CRMSyncResult struct {
	Synced bool   `json:"synced"`
	Status string `json:"status"`
	Reason string `json:"reason"`
}

type CRMSyncHandler struct {
	store    CRMStore
	provider string
}

func NewCRMSyncHandler(st CRMStore, provider string) *CRMSyncHandler {
	if provider == "" {
		provider = "hubspot"
	}
	return &CRMSyncHandler{store: st, provider: provider}
}

func (h *CRMSyncHandler) Name() string { return "crm_sync" }

func (h *CRMSyncHandler) Applies(ev normalize.Event) bool {
	return ev.EntityType != "" && ev.EntityID != ""
}

func (h *CRMSyncHandler) Handle(ctx context.Context, ev normalize.Event) (any, error) {
	if ev.DealRoomID == "" {
		return CRMSyncResult{Synced: false, Status: SyncStatusSkipped, Reason: "no deal room on event"}, nil
	}

	conn, err := h.store.ActiveCRMConnection(ctx, ev.DealRoomID, h.provider)
	if errors.Is(err, store.ErrNotFound) {
		return CRMSyncResult{Synced: false, Status: SyncStatusSkipped, Reason: "no active crm connection"}, nil
	}
	if err != nil {
		return nil, err
	}

	log.Info().Str("connection_id", conn.ID).Str("deal_room_id", ev.DealRoomID).
		Str("entity_type", ev.EntityType).Str("entity_id", ev.EntityID).
		Msg("crm sync queued")
	return CRMSyncResult{Synced: true, Status: SyncStatusQueued, Reason: "queued for sync"}, nil
}
