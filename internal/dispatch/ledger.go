package dispatch

import (
	"context"
	"encoding/json"

	"workflow-event-router/internal/normalize"
	"workflow-event-router/internal/store"
)

type LedgerStore interface {
	InsertContributionEvent(ctx context.Context, e store.ContributionEvent) (string, error)
}

type LedgerResult struct {
	EventID string `json:"event_id"`
}

type creditTriple struct {
	Compute int
	Action  int
	Outcome int
}

// outcomeCredits is the fixed credit table for the contribution ledger.
// Outcomes not listed here earn the default triple.
var outcomeCredits = map[string]creditTriple{
	"meeting_set":       {Compute: 2, Action: 10, Outcome: 15},
	"meeting_confirmed": {Compute: 2, Action: 10, Outcome: 20},
	"deal_closed":       {Compute: 5, Action: 20, Outcome: 50},
	"reply_received":    {Compute: 1, Action: 5, Outcome: 5},
	"email_sent":        {Compute: 1, Action: 2, Outcome: 0},
	"call_completed":    {Compute: 2, Action: 8, Outcome: 10},
	"proposal_sent":     {Compute: 3, Action: 10, Outcome: 10},
}

var defaultCredits = creditTriple{Compute: 1, Action: 1, Outcome: 0}

type LedgerHandler struct {
	store LedgerStore
}

func NewLedgerHandler(st LedgerStore) *LedgerHandler {
	return &LedgerHandler{store: st}
}

func (h *LedgerHandler) Name() string { return "contribution_ledger" }

func (h *LedgerHandler) Applies(ev normalize.Event) bool {
	return ev.AgentID != "" && ev.OutcomeType != ""
}

// Handle inserts exactly one ledger row per invocation. No aggregation, no
// rate limiting: every qualifying event produces one row.
func (h *LedgerHandler) Handle(ctx context.Context, ev normalize.Event) (any, error) {
	credits, ok := outcomeCredits[ev.OutcomeType]
	if !ok {
		credits = defaultCredits
	}

	outcomeTag := ev.OutcomeType
	if outcomeTag == "" {
		outcomeTag = "unknown"
	}
	payload, _ := json.Marshal(ev.RawPayload)

	id, err := h.store.InsertContributionEvent(ctx, store.ContributionEvent{
		ActorType:      "agent",
		ActorID:        ev.AgentID,
		EventType:      ev.EventType,
		DealRoomID:     ev.DealRoomID,
		ComputeCredits: credits.Compute,
		ActionCredits:  credits.Action,
		OutcomeCredits: credits.Outcome,
		Payload:        payload,
		Tags:           []string{"source:" + ev.SourcePlatform, "outcome:" + outcomeTag},
		IdempotencyKey: ev.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return LedgerResult{EventID: id}, nil
}
