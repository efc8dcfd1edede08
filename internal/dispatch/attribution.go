package dispatch

import (
	"context"

	"workflow-event-router/internal/normalize"
	"workflow-event-router/internal/store"
)

// AttributionStore is the slice of the store the attribution handler reads and
// appends through.
type AttributionStore interface {
	ActiveAttributionRules(ctx context.Context, dealRoomID, outcomeType string) ([]store.AttributionRule, error)
	InsertAttributionCredit(ctx context.Context, c store.AttributionCredit) (string, error)
}

type AttributionResult struct {
	RulesMatched    int     `json:"rules_matched"`
	CreditsAssigned float64 `json:"credits_assigned"`
}

type AttributionHandler struct {
	store AttributionStore
}

func NewAttributionHandler(st AttributionStore) *AttributionHandler {
	return &AttributionHandler{store: st}
}

func (h *AttributionHandler) Name() string { return "attribution" }

func (h *AttributionHandler) Applies(ev normalize.Event) bool {
	return ev.OutcomeType != "" && ev.DealRoomID != ""
}

// Handle applies every active rule matching (deal room, outcome) exactly,
// appending one credit row per rule. Credits per rule are
// base_amount + value_amount*percentage/100 when both parts are present.
func (h *AttributionHandler) Handle(ctx context.Context, ev normalize.Event) (any, error) {
	rules, err := h.store.ActiveAttributionRules(ctx, ev.DealRoomID, ev.OutcomeType)
	if err != nil {
		return nil, err
	}

	var res AttributionResult
	for _, rule := range rules {
		credits := rule.BaseAmount
		if ev.ValueAmount != nil && rule.PercentageOfDeal != 0 {
			credits += *ev.ValueAmount * rule.PercentageOfDeal / 100
		}
		_, err := h.store.InsertAttributionCredit(ctx, store.AttributionCredit{
			RuleID:         rule.ID,
			DealRoomID:     ev.DealRoomID,
			AgentID:        rule.AgentID,
			OutcomeType:    ev.OutcomeType,
			Credits:        credits,
			IdempotencyKey: ev.IdempotencyKey,
		})
		if err != nil {
			return nil, err
		}
		res.RulesMatched++
		res.CreditsAssigned += credits
	}
	return res, nil
}
