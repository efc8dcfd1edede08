package dispatch

import (
	"context"

	"workflow-event-router/internal/normalize"
	"workflow-event-router/internal/settlement"
	"workflow-event-router/internal/store"

	"github.com/rs/zerolog/log"
)

type ContractStore interface {
	ActiveSettlementContracts(ctx context.Context, dealRoomID string) ([]store.SettlementContract, error)
}

type SettlementResult struct {
	ContractsTriggered   int      `json:"contracts_triggered"`
	PendingConfirmations int      `json:"pending_confirmations"`
	ContractErrors       []string `json:"contract_errors,omitempty"`
}

type SettlementHandler struct {
	store ContractStore
	exec  settlement.Executor
}

func NewSettlementHandler(st ContractStore, exec settlement.Executor) *SettlementHandler {
	return &SettlementHandler{store: st, exec: exec}
}

func (h *SettlementHandler) Name() string { return "settlement_trigger" }

func (h *SettlementHandler) Applies(ev normalize.Event) bool {
	return ev.DealRoomID != "" && ev.HasValue()
}

// Handle evaluates active contracts in payout-priority order and invokes the
// settlement-execute service for each matching one. A failed call is recorded
// per contract and the loop keeps going; one unreachable contract must not
// stop the lower-priority ones from being evaluated.
func (h *SettlementHandler) Handle(ctx context.Context, ev normalize.Event) (any, error) {
	contracts, err := h.store.ActiveSettlementContracts(ctx, ev.DealRoomID)
	if err != nil {
		return nil, err
	}

	var res SettlementResult
	for _, c := range contracts {
		if !shouldTrigger(c, ev) {
			continue
		}
		resp, err := h.exec.Execute(ctx, buildExecuteRequest(c, ev))
		if err != nil {
			log.Error().Err(err).Str("contract_id", c.ID).Str("deal_room_id", ev.DealRoomID).
				Msg("settlement execute failed")
			res.ContractErrors = append(res.ContractErrors, c.ID+": "+err.Error())
			continue
		}
		if !resp.Success {
			res.ContractErrors = append(res.ContractErrors, c.ID+": execute reported failure")
			continue
		}
		res.ContractsTriggered++
		if resp.ConfirmationRequired {
			res.PendingConfirmations++
		}
	}
	return res, nil
}

// shouldTrigger applies the outcome-compatibility table. A contract's
// revenue_source_type, when set, must equal the event outcome exactly
// regardless of trigger type.
func shouldTrigger(c store.SettlementContract, ev normalize.Event) bool {
	if c.RevenueSourceType != "" && c.RevenueSourceType != ev.OutcomeType {
		return false
	}
	switch c.TriggerType {
	case "meeting_set":
		return ev.OutcomeType == "meeting_set" || ev.OutcomeType == "meeting_confirmed"
	case "deal_closed":
		return ev.OutcomeType == "deal_closed"
	case "revenue":
		return ev.HasValue()
	default:
		return c.TriggerType == ev.EventType
	}
}

func buildExecuteRequest(c store.SettlementContract, ev normalize.Event) settlement.ExecuteRequest {
	trigger := ev.OutcomeType
	if trigger == "" {
		trigger = ev.EventType
	}
	return settlement.ExecuteRequest{
		ContractID:   c.ID,
		TriggerEvent: trigger,
		TriggerData: settlement.TriggerData{
			Amount:         ev.ValueAmount,
			EntityType:     ev.EntityType,
			EntityID:       ev.EntityID,
			SourcePlatform: ev.SourcePlatform,
		},
		AttributionChain: ev.AttributionChain,
	}
}
