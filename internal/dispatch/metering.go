package dispatch

import (
	"context"
	"errors"

	"workflow-event-router/internal/normalize"
	"workflow-event-router/internal/store"
)

type MeterStore interface {
	CreditMeterFor(ctx context.Context, dealRoomID, platformName string) (store.CreditMeter, error)
	InsertUsageRecord(ctx context.Context, u store.UsageRecord) (string, error)
}

type MeteringResult struct {
	MeterID       string  `json:"meter_id,omitempty"`
	CreditsLogged int     `json:"credits_logged"`
	RawCost       float64 `json:"raw_cost,omitempty"`
	BilledCost    float64 `json:"billed_cost,omitempty"`
}

type MeteringHandler struct {
	store MeterStore
}

func NewMeteringHandler(st MeterStore) *MeteringHandler {
	return &MeteringHandler{store: st}
}

func (h *MeteringHandler) Name() string { return "credit_metering" }

func (h *MeteringHandler) Applies(ev normalize.Event) bool {
	return ev.DealRoomID != "" && ev.SourcePlatform != "unknown"
}

// Handle logs one usage record against the (deal room, platform) meter.
// Fixed cost model: one credit per qualifying event, no weighting by event
// complexity. A missing meter is a normal state, not an error.
func (h *MeteringHandler) Handle(ctx context.Context, ev normalize.Event) (any, error) {
	meter, err := h.store.CreditMeterFor(ctx, ev.DealRoomID, ev.SourcePlatform)
	if errors.Is(err, store.ErrNotFound) {
		return MeteringResult{CreditsLogged: 0}, nil
	}
	if err != nil {
		return nil, err
	}

	const creditsUsed = 1
	rawCost := creditsUsed * meter.CostPerCredit
	billedCost := rawCost * (1 + meter.MarkupPercentage/100)

	var txnID string
	if v, ok := ev.Metadata["transaction_id"].(string); ok {
		txnID = v
	}

	_, err = h.store.InsertUsageRecord(ctx, store.UsageRecord{
		MeterID:               meter.ID,
		DealRoomID:            ev.DealRoomID,
		PlatformName:          ev.SourcePlatform,
		CreditsUsed:           creditsUsed,
		RawCost:               rawCost,
		BilledCost:            billedCost,
		ExternalTransactionID: txnID,
		IdempotencyKey:        ev.IdempotencyKey,
	})
	if err != nil {
		return nil, err
	}
	return MeteringResult{
		MeterID:       meter.ID,
		CreditsLogged: creditsUsed,
		RawCost:       rawCost,
		BilledCost:    billedCost,
	}, nil
}
