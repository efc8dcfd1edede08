package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// CreditMeterFor returns the single meter configured for a (deal room,
// platform) pair, or ErrNotFound. Absence of a meter is a normal state; not
// every platform is billed.
func (s *Store) CreditMeterFor(ctx context.Context, dealRoomID, platformName string) (CreditMeter, error) {
	var m CreditMeter
	err := s.Pool.QueryRow(ctx, `
		SELECT id, deal_room_id, platform_name, cost_per_credit, COALESCE(markup_percentage, 0)
		FROM credit_meters
		WHERE deal_room_id = $1 AND platform_name = $2`,
		dealRoomID, platformName).
		Scan(&m.ID, &m.DealRoomID, &m.PlatformName, &m.CostPerCredit, &m.MarkupPercentage)
	if errors.Is(err, pgx.ErrNoRows) {
		return CreditMeter{}, ErrNotFound
	}
	if err != nil {
		return CreditMeter{}, err
	}
	return m, nil
}

// InsertUsageRecord appends one billing row for a metered event.
func (s *Store) InsertUsageRecord(ctx context.Context, u UsageRecord) (string, error) {
	id := NewID()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO usage_records
			(id, meter_id, deal_room_id, platform_name, credits_used, raw_cost, billed_cost, external_transaction_id, idempotency_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8,''), NULLIF($9,''))`,
		id, u.MeterID, u.DealRoomID, u.PlatformName, u.CreditsUsed, u.RawCost, u.BilledCost, u.ExternalTransactionID, u.IdempotencyKey)
	return id, err
}
