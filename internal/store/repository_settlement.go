package store

import "context"

// ActiveSettlementContracts returns the active contracts for a deal room in
// ascending payout priority (lowest number evaluated first).
func (s *Store) ActiveSettlementContracts(ctx context.Context, dealRoomID string) ([]SettlementContract, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, deal_room_id, trigger_type, COALESCE(revenue_source_type,''), payout_priority
		FROM settlement_contracts
		WHERE deal_room_id = $1 AND active
		ORDER BY payout_priority ASC`,
		dealRoomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SettlementContract
	for rows.Next() {
		c := SettlementContract{Active: true}
		if err := rows.Scan(&c.ID, &c.DealRoomID, &c.TriggerType, &c.RevenueSourceType, &c.PayoutPriority); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
