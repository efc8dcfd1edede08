package store

import "context"

// ActiveAttributionRules returns the active rules matching the deal room and
// outcome type exactly. No partial matching: an outcome that matches no rule
// contributes zero credits.
func (s *Store) ActiveAttributionRules(ctx context.Context, dealRoomID, outcomeType string) ([]AttributionRule, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, deal_room_id, outcome_type, COALESCE(agent_id,''), base_amount, COALESCE(percentage_of_deal, 0)
		FROM attribution_rules
		WHERE deal_room_id = $1 AND outcome_type = $2 AND active`,
		dealRoomID, outcomeType)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AttributionRule
	for rows.Next() {
		r := AttributionRule{Active: true}
		if err := rows.Scan(&r.ID, &r.DealRoomID, &r.OutcomeType, &r.AgentID, &r.BaseAmount, &r.PercentageOfDeal); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// InsertAttributionCredit appends one derived credit row for a rule that
// applied. One row per rule, never batched.
func (s *Store) InsertAttributionCredit(ctx context.Context, c AttributionCredit) (string, error) {
	id := NewID()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO attribution_credits
			(id, rule_id, deal_room_id, agent_id, outcome_type, credits, idempotency_key)
		VALUES ($1, $2, $3, NULLIF($4,''), $5, $6, NULLIF($7,''))`,
		id, c.RuleID, c.DealRoomID, c.AgentID, c.OutcomeType, c.Credits, c.IdempotencyKey)
	return id, err
}
