package store

import "context"

// InsertContributionEvent appends one ledger row. The ledger is append-only;
// rows are never updated or aggregated here.
func (s *Store) InsertContributionEvent(ctx context.Context, e ContributionEvent) (string, error) {
	id := NewID()
	_, err := s.Pool.Exec(ctx, `
		INSERT INTO contribution_events
			(id, actor_type, actor_id, event_type, deal_room_id, compute_credits, action_credits, outcome_credits, payload, tags, idempotency_key)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), $6, $7, $8, $9, $10, NULLIF($11,''))`,
		id, e.ActorType, e.ActorID, e.EventType, e.DealRoomID,
		e.ComputeCredits, e.ActionCredits, e.OutcomeCredits, e.Payload, e.Tags, e.IdempotencyKey)
	return id, err
}

// ListContributionEvents returns recent ledger rows for an actor, newest
// first.
func (s *Store) ListContributionEvents(ctx context.Context, actorID string, limit, offset int) ([]ContributionEvent, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, actor_type, actor_id, event_type, COALESCE(deal_room_id,''),
			compute_credits, action_credits, outcome_credits, tags, created_at
		FROM contribution_events
		WHERE actor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`, actorID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ContributionEvent, 0, limit)
	for rows.Next() {
		var e ContributionEvent
		if err := rows.Scan(&e.ID, &e.ActorType, &e.ActorID, &e.EventType, &e.DealRoomID,
			&e.ComputeCredits, &e.ActionCredits, &e.OutcomeCredits, &e.Tags, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
