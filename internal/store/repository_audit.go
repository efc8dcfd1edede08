package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// RecordAuditEntry appends one audit row. When the entry carries an
// idempotency key that was already recorded, no new row is written and the
// original entry's id comes back with Duplicate set.
func (s *Store) RecordAuditEntry(ctx context.Context, e AuditEntry) (AuditResult, error) {
	id := NewID()
	tag, err := s.Pool.Exec(ctx, `
		INSERT INTO audit_log_entries
			(id, event_type, source_platform, deal_room_id, agent_id, outcome_type, value_amount, idempotency_key, raw_payload)
		VALUES ($1, $2, $3, NULLIF($4,''), NULLIF($5,''), NULLIF($6,''), $7, NULLIF($8,''), $9)
		ON CONFLICT (idempotency_key) DO NOTHING`,
		id, e.EventType, e.SourcePlatform, e.DealRoomID, e.AgentID, e.OutcomeType, e.ValueAmount, e.IdempotencyKey, e.RawPayload)
	if err != nil {
		return AuditResult{}, err
	}
	if tag.RowsAffected() > 0 {
		return AuditResult{ID: id}, nil
	}

	var existing string
	err = s.Pool.QueryRow(ctx,
		`SELECT id FROM audit_log_entries WHERE idempotency_key = $1`,
		e.IdempotencyKey).Scan(&existing)
	if err != nil {
		return AuditResult{}, err
	}
	return AuditResult{ID: existing, Duplicate: true}, nil
}

// ListAuditEntries returns recent entries, newest first.
func (s *Store) ListAuditEntries(ctx context.Context, limit, offset int) ([]AuditEntry, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, event_type, source_platform,
			COALESCE(deal_room_id,''), COALESCE(agent_id,''), COALESCE(outcome_type,''),
			value_amount, COALESCE(idempotency_key,''), created_at
		FROM audit_log_entries
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]AuditEntry, 0, limit)
	for rows.Next() {
		var e AuditEntry
		if err := rows.Scan(&e.ID, &e.EventType, &e.SourcePlatform, &e.DealRoomID, &e.AgentID,
			&e.OutcomeType, &e.ValueAmount, &e.IdempotencyKey, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetAuditEntry looks one entry up by id.
func (s *Store) GetAuditEntry(ctx context.Context, id string) (AuditEntry, error) {
	var e AuditEntry
	err := s.Pool.QueryRow(ctx, `
		SELECT id, event_type, source_platform,
			COALESCE(deal_room_id,''), COALESCE(agent_id,''), COALESCE(outcome_type,''),
			value_amount, COALESCE(idempotency_key,''), raw_payload, created_at
		FROM audit_log_entries WHERE id = $1`, id).
		Scan(&e.ID, &e.EventType, &e.SourcePlatform, &e.DealRoomID, &e.AgentID,
			&e.OutcomeType, &e.ValueAmount, &e.IdempotencyKey, &e.RawPayload, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return AuditEntry{}, ErrNotFound
	}
	if err != nil {
		return AuditEntry{}, err
	}
	return e, nil
}
