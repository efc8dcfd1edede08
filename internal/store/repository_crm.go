package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
)

// ActiveCRMConnection returns the active sync configuration for a deal room
// and provider, or ErrNotFound when none is configured.
func (s *Store) ActiveCRMConnection(ctx context.Context, dealRoomID, provider string) (CRMConnection, error) {
	var c CRMConnection
	err := s.Pool.QueryRow(ctx, `
		SELECT id, deal_room_id, provider
		FROM crm_connections
		WHERE deal_room_id = $1 AND provider = $2 AND active`,
		dealRoomID, provider).
		Scan(&c.ID, &c.DealRoomID, &c.Provider)
	if errors.Is(err, pgx.ErrNoRows) {
		return CRMConnection{}, ErrNotFound
	}
	if err != nil {
		return CRMConnection{}, err
	}
	c.Active = true
	return c, nil
}
