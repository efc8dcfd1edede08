package normalize

// Hop is one provenance step in an event's attribution chain, ordered from
// origin to the entity that finally produced the event.
type Hop struct {
	Type      string `json:"type"`
	ID        string `json:"id"`
	Timestamp string `json:"timestamp,omitempty"`
}

// Event is the canonical shape every inbound webhook is mapped into. String
// fields are empty when the source did not carry them; ValueAmount is nil when
// absent so a zero amount and a missing amount stay distinguishable.
//
// RawPayload always holds the original decoded body untouched, even when the
// source mapping extracted nothing.
type Event struct {
	EventType        string         `json:"event_type"`
	SourcePlatform   string         `json:"source_platform"`
	DealRoomID       string         `json:"deal_room_id,omitempty"`
	AgentID          string         `json:"agent_id,omitempty"`
	WorkflowID       string         `json:"workflow_id,omitempty"`
	EntityType       string         `json:"entity_type,omitempty"`
	EntityID         string         `json:"entity_id,omitempty"`
	OutcomeType      string         `json:"outcome_type,omitempty"`
	ValueAmount      *float64       `json:"value_amount,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	AttributionChain []Hop          `json:"attribution_chain,omitempty"`
	RawPayload       map[string]any `json:"raw_payload"`
	IdempotencyKey   string         `json:"idempotency_key,omitempty"`
}

// HasValue reports whether the event carries a positive amount.
func (e Event) HasValue() bool {
	return e.ValueAmount != nil && *e.ValueAmount > 0
}
