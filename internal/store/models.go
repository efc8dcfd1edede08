package store

import "time"

// AuditEntry is the append-only record of one inbound webhook, written before
// any handler runs.
type AuditEntry struct {
	ID             string    `json:"id"`
	EventType      string    `json:"event_type"`
	SourcePlatform string    `json:"source_platform"`
	DealRoomID     string    `json:"deal_room_id,omitempty"`
	AgentID        string    `json:"agent_id,omitempty"`
	OutcomeType    string    `json:"outcome_type,omitempty"`
	ValueAmount    *float64  `json:"value_amount,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	RawPayload     []byte    `json:"raw_payload,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// AuditResult reports the outcome of an audit append. Duplicate is set when an
// entry with the same idempotency key already existed; ID then refers to the
// original entry.
type AuditResult struct {
	ID        string
	Duplicate bool
}

// AttributionRule configures how an outcome in a deal room is credited.
// Read-only from this service.
type AttributionRule struct {
	ID               string
	DealRoomID       string
	OutcomeType      string
	AgentID          string
	BaseAmount       float64
	PercentageOfDeal float64
	Active           bool
}

// AttributionCredit is one derived credit row, appended per rule applied.
type AttributionCredit struct {
	ID             string
	RuleID         string
	DealRoomID     string
	AgentID        string
	OutcomeType    string
	Credits        float64
	IdempotencyKey string
	CreatedAt      time.Time
}

// SettlementContract is a configured payout rule. Read-only here; state
// transitions happen in the settlement-execute peer service.
type SettlementContract struct {
	ID                string
	DealRoomID        string
	TriggerType       string
	RevenueSourceType string
	PayoutPriority    int
	Active            bool
}

// CreditMeter converts raw usage into billed cost for one (deal room,
// platform) pair. Read-only here.
type CreditMeter struct {
	ID               string
	DealRoomID       string
	PlatformName     string
	CostPerCredit    float64
	MarkupPercentage float64
}

// UsageRecord is one appended billing row per metered event.
type UsageRecord struct {
	ID                    string
	MeterID               string
	DealRoomID            string
	PlatformName          string
	CreditsUsed           int
	RawCost               float64
	BilledCost            float64
	ExternalTransactionID string
	IdempotencyKey        string
	CreatedAt             time.Time
}

// CRMConnection is the per-deal-room sync configuration. Read-only here.
type CRMConnection struct {
	ID         string
	DealRoomID string
	Provider   string
	Active     bool
}

// ContributionEvent is one append-only ledger row crediting an actor for a
// qualifying event.
type ContributionEvent struct {
	ID             string    `json:"id"`
	ActorType      string    `json:"actor_type"`
	ActorID        string    `json:"actor_id"`
	EventType      string    `json:"event_type"`
	DealRoomID     string    `json:"deal_room_id,omitempty"`
	ComputeCredits int       `json:"compute_credits"`
	ActionCredits  int       `json:"action_credits"`
	OutcomeCredits int       `json:"outcome_credits"`
	Payload        []byte    `json:"payload,omitempty"`
	Tags           []string  `json:"tags,omitempty"`
	IdempotencyKey string    `json:"idempotency_key,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
