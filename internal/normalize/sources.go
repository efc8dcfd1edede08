package normalize

import "strings"

// Zapier-style workflow SaaS. Zaps post flat JSON with snake_case keys and
// identify the originating zap via zap_id.
func normalizeZapier(raw map[string]any) Event {
	agentID := firstString(raw, "agent_id")
	workflowID := firstString(raw, "zap_id")

	eventType := firstString(raw, "event_type", "event")
	if eventType == "" {
		eventType = "zapier_event"
	}

	return Event{
		EventType:        eventType,
		DealRoomID:       firstString(raw, "deal_room_id"),
		AgentID:          agentID,
		WorkflowID:       workflowID,
		EntityType:       firstString(raw, "object_type"),
		EntityID:         firstString(raw, "object_id"),
		OutcomeType:      firstString(raw, "outcome_type"),
		ValueAmount:      firstFloat(raw, "amount"),
		Metadata:         metadataBag(raw),
		AttributionChain: chainFrom(raw, workflowID, agentID),
	}
}

// Self-hosted n8n automation. Workflows post their own workflow_id and use
// workflow_event / outcome rather than Zapier's naming.
func normalizeN8N(raw map[string]any) Event {
	agentID := firstString(raw, "agent_id")
	workflowID := firstString(raw, "workflow_id")

	eventType := firstString(raw, "workflow_event", "event_type")
	if eventType == "" {
		eventType = "n8n_event"
	}

	return Event{
		EventType:        eventType,
		DealRoomID:       firstString(raw, "deal_room_id"),
		AgentID:          agentID,
		WorkflowID:       workflowID,
		EntityType:       firstString(raw, "entity_type"),
		EntityID:         firstString(raw, "entity_id"),
		OutcomeType:      firstString(raw, "outcome"),
		ValueAmount:      firstFloat(raw, "value_amount"),
		Metadata:         metadataBag(raw),
		AttributionChain: chainFrom(raw, workflowID, agentID),
	}
}

// HubSpot webhook subscriptions. These carry no deal-room id of their own;
// outcome classification is shape-dependent rather than field-mapped.
func normalizeHubSpot(raw map[string]any) Event {
	subscription := firstString(raw, "subscriptionType")
	objectType := firstString(raw, "objectType")

	eventType := subscription
	if eventType == "" {
		eventType = "hubspot_event"
	}

	meta := map[string]any{}
	for _, k := range []string{"portalId", "propertyName", "propertyValue", "occurredAt", "changeSource"} {
		if v, ok := raw[k]; ok {
			meta[k] = v
		}
	}
	if len(meta) == 0 {
		meta = nil
	}

	return Event{
		EventType:   eventType,
		EntityType:  strings.ToLower(objectType),
		EntityID:    firstString(raw, "objectId"),
		OutcomeType: classifyHubSpotOutcome(raw, subscription, objectType),
		Metadata:    meta,
	}
}

// classifyHubSpotOutcome maps payload shape to the canonical outcome
// vocabulary: a meeting-creation event is meeting_set, and a dealstage change
// whose new value contains a closed-won marker is deal_closed. The marker
// match is case-insensitive.
func classifyHubSpotOutcome(raw map[string]any, subscription, objectType string) string {
	sub := strings.ToLower(subscription)
	if strings.Contains(sub, "meeting") && strings.Contains(sub, "creation") {
		return "meeting_set"
	}
	if strings.Contains(sub, "creation") && strings.EqualFold(objectType, "MEETING") {
		return "meeting_set"
	}
	if strings.EqualFold(firstString(raw, "propertyName"), "dealstage") {
		value := strings.ToLower(firstString(raw, "propertyValue"))
		if strings.Contains(value, "closedwon") {
			return "deal_closed"
		}
	}
	return ""
}

// Fallback for sources without a dedicated mapping: read each field from the
// first of several plausible key names, else leave it unset.
func normalizeGeneric(raw map[string]any) Event {
	agentID := firstString(raw, "agent_id", "agentId")
	workflowID := firstString(raw, "workflow_id", "workflowId")

	return Event{
		EventType:        firstString(raw, "event_type", "type", "action", "event"),
		DealRoomID:       firstString(raw, "deal_room_id", "dealRoomId", "room_id"),
		AgentID:          agentID,
		WorkflowID:       workflowID,
		EntityType:       firstString(raw, "entity_type", "entityType", "object_type"),
		EntityID:         firstString(raw, "entity_id", "entityId", "object_id"),
		OutcomeType:      firstString(raw, "outcome_type", "outcome"),
		ValueAmount:      firstFloat(raw, "value_amount", "amount", "value"),
		Metadata:         metadataBag(raw),
		AttributionChain: chainFrom(raw, workflowID, agentID),
	}
}
