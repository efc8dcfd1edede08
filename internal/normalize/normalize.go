package normalize

import (
	"strconv"
	"strings"
)

// Func maps one raw payload into a canonical Event. Implementations are pure:
// no I/O, no clock, and they must not fail — an unrecognized shape degrades to
// whatever fields could be read.
type Func func(raw map[string]any) Event

// registry keys are lowercased source identifiers. Adding a platform means
// adding one entry here plus its mapping function; unknown sources fall back
// to the permissive generic mapping.
var registry = map[string]Func{
	"zapier":  normalizeZapier,
	"n8n":     normalizeN8N,
	"hubspot": normalizeHubSpot,
}

// Normalize maps rawPayload into the canonical event shape using the mapping
// registered for sourceHint (matched case-insensitively). It never fails:
// unmapped events come back with EventType "unknown" and the raw payload
// preserved as-is.
func Normalize(sourceHint string, raw map[string]any) Event {
	source := strings.ToLower(strings.TrimSpace(sourceHint))
	if source == "" {
		source = "unknown"
	}
	fn, ok := registry[source]
	if !ok {
		fn = normalizeGeneric
	}

	ev := fn(raw)
	ev.SourcePlatform = source
	if ev.EventType == "" {
		ev.EventType = "unknown"
	}
	ev.RawPayload = raw
	if ev.IdempotencyKey == "" {
		ev.IdempotencyKey = firstString(raw, "idempotency_key")
	}
	return ev
}

// Known reports whether a dedicated mapping exists for the source identifier.
func Known(source string) bool {
	_, ok := registry[strings.ToLower(strings.TrimSpace(source))]
	return ok
}

func firstString(raw map[string]any, keys ...string) string {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		if s := scalarString(v); s != "" {
			return s
		}
	}
	return ""
}

func scalarString(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func firstFloat(raw map[string]any, keys ...string) *float64 {
	for _, k := range keys {
		v, ok := raw[k]
		if !ok {
			continue
		}
		switch t := v.(type) {
		case float64:
			f := t
			return &f
		case int:
			f := float64(t)
			return &f
		case int64:
			f := float64(t)
			return &f
		case string:
			if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
				return &f
			}
		}
	}
	return nil
}

// chainFrom reads an explicit attribution_chain array from the payload, else
// synthesizes hops from the workflow and agent ids. Synthesized hops carry no
// timestamp: normalization stays deterministic for identical input.
func chainFrom(raw map[string]any, workflowID, agentID string) []Hop {
	if arr, ok := raw["attribution_chain"].([]any); ok {
		hops := make([]Hop, 0, len(arr))
		for _, item := range arr {
			m, ok := item.(map[string]any)
			if !ok {
				continue
			}
			hop := Hop{
				Type:      scalarString(m["type"]),
				ID:        scalarString(m["id"]),
				Timestamp: scalarString(m["timestamp"]),
			}
			if hop.Type == "" && hop.ID == "" {
				continue
			}
			hops = append(hops, hop)
		}
		if len(hops) > 0 {
			return hops
		}
	}

	var hops []Hop
	if workflowID != "" {
		hops = append(hops, Hop{Type: "workflow", ID: workflowID})
	}
	if agentID != "" {
		hops = append(hops, Hop{Type: "agent", ID: agentID})
	}
	return hops
}

func metadataBag(raw map[string]any) map[string]any {
	m, ok := raw["metadata"].(map[string]any)
	if !ok {
		return nil
	}
	return m
}
