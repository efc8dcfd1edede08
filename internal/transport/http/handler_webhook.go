package httptransport

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"workflow-event-router/internal/dispatch"
	"workflow-event-router/internal/normalize"
	"workflow-event-router/internal/store"

	"github.com/rs/zerolog/log"
)

// AuditStore is the slice of the store the webhook endpoint appends through.
type AuditStore interface {
	RecordAuditEntry(ctx context.Context, e store.AuditEntry) (store.AuditResult, error)
}

type WebhookHandler struct {
	audit  AuditStore
	disp   *dispatch.Dispatcher
	secret string
}

func NewWebhookHandler(audit AuditStore, d *dispatch.Dispatcher, secret string) *WebhookHandler {
	return &WebhookHandler{audit: audit, disp: d, secret: secret}
}

type webhookResponse struct {
	Success        bool              `json:"success"`
	EventID        string            `json:"event_id"`
	SourcePlatform string            `json:"source_platform"`
	EventType      string            `json:"event_type"`
	Duplicate      bool              `json:"duplicate,omitempty"`
	RoutingResults []dispatch.Result `json:"routing_results"`
}

// Receive is the webhook entry point. Malformed JSON is a client error and
// comes back 400. The audit append is best-effort: its failure is logged but
// never aborts the request. Handler failures are isolated per handler and the
// response is 200 regardless; the sender inspects routing_results to see which
// derived effects landed.
func (h *WebhookHandler) Receive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "read_failed")
			return
		}
		if h.secret != "" && !verifySignature(h.secret, body, r.Header.Get("x-webhook-signature")) {
			WriteHTTPError(w, http.StatusUnauthorized, "invalid_signature")
			return
		}

		var raw map[string]any
		if err := json.Unmarshal(body, &raw); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_json")
			return
		}

		source := strings.TrimSpace(r.Header.Get("x-source-platform"))
		if source == "" {
			if s, ok := raw["source"].(string); ok {
				source = strings.TrimSpace(s)
			}
		}
		if source == "" {
			source = "unknown"
		}

		ev := normalize.Normalize(source, raw)
		if key := strings.TrimSpace(r.Header.Get("x-idempotency-key")); key != "" {
			ev.IdempotencyKey = key
		}

		auditRes, err := h.audit.RecordAuditEntry(r.Context(), auditEntryFrom(ev, body))
		if err != nil {
			// Best effort: the webhook still gets processed without an audit id.
			log.Error().Err(err).Str("source", ev.SourcePlatform).
				Str("event_type", ev.EventType).Msg("audit append failed")
		}
		if auditRes.Duplicate {
			writeJSON(w, http.StatusOK, webhookResponse{
				Success:        true,
				EventID:        auditRes.ID,
				SourcePlatform: ev.SourcePlatform,
				EventType:      ev.EventType,
				Duplicate:      true,
				RoutingResults: []dispatch.Result{},
			})
			return
		}

		results := h.disp.Dispatch(r.Context(), ev)
		writeJSON(w, http.StatusOK, webhookResponse{
			Success:        true,
			EventID:        auditRes.ID,
			SourcePlatform: ev.SourcePlatform,
			EventType:      ev.EventType,
			RoutingResults: results,
		})
	}
}

func auditEntryFrom(ev normalize.Event, body []byte) store.AuditEntry {
	return store.AuditEntry{
		EventType:      ev.EventType,
		SourcePlatform: ev.SourcePlatform,
		DealRoomID:     ev.DealRoomID,
		AgentID:        ev.AgentID,
		OutcomeType:    ev.OutcomeType,
		ValueAmount:    ev.ValueAmount,
		IdempotencyKey: ev.IdempotencyKey,
		RawPayload:     body,
	}
}

func verifySignature(secret string, body []byte, header string) bool {
	sig := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(header), "sha256="))
	if sig == "" {
		return false
	}
	provided, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hmac.Equal(provided, mac.Sum(nil))
}
