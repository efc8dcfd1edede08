package httptransport

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"workflow-event-router/internal/dispatch"
	"workflow-event-router/internal/normalize"
	"workflow-event-router/internal/settlement"
	"workflow-event-router/internal/store"
)

type fakeAudit struct {
	entries []store.AuditEntry
	seen    map[string]string
	fail    bool
}

func (f *fakeAudit) RecordAuditEntry(_ context.Context, e store.AuditEntry) (store.AuditResult, error) {
	if f.fail {
		return store.AuditResult{}, context.DeadlineExceeded
	}
	if e.IdempotencyKey != "" {
		if id, ok := f.seen[e.IdempotencyKey]; ok {
			return store.AuditResult{ID: id, Duplicate: true}, nil
		}
	}
	id := store.NewID()
	f.entries = append(f.entries, e)
	if e.IdempotencyKey != "" {
		if f.seen == nil {
			f.seen = map[string]string{}
		}
		f.seen[e.IdempotencyKey] = id
	}
	return store.AuditResult{ID: id}, nil
}

type memAttribution struct{}

func (memAttribution) ActiveAttributionRules(context.Context, string, string) ([]store.AttributionRule, error) {
	return nil, nil
}
func (memAttribution) InsertAttributionCredit(context.Context, store.AttributionCredit) (string, error) {
	return store.NewID(), nil
}

type memContracts struct{}

func (memContracts) ActiveSettlementContracts(context.Context, string) ([]store.SettlementContract, error) {
	return nil, nil
}

type memExecutor struct{}

func (memExecutor) Execute(context.Context, settlement.ExecuteRequest) (settlement.ExecuteResponse, error) {
	return settlement.ExecuteResponse{Success: true}, nil
}

type memMeters struct{ records []store.UsageRecord }

func (m *memMeters) CreditMeterFor(context.Context, string, string) (store.CreditMeter, error) {
	return store.CreditMeter{}, store.ErrNotFound
}
func (m *memMeters) InsertUsageRecord(_ context.Context, u store.UsageRecord) (string, error) {
	m.records = append(m.records, u)
	return store.NewID(), nil
}

type memCRM struct{}

func (memCRM) ActiveCRMConnection(context.Context, string, string) (store.CRMConnection, error) {
	return store.CRMConnection{}, store.ErrNotFound
}

type memLedger struct{ events []store.ContributionEvent }

func (m *memLedger) InsertContributionEvent(_ context.Context, e store.ContributionEvent) (string, error) {
	e.ID = store.NewID()
	m.events = append(m.events, e)
	return e.ID, nil
}

type countingHandler struct{ runs int }

func (h *countingHandler) Name() string { return "counting" }

func (h *countingHandler) Applies(normalize.Event) bool { return true }

func (h *countingHandler) Handle(context.Context, normalize.Event) (any, error) {
	h.runs++
	return map[string]any{"runs": h.runs}, nil
}

func emptyDispatcher(ledger *memLedger) *dispatch.Dispatcher {
	return dispatch.New(
		dispatch.NewAttributionHandler(memAttribution{}),
		dispatch.NewSettlementHandler(memContracts{}, memExecutor{}),
		dispatch.NewMeteringHandler(&memMeters{}),
		dispatch.NewCRMSyncHandler(memCRM{}, "hubspot"),
		dispatch.NewLedgerHandler(ledger),
	)
}

func postWebhook(t *testing.T, h *WebhookHandler, headers map[string]string, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/events", bytes.NewReader([]byte(body)))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.Receive()(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v\nbody=%s", err, rec.Body.String())
	}
	return out
}

func resultsByHandler(t *testing.T, resp map[string]any) map[string]map[string]any {
	t.Helper()
	raw, ok := resp["routing_results"].([]any)
	if !ok {
		t.Fatalf("routing_results missing: %+v", resp)
	}
	out := map[string]map[string]any{}
	for _, item := range raw {
		m := item.(map[string]any)
		out[m["handler"].(string)] = m
	}
	return out
}

func TestWebhookMalformedJSONIs400(t *testing.T) {
	h := NewWebhookHandler(&fakeAudit{}, emptyDispatcher(&memLedger{}), "")
	rec := postWebhook(t, h, nil, `{"truncated":`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["error"] != "invalid_json" {
		t.Fatalf("error = %v", resp["error"])
	}
}

func TestWebhookHubSpotDealStageScenario(t *testing.T) {
	audit := &fakeAudit{}
	h := NewWebhookHandler(audit, emptyDispatcher(&memLedger{}), "")
	rec := postWebhook(t, h,
		map[string]string{"x-source-platform": "hubspot"},
		`{"objectType":"DEAL","propertyName":"dealstage","propertyValue":"closedwon","objectId":"42"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["source_platform"] != "hubspot" {
		t.Fatalf("source = %v", resp["source_platform"])
	}
	if resp["event_type"] != "hubspot_event" {
		t.Fatalf("event_type = %v", resp["event_type"])
	}
	if resp["event_id"] == "" {
		t.Fatal("event_id must carry the audit id")
	}

	// No deal room can be determined from a HubSpot payload, so attribution,
	// settlement, and metering are all gated out; only CRM sync applies.
	results := resultsByHandler(t, resp)
	if len(results) != 1 {
		t.Fatalf("results = %+v", results)
	}
	crm, ok := results["crm_sync"]
	if !ok {
		t.Fatalf("crm_sync missing: %+v", results)
	}
	if crm["success"] != true {
		t.Fatalf("crm_sync = %+v", crm)
	}

	if len(audit.entries) != 1 {
		t.Fatalf("audit entries = %d", len(audit.entries))
	}
	if audit.entries[0].OutcomeType != "deal_closed" {
		t.Fatalf("audited outcome = %q", audit.entries[0].OutcomeType)
	}
}

func TestWebhookZeroValueMeetingScenario(t *testing.T) {
	ledger := &memLedger{}
	h := NewWebhookHandler(&fakeAudit{}, emptyDispatcher(ledger), "")
	rec := postWebhook(t, h,
		map[string]string{"x-source-platform": "internal"},
		`{"deal_room_id":"room-1","outcome_type":"meeting_set","agent_id":"agent-9","value_amount":0}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	results := resultsByHandler(t, decodeResponse(t, rec))

	// Settlement is gated out (value not > 0) and CRM sync too (no entity);
	// attribution, metering, and the ledger all run and succeed with nothing
	// configured.
	if len(results) != 3 {
		t.Fatalf("results = %+v", results)
	}
	attr := results["attribution"]
	if attr["success"] != true {
		t.Fatalf("attribution = %+v", attr)
	}
	attrRes := attr["result"].(map[string]any)
	if attrRes["rules_matched"] != float64(0) || attrRes["credits_assigned"] != float64(0) {
		t.Fatalf("attribution result = %+v", attrRes)
	}
	meter := results["credit_metering"]
	if meter["success"] != true {
		t.Fatalf("metering = %+v", meter)
	}
	if meter["result"].(map[string]any)["credits_logged"] != float64(0) {
		t.Fatalf("metering result = %+v", meter["result"])
	}
	if _, ok := results["settlement_trigger"]; ok {
		t.Fatal("settlement must be skipped for zero value")
	}
	ledgerRes := results["contribution_ledger"]
	if ledgerRes["success"] != true {
		t.Fatalf("ledger = %+v", ledgerRes)
	}
	if len(ledger.events) != 1 {
		t.Fatalf("ledger rows = %d", len(ledger.events))
	}
	e := ledger.events[0]
	if e.ComputeCredits != 2 || e.ActionCredits != 10 || e.OutcomeCredits != 15 {
		t.Fatalf("ledger credits = {%d %d %d}", e.ComputeCredits, e.ActionCredits, e.OutcomeCredits)
	}
}

func TestWebhookSourceFromBodyFallback(t *testing.T) {
	h := NewWebhookHandler(&fakeAudit{}, emptyDispatcher(&memLedger{}), "")
	rec := postWebhook(t, h, nil, `{"source":"n8n","workflow_event":"ping"}`)
	resp := decodeResponse(t, rec)
	if resp["source_platform"] != "n8n" {
		t.Fatalf("source = %v", resp["source_platform"])
	}
	if resp["event_type"] != "ping" {
		t.Fatalf("event_type = %v", resp["event_type"])
	}
}

func TestWebhookAuditFailureDoesNotAbort(t *testing.T) {
	h := NewWebhookHandler(&fakeAudit{fail: true}, emptyDispatcher(&memLedger{}), "")
	rec := postWebhook(t, h,
		map[string]string{"x-source-platform": "internal"},
		`{"deal_room_id":"room-1","outcome_type":"meeting_set","agent_id":"agent-9"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, audit failure must not abort the request", rec.Code)
	}
	resp := decodeResponse(t, rec)
	if resp["success"] != true {
		t.Fatalf("resp = %+v", resp)
	}
	if len(resultsByHandler(t, resp)) == 0 {
		t.Fatal("handlers must still run after an audit failure")
	}
}

func TestWebhookIdempotencyShortCircuit(t *testing.T) {
	counter := &countingHandler{}
	h := NewWebhookHandler(&fakeAudit{}, dispatch.New(counter), "")
	headers := map[string]string{"x-idempotency-key": "delivery-1"}
	body := `{"event_type":"x"}`

	first := decodeResponse(t, postWebhook(t, h, headers, body))
	if first["duplicate"] == true {
		t.Fatalf("first delivery marked duplicate: %+v", first)
	}
	if counter.runs != 1 {
		t.Fatalf("runs after first = %d", counter.runs)
	}

	second := decodeResponse(t, postWebhook(t, h, headers, body))
	if second["duplicate"] != true {
		t.Fatalf("second delivery not marked duplicate: %+v", second)
	}
	if second["event_id"] != first["event_id"] {
		t.Fatalf("duplicate must return the original audit id")
	}
	if counter.runs != 1 {
		t.Fatalf("handlers re-ran on duplicate delivery; runs = %d", counter.runs)
	}
}

func TestWebhookSignatureVerification(t *testing.T) {
	secret := "topsecret"
	body := `{"event_type":"x"}`
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	goodSig := hex.EncodeToString(mac.Sum(nil))

	h := NewWebhookHandler(&fakeAudit{}, emptyDispatcher(&memLedger{}), secret)

	rec := postWebhook(t, h, map[string]string{"x-webhook-signature": goodSig}, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid signature rejected: %d", rec.Code)
	}

	rec = postWebhook(t, h, map[string]string{"x-webhook-signature": "sha256=" + goodSig}, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("prefixed signature rejected: %d", rec.Code)
	}

	rec = postWebhook(t, h, map[string]string{"x-webhook-signature": "deadbeef"}, body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad signature accepted: %d", rec.Code)
	}

	rec = postWebhook(t, h, nil, body)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing signature accepted: %d", rec.Code)
	}
}
