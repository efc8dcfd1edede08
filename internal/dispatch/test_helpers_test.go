package dispatch

import (
	"context"
	"errors"

	"workflow-event-router/internal/normalize"
	"workflow-event-router/internal/settlement"
	"workflow-event-router/internal/store"
)

func floatPtr(v float64) *float64 { return &v }

type fakeAttributionStore struct {
	rules    []store.AttributionRule
	rulesErr error
	credits  []store.AttributionCredit
}

func (f *fakeAttributionStore) ActiveAttributionRules(_ context.Context, dealRoomID, outcomeType string) ([]store.AttributionRule, error) {
	if f.rulesErr != nil {
		return nil, f.rulesErr
	}
	var out []store.AttributionRule
	for _, r := range f.rules {
		if r.DealRoomID == dealRoomID && r.OutcomeType == outcomeType && r.Active {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttributionStore) InsertAttributionCredit(_ context.Context, c store.AttributionCredit) (string, error) {
	f.credits = append(f.credits, c)
	return store.NewID(), nil
}

type fakeContractStore struct {
	contracts []store.SettlementContract
	err       error
}

func (f *fakeContractStore) ActiveSettlementContracts(_ context.Context, dealRoomID string) ([]store.SettlementContract, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []store.SettlementContract
	for _, c := range f.contracts {
		if c.DealRoomID == dealRoomID && c.Active {
			out = append(out, c)
		}
	}
	return out, nil
}

type fakeExecutor struct {
	calls     []settlement.ExecuteRequest
	responses map[string]settlement.ExecuteResponse
	failFor   map[string]error
}

func (f *fakeExecutor) Execute(_ context.Context, req settlement.ExecuteRequest) (settlement.ExecuteResponse, error) {
	f.calls = append(f.calls, req)
	if err, ok := f.failFor[req.ContractID]; ok {
		return settlement.ExecuteResponse{}, err
	}
	if resp, ok := f.responses[req.ContractID]; ok {
		return resp, nil
	}
	return settlement.ExecuteResponse{Success: true}, nil
}

type fakeMeterStore struct {
	meter   *store.CreditMeter
	records []store.UsageRecord
}

func (f *fakeMeterStore) CreditMeterFor(_ context.Context, dealRoomID, platformName string) (store.CreditMeter, error) {
	if f.meter == nil || f.meter.DealRoomID != dealRoomID || f.meter.PlatformName != platformName {
		return store.CreditMeter{}, store.ErrNotFound
	}
	return *f.meter, nil
}

func (f *fakeMeterStore) InsertUsageRecord(_ context.Context, u store.UsageRecord) (string, error) {
	f.records = append(f.records, u)
	return store.NewID(), nil
}

type fakeCRMStore struct {
	conn *store.CRMConnection
}

func (f *fakeCRMStore) ActiveCRMConnection(_ context.Context, dealRoomID, provider string) (store.CRMConnection, error) {
	if f.conn == nil || f.conn.DealRoomID != dealRoomID || f.conn.Provider != provider {
		return store.CRMConnection{}, store.ErrNotFound
	}
	return *f.conn, nil
}

type fakeLedgerStore struct {
	events []store.ContributionEvent
	err    error
}

func (f *fakeLedgerStore) InsertContributionEvent(_ context.Context, e store.ContributionEvent) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	e.ID = store.NewID()
	f.events = append(f.events, e)
	return e.ID, nil
}

// stubHandler is a minimal Handler for dispatcher-level tests.
type stubHandler struct {
	name    string
	applies bool
	out     any
	err     error
	panics  bool
	ran     *bool
}

func (s stubHandler) Name() string { return s.name }

func (s stubHandler) Applies(_ normalize.Event) bool { return s.applies }

func (s stubHandler) Handle(_ context.Context, _ normalize.Event) (any, error) {
	if s.ran != nil {
		*s.ran = true
	}
	if s.panics {
		panic("boom")
	}
	return s.out, s.err
}

var errStub = errors.New("stub failure")
