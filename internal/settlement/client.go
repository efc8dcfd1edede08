// Package settlement holds the HTTP client for the settlement-execute peer
// service, the one outbound network hop this router makes.
package settlement

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"workflow-event-router/internal/normalize"
)

// Executor is what the settlement trigger handler needs; satisfied by Client.
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) (ExecuteResponse, error)
}

type TriggerData struct {
	Amount         *float64 `json:"amount,omitempty"`
	EntityType     string   `json:"entity_type,omitempty"`
	EntityID       string   `json:"entity_id,omitempty"`
	SourcePlatform string   `json:"source_platform,omitempty"`
}

type ExecuteRequest struct {
	ContractID       string          `json:"contract_id"`
	TriggerEvent     string          `json:"trigger_event"`
	TriggerData      TriggerData     `json:"trigger_data"`
	AttributionChain []normalize.Hop `json:"attribution_chain"`
}

type ExecuteResponse struct {
	Success              bool `json:"success"`
	ConfirmationRequired bool `json:"confirmation_required"`
}

type Client struct {
	endpoint string
	apiKey   string
	inner    *http.Client
}

// NewClient builds a client with a bounded per-call timeout so one slow
// settlement endpoint cannot stall the whole webhook response.
func NewClient(endpoint, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		endpoint: endpoint,
		apiKey:   apiKey,
		inner:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Execute(ctx context.Context, execReq ExecuteRequest) (ExecuteResponse, error) {
	raw, err := json.Marshal(execReq)
	if err != nil {
		return ExecuteResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(raw))
	if err != nil {
		return ExecuteResponse{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.inner.Do(req)
	if err != nil {
		return ExecuteResponse{}, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ExecuteResponse{}, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return ExecuteResponse{}, fmt.Errorf("settlement execute failed with status %d", resp.StatusCode)
	}

	var out ExecuteResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return ExecuteResponse{}, fmt.Errorf("settlement execute response: %w", err)
	}
	return out, nil
}
