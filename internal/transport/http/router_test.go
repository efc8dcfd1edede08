package httptransport

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"workflow-event-router/internal/config"
	"workflow-event-router/internal/dispatch"
)

func TestPreflightOptionsIsEmpty200(t *testing.T) {
	r := NewRouter(nil, config.ServerConfig{}, dispatch.New())
	req := httptest.NewRequest(http.MethodOptions, "/webhooks/events", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "x-webhook-signature, content-type")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("preflight status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Fatalf("preflight body = %q, want empty", rec.Body.String())
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("allow-origin = %q", got)
	}
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantLimit  int
		wantOffset int
	}{
		{name: "defaults", query: "", wantLimit: 50, wantOffset: 0},
		{name: "explicit", query: "limit=10&offset=20", wantLimit: 10, wantOffset: 20},
		{name: "clamped low", query: "limit=0&offset=-5", wantLimit: 1, wantOffset: 0},
		{name: "clamped high", query: "limit=9999", wantLimit: 500, wantOffset: 0},
		{name: "garbage ignored", query: "limit=abc&offset=xyz", wantLimit: 50, wantOffset: 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/audit?"+tt.query, nil)
			limit, offset := ParsePagination(req)
			if limit != tt.wantLimit || offset != tt.wantOffset {
				t.Fatalf("got (%d,%d), want (%d,%d)", limit, offset, tt.wantLimit, tt.wantOffset)
			}
		})
	}
}
