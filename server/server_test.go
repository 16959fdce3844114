package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/longshot-dev/longshot/config"
	"github.com/longshot-dev/longshot/platform"
	"github.com/longshot-dev/longshot/snipe"
)

func newTestState() *snipe.State {
	return snipe.NewState(&platform.Client{BaseURL: "http://api.invalid"}, &config.Config{}, nil, nil, nil, 3)
}

func TestHealthz(t *testing.T) {
	h := NewMux(newTestState())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if rec.Header().Get("X-Correlation-ID") == "" {
		t.Error("missing correlation id header")
	}
}

func TestCorrelationIDReused(t *testing.T) {
	h := NewMux(newTestState())
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Correlation-ID", "corr-123")
	h.ServeHTTP(rec, req)

	if got := rec.Header().Get("X-Correlation-ID"); got != "corr-123" {
		t.Fatalf("correlation id = %q, want corr-123", got)
	}
}

func TestStatus(t *testing.T) {
	state := newTestState()
	state.RecordSessionReady(platform.Profile{Username: "a"}, 4)
	state.TryClaim("ABC123XYZ0")

	h := NewMux(state)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp struct {
		SessionsConnected int `json:"sessions_connected"`
		CredentialCount   int `json:"credential_count"`
		TotalGuilds       int `json:"total_guilds"`
		CodesSeen         int `json:"codes_seen"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionsConnected != 1 || resp.CredentialCount != 3 || resp.TotalGuilds != 4 || resp.CodesSeen != 1 {
		t.Fatalf("status = %+v", resp)
	}
}

func TestMetricsExposed(t *testing.T) {
	h := NewMux(newTestState())
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
