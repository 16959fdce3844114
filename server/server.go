// Package server exposes the HTTP surface: health, run status, and metrics.
// It injects correlation IDs into request contexts for consistent logging.
package server

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/longshot-dev/longshot/snipe"
	"github.com/longshot-dev/longshot/telemetry"
)

// NewMux returns the HTTP handler with all routes.
func NewMux(state *snipe.State) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handleHealthz)
	mux.HandleFunc("/status", handleStatus(state))

	// Wrap with correlation ID injection.
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		corr := r.Header.Get("X-Correlation-ID")
		if corr == "" {
			corr = uuid.New().String()
		}
		ctx := telemetry.WithCorrelation(r.Context(), corr)
		w.Header().Set("X-Correlation-ID", corr)
		mux.ServeHTTP(w, r.WithContext(ctx))
	})
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

type statusResponse struct {
	SessionsConnected int `json:"sessions_connected"`
	CredentialCount   int `json:"credential_count"`
	TotalGuilds       int `json:"total_guilds"`
	CodesSeen         int `json:"codes_seen"`
}

func handleStatus(state *snipe.State) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := statusResponse{
			SessionsConnected: state.Connected(),
			CredentialCount:   state.CredentialCount(),
			TotalGuilds:       state.TotalGuilds(),
			CodesSeen:         state.CodesSeen(),
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(resp); err != nil {
			telemetry.LoggerWithCorr(r.Context()).Warn("status encode failed", slog.Any("err", err))
		}
	}
}

// New returns an http.Server with conservative timeouts for the given handler.
func New(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
