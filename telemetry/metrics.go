// Package telemetry provides Prometheus metrics and correlation-id aware logging helpers.
package telemetry

import (
	"context"
	"log/slog"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	once sync.Once

	// Counters
	CodesSeen       prometheus.Counter
	ClaimsAttempted prometheus.Counter
	Outcomes        *prometheus.CounterVec
	Notifications   prometheus.Counter

	// Histograms (seconds)
	RedeemDuration prometheus.Observer

	// Gauges
	SessionsConnected prometheus.Gauge
	GuildsTotal       prometheus.Gauge
)

// Init registers metrics (idempotent).
func Init() {
	once.Do(func() {
		CodesSeen = promauto.NewCounter(prometheus.CounterOpts{Name: "longshot_codes_seen_total", Help: "Number of candidate codes extracted from chat"})
		ClaimsAttempted = promauto.NewCounter(prometheus.CounterOpts{Name: "longshot_claims_attempted_total", Help: "Number of codes claimed in the dedup set and sent for redemption"})
		Outcomes = promauto.NewCounterVec(prometheus.CounterOpts{Name: "longshot_redeem_outcomes_total", Help: "Redeem attempts by classified outcome"}, []string{"outcome"})
		Notifications = promauto.NewCounter(prometheus.CounterOpts{Name: "longshot_notifications_dispatched_total", Help: "Webhook notifications dispatched (delivery is fire-and-forget)"})
		RedeemDuration = promauto.NewHistogram(prometheus.HistogramOpts{Name: "longshot_redeem_duration_seconds", Help: "Redeem request duration seconds", Buckets: prometheus.DefBuckets})
		SessionsConnected = promauto.NewGauge(prometheus.GaugeOpts{Name: "longshot_sessions_connected", Help: "Sessions currently connected to the chat gateway"})
		GuildsTotal = promauto.NewGauge(prometheus.GaugeOpts{Name: "longshot_guilds_total", Help: "Total guilds observed across connected sessions"})
	})
}

// CountOutcome increments the outcome counter if metrics are initialized.
func CountOutcome(name string) {
	if Outcomes != nil {
		Outcomes.WithLabelValues(name).Inc()
	}
}

// ObserveRedeem records one redeem duration in seconds.
func ObserveRedeem(seconds float64) {
	if RedeemDuration != nil {
		RedeemDuration.Observe(seconds)
	}
}

// Correlation ID helpers ----------------------------------------------------
type corrKeyType struct{}

var corrKey corrKeyType

// WithCorrelation returns a new context embedding the correlation id.
func WithCorrelation(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, corrKey, id)
}

// GetCorrelation returns the correlation id or empty string.
func GetCorrelation(ctx context.Context) string {
	if s, ok := ctx.Value(corrKey).(string); ok {
		return s
	}
	return ""
}

// LoggerWithCorr returns a logger with a corr attribute if present.
func LoggerWithCorr(ctx context.Context) *slog.Logger {
	if id := GetCorrelation(ctx); id != "" {
		return slog.Default().With(slog.String("corr", id))
	}
	return slog.Default()
}
