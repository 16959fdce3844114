// Package snipe implements the concurrent redemption pipeline: shared
// coordination state, the per-session event pipeline, and the supervisor that
// drives one session per credential.
package snipe

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/longshot-dev/longshot/config"
	"github.com/longshot-dev/longshot/history"
	"github.com/longshot-dev/longshot/logblock"
	"github.com/longshot-dev/longshot/platform"
	"github.com/longshot-dev/longshot/telemetry"
	"github.com/longshot-dev/longshot/webhook"
)

// State is the coordination state shared by every session of one process.
// Interior mutability is confined to the guarded dedup set and the atomic
// counters; everything else is set once at construction.
type State struct {
	API     *platform.Client
	Cfg     *config.Config
	Webhook *webhook.Dispatcher // nil disables notifications
	Sink    logblock.Sink
	History *history.Store // nil disables the attempt audit log

	credentialCount int

	mu        sync.Mutex
	seenCodes map[string]struct{}

	connected   atomic.Int64
	totalGuilds atomic.Int64
}

// NewState builds the shared state for a run across credentialCount sessions.
func NewState(api *platform.Client, cfg *config.Config, wh *webhook.Dispatcher, sink logblock.Sink, hist *history.Store, credentialCount int) *State {
	telemetry.Init()
	if sink == nil {
		sink = &logblock.WriterSink{}
	}
	return &State{
		API:             api,
		Cfg:             cfg,
		Webhook:         wh,
		Sink:            sink,
		History:         hist,
		credentialCount: credentialCount,
		seenCodes:       make(map[string]struct{}),
	}
}

// TryClaim atomically tests whether code was seen before and inserts it if
// not. It returns true only to the single caller that performed the insert.
// The lock covers the test-and-insert alone; it is never held across I/O.
func (s *State) TryClaim(code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, seen := s.seenCodes[code]; seen {
		return false
	}
	s.seenCodes[code] = struct{}{}
	return true
}

// CodesSeen returns the number of codes claimed so far.
func (s *State) CodesSeen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.seenCodes)
}

// RecordSessionReady registers a session's first successful handshake. Each
// session calls it exactly once.
func (s *State) RecordSessionReady(profile platform.Profile, guildCount int) {
	s.totalGuilds.Add(int64(guildCount))
	connected := s.connected.Add(1)

	telemetry.SessionsConnected.Inc()
	telemetry.GuildsTotal.Set(float64(s.totalGuilds.Load()))

	slog.Info("connected; now sniping",
		slog.String("account", profile.Username),
		slog.Int("guilds", guildCount))

	if int(connected) == s.credentialCount && s.credentialCount > 1 {
		slog.Info("connected to all accounts",
			slog.Int("accounts", s.credentialCount),
			slog.Int64("total_guilds", s.totalGuilds.Load()))
	}
}

// recordSessionGone updates the live-session gauge when a ready session's
// connection terminates. The readiness counters stay monotonic.
func (s *State) recordSessionGone() {
	telemetry.SessionsConnected.Dec()
}

// Connected returns the number of sessions that have reported readiness.
func (s *State) Connected() int { return int(s.connected.Load()) }

// TotalGuilds returns the aggregate guild count across ready sessions.
func (s *State) TotalGuilds() int { return int(s.totalGuilds.Load()) }

// CredentialCount returns the fixed number of sessions this run drives.
func (s *State) CredentialCount() int { return s.credentialCount }
