package snipe

import (
	"context"
	"log/slog"
	"sync/atomic"

	twitch "github.com/gempir/go-twitch-irc/v4"

	"github.com/longshot-dev/longshot/cache"
	"github.com/longshot-dev/longshot/config"
	"github.com/longshot-dev/longshot/platform"
)

// Session initialization states. Events are processed only once the profile
// is resolved; until then inbound messages are dropped.
const (
	sessionUninitialized int32 = iota
	sessionInitializing
	sessionReady
)

// Session is one authenticated chat connection. It owns its credential, its
// profile (written once during initialization), and a location cache; all
// cross-session state lives in the shared State.
type Session struct {
	cred      config.Credential
	shared    *State
	locations *cache.LocationCache

	state   atomic.Int32
	profile platform.Profile
}

// NewSession prepares a session for one credential. The session connects when
// Run is called.
func NewSession(cred config.Credential, shared *State) *Session {
	return &Session{
		cred:      cred,
		shared:    shared,
		locations: cache.New(shared.API, cred.Token),
	}
}

// Ready reports whether the session finished initialization.
func (s *Session) Ready() bool { return s.state.Load() == sessionReady }

// Run connects to the chat gateway and blocks until the connection
// terminates. The context cancels the connection; a failed session is
// reported through the returned error and abandoned, never retried.
func (s *Session) Run(ctx context.Context) error {
	client := twitch.NewClient(s.cred.Username, "oauth:"+s.cred.Token)
	if addr := s.shared.Cfg.GatewayAddr; addr != "" {
		client.IrcAddress = addr
		client.TLS = s.shared.Cfg.GatewayTLS
	}

	client.OnConnect(func() {
		s.initialize(ctx)
	})
	client.OnPrivateMessage(func(m twitch.PrivateMessage) {
		s.HandleEvent(ctx, eventFromMessage(m))
	})

	client.Join(s.shared.Cfg.Channels...)

	// Close the connection when the run context ends.
	go func() {
		<-ctx.Done()
		if err := client.Disconnect(); err != nil {
			slog.Debug("gateway disconnect", slog.Any("err", err))
		}
	}()

	err := client.Connect()
	if s.Ready() {
		s.shared.recordSessionGone()
	}
	return err
}

// initialize resolves the session profile and reports readiness exactly once.
// The state machine gates event handling: Uninitialized -> Initializing ->
// Ready, and a failed fetch returns to Uninitialized so events stay dropped.
func (s *Session) initialize(ctx context.Context) {
	if !s.state.CompareAndSwap(sessionUninitialized, sessionInitializing) {
		return
	}
	profile, err := s.shared.API.GetProfile(ctx, s.cred.Token)
	if err != nil {
		s.state.Store(sessionUninitialized)
		slog.Error("session profile fetch failed",
			slog.String("account", s.cred.Username), slog.Any("err", err))
		return
	}
	s.profile = profile
	s.state.Store(sessionReady)
	s.shared.RecordSessionReady(profile, len(s.shared.Cfg.Channels))
}
