package snipe

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/longshot-dev/longshot/config"
)

// ErrAllSessionsGone is returned by Supervisor.Run once every session has
// terminated; the caller treats it as fatal.
var ErrAllSessionsGone = errors.New("lost all connections")

// Supervisor starts one independent session per unique credential and waits
// for all of them to terminate. Sessions do not affect each other: a failed
// connection is logged and abandoned.
type Supervisor struct {
	shared *State
	creds  []config.Credential
}

func NewSupervisor(shared *State, creds []config.Credential) *Supervisor {
	return &Supervisor{shared: shared, creds: creds}
}

// DedupeCredentials removes duplicate tokens while preserving order, so one
// account configured twice still yields one session.
func DedupeCredentials(creds []config.Credential) []config.Credential {
	seen := make(map[string]struct{}, len(creds))
	out := make([]config.Credential, 0, len(creds))
	for _, c := range creds {
		if _, dup := seen[c.Token]; dup {
			continue
		}
		seen[c.Token] = struct{}{}
		out = append(out, c)
	}
	return out
}

// Run blocks until every session has terminated and then returns
// ErrAllSessionsGone.
func (sv *Supervisor) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	for i, cred := range sv.creds {
		sess := NewSession(cred, sv.shared)
		wg.Add(1)
		go func(index int, s *Session) {
			defer wg.Done()
			if err := s.Run(ctx); err != nil {
				slog.Error("connection failed; check token validity",
					slog.Int("account_index", index), slog.Any("err", err))
				return
			}
			slog.Info("session disconnected", slog.Int("account_index", index))
		}(i, sess)
	}
	wg.Wait()
	return ErrAllSessionsGone
}
