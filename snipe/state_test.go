package snipe

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/longshot-dev/longshot/config"
	"github.com/longshot-dev/longshot/platform"
)

func newBareState() *State {
	return NewState(&platform.Client{BaseURL: "http://api.invalid"}, &config.Config{}, nil, nil, nil, 2)
}

func TestTryClaimExactlyOnce(t *testing.T) {
	s := newBareState()

	const workers = 64
	var wins atomic.Int64
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if s.TryClaim("ABC123XYZ0") {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	if wins.Load() != 1 {
		t.Fatalf("TryClaim returned true %d times, want exactly 1", wins.Load())
	}
	if s.CodesSeen() != 1 {
		t.Fatalf("codes seen = %d, want 1", s.CodesSeen())
	}
}

func TestTryClaimDistinctCodes(t *testing.T) {
	s := newBareState()
	for _, code := range []string{"AAAABBBB1", "CCCCDDDD2", "EEEEFFFF3"} {
		if !s.TryClaim(code) {
			t.Errorf("first claim of %q lost", code)
		}
		if s.TryClaim(code) {
			t.Errorf("second claim of %q won", code)
		}
	}
	if s.CodesSeen() != 3 {
		t.Fatalf("codes seen = %d, want 3", s.CodesSeen())
	}
}

func TestRecordSessionReadyAggregates(t *testing.T) {
	s := newBareState()
	s.RecordSessionReady(platform.Profile{Username: "a"}, 3)
	s.RecordSessionReady(platform.Profile{Username: "b"}, 5)

	if s.Connected() != 2 {
		t.Errorf("connected = %d, want 2", s.Connected())
	}
	if s.TotalGuilds() != 8 {
		t.Errorf("total guilds = %d, want 8", s.TotalGuilds())
	}
	if s.CredentialCount() != 2 {
		t.Errorf("credential count = %d, want 2", s.CredentialCount())
	}
}
