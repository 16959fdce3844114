package logblock

import (
	"bytes"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

type captureSink struct {
	mu     sync.Mutex
	blocks []string
}

func (s *captureSink) WriteBlock(block string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blocks = append(s.blocks, block)
}

func TestFreezeTimeFirstCallWins(t *testing.T) {
	b := New("sniper")
	base := b.start
	times := []time.Time{base.Add(50 * time.Millisecond), base.Add(5 * time.Second)}
	i := 0
	b.now = func() time.Time {
		tm := times[i]
		if i < len(times)-1 {
			i++
		}
		return tm
	}

	b.FreezeTime()
	first := b.Elapsed()
	b.FreezeTime()
	if got := b.Elapsed(); got != first {
		t.Fatalf("second FreezeTime changed elapsed: %v -> %v", first, got)
	}
	if first != 50*time.Millisecond {
		t.Fatalf("elapsed = %v, want 50ms", first)
	}
}

func TestFlushRendersBlock(t *testing.T) {
	sink := &captureSink{}
	b := New("sniper")
	b.now = func() time.Time { return b.start.Add(123 * time.Millisecond) }
	b.Infof("Claiming code: %s!", "ABC123XYZ0")
	b.Successf("Yay! Claimed code!")
	b.Warnf("something odd")
	b.Errorf("something bad")

	b.Flush(sink, "My Guild > #drops", "someone")

	if len(sink.blocks) != 1 {
		t.Fatalf("expected 1 block, got %d", len(sink.blocks))
	}
	out := sink.blocks[0]
	for _, want := range []string{
		"(sniper) [My Guild > #drops > someone]",
		" (+) Claiming code: ABC123XYZ0!",
		" (+) Yay! Claimed code!",
		" (!) something odd",
		" (✗) something bad",
		"Finished in: 123ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("block missing %q in:\n%s", want, out)
		}
	}

	// Entries must appear in insertion order.
	idxClaim := strings.Index(out, "Claiming code")
	idxYay := strings.Index(out, "Yay!")
	idxWarn := strings.Index(out, "something odd")
	if !(idxClaim < idxYay && idxYay < idxWarn) {
		t.Errorf("entries out of order in:\n%s", out)
	}
}

func TestFlushOnlyOnce(t *testing.T) {
	sink := &captureSink{}
	b := New("sniper")
	b.Infof("hello")
	b.Flush(sink, "loc", "sender")
	b.Flush(sink, "loc", "sender")
	if len(sink.blocks) != 1 {
		t.Fatalf("expected a single flush, got %d", len(sink.blocks))
	}
}

func TestAddEntryAfterFlushDropped(t *testing.T) {
	sink := &captureSink{}
	b := New("sniper")
	b.Flush(sink, "loc", "sender")
	b.Infof("late entry")
	if len(b.Entries()) != 0 {
		t.Fatalf("entry appended after flush: %v", b.Entries())
	}
}

func TestFlushFreezesIfNeverFrozen(t *testing.T) {
	sink := &captureSink{}
	b := New("sniper")
	b.Flush(sink, "loc", "sender")
	if b.Elapsed() < 0 {
		t.Fatalf("elapsed not frozen on flush")
	}
}

func TestConcurrentBlocksDoNotInterleave(t *testing.T) {
	var buf bytes.Buffer
	sink := &WriterSink{W: &buf}

	const perWorker = 25
	var wg sync.WaitGroup
	for w := 0; w < 4; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				b := New("sniper")
				b.Infof("line one from worker %d", w)
				b.Warnf("line two from worker %d", w)
				b.Flush(sink, "loc", "sender")
			}
		}(w)
	}
	wg.Wait()

	// Every block carries two payload lines between header and footer; with no
	// interleaving the worker id on consecutive payload lines must match.
	lines := strings.Split(buf.String(), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, " (+) line one from worker") {
			next := lines[i+1]
			wantSuffix := strings.TrimPrefix(line, " (+) line one")
			if next != " (!) line two"+wantSuffix {
				t.Fatalf("interleaved block at line %d: %q then %q", i, line, next)
			}
		}
	}
}

func TestGlyphs(t *testing.T) {
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "*"},
		{slog.LevelInfo, "+"},
		{slog.LevelWarn, "!"},
		{slog.LevelError, "✗"},
	}
	for _, tt := range tests {
		if got := glyph(tt.level); got != tt.want {
			t.Errorf("glyph(%v) = %q, want %q", tt.level, got, tt.want)
		}
	}
}
