// Package logblock accumulates the ordered, severity-tagged lines produced
// while one chat event is processed and flushes them as a single atomic unit,
// so concurrent sessions never interleave output inside one another's blocks.
package logblock

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"
)

// Sink receives one fully rendered block per flushed event. Implementations
// must keep each WriteBlock call contiguous in the final output.
type Sink interface {
	WriteBlock(block string)
}

// WriterSink serializes blocks onto a writer. The zero value writes to stdout.
type WriterSink struct {
	mu sync.Mutex
	W  io.Writer
}

func (s *WriterSink) WriteBlock(block string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := s.W
	if w == nil {
		w = os.Stdout
	}
	fmt.Fprint(w, block)
}

// Entry is one timestamped line inside a block.
type Entry struct {
	Level       slog.Level
	Text        string
	Highlighted bool
}

type state int

const (
	stateOpen state = iota
	stateTimeFrozen
	stateFlushed
)

// Block is the log record for a single event. It is owned by the goroutine
// processing that event and is not safe for concurrent use.
type Block struct {
	profile string
	entries []Entry
	start   time.Time
	elapsed time.Duration
	state   state
	now     func() time.Time // test override
}

// New opens a block attributed to the given profile name.
func New(profile string) *Block {
	return &Block{profile: profile, start: time.Now(), now: time.Now}
}

// AddEntry appends a line. Entries appended after Flush are dropped.
func (b *Block) AddEntry(level slog.Level, text string, highlighted bool) {
	if b.state == stateFlushed {
		return
	}
	b.entries = append(b.entries, Entry{Level: level, Text: text, Highlighted: highlighted})
}

// Infof, Warnf and Errorf are convenience wrappers for plain entries.
func (b *Block) Infof(format string, args ...any) {
	b.AddEntry(slog.LevelInfo, fmt.Sprintf(format, args...), false)
}

func (b *Block) Warnf(format string, args ...any) {
	b.AddEntry(slog.LevelWarn, fmt.Sprintf(format, args...), false)
}

func (b *Block) Errorf(format string, args ...any) {
	b.AddEntry(slog.LevelError, fmt.Sprintf(format, args...), false)
}

// Successf appends a highlighted info entry.
func (b *Block) Successf(format string, args ...any) {
	b.AddEntry(slog.LevelInfo, fmt.Sprintf(format, args...), true)
}

// FreezeTime fixes the block's elapsed time. The first call wins; later calls
// are no-ops.
func (b *Block) FreezeTime() {
	if b.state != stateOpen {
		return
	}
	b.elapsed = b.now().Sub(b.start)
	b.state = stateTimeFrozen
}

// Elapsed returns the frozen elapsed time, or zero while the block is open.
func (b *Block) Elapsed() time.Duration {
	if b.state == stateOpen {
		return 0
	}
	return b.elapsed
}

// Entries returns the appended entries in insertion order.
func (b *Block) Entries() []Entry { return b.entries }

// Flush renders the block (header, entries, elapsed footer) and hands it to
// the sink in one call. Only the first Flush emits anything; the block is
// discarded afterwards. If the time was never frozen, Flush freezes it.
func (b *Block) Flush(sink Sink, location, sender string) {
	if b.state == stateFlushed {
		return
	}
	b.FreezeTime()
	b.state = stateFlushed

	var sb strings.Builder
	fmt.Fprintf(&sb, "\n%s › (%s) [%s > %s]\n",
		b.now().Format("15:04:05"), b.profile, location, sender)
	for _, e := range b.entries {
		fmt.Fprintf(&sb, " (%s) %s\n", glyph(e.Level), e.Text)
	}
	fmt.Fprintf(&sb, "Finished in: %dms\n", b.elapsed.Milliseconds())
	sink.WriteBlock(sb.String())
}

func glyph(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "✗"
	case level >= slog.LevelWarn:
		return "!"
	case level >= slog.LevelInfo:
		return "+"
	default:
		return "*"
	}
}
