// Package outcome classifies redeem responses and owns the single table
// mapping each outcome to its log and notification presentation. Log text,
// severity, and embed content all derive from this table; nothing else in the
// codebase re-derives outcome-dependent presentation.
package outcome

import (
	"log/slog"
	"net/http"
)

// Outcome is the classified result of one redeem attempt.
type Outcome int

const (
	Success Outcome = iota
	FakeOrExpired
	AlreadyRedeemed
	RateLimited
	PlatformError
	ConnectionError
	Unknown
)

// String returns a stable machine-friendly name, used for metrics labels and
// the attempt history.
func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case FakeOrExpired:
		return "fake_or_expired"
	case AlreadyRedeemed:
		return "already_redeemed"
	case RateLimited:
		return "rate_limited"
	case PlatformError:
		return "platform_error"
	case ConnectionError:
		return "connection_error"
	default:
		return "unknown"
	}
}

// FromStatus maps a redeem HTTP status to an outcome. The mapping is total:
// every status maps to exactly one outcome. Transport failures never reach
// this function; callers classify them as ConnectionError directly.
func FromStatus(status int) Outcome {
	switch status {
	case http.StatusOK:
		return Success
	case http.StatusMethodNotAllowed:
		return PlatformError
	case http.StatusNotFound:
		return FakeOrExpired
	case http.StatusBadRequest:
		return AlreadyRedeemed
	case http.StatusTooManyRequests:
		return RateLimited
	default:
		return Unknown
	}
}

// Presentation carries everything outcome-dependent the logger and the
// notification dispatcher need.
type Presentation struct {
	LogText     string
	Level       slog.Level
	Highlighted bool

	Title       string
	Description string
	Color       int
}

const (
	colorGreen = 0x43B581
	colorRed   = 0xF04747
	colorBlack = 0x000000
)

var presentations = map[Outcome]Presentation{
	Success: {
		LogText:     "Yay! Claimed code!",
		Level:       slog.LevelInfo,
		Highlighted: true,
		Title:       "Yay! Claimed a Nitro!",
		Description: "Nitro successfully claimed!",
		Color:       colorGreen,
	},
	FakeOrExpired: {
		LogText:     "Code was fake or expired.",
		Level:       slog.LevelWarn,
		Title:       "Code was fake or expired",
		Description: "The code was invalid or already expired.",
		Color:       colorRed,
	},
	AlreadyRedeemed: {
		LogText:     "Code was already redeemed.",
		Level:       slog.LevelError,
		Title:       "Code was already redeemed",
		Description: "Someone beat us to it!",
		Color:       colorRed,
	},
	RateLimited: {
		LogText:     "Rate-limited...",
		Level:       slog.LevelWarn,
		Title:       "Rate Limited",
		Description: "Rate-limited by the platform.",
		Color:       colorRed,
	},
	PlatformError: {
		LogText:     "There was an error on the platform's side.",
		Level:       slog.LevelError,
		Title:       "Platform Error",
		Description: "There was an error on the platform's side.",
		Color:       colorRed,
	},
	ConnectionError: {
		LogText:     "Connection failed. Check network connection!",
		Level:       slog.LevelWarn,
		Title:       "Connection Error",
		Description: "Failed to connect to the platform.",
		Color:       colorRed,
	},
	Unknown: {
		LogText:     "Received unknown response...",
		Level:       slog.LevelError,
		Title:       "Unknown Response",
		Description: "Received an unknown response from the platform.",
		Color:       colorBlack,
	},
}

// Present returns the presentation for an outcome. The returned value is a
// copy; the table itself is immutable after init.
func (o Outcome) Present() Presentation {
	p, ok := presentations[o]
	if !ok {
		return presentations[Unknown]
	}
	return p
}
