package snipe

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/longshot-dev/longshot/cache"
	"github.com/longshot-dev/longshot/history"
	"github.com/longshot-dev/longshot/logblock"
	"github.com/longshot-dev/longshot/matcher"
	"github.com/longshot-dev/longshot/outcome"
	"github.com/longshot-dev/longshot/telemetry"
	"github.com/longshot-dev/longshot/webhook"
)

// HandleEvent runs the full pipeline for one inbound chat event: filter,
// extract, claim, redeem, log, resolve, flush, notify. It is invoked once per
// delivery; duplicate deliveries of an already-claimed code produce no output
// of any kind.
func (s *Session) HandleEvent(ctx context.Context, ev ChatEvent) {
	if !s.Ready() {
		return
	}
	if s.shared.Cfg.IsExcluded(ev.GuildID) {
		return
	}

	code, ok := matcher.ExtractCode(ev.Text)
	if !ok {
		return
	}
	telemetry.CodesSeen.Inc()

	// The claim is the only cross-session synchronization point. It happens
	// before any I/O; losing it ends the event with no log and no request.
	if !s.shared.TryClaim(code) {
		return
	}
	telemetry.ClaimsAttempted.Inc()

	ctx = telemetry.WithCorrelation(ctx, uuid.NewString())
	ctx, span := telemetry.StartSpan(ctx, "snipe", "redeem",
		attribute.String("channel_id", ev.ChannelID))
	defer span.End()

	block := logblock.New(s.profile.Username)
	block.Infof("Claiming code: %s!", code)

	out := s.redeem(ctx, code, block)
	telemetry.CountOutcome(out.String())
	span.SetAttributes(attribute.String("outcome", out.String()))

	block.FreezeTime()

	loc, err := s.locations.Resolve(ctx, ev.ChannelID, ev.GuildID)
	if err != nil {
		telemetry.RecordError(span, err)
		block.Errorf("Failed requesting location for event.")
		loc = cache.Unknown()
	}

	block.Flush(s.shared.Sink, loc.String(), ev.AuthorName)

	s.dispatch(ctx, ev, out)
	s.record(ctx, ev, code, out, block.Elapsed())
}

// redeem issues the request with this session's credential and appends the
// outcome entry. All presentation comes from the outcome table; only the
// Unknown case appends extra diagnostics.
func (s *Session) redeem(ctx context.Context, code string, block *logblock.Block) outcome.Outcome {
	start := time.Now()
	resp, err := s.shared.API.Redeem(ctx, s.cred.Token, code)
	telemetry.ObserveRedeem(time.Since(start).Seconds())

	if err != nil {
		out := outcome.ConnectionError
		p := out.Present()
		block.AddEntry(p.Level, p.LogText, p.Highlighted)
		return out
	}

	out := outcome.FromStatus(resp.StatusCode)
	p := out.Present()
	text := p.LogText
	if out == outcome.Unknown {
		text = fmt.Sprintf("%s (%d %s)", p.LogText, resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	block.AddEntry(p.Level, text, p.Highlighted)

	if out == outcome.Unknown {
		if resp.BodyErr == nil && resp.Body != "" {
			block.AddEntry(p.Level, "...with this body: "+resp.Body, false)
		} else {
			block.AddEntry(p.Level, "...and couldn't parse the body of the response.", false)
		}
	}
	return out
}

// dispatch fans the outcome out to the notification sink without blocking the
// pipeline. Delivery failures stay inside the goroutine.
func (s *Session) dispatch(ctx context.Context, ev ChatEvent, out outcome.Outcome) {
	if s.shared.Webhook == nil {
		return
	}
	telemetry.Notifications.Inc()
	msg := webhook.Message{
		AuthorName: ev.AuthorName,
		AuthorID:   ev.AuthorID,
		GuildID:    ev.GuildID,
		ChannelID:  ev.ChannelID,
		MessageID:  ev.ID,
	}
	go func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := s.shared.Webhook.Send(ctx, msg, s.profile, out); err != nil {
			telemetry.LoggerWithCorr(ctx).Debug("notification dropped", "err", err)
		}
	}(context.WithoutCancel(ctx))
}

// record appends the attempt to the optional audit log, best-effort and
// detached like the notification.
func (s *Session) record(ctx context.Context, ev ChatEvent, code string, out outcome.Outcome, elapsed time.Duration) {
	if s.shared.History == nil {
		return
	}
	a := history.Attempt{
		Code:      code,
		Outcome:   out.String(),
		Elapsed:   elapsed,
		ChannelID: ev.ChannelID,
		GuildID:   ev.GuildID,
		Author:    ev.AuthorName,
		Session:   s.profile.Username,
	}
	go func(ctx context.Context) {
		ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		if err := s.shared.History.RecordAttempt(ctx, a); err != nil {
			telemetry.LoggerWithCorr(ctx).Warn("attempt history insert failed", "err", err)
		}
	}(context.WithoutCancel(ctx))
}
