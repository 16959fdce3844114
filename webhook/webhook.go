// Package webhook builds and delivers outcome notifications to an external
// sink. Delivery is best-effort: anything other than a 204 response is
// swallowed, and the sniping pipeline never waits on it.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/longshot-dev/longshot/outcome"
	"github.com/longshot-dev/longshot/platform"
)

const (
	dispatcherName   = "Longshot"
	dispatcherAvatar = "https://yes.nighty.works/raw/IH8LqF.png"
	footerVersion    = "Longshot 1.3.0"
)

// Message is the event context a notification links back to.
type Message struct {
	AuthorName string
	AuthorID   string
	GuildID    string
	ChannelID  string
	MessageID  string
}

// Dispatcher posts notifications to a single sink URL.
type Dispatcher struct {
	URL        string
	WebBaseURL string
	HTTPClient *http.Client
	now        func() time.Time
}

// New returns a dispatcher for the given sink. webBaseURL is used to build the
// author and message links embedded in the notification.
func New(url, webBaseURL string) *Dispatcher {
	return &Dispatcher{URL: url, WebBaseURL: webBaseURL, now: time.Now}
}

func (d *Dispatcher) http() *http.Client {
	if d.HTTPClient != nil {
		return d.HTTPClient
	}
	return http.DefaultClient
}

type payload struct {
	Username  string  `json:"username"`
	AvatarURL string  `json:"avatar_url"`
	Embeds    []embed `json:"embeds"`
}

type embed struct {
	Author      embedAuthor  `json:"author"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Fields      []embedField `json:"fields"`
	Footer      embedFooter  `json:"footer"`
	Timestamp   string       `json:"timestamp"`
	Color       int          `json:"color"`
}

type embedAuthor struct {
	IconURL string `json:"icon_url"`
	Name    string `json:"name"`
}

type embedField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

type embedFooter struct {
	IconURL string `json:"icon_url"`
	Text    string `json:"text"`
}

// buildPayload assembles the notification. Only title, description and color
// depend on the outcome; everything else comes from the event context and the
// finder profile.
func (d *Dispatcher) buildPayload(msg Message, finder platform.Profile, o outcome.Outcome) payload {
	p := o.Present()
	guildPath := msg.GuildID
	if guildPath == "" {
		guildPath = "@me"
	}
	now := time.Now
	if d.now != nil {
		now = d.now
	}
	return payload{
		Username:  dispatcherName,
		AvatarURL: dispatcherAvatar,
		Embeds: []embed{{
			Author:      embedAuthor{IconURL: finder.FaceURL(), Name: finder.Username},
			Title:       p.Title,
			Description: p.Description,
			Fields: []embedField{
				{Name: "Code sent by:", Value: fmt.Sprintf("[%s](%s/users/%s)", msg.AuthorName, d.WebBaseURL, msg.AuthorID)},
				{Name: "Message:", Value: fmt.Sprintf("[Posted here!](%s/channels/%s/%s/%s)", d.WebBaseURL, guildPath, msg.ChannelID, msg.MessageID)},
			},
			Footer:    embedFooter{IconURL: dispatcherAvatar, Text: footerVersion},
			Timestamp: now().Format(time.RFC3339),
			Color:     p.Color,
		}},
	}
}

// Send delivers a single notification. The returned error exists for tests;
// callers dispatch on a detached goroutine and ignore it.
func (d *Dispatcher) Send(ctx context.Context, msg Message, finder platform.Profile, o outcome.Outcome) error {
	body, err := json.Marshal(d.buildPayload(msg, finder, o))
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := d.http().Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		return fmt.Errorf("webhook delivery status %d", resp.StatusCode)
	}
	return nil
}
