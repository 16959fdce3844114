// Package platform contains minimal helpers to interact with the platform REST
// API: profile lookup, gift-code redemption, and channel/guild name resolution.
// All calls authenticate with a per-session user token.
package platform

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
)

// Sentinel errors surfaced by GetProfile so startup validation can report a
// precise failure cause.
var (
	ErrUnauthorized = errors.New("platform: unauthorized")
	ErrRateLimited  = errors.New("platform: rate limited")
)

// maxBodyCapture bounds the diagnostic body captured from unexpected redeem
// responses.
const maxBodyCapture = 64 << 10

// Client provides the methods the sniping pipeline needs. It is stateless and
// safe for concurrent use by any number of sessions.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func (c *Client) http() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

// Profile is the identity resolved once per session and used to label every
// log block and notification originating from that session.
type Profile struct {
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
	ID       string `json:"id"`
}

const defaultAvatarURL = "https://discordapp.com/assets/6debd47ed13483642cf09e832ed0bc1b.png"

// FaceURL returns the avatar image URL, falling back to the platform default
// asset when the profile has none.
func (p Profile) FaceURL() string {
	if p.Avatar == "" {
		return defaultAvatarURL
	}
	return fmt.Sprintf("https://cdn.discordapp.com/avatars/%s/%s.webp", p.ID, p.Avatar)
}

func (p Profile) String() string { return p.Username }

// GetProfile fetches the profile behind a token. 401 and 429 map to the
// sentinel errors above; any other non-200 status or a malformed body is an
// ordinary error. Transport failures are returned wrapped.
func (c *Client) GetProfile(ctx context.Context, token string) (Profile, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/users/@me", nil)
	if err != nil {
		return Profile{}, err
	}
	req.Header.Set("Authorization", token)
	resp, err := c.http().Do(req)
	if err != nil {
		return Profile{}, fmt.Errorf("profile request: %w", err)
	}
	defer closeBody(resp)

	switch resp.StatusCode {
	case http.StatusOK:
		var p Profile
		if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
			return Profile{}, fmt.Errorf("malformed profile response: %w", err)
		}
		return p, nil
	case http.StatusUnauthorized:
		return Profile{}, ErrUnauthorized
	case http.StatusTooManyRequests:
		return Profile{}, ErrRateLimited
	default:
		return Profile{}, fmt.Errorf("unexpected profile status %d", resp.StatusCode)
	}
}

// RedeemResponse is the raw result of one redeem attempt. Body and BodyErr are
// best-effort diagnostics; BodyErr records a body read failure, not an HTTP error.
type RedeemResponse struct {
	StatusCode int
	Body       string
	BodyErr    error
}

// Redeem issues a single POST consuming the gift code with the given token.
// A non-nil error means the request never produced a response (transport
// failure); HTTP-level failures are reported through the status code.
func (c *Client) Redeem(ctx context.Context, token, code string) (*RedeemResponse, error) {
	url := fmt.Sprintf("%s/entitlements/gift-codes/%s/redeem", c.BaseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", token)
	req.Header.Set("Content-Length", "0")
	resp, err := c.http().Do(req)
	if err != nil {
		return nil, fmt.Errorf("redeem request: %w", err)
	}
	defer closeBody(resp)

	out := &RedeemResponse{StatusCode: resp.StatusCode}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyCapture))
	if err != nil {
		out.BodyErr = err
	} else {
		out.Body = string(body)
	}
	return out, nil
}

// Channel is the metadata needed to label an event's location.
type Channel struct {
	Name    string `json:"name"`
	GuildID string `json:"guild_id"`
}

// GetChannel resolves a channel id to its name and owning guild.
func (c *Client) GetChannel(ctx context.Context, token, channelID string) (Channel, error) {
	var ch Channel
	err := c.getJSON(ctx, token, "/channels/"+channelID, &ch)
	return ch, err
}

// Guild is the metadata needed to label an event's location.
type Guild struct {
	Name string `json:"name"`
}

// GetGuild resolves a guild id to its name.
func (c *Client) GetGuild(ctx context.Context, token, guildID string) (Guild, error) {
	var g Guild
	err := c.getJSON(ctx, token, "/guilds/"+guildID, &g)
	return g, err
}

func (c *Client) getJSON(ctx context.Context, token, path string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", token)
	resp, err := c.http().Do(req)
	if err != nil {
		return err
	}
	defer closeBody(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}
	return json.NewDecoder(resp.Body).Decode(v)
}

func closeBody(resp *http.Response) {
	if err := resp.Body.Close(); err != nil {
		slog.Warn("failed to close response body", slog.Any("err", err))
	}
}
