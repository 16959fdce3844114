// Package cache resolves channel/guild ids to human-readable labels and
// memoizes the results for the lifetime of a session.
package cache

import (
	"context"
	"sync"

	"github.com/longshot-dev/longshot/platform"
)

// Location is the human-readable label for where an event occurred.
type Location struct {
	Guild   string
	Channel string
}

// Unknown is the fallback used when resolution fails.
func Unknown() Location { return Location{} }

func (l Location) String() string {
	switch {
	case l.Channel == "":
		return "Unknown location"
	case l.Guild == "":
		return "#" + l.Channel
	default:
		return l.Guild + " > #" + l.Channel
	}
}

// LocationCache caches resolved locations per channel id, and guild names per
// guild id. One instance belongs to one session; it is still safe for
// concurrent use because gateway libraries may deliver events on multiple
// goroutines.
type LocationCache struct {
	api   *platform.Client
	token string

	mu       sync.Mutex
	channels map[string]Location
	guilds   map[string]string
}

func New(api *platform.Client, token string) *LocationCache {
	return &LocationCache{
		api:      api,
		token:    token,
		channels: make(map[string]Location),
		guilds:   make(map[string]string),
	}
}

// Resolve returns the cached location for a channel, fetching channel and
// guild names from the platform on first sight. guildID may be empty for
// direct messages.
func (lc *LocationCache) Resolve(ctx context.Context, channelID, guildID string) (Location, error) {
	lc.mu.Lock()
	if loc, ok := lc.channels[channelID]; ok {
		lc.mu.Unlock()
		return loc, nil
	}
	lc.mu.Unlock()

	ch, err := lc.api.GetChannel(ctx, lc.token, channelID)
	if err != nil {
		return Unknown(), err
	}
	if guildID == "" {
		guildID = ch.GuildID
	}

	guildName := ""
	if guildID != "" {
		guildName, err = lc.guildName(ctx, guildID)
		if err != nil {
			return Unknown(), err
		}
	}

	loc := Location{Guild: guildName, Channel: ch.Name}
	lc.mu.Lock()
	lc.channels[channelID] = loc
	lc.mu.Unlock()
	return loc, nil
}

func (lc *LocationCache) guildName(ctx context.Context, guildID string) (string, error) {
	lc.mu.Lock()
	if name, ok := lc.guilds[guildID]; ok {
		lc.mu.Unlock()
		return name, nil
	}
	lc.mu.Unlock()

	g, err := lc.api.GetGuild(ctx, lc.token, guildID)
	if err != nil {
		return "", err
	}
	lc.mu.Lock()
	lc.guilds[guildID] = g.Name
	lc.mu.Unlock()
	return g.Name, nil
}
