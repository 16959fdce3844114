package snipe

import (
	"time"

	twitch "github.com/gempir/go-twitch-irc/v4"
)

// ChatEvent is one inbound chat message, already decoded by the gateway
// library. It is consumed exactly once by the session that received it.
type ChatEvent struct {
	ID         string
	AuthorID   string
	AuthorName string
	ChannelID  string
	GuildID    string
	Text       string
	Time       time.Time
}

// eventFromMessage maps a gateway message to a ChatEvent. Guild attribution is
// optional; gateways that group channels under guilds carry it as a tag.
func eventFromMessage(m twitch.PrivateMessage) ChatEvent {
	name := m.User.DisplayName
	if name == "" {
		name = m.User.Name
	}
	return ChatEvent{
		ID:         m.ID,
		AuthorID:   m.User.ID,
		AuthorName: name,
		ChannelID:  m.RoomID,
		GuildID:    m.Tags["guild-id"],
		Text:       m.Message,
		Time:       m.Time,
	}
}
