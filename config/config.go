// Package config loads environment variables and provides a typed Config used across the service.
// It applies sensible defaults so the binary can run locally with minimal setup.
// Credentials are required; use Validate before starting sessions.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Credential identifies one chat session. The token authenticates both the
// chat gateway connection and the platform REST API.
type Credential struct {
	Username string
	Token    string
}

type Config struct {
	// Accounts sniping is performed on. The first entry is the primary
	// credential validated at startup.
	Credentials []Credential

	// Chat
	Channels    []string
	GatewayAddr string // empty means the gateway library default
	GatewayTLS  bool

	// Platform API
	APIBaseURL string
	WebBaseURL string

	// Notification sink (empty disables notifications)
	WebhookURL string

	// Guild IDs whose events are discarded
	excludedGuilds map[string]struct{}

	// HTTP server (health/status/metrics)
	HTTPAddr string

	// Optional attempt history database (empty disables)
	DBDsn string
}

// Load reads environment variables and applies defaults. It doesn't fail if
// credentials are missing; use Validate() when you require live sessions.
func Load() (*Config, error) {
	cfg := &Config{}

	raw := os.Getenv("LONGSHOT_TOKENS")
	for _, entry := range splitList(raw) {
		user, token, ok := strings.Cut(entry, ":")
		if !ok || user == "" || token == "" {
			return nil, fmt.Errorf("invalid LONGSHOT_TOKENS entry %q (want username:token)", entry)
		}
		cfg.Credentials = append(cfg.Credentials, Credential{Username: user, Token: token})
	}

	cfg.Channels = splitList(os.Getenv("LONGSHOT_CHANNELS"))

	cfg.GatewayAddr = os.Getenv("GATEWAY_ADDR")
	cfg.GatewayTLS = os.Getenv("GATEWAY_TLS") != "0"

	cfg.APIBaseURL = os.Getenv("API_BASE_URL")
	if cfg.APIBaseURL == "" {
		cfg.APIBaseURL = "https://discord.com/api/v9"
	}
	cfg.WebBaseURL = os.Getenv("WEB_BASE_URL")
	if cfg.WebBaseURL == "" {
		cfg.WebBaseURL = "https://discord.com"
	}

	cfg.WebhookURL = os.Getenv("WEBHOOK_URL")

	cfg.excludedGuilds = make(map[string]struct{})
	for _, id := range splitList(os.Getenv("GUILD_BLACKLIST")) {
		cfg.excludedGuilds[id] = struct{}{}
	}

	cfg.HTTPAddr = os.Getenv("HTTP_ADDR")
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}

	cfg.DBDsn = os.Getenv("DB_DSN")

	return cfg, nil
}

// Validate checks required fields before sessions are started.
func (c *Config) Validate() error {
	if len(c.Credentials) == 0 {
		return fmt.Errorf("missing LONGSHOT_TOKENS: at least one username:token credential is required")
	}
	if len(c.Channels) == 0 {
		return fmt.Errorf("missing LONGSHOT_CHANNELS: at least one channel is required")
	}
	return nil
}

// Primary returns the credential validated at startup.
func (c *Config) Primary() Credential { return c.Credentials[0] }

// IsExcluded reports whether events from the given guild are discarded.
// An empty guild id (direct message) is never excluded.
func (c *Config) IsExcluded(guildID string) bool {
	if guildID == "" {
		return false
	}
	_, ok := c.excludedGuilds[guildID]
	return ok
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
