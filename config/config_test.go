package config

import (
	"testing"
)

func TestLoadCredentials(t *testing.T) {
	t.Setenv("LONGSHOT_TOKENS", "alice:tok-a, bob:tok-b ,carol:tok-c")
	t.Setenv("LONGSHOT_CHANNELS", "drops,giveaways")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cfg.Credentials) != 3 {
		t.Fatalf("expected 3 credentials, got %d", len(cfg.Credentials))
	}
	if cfg.Primary() != (Credential{Username: "alice", Token: "tok-a"}) {
		t.Fatalf("primary = %+v", cfg.Primary())
	}
	if got := cfg.Credentials[1]; got.Username != "bob" || got.Token != "tok-b" {
		t.Fatalf("whitespace not trimmed: %+v", got)
	}
	if len(cfg.Channels) != 2 {
		t.Fatalf("channels = %v", cfg.Channels)
	}
}

func TestLoadInvalidCredential(t *testing.T) {
	t.Setenv("LONGSHOT_TOKENS", "missing-separator")
	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed credential entry")
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("LONGSHOT_TOKENS", "")
	t.Setenv("API_BASE_URL", "")
	t.Setenv("HTTP_ADDR", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBaseURL != "https://discord.com/api/v9" {
		t.Errorf("APIBaseURL default = %q", cfg.APIBaseURL)
	}
	if cfg.HTTPAddr != ":8080" {
		t.Errorf("HTTPAddr default = %q", cfg.HTTPAddr)
	}
	if err := cfg.Validate(); err == nil {
		t.Error("Validate should fail without credentials")
	}
}

func TestIsExcluded(t *testing.T) {
	t.Setenv("LONGSHOT_TOKENS", "alice:tok-a")
	t.Setenv("GUILD_BLACKLIST", "111,222")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.IsExcluded("111") || !cfg.IsExcluded("222") {
		t.Error("blacklisted guilds not excluded")
	}
	if cfg.IsExcluded("333") {
		t.Error("unlisted guild excluded")
	}
	if cfg.IsExcluded("") {
		t.Error("direct messages must never be excluded")
	}
}
