package snipe

import (
	"testing"

	"github.com/longshot-dev/longshot/config"
)

func TestDedupeCredentials(t *testing.T) {
	creds := []config.Credential{
		{Username: "alice", Token: "tok-a"},
		{Username: "bob", Token: "tok-b"},
		{Username: "alice-again", Token: "tok-a"},
		{Username: "carol", Token: "tok-c"},
		{Username: "bob", Token: "tok-b"},
	}
	got := DedupeCredentials(creds)
	if len(got) != 3 {
		t.Fatalf("deduped to %d credentials, want 3", len(got))
	}
	want := []string{"tok-a", "tok-b", "tok-c"}
	for i, w := range want {
		if got[i].Token != w {
			t.Errorf("position %d: token %q, want %q (order must be preserved)", i, got[i].Token, w)
		}
	}
}

func TestDedupeCredentialsEmpty(t *testing.T) {
	if got := DedupeCredentials(nil); len(got) != 0 {
		t.Fatalf("deduped nil to %v", got)
	}
}
