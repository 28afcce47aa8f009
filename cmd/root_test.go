package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fleetwatch/fleetwatch/internal/config"
)

func TestResolveTopics(t *testing.T) {
	tests := []struct {
		name      string
		args      []string
		cfgTopics []string
		want      []string
		wantErr   bool
	}{
		{"args win", []string{"webapp"}, []string{"infra"}, []string{"webapp"}, false},
		{"config fallback", nil, []string{"infra", "ui"}, []string{"infra", "ui"}, false},
		{"neither", nil, nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := resolveTopics(tt.args, tt.cfgTopics)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("topic %d = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home directory: %v", err)
	}

	if got := expandHome("~/.fleetwatch/fleetwatch.db"); got != filepath.Join(home, ".fleetwatch/fleetwatch.db") {
		t.Errorf("expandHome = %q", got)
	}
	if got := expandHome("/var/lib/fleetwatch.db"); got != "/var/lib/fleetwatch.db" {
		t.Errorf("absolute path should pass through, got %q", got)
	}
}

func TestCreateNotifierFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notify.SlackWebhook = "https://hooks.slack.com/x"

	n, err := createNotifier(cfg, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == nil {
		t.Error("expected a slack notifier from config")
	}
}

func TestCreateNotifierUnconfigured(t *testing.T) {
	n, err := createNotifier(&config.Config{}, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n != nil {
		t.Error("expected nil notifier when nothing is configured")
	}
}

func TestCreateNotifierFlagOverride(t *testing.T) {
	cfg := &config.Config{}
	cfg.Notify.DiscordWebhook = "https://discord.com/api/webhooks/x"

	n, err := createNotifier(cfg, "discord")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n == nil {
		t.Error("expected a discord notifier")
	}

	if _, err := createNotifier(cfg, "slack"); err == nil {
		t.Error("expected error when the flag names an unconfigured notifier")
	}
}

func TestInitComponents(t *testing.T) {
	cfg := &config.Config{}
	cfg.GitHub.Auth = "token"
	cfg.GitHub.Token = "ghp_test"
	cfg.Store.Path = ":memory:"

	c, err := initComponents(cfg, nil)
	if err != nil {
		t.Fatalf("initComponents failed: %v", err)
	}
	defer c.Store.Close()

	if c.Worker == nil || c.Service == nil || c.Searcher == nil {
		t.Error("expected all components to be initialized")
	}
}
