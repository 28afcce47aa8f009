package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestBuildDiscordPayload_Structure(t *testing.T) {
	payload := BuildDiscordPayload(sampleSummary())

	if len(payload.Embeds) != 1 {
		t.Fatalf("expected 1 embed, got %d", len(payload.Embeds))
	}
	embed := payload.Embeds[0]
	if embed.Color != discordGreen {
		t.Errorf("expected green color for a clean run, got %d", embed.Color)
	}
	if !strings.Contains(embed.Title, "webapp") {
		t.Errorf("title should name the topic: %q", embed.Title)
	}
	if len(embed.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(embed.Fields))
	}
	if embed.Fields[0].Name != "Repositories" || embed.Fields[0].Value != "4" {
		t.Errorf("unexpected repositories field: %+v", embed.Fields[0])
	}
	if embed.Footer == nil || embed.Footer.Text != "fleetwatch" {
		t.Errorf("unexpected footer: %+v", embed.Footer)
	}
}

func TestBuildDiscordPayload_WithErrors(t *testing.T) {
	summary := sampleSummary()
	summary.Errors = []string{"inserting pull requests: locked"}

	payload := BuildDiscordPayload(summary)

	embed := payload.Embeds[0]
	if embed.Color != discordRed {
		t.Errorf("expected red color for a failed run, got %d", embed.Color)
	}
	if len(embed.Fields) != 4 {
		t.Fatalf("expected errors field to be appended, got %d fields", len(embed.Fields))
	}
	if embed.Fields[3].Name != "Errors" || !strings.Contains(embed.Fields[3].Value, "locked") {
		t.Errorf("unexpected errors field: %+v", embed.Fields[3])
	}
}

func TestDiscordNotifier_Notify_Success(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var err error
		gotBody, err = io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	notifier := NewDiscordNotifier(server.URL)
	if err := notifier.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var payload discordPayload
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("request body is not valid discord payload JSON: %v", err)
	}
	if len(payload.Embeds) != 1 {
		t.Errorf("expected 1 embed, got %d", len(payload.Embeds))
	}
}

func TestDiscordNotifier_Notify_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	notifier := NewDiscordNotifier(server.URL)
	if err := notifier.Notify(context.Background(), sampleSummary()); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}
