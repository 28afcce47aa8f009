package notify

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func sampleSummary() IngestSummary {
	return IngestSummary{
		Topic:        "webapp",
		Repositories: 4,
		Findings:     7,
		PullRequests: 12,
	}
}

func TestBuildSlackPayload_Structure(t *testing.T) {
	payload := BuildSlackPayload(sampleSummary())

	if len(payload.Blocks) != 2 {
		t.Fatalf("expected 2 blocks without errors, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Type != "header" {
		t.Errorf("expected header block, got %q", payload.Blocks[0].Type)
	}
	if payload.Blocks[0].Text.Text != "Ingestion Complete" {
		t.Errorf("unexpected header text: %q", payload.Blocks[0].Text.Text)
	}
	if payload.Blocks[1].Type != "section" {
		t.Errorf("expected section block, got %q", payload.Blocks[1].Type)
	}
	body := payload.Blocks[1].Text.Text
	for _, want := range []string{"webapp", "4 repositories", "7 findings", "12 pull requests"} {
		if !strings.Contains(body, want) {
			t.Errorf("summary %q missing %q", body, want)
		}
	}
}

func TestBuildSlackPayload_WithErrors(t *testing.T) {
	summary := sampleSummary()
	summary.Errors = []string{"inserting findings: disk full"}

	payload := BuildSlackPayload(summary)

	if len(payload.Blocks) != 3 {
		t.Fatalf("expected 3 blocks with errors, got %d", len(payload.Blocks))
	}
	if payload.Blocks[0].Text.Text != "Ingestion Finished With Errors" {
		t.Errorf("unexpected header text: %q", payload.Blocks[0].Text.Text)
	}
	if !strings.Contains(payload.Blocks[2].Text.Text, "disk full") {
		t.Errorf("errors block missing failure text: %q", payload.Blocks[2].Text.Text)
	}
}

func TestSlackNotifier_Notify_Success(t *testing.T) {
	var gotBody []byte
	var gotContentType string
	var gotMethod string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		var err error
		gotBody, err = io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("reading request body: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL)
	if err := notifier.Notify(context.Background(), sampleSummary()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotMethod != http.MethodPost {
		t.Errorf("expected POST method, got %q", gotMethod)
	}
	if gotContentType != "application/json" {
		t.Errorf("expected Content-Type 'application/json', got %q", gotContentType)
	}

	var payload slackPayload
	if err := json.Unmarshal(gotBody, &payload); err != nil {
		t.Fatalf("request body is not valid slack payload JSON: %v", err)
	}
	if len(payload.Blocks) != 2 {
		t.Errorf("expected 2 blocks, got %d", len(payload.Blocks))
	}
}

func TestSlackNotifier_Notify_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	notifier := NewSlackNotifier(server.URL)
	err := notifier.Notify(context.Background(), sampleSummary())
	if err == nil {
		t.Fatal("expected error on non-2xx response")
	}
	if !strings.Contains(err.Error(), "502") {
		t.Errorf("error should carry the status code, got %v", err)
	}
}

func TestSlackNotifier_Notify_ContextCancellation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	notifier := NewSlackNotifier(server.URL)
	if err := notifier.Notify(ctx, sampleSummary()); err == nil {
		t.Fatal("expected error from cancelled context")
	}
}
