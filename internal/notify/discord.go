package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// DiscordNotifier sends ingest summaries to a Discord webhook.
type DiscordNotifier struct {
	webhookURL string
	client     *http.Client
}

// NewDiscordNotifier creates a DiscordNotifier with the given webhook URL.
func NewDiscordNotifier(webhookURL string) *DiscordNotifier {
	return &DiscordNotifier{
		webhookURL: webhookURL,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// discordEmbed represents a Discord embed object.
type discordEmbed struct {
	Title  string         `json:"title"`
	Color  int            `json:"color"`
	Fields []discordField `json:"fields"`
	Footer *discordFooter `json:"footer,omitempty"`
}

// discordField represents a field in a Discord embed.
type discordField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

// discordFooter represents the footer of a Discord embed.
type discordFooter struct {
	Text string `json:"text"`
}

// discordPayload is the top-level Discord webhook payload.
type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

const (
	discordGreen = 3066993
	discordRed   = 15158332
)

// BuildDiscordPayload creates the Discord embed message for an ingest summary.
func BuildDiscordPayload(summary IngestSummary) discordPayload {
	color := discordGreen
	title := fmt.Sprintf("Ingested topic %q", summary.Topic)
	if len(summary.Errors) > 0 {
		color = discordRed
		title = fmt.Sprintf("Ingestion of topic %q finished with errors", summary.Topic)
	}

	fields := []discordField{
		{Name: "Repositories", Value: strconv.Itoa(summary.Repositories), Inline: true},
		{Name: "Findings", Value: strconv.Itoa(summary.Findings), Inline: true},
		{Name: "Pull Requests", Value: strconv.Itoa(summary.PullRequests), Inline: true},
	}

	if len(summary.Errors) > 0 {
		fields = append(fields, discordField{
			Name:  "Errors",
			Value: strings.Join(summary.Errors, "\n"),
		})
	}

	embed := discordEmbed{
		Title:  title,
		Color:  color,
		Fields: fields,
		Footer: &discordFooter{
			Text: "fleetwatch",
		},
	}

	return discordPayload{
		Embeds: []discordEmbed{embed},
	}
}

// Notify posts the summary to the Discord webhook.
func (d *DiscordNotifier) Notify(ctx context.Context, summary IngestSummary) error {
	payload := BuildDiscordPayload(summary)

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling discord payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.webhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating discord request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("posting to discord: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("discord webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	return nil
}
