// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// SlackConfig configures the Slack channel.
type SlackConfig struct {
	WebhookURL  string        `json:"webhook_url"`
	MinInterval time.Duration `json:"min_interval"`
}

// SlackChannel posts alerts to a Slack incoming webhook.
type SlackChannel struct {
	poster *httpPoster
}

// NewSlackChannel creates a Slack channel. client may be nil.
func NewSlackChannel(cfg SlackConfig, client *http.Client) *SlackChannel {
	return &SlackChannel{poster: newHTTPPoster("slack", cfg.WebhookURL, client, cfg.MinInterval)}
}

// Name returns the channel name.
func (c *SlackChannel) Name() string {
	return "slack"
}

// Send delivers the alert.
func (c *SlackChannel) Send(ctx context.Context, alert *Alert) error {
	payload, err := buildSlackPayload(alert)
	if err != nil {
		return err
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}
	return c.poster.post(ctx, body, nil)
}

// SeverityEmoji returns the marker used in chat notifications.
func SeverityEmoji(s Severity) string {
	switch s {
	case SeverityLow:
		return "🟢"
	case SeverityMedium:
		return "🟡"
	case SeverityHigh:
		return "🟠"
	case SeverityCritical:
		return "🔴"
	default:
		return "⚪"
	}
}

func buildSlackPayload(alert *Alert) (slackPayload, error) {
	details, err := json.MarshalIndent(alert.Details, "", "  ")
	if err != nil {
		return slackPayload{}, fmt.Errorf("failed to marshal alert details: %w", err)
	}

	heading := SeverityEmoji(alert.Severity) + " " + alert.Title
	return slackPayload{
		Text: heading,
		Blocks: []slackBlock{
			{
				Type: "header",
				Text: &slackText{Type: "plain_text", Text: heading},
			},
			{
				Type: "section",
				Fields: []slackText{
					{Type: "mrkdwn", Text: "*Type:*\n" + string(alert.Type)},
					{Type: "mrkdwn", Text: "*Severity:*\n" + string(alert.Severity)},
					{Type: "mrkdwn", Text: "*IP:*\n" + alert.SourceIP},
					{Type: "mrkdwn", Text: "*Time:*\n" + alert.Timestamp.UTC().Format("2006-01-02T15:04:05.000Z07:00")},
				},
			},
			{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: "*Message:*\n" + alert.Message},
			},
			{
				Type: "section",
				Text: &slackText{Type: "mrkdwn", Text: "*Details:*\n```" + string(details) + "```"},
			},
		},
	}, nil
}

// Slack webhook structures
type slackPayload struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string      `json:"type"`
	Text   *slackText  `json:"text,omitempty"`
	Fields []slackText `json:"fields,omitempty"`
}

type slackText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}
