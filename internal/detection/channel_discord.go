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

// DiscordConfig configures the Discord channel.
type DiscordConfig struct {
	WebhookURL  string        `json:"webhook_url"`
	MinInterval time.Duration `json:"min_interval"` // Minimum time between messages
}

// DiscordChannel sends alerts to Discord via webhooks.
type DiscordChannel struct {
	poster *httpPoster
}

// NewDiscordChannel creates a Discord channel. client may be nil.
func NewDiscordChannel(cfg DiscordConfig, client *http.Client) *DiscordChannel {
	return &DiscordChannel{poster: newHTTPPoster("discord", cfg.WebhookURL, client, cfg.MinInterval)}
}

// Name returns the channel name.
func (c *DiscordChannel) Name() string {
	return "discord"
}

// Send delivers an alert to Discord.
func (c *DiscordChannel) Send(ctx context.Context, alert *Alert) error {
	payload := discordWebhookPayload{
		Embeds: []discordEmbed{buildDiscordEmbed(alert)},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Discord payload: %w", err)
	}
	return c.poster.post(ctx, body, nil)
}

// buildDiscordEmbed creates a Discord embed from an alert.
func buildDiscordEmbed(alert *Alert) discordEmbed {
	fields := []discordEmbedField{
		{Name: "Type", Value: string(alert.Type), Inline: true},
		{Name: "Severity", Value: string(alert.Severity), Inline: true},
	}

	if alert.UserID != "" {
		fields = append(fields, discordEmbedField{Name: "User", Value: alert.UserID, Inline: true})
	}
	if alert.SourceIP != "" {
		fields = append(fields, discordEmbedField{Name: "IP Address", Value: alert.SourceIP, Inline: true})
	}

	return discordEmbed{
		Title:       SeverityEmoji(alert.Severity) + " " + alert.Title,
		Description: alert.Message,
		Color:       discordSeverityColor(alert.Severity),
		Timestamp:   alert.Timestamp.Format(time.RFC3339),
		Fields:      fields,
		Footer: discordEmbedFooter{
			Text: "Sentinel Alert " + alert.ID,
		},
	}
}

func discordSeverityColor(severity Severity) int {
	switch severity {
	case SeverityCritical:
		return 0xFF0000 // Red
	case SeverityHigh:
		return 0xFFA500 // Orange
	case SeverityMedium:
		return 0xF1C40F // Yellow
	case SeverityLow:
		return 0x2ECC71 // Green
	default:
		return 0x95A5A6 // Gray
	}
}

// Discord webhook structures
type discordWebhookPayload struct {
	Content string         `json:"content,omitempty"`
	Embeds  []discordEmbed `json:"embeds,omitempty"`
}

type discordEmbed struct {
	Title       string              `json:"title,omitempty"`
	Description string              `json:"description,omitempty"`
	Color       int                 `json:"color,omitempty"`
	Timestamp   string              `json:"timestamp,omitempty"`
	Fields      []discordEmbedField `json:"fields,omitempty"`
	Footer      discordEmbedFooter  `json:"footer,omitempty"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline,omitempty"`
}

type discordEmbedFooter struct {
	Text string `json:"text,omitempty"`
}
