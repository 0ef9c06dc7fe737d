// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package main

import (
	"fmt"
	"net/http"

	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/logging"
)

// buildChannels creates every enabled notification channel, each wrapped in
// a circuit breaker.
func buildChannels(cfg *config.Config) ([]detection.Channel, error) {
	c := cfg.Channels
	breaker := c.Breaker.DetectionBreaker()
	client := &http.Client{Timeout: cfg.Alerts.ChannelTimeout}

	var channels []detection.Channel

	if c.Email.Enabled {
		email, err := detection.NewEmailChannel(detection.EmailConfig{
			Host:     c.Email.Host,
			Port:     c.Email.Port,
			Username: c.Email.Username,
			Password: c.Email.Password,
			From:     c.Email.From,
			To:       c.Email.To,
			StartTLS: c.Email.StartTLS,
		})
		if err != nil {
			return nil, fmt.Errorf("email channel: %w", err)
		}
		channels = append(channels, email)
	}
	if c.Slack.Enabled {
		channels = append(channels, detection.NewSlackChannel(detection.SlackConfig{
			WebhookURL:  c.Slack.WebhookURL,
			MinInterval: c.Slack.MinInterval,
		}, client))
	}
	if c.Webhook.Enabled {
		channels = append(channels, detection.NewWebhookChannel(detection.WebhookConfig{
			URL:         c.Webhook.URL,
			Headers:     c.Webhook.Headers,
			Secret:      c.Webhook.Secret,
			MinInterval: c.Webhook.MinInterval,
		}, client))
	}
	if c.Discord.Enabled {
		channels = append(channels, detection.NewDiscordChannel(detection.DiscordConfig{
			WebhookURL:  c.Discord.WebhookURL,
			MinInterval: c.Discord.MinInterval,
		}, client))
	}

	for i, ch := range channels {
		channels[i] = detection.NewBreakerChannel(ch, breaker)
		logging.Info().Str("channel", ch.Name()).Msg("Notification channel registered")
	}
	return channels, nil
}
