// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package main

import (
	"testing"
	"time"

	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/detection"
)

func TestBuildChannels_NoneEnabled(t *testing.T) {
	channels, err := buildChannels(&config.Config{})
	if err != nil {
		t.Fatalf("buildChannels: %v", err)
	}
	if len(channels) != 0 {
		t.Errorf("got %d channels, want 0", len(channels))
	}
}

func TestBuildChannels_WrapsEnabledChannels(t *testing.T) {
	cfg := &config.Config{}
	cfg.Alerts.ChannelTimeout = 5 * time.Second
	cfg.Channels.Email = config.EmailConfig{
		Enabled: true,
		Host:    "smtp.example.com",
		From:    "sentinel@example.com",
		To:      []string{"secops@example.com"},
	}
	cfg.Channels.Slack = config.SlackConfig{Enabled: true, WebhookURL: "https://hooks.slack.example/x"}
	cfg.Channels.Webhook = config.WebhookConfig{Enabled: true, URL: "https://siem.example/ingest"}
	cfg.Channels.Discord = config.DiscordConfig{Enabled: true, WebhookURL: "https://discord.example/api/webhooks/1"}

	channels, err := buildChannels(cfg)
	if err != nil {
		t.Fatalf("buildChannels: %v", err)
	}

	want := []string{"email", "slack", "webhook", "discord"}
	if len(channels) != len(want) {
		t.Fatalf("got %d channels, want %d", len(channels), len(want))
	}
	for i, ch := range channels {
		if ch.Name() != want[i] {
			t.Errorf("channel %d = %q, want %q", i, ch.Name(), want[i])
		}
		if _, ok := ch.(*detection.BreakerChannel); !ok {
			t.Errorf("channel %q is %T, want *detection.BreakerChannel", ch.Name(), ch)
		}
	}
}

func TestBuildChannels_InvalidEmail(t *testing.T) {
	cfg := &config.Config{}
	cfg.Channels.Email = config.EmailConfig{Enabled: true}

	if _, err := buildChannels(cfg); err == nil {
		t.Error("expected error for email channel without host")
	}
}

func TestMiddlewareConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Security = config.SecurityConfig{
		RateLimitReqs:   42,
		RateLimitWindow: 30 * time.Second,
		CORSOrigins:     []string{"https://console.example.com"},
	}

	mw := middlewareConfig(cfg)
	if mw.RateLimitRequests != 42 || mw.RateLimitWindow != 30*time.Second {
		t.Errorf("rate limit = %d/%v", mw.RateLimitRequests, mw.RateLimitWindow)
	}
	if len(mw.CORSAllowedOrigins) != 1 || mw.CORSAllowedOrigins[0] != "https://console.example.com" {
		t.Errorf("CORS origins = %v", mw.CORSAllowedOrigins)
	}
	if mw.RateLimitDisabled {
		t.Error("rate limiting unexpectedly disabled")
	}
}

func TestMiddlewareConfig_KeepsDefaultsForZeroValues(t *testing.T) {
	mw := middlewareConfig(&config.Config{})
	if mw.RateLimitRequests != 100 || mw.RateLimitWindow != time.Minute {
		t.Errorf("rate limit = %d/%v, want 100/1m", mw.RateLimitRequests, mw.RateLimitWindow)
	}
}
