// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"maps"
	"net/http"
	"time"

	"github.com/goccy/go-json"
)

// SignatureHeader carries the HMAC-SHA256 of the request body when a
// webhook secret is configured.
const SignatureHeader = "X-Sentinel-Signature-256"

// WebhookConfig configures the generic webhook channel.
type WebhookConfig struct {
	URL         string            `json:"url"`
	Headers     map[string]string `json:"headers,omitempty"` // Custom headers (e.g., auth)
	Secret      string            `json:"-"`
	MinInterval time.Duration     `json:"min_interval"`
}

// WebhookChannel posts the full alert as JSON to an HTTP endpoint.
type WebhookChannel struct {
	poster  *httpPoster
	headers map[string]string
	secret  []byte
}

// NewWebhookChannel creates a webhook channel. client may be nil.
func NewWebhookChannel(cfg WebhookConfig, client *http.Client) *WebhookChannel {
	ch := &WebhookChannel{
		poster:  newHTTPPoster("webhook", cfg.URL, client, cfg.MinInterval),
		headers: maps.Clone(cfg.Headers),
	}
	if cfg.Secret != "" {
		ch.secret = []byte(cfg.Secret)
	}
	return ch
}

// Name returns the channel name.
func (c *WebhookChannel) Name() string {
	return "webhook"
}

// Send delivers the alert.
func (c *WebhookChannel) Send(ctx context.Context, alert *Alert) error {
	body, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	headers := c.headers
	if c.secret != nil {
		headers = maps.Clone(c.headers)
		if headers == nil {
			headers = make(map[string]string, 1)
		}
		headers[SignatureHeader] = "sha256=" + SignPayload(c.secret, body)
	}

	return c.poster.post(ctx, body, headers)
}

// SignPayload returns the hex HMAC-SHA256 of body under secret.
func SignPayload(secret, body []byte) string {
	mac := hmac.New(sha256.New, secret)
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
