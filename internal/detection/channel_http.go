// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// defaultHTTPTimeout bounds a single HTTP delivery when the caller's context
// carries no deadline.
const defaultHTTPTimeout = 10 * time.Second

// httpPoster is the shared HTTP delivery path for the webhook, Slack and
// Discord channels.
type httpPoster struct {
	name    string
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// newHTTPPoster builds a poster. minInterval <= 0 disables pacing.
func newHTTPPoster(name, url string, client *http.Client, minInterval time.Duration) *httpPoster {
	if client == nil {
		client = &http.Client{Timeout: defaultHTTPTimeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if minInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(minInterval), 1)
	}
	return &httpPoster{name: name, url: url, client: client, limiter: limiter}
}

// post sends body as JSON. Any non-2xx response is an error.
func (p *httpPoster) post(ctx context.Context, body []byte, headers map[string]string) error {
	if p.url == "" {
		return fmt.Errorf("%s: no URL configured", p.name)
	}
	if err := p.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("%s rate limit wait: %w", p.name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", p.name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Sentinel-Alerts/1.0")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", p.name, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%s returned status %d", p.name, resp.StatusCode)
	}
	return nil
}
