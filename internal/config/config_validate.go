// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"fmt"
	"time"

	"github.com/hashicorp/go-multierror"

	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/logging"
)

var validLogFormats = map[string]bool{"json": true, "console": true}

// Rate limit constants
const (
	minRateLimitRequests = 1
	maxRateLimitRequests = 100000
	minRateLimitWindow   = time.Second
	maxRateLimitWindow   = time.Hour
)

// Validate checks every section and reports all problems at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	for _, validate := range []func() error{
		c.validateServer,
		c.validateLogging,
		c.validateAudit,
		c.validateAlerts,
		c.validateRules,
		c.validateEmail,
		c.validateWebhooks,
		c.validateBreaker,
		c.validateNATS,
		c.validateSecurity,
	} {
		if err := validate(); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("HTTP read and write timeouts must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

func (c *Config) validateAudit() error {
	if c.Audit.Capacity < 1 {
		return fmt.Errorf("AUDIT_CAPACITY must be at least 1")
	}
	// A zero retention would delete every entry on each cleanup run.
	if c.Audit.RetentionDays < 1 {
		return fmt.Errorf("AUDIT_RETENTION_DAYS must be at least 1")
	}
	if c.Audit.CleanupInterval < time.Minute {
		return fmt.Errorf("AUDIT_CLEANUP_INTERVAL must be at least 1m")
	}
	return nil
}

func (c *Config) validateAlerts() error {
	if c.Alerts.RetentionDays < 1 {
		return fmt.Errorf("ALERT_RETENTION_DAYS must be at least 1")
	}
	if c.Alerts.ChannelTimeout <= 0 {
		return fmt.Errorf("ALERT_CHANNEL_TIMEOUT must be positive")
	}
	switch detection.Severity(c.Alerts.MinDispatchSeverity) {
	case detection.SeverityHigh, detection.SeverityCritical:
	default:
		return fmt.Errorf("ALERT_MIN_DISPATCH_SEVERITY must be one of: high, critical")
	}
	return nil
}

func (c *Config) validateRules() error {
	r := c.Alerts.Rules
	if err := validateRule("suspicious login", r.SuspiciousLoginWindow, r.SuspiciousLoginThreshold, r.SuspiciousLoginLimit); err != nil {
		return err
	}
	return validateRule("bulk operation", r.BulkOperationWindow, r.BulkOperationThreshold, r.BulkOperationLimit)
}

// validateRule requires threshold <= limit; the rule's lookup never returns
// more than limit entries, so a larger threshold could never fire.
func validateRule(name string, window time.Duration, threshold, limit int) error {
	if window < time.Second {
		return fmt.Errorf("%s rule window must be at least 1s", name)
	}
	if threshold < 1 {
		return fmt.Errorf("%s rule threshold must be at least 1", name)
	}
	if limit < threshold {
		return fmt.Errorf("%s rule limit (%d) must not be below its threshold (%d)", name, limit, threshold)
	}
	return nil
}

func (c *Config) validateEmail() error {
	e := c.Channels.Email
	if !e.Enabled {
		return nil
	}
	if e.Host == "" {
		return fmt.Errorf("SMTP_HOST is required when SMTP_ENABLED=true")
	}
	if e.Port < 1 || e.Port > 65535 {
		return fmt.Errorf("SMTP_PORT must be between 1 and 65535")
	}
	if e.From == "" || len(e.To) == 0 {
		return fmt.Errorf("SMTP_FROM and SMTP_TO are required when SMTP_ENABLED=true")
	}
	return nil
}

func (c *Config) validateWebhooks() error {
	var result *multierror.Error
	if c.Channels.Slack.Enabled {
		if err := validateWebhookURL(c.Channels.Slack.WebhookURL, "SLACK_WEBHOOK_URL"); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.Channels.Webhook.Enabled {
		if err := validateWebhookURL(c.Channels.Webhook.URL, "WEBHOOK_URL"); err != nil {
			result = multierror.Append(result, err)
		}
	}
	if c.Channels.Discord.Enabled {
		if err := validateWebhookURL(c.Channels.Discord.WebhookURL, "DISCORD_WEBHOOK_URL"); err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}

func (c *Config) validateBreaker() error {
	b := c.Channels.Breaker
	if b.FailureThreshold < 1 {
		return fmt.Errorf("CHANNEL_BREAKER_FAILURE_THRESHOLD must be at least 1")
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("CHANNEL_BREAKER_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) validateNATS() error {
	if !c.NATS.Enabled {
		return nil
	}
	if err := validateNATSURL(c.NATS.URL); err != nil {
		return fmt.Errorf("NATS_URL: %w", err)
	}
	if c.NATS.AlertTopic == "" {
		return fmt.Errorf("NATS_ALERT_TOPIC is required when NATS_ENABLED=true")
	}
	if c.NATS.ForwardAudit && c.NATS.AuditTopic == "" {
		return fmt.Errorf("NATS_AUDIT_TOPIC is required when NATS_FORWARD_AUDIT=true")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if c.Security.RateLimitDisabled {
		return nil
	}
	if c.Security.RateLimitReqs < minRateLimitRequests || c.Security.RateLimitReqs > maxRateLimitRequests {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between %d and %d", minRateLimitRequests, maxRateLimitRequests)
	}
	if c.Security.RateLimitWindow < minRateLimitWindow || c.Security.RateLimitWindow > maxRateLimitWindow {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between %v and %v", minRateLimitWindow, maxRateLimitWindow)
	}
	return nil
}

// HasWildcardCORS reports whether any allowed origin is "*".
func (c *Config) HasWildcardCORS() bool {
	for _, origin := range c.Security.CORSOrigins {
		if origin == "*" {
			return true
		}
	}
	return false
}
