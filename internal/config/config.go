// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/eventbus"
	"github.com/tomtom215/sentinel/internal/logging"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Audit    AuditConfig    `koanf:"audit"`
	Alerts   AlertsConfig   `koanf:"alerts"`
	Channels ChannelsConfig `koanf:"channels"`
	NATS     NATSConfig     `koanf:"nats"`
	Security SecurityConfig `koanf:"security"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level: trace, debug, info, warn, error.
	// Default: info
	Level string `koanf:"level"`

	// Format is the output format: json or console.
	// Default: json
	Format string `koanf:"format"`

	// Caller includes caller file and line number in logs.
	Caller bool `koanf:"caller"`
}

// ToLogging converts to the logging package configuration.
func (c LoggingConfig) ToLogging() logging.Config {
	cfg := logging.DefaultConfig()
	cfg.Level = c.Level
	cfg.Format = c.Format
	cfg.Caller = c.Caller
	return cfg
}

// AuditConfig holds audit log settings.
type AuditConfig struct {
	// Capacity is the maximum number of entries kept in memory; the oldest
	// are evicted first.
	Capacity int `koanf:"capacity"`

	RetentionDays   int           `koanf:"retention_days"`
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// ToAudit converts to the audit package configuration.
func (c AuditConfig) ToAudit() *audit.Config {
	return &audit.Config{
		RetentionDays:   c.RetentionDays,
		CleanupInterval: c.CleanupInterval,
	}
}

// AlertsConfig holds alert manager settings.
type AlertsConfig struct {
	RetentionDays       int           `koanf:"retention_days"`
	ChannelTimeout      time.Duration `koanf:"channel_timeout"`
	MinDispatchSeverity string        `koanf:"min_dispatch_severity"`
	Rules               RulesConfig   `koanf:"rules"`
}

// RulesConfig holds detection rule windows and thresholds.
type RulesConfig struct {
	SuspiciousLoginWindow    time.Duration `koanf:"suspicious_login_window"`
	SuspiciousLoginThreshold int           `koanf:"suspicious_login_threshold"`
	SuspiciousLoginLimit     int           `koanf:"suspicious_login_limit"`
	BulkOperationWindow      time.Duration `koanf:"bulk_operation_window"`
	BulkOperationThreshold   int           `koanf:"bulk_operation_threshold"`
	BulkOperationLimit       int           `koanf:"bulk_operation_limit"`
}

// ToDetection converts to the detection package configuration.
func (c AlertsConfig) ToDetection() *detection.Config {
	return &detection.Config{
		RetentionDays:       c.RetentionDays,
		ChannelTimeout:      c.ChannelTimeout,
		MinDispatchSeverity: detection.Severity(c.MinDispatchSeverity),
		Rules: detection.RuleConfig{
			SuspiciousLoginWindow:    c.Rules.SuspiciousLoginWindow,
			SuspiciousLoginThreshold: c.Rules.SuspiciousLoginThreshold,
			SuspiciousLoginLimit:     c.Rules.SuspiciousLoginLimit,
			BulkOperationWindow:      c.Rules.BulkOperationWindow,
			BulkOperationThreshold:   c.Rules.BulkOperationThreshold,
			BulkOperationLimit:       c.Rules.BulkOperationLimit,
		},
	}
}

// ChannelsConfig holds notification channel settings.
type ChannelsConfig struct {
	Email   EmailConfig   `koanf:"email"`
	Slack   SlackConfig   `koanf:"slack"`
	Webhook WebhookConfig `koanf:"webhook"`
	Discord DiscordConfig `koanf:"discord"`
	Breaker BreakerConfig `koanf:"breaker"`
}

// EmailConfig configures SMTP delivery.
type EmailConfig struct {
	Enabled  bool     `koanf:"enabled"`
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Username string   `koanf:"username"`
	Password string   `koanf:"password"`
	From     string   `koanf:"from"`
	To       []string `koanf:"to"`
	StartTLS bool     `koanf:"starttls"`
}

// SlackConfig configures the Slack incoming webhook.
type SlackConfig struct {
	Enabled     bool          `koanf:"enabled"`
	WebhookURL  string        `koanf:"webhook_url"`
	MinInterval time.Duration `koanf:"min_interval"`
}

// WebhookConfig configures the generic webhook.
type WebhookConfig struct {
	Enabled     bool              `koanf:"enabled"`
	URL         string            `koanf:"url"`
	Secret      string            `koanf:"secret"`
	Headers     map[string]string `koanf:"headers"`
	MinInterval time.Duration     `koanf:"min_interval"`
}

// DiscordConfig configures the Discord webhook.
type DiscordConfig struct {
	Enabled     bool          `koanf:"enabled"`
	WebhookURL  string        `koanf:"webhook_url"`
	MinInterval time.Duration `koanf:"min_interval"`
}

// BreakerConfig configures the circuit breaker wrapped around every channel.
type BreakerConfig struct {
	MaxRequests      uint32        `koanf:"max_requests"`
	Interval         time.Duration `koanf:"interval"`
	Timeout          time.Duration `koanf:"timeout"`
	FailureThreshold uint32        `koanf:"failure_threshold"`
}

// DetectionBreaker converts to the detection breaker configuration.
func (c BreakerConfig) DetectionBreaker() detection.BreakerConfig {
	return detection.BreakerConfig{
		MaxRequests:      c.MaxRequests,
		Interval:         c.Interval,
		Timeout:          c.Timeout,
		FailureThreshold: c.FailureThreshold,
	}
}

// NATSConfig holds event bus configuration.
type NATSConfig struct {
	// Enabled controls whether alerts and audit entries are published.
	// Env: NATS_ENABLED (default: false)
	Enabled bool `koanf:"enabled"`

	// URL is the NATS server connection URL.
	// Env: NATS_URL (default: nats://127.0.0.1:4222)
	URL string `koanf:"url"`

	MaxReconnects   int           `koanf:"max_reconnects"`
	ReconnectWait   time.Duration `koanf:"reconnect_wait"`
	ReconnectBuffer int           `koanf:"reconnect_buffer"`
	TrackMsgID      bool          `koanf:"track_msg_id"`

	// AlertTopic receives every dispatched alert.
	AlertTopic string `koanf:"alert_topic"`

	// AuditTopic receives every stored audit entry when ForwardAudit is set.
	AuditTopic   string `koanf:"audit_topic"`
	ForwardAudit bool   `koanf:"forward_audit"`
}

// EventBusConfig converts to the eventbus package configuration. The
// publisher breaker shares the channel breaker settings.
func (c *Config) EventBusConfig() eventbus.Config {
	b := c.Channels.Breaker
	return eventbus.Config{
		URL:             c.NATS.URL,
		MaxReconnects:   c.NATS.MaxReconnects,
		ReconnectWait:   c.NATS.ReconnectWait,
		ReconnectBuffer: c.NATS.ReconnectBuffer,
		TrackMsgID:      c.NATS.TrackMsgID,
		AuditTopic:      c.NATS.AuditTopic,
		AlertTopic:      c.NATS.AlertTopic,
		Breaker: eventbus.BreakerConfig{
			MaxRequests:      b.MaxRequests,
			Interval:         b.Interval,
			Timeout:          b.Timeout,
			FailureThreshold: b.FailureThreshold,
		},
	}
}

// SecurityConfig holds HTTP hardening settings.
type SecurityConfig struct {
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return joinHostPort(s.Host, s.Port)
}
