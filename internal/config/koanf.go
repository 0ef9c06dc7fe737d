// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/sentinel/config.yaml",
	"/etc/sentinel/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Audit: AuditConfig{
			Capacity:        10000,
			RetentionDays:   90,
			CleanupInterval: 24 * time.Hour,
		},
		Alerts: AlertsConfig{
			RetentionDays:       30,
			ChannelTimeout:      10 * time.Second,
			MinDispatchSeverity: "high",
			Rules: RulesConfig{
				SuspiciousLoginWindow:    10 * time.Minute,
				SuspiciousLoginThreshold: 5,
				SuspiciousLoginLimit:     10,
				BulkOperationWindow:      time.Minute,
				BulkOperationThreshold:   50,
				BulkOperationLimit:       50,
			},
		},
		Channels: ChannelsConfig{
			Email: EmailConfig{
				Port:     587,
				StartTLS: true,
			},
			Breaker: BreakerConfig{
				MaxRequests:      1,
				Interval:         time.Minute,
				Timeout:          30 * time.Second,
				FailureThreshold: 5,
			},
		},
		NATS: NATSConfig{
			Enabled:         false,
			URL:             "nats://127.0.0.1:4222",
			MaxReconnects:   -1,
			ReconnectWait:   2 * time.Second,
			ReconnectBuffer: 8 * 1024 * 1024,
			TrackMsgID:      true,
			AlertTopic:      "security.alerts",
			AuditTopic:      "audit.entries",
			ForwardAudit:    true,
		},
		Security: SecurityConfig{
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
	}
}

// Load loads configuration using Koanf with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any mapped setting
//
// The result is validated before it is returned.
func Load() (*Config, error) {
	return load(findConfigFile())
}

func load(configPath string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"channels.email.to",
	"security.cors_origins",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings while the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// Already a slice (from YAML file or defaults)
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}

		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("failed to set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envMappings maps environment variable names (lowercased) to koanf paths.
var envMappings = map[string]string{
	// Server
	"http_host":             "server.host",
	"http_port":             "server.port",
	"http_read_timeout":     "server.read_timeout",
	"http_write_timeout":    "server.write_timeout",
	"http_idle_timeout":     "server.idle_timeout",
	"http_shutdown_timeout": "server.shutdown_timeout",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	// Audit
	"audit_capacity":         "audit.capacity",
	"audit_retention_days":   "audit.retention_days",
	"audit_cleanup_interval": "audit.cleanup_interval",

	// Alerts and rules
	"alert_retention_days":            "alerts.retention_days",
	"alert_channel_timeout":           "alerts.channel_timeout",
	"alert_min_dispatch_severity":     "alerts.min_dispatch_severity",
	"rule_suspicious_login_window":    "alerts.rules.suspicious_login_window",
	"rule_suspicious_login_threshold": "alerts.rules.suspicious_login_threshold",
	"rule_suspicious_login_limit":     "alerts.rules.suspicious_login_limit",
	"rule_bulk_operation_window":      "alerts.rules.bulk_operation_window",
	"rule_bulk_operation_threshold":   "alerts.rules.bulk_operation_threshold",
	"rule_bulk_operation_limit":       "alerts.rules.bulk_operation_limit",

	// Email
	"smtp_enabled":  "channels.email.enabled",
	"smtp_host":     "channels.email.host",
	"smtp_port":     "channels.email.port",
	"smtp_username": "channels.email.username",
	"smtp_password": "channels.email.password",
	"smtp_from":     "channels.email.from",
	"smtp_to":       "channels.email.to",
	"smtp_starttls": "channels.email.starttls",

	// Slack
	"slack_enabled":      "channels.slack.enabled",
	"slack_webhook_url":  "channels.slack.webhook_url",
	"slack_min_interval": "channels.slack.min_interval",

	// Webhook
	"webhook_enabled":      "channels.webhook.enabled",
	"webhook_url":          "channels.webhook.url",
	"webhook_secret":       "channels.webhook.secret",
	"webhook_min_interval": "channels.webhook.min_interval",

	// Discord
	"discord_enabled":      "channels.discord.enabled",
	"discord_webhook_url":  "channels.discord.webhook_url",
	"discord_min_interval": "channels.discord.min_interval",

	// Channel circuit breaker
	"channel_breaker_max_requests":      "channels.breaker.max_requests",
	"channel_breaker_interval":          "channels.breaker.interval",
	"channel_breaker_timeout":           "channels.breaker.timeout",
	"channel_breaker_failure_threshold": "channels.breaker.failure_threshold",

	// NATS
	"nats_enabled":          "nats.enabled",
	"nats_url":              "nats.url",
	"nats_max_reconnects":   "nats.max_reconnects",
	"nats_reconnect_wait":   "nats.reconnect_wait",
	"nats_reconnect_buffer": "nats.reconnect_buffer",
	"nats_track_msg_id":     "nats.track_msg_id",
	"nats_alert_topic":      "nats.alert_topic",
	"nats_audit_topic":      "nats.audit_topic",
	"nats_forward_audit":    "nats.forward_audit",

	// Security
	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - HTTP_PORT -> server.port
//   - SMTP_TO -> channels.email.to
//   - NATS_URL -> nats.url
//
// Unmapped keys return an empty string and are skipped, so unrelated
// environment variables never pollute the config.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func joinHostPort(host string, port int) string {
	return net.JoinHostPort(host, strconv.Itoa(port))
}
