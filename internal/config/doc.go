// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package config provides centralized configuration management for Sentinel.

# Configuration Sources

Configuration is layered with Koanf, later layers overriding earlier ones:

 1. Built-in defaults (defaultConfig)
 2. Optional YAML file (CONFIG_PATH, ./config.yaml or /etc/sentinel/config.yaml)
 3. Environment variables from an explicit mapping table

Unmapped environment variables are ignored.

# Configuration Structure

  - ServerConfig: HTTP listener and timeouts
  - LoggingConfig: zerolog level, format and caller info
  - AuditConfig: audit store capacity, retention and cleanup interval
  - AlertsConfig: alert retention, dispatch threshold and rule thresholds
  - ChannelsConfig: email, Slack, webhook and Discord channels plus breaker
  - NATSConfig: event bus publishing of alerts and audit entries
  - SecurityConfig: CORS origins and API rate limiting

# Example

	cfg, err := config.Load()
	if err != nil {
	    log.Fatal(err)
	}
	logging.Init(cfg.Logging.ToLogging())

# Environment Variables

	HTTP_HOST, HTTP_PORT                    server listener
	LOG_LEVEL, LOG_FORMAT, LOG_CALLER       logging
	AUDIT_RETENTION_DAYS                    audit retention (default: 90)
	ALERT_RETENTION_DAYS                    resolved alert retention (default: 30)
	ALERT_MIN_DISPATCH_SEVERITY             lowest severity sent to channels, high or critical (default: high)
	SMTP_ENABLED, SMTP_HOST, SMTP_TO        email channel
	SLACK_ENABLED, SLACK_WEBHOOK_URL        Slack channel
	WEBHOOK_ENABLED, WEBHOOK_URL            generic webhook channel
	DISCORD_ENABLED, DISCORD_WEBHOOK_URL    Discord channel
	NATS_ENABLED, NATS_URL                  event bus
	CORS_ORIGINS, RATE_LIMIT_REQUESTS       HTTP security

See envMappings in koanf.go for the complete list.
*/
package config
