// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Command server runs the Sentinel audit and alert detection service.
//
// # Startup
//
//  1. Configuration: defaults, optional YAML file, environment (koanf v2)
//  2. Logging: zerolog initialised from the logging section
//  3. Audit logger over a bounded in-memory store
//  4. Alert manager with the built-in rules and every enabled channel,
//     each wrapped in a circuit breaker
//  5. Event bus (optional): NATS JetStream publisher for alerts and,
//     with NATS_FORWARD_AUDIT, every audit entry
//  6. Supervisor tree: retention sweeps and the HTTP API
//
// # Configuration
//
// Settings are read from config.yaml (or the file named by CONFIG_PATH) and
// overridden by environment variables such as:
//
//	HTTP_PORT=8080
//	LOG_LEVEL=debug
//	AUDIT_RETENTION_DAYS=90
//	ALERT_RETENTION_DAYS=30
//	SLACK_ENABLED=true SLACK_WEBHOOK_URL=https://hooks.slack.com/...
//	NATS_ENABLED=true NATS_URL=nats://127.0.0.1:4222
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests for HTTP_SHUTDOWN_TIMEOUT before exiting.
package main
