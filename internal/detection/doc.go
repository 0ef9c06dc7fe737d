// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package detection raises security alerts from audit activity and
// delivers them to notification channels.
//
// Detection Architecture:
//
//	audit.Entry -> Manager.HandleAuditEntry -> Rules -> Alert -> Channels
//	                                             |                  |
//	                                             v                  v
//	                                     audit.Logger.Query   Email/Slack/Webhook/
//	                                                          Discord/EventBus
//
// The Manager is registered as an audit callback. Every stored entry is
// evaluated against the registered rules; a rule that fires yields the
// parameters of one alert. Alerts at or above the dispatch severity (high by
// default) are sent to every channel concurrently, each bounded by a timeout.
// Channel failures are logged and counted, never returned to the caller.
//
// Built-in Rules:
//   - Suspicious Login: 5 or more failed logins by one user in 10 minutes
//   - Privilege Escalation: every role or permission change
//   - Bulk Operation: 50 or more repeats of one action by one user in 1 minute
//
// Payload Detection:
//
// DetectSQLInjection and DetectXSS are regex heuristics over raw strings.
// They are intentionally broad and report false positives on ordinary text.
//
// Alert Lifecycle:
//
// Alerts start unacknowledged and unresolved. Acknowledge and resolve are
// independent, idempotent transitions that keep the first actor and time.
// Cleanup deletes resolved alerts older than the retention period;
// unresolved alerts are kept indefinitely.
package detection
