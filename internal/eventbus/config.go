// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventbus

import "time"

// Default topics.
const (
	DefaultAuditTopic = "audit.entries"
	DefaultAlertTopic = "security.alerts"
)

// Config holds NATS publisher configuration.
type Config struct {
	// URL is the NATS server connection URL.
	URL string

	MaxReconnects   int
	ReconnectWait   time.Duration
	ReconnectBuffer int

	// TrackMsgID enables JetStream deduplication on the Nats-Msg-Id header.
	TrackMsgID bool

	AuditTopic string
	AlertTopic string

	Breaker BreakerConfig
}

// BreakerConfig configures the publish circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold uint32
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{
		URL:             "nats://127.0.0.1:4222",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		ReconnectBuffer: 8 * 1024 * 1024, // 8MB
		TrackMsgID:      true,
		AuditTopic:      DefaultAuditTopic,
		AlertTopic:      DefaultAlertTopic,
		Breaker:         DefaultBreakerConfig(),
	}
}

// DefaultBreakerConfig returns breaker defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}
