// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// Ensure BreakerChannel implements Channel
var _ Channel = (*BreakerChannel)(nil)

// BreakerConfig configures the circuit breaker around a channel.
type BreakerConfig struct {
	// MaxRequests allowed through in the half-open state.
	MaxRequests uint32

	// Interval after which closed-state counts reset.
	Interval time.Duration

	// Timeout before an open breaker moves to half-open.
	Timeout time.Duration

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          30 * time.Second,
		FailureThreshold: 5,
	}
}

// BreakerChannel wraps a Channel with a circuit breaker so a failing
// transport fails fast instead of consuming the dispatch timeout on every
// alert.
type BreakerChannel struct {
	inner Channel
	cb    *gobreaker.CircuitBreaker[interface{}]
}

// NewBreakerChannel wraps inner with a circuit breaker named after the channel.
func NewBreakerChannel(inner Channel, cfg BreakerConfig) *BreakerChannel {
	name := "channel-" + inner.Name()
	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logging.Info().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state transition")
			metrics.RecordBreakerTransition(name, from.String(), to.String(), stateToFloat(to))
		},
	})

	return &BreakerChannel{inner: inner, cb: cb}
}

// Name returns the wrapped channel's name.
func (b *BreakerChannel) Name() string {
	return b.inner.Name()
}

// Send delivers through the breaker. An open breaker rejects immediately
// with gobreaker.ErrOpenState.
func (b *BreakerChannel) Send(ctx context.Context, alert *Alert) error {
	name := "channel-" + b.inner.Name()

	_, err := b.cb.Execute(func() (interface{}, error) {
		return nil, b.inner.Send(ctx, alert)
	})
	switch {
	case err == nil:
		metrics.RecordBreakerRequest(name, "success")
	case errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.RecordBreakerRequest(name, "rejected")
	default:
		metrics.RecordBreakerRequest(name, "failure")
	}
	return err
}

// State returns the breaker state.
func (b *BreakerChannel) State() gobreaker.State {
	return b.cb.State()
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
