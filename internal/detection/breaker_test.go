// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"errors"
	"testing"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
)

func TestBreakerChannel_OpensAfterConsecutiveFailures(t *testing.T) {
	t.Parallel()
	inner := &mockChannel{name: "flaky", err: errors.New("connection refused")}
	ch := NewBreakerChannel(inner, BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Hour,
		FailureThreshold: 2,
	})

	if ch.Name() != "flaky" {
		t.Errorf("breaker must keep the inner name, got %s", ch.Name())
	}

	for i := 0; i < 2; i++ {
		if err := ch.Send(context.Background(), sampleAlert()); err == nil {
			t.Fatalf("send %d: expected inner error", i)
		}
	}
	if ch.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", ch.State())
	}

	err := ch.Send(context.Background(), sampleAlert())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if inner.sent.Load() != 2 {
		t.Errorf("open breaker must not call the inner channel, got %d calls", inner.sent.Load())
	}
}

func TestBreakerChannel_HalfOpenRecovers(t *testing.T) {
	t.Parallel()
	inner := &mockChannel{name: "recovering", err: errors.New("timeout")}
	ch := NewBreakerChannel(inner, BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          20 * time.Millisecond,
		FailureThreshold: 1,
	})

	_ = ch.Send(context.Background(), sampleAlert())
	if ch.State() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", ch.State())
	}

	time.Sleep(40 * time.Millisecond)
	if ch.State() != gobreaker.StateHalfOpen {
		t.Fatalf("expected half-open breaker, got %s", ch.State())
	}

	inner.err = nil
	if err := ch.Send(context.Background(), sampleAlert()); err != nil {
		t.Fatalf("probe send failed: %v", err)
	}
	if ch.State() != gobreaker.StateClosed {
		t.Errorf("expected closed breaker after success, got %s", ch.State())
	}
}

func TestBreakerChannel_InManager(t *testing.T) {
	t.Parallel()
	m, _ := newTestManager(t, nil)
	inner := &mockChannel{name: "down", err: errors.New("503")}
	m.RegisterChannel(NewBreakerChannel(inner, BreakerConfig{
		MaxRequests: 1, Interval: time.Minute, Timeout: time.Hour, FailureThreshold: 1,
	}))

	for i := 0; i < 3; i++ {
		if _, err := m.CreateAlert(context.Background(), highParams()); err != nil {
			t.Fatalf("create failed: %v", err)
		}
	}
	if inner.sent.Load() != 1 {
		t.Errorf("expected breaker to stop deliveries after the first failure, got %d", inner.sent.Load())
	}
}
