// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventbus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	gobreaker "github.com/sony/gobreaker/v2"
)

// mockPublisher records published messages and optionally fails.
type mockPublisher struct {
	mu       sync.Mutex
	messages map[string][]*message.Message
	fail     atomic.Bool
	calls    atomic.Int32
	closed   atomic.Int32
}

func newMockPublisher() *mockPublisher {
	return &mockPublisher{messages: make(map[string][]*message.Message)}
}

func (m *mockPublisher) Publish(topic string, msgs ...*message.Message) error {
	m.calls.Add(1)
	if m.fail.Load() {
		return errors.New("nats unavailable")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages[topic] = append(m.messages[topic], msgs...)
	return nil
}

func (m *mockPublisher) Close() error {
	m.closed.Add(1)
	return nil
}

func (m *mockPublisher) published(topic string) []*message.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*message.Message(nil), m.messages[topic]...)
}

func newGoChannel(t *testing.T) *gochannel.GoChannel {
	t.Helper()
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 16,
		Persistent:          true,
	}, watermill.NopLogger{})
	t.Cleanup(func() { _ = pubsub.Close() })
	return pubsub
}

func receive(t *testing.T, ch <-chan *message.Message) *message.Message {
	t.Helper()
	select {
	case msg := <-ch:
		msg.Ack()
		return msg
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for message")
		return nil
	}
}

func TestPublisher_SetsMsgIDHeader(t *testing.T) {
	t.Parallel()
	mock := newMockPublisher()
	pub := NewPublisher(mock, DefaultBreakerConfig())

	msg := message.NewMessage("msg-1", []byte(`{}`))
	if err := pub.Publish(context.Background(), "audit.entries", msg); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	got := mock.published("audit.entries")
	if len(got) != 1 {
		t.Fatalf("expected 1 message, got %d", len(got))
	}
	if id := got[0].Metadata.Get(natsgo.MsgIdHdr); id != "msg-1" {
		t.Errorf("expected Nats-Msg-Id msg-1, got %q", id)
	}
}

func TestPublisher_KeepsExistingMsgID(t *testing.T) {
	t.Parallel()
	mock := newMockPublisher()
	pub := NewPublisher(mock, DefaultBreakerConfig())

	msg := message.NewMessage("msg-1", nil)
	msg.Metadata.Set(natsgo.MsgIdHdr, "custom")
	if err := pub.Publish(context.Background(), "t", msg); err != nil {
		t.Fatalf("publish failed: %v", err)
	}
	if id := mock.published("t")[0].Metadata.Get(natsgo.MsgIdHdr); id != "custom" {
		t.Errorf("expected custom msg id to be kept, got %q", id)
	}
}

func TestPublisher_BreakerOpensAfterFailures(t *testing.T) {
	t.Parallel()
	mock := newMockPublisher()
	mock.fail.Store(true)

	pub := NewPublisher(mock, BreakerConfig{
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Hour,
		FailureThreshold: 3,
	})

	for i := 0; i < 3; i++ {
		if err := pub.Publish(context.Background(), "t", message.NewMessage(watermill.NewUUID(), nil)); err == nil {
			t.Fatalf("publish %d: expected error", i)
		}
	}
	if pub.BreakerState() != gobreaker.StateOpen {
		t.Fatalf("expected open breaker, got %s", pub.BreakerState())
	}

	err := pub.Publish(context.Background(), "t", message.NewMessage(watermill.NewUUID(), nil))
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("expected ErrOpenState, got %v", err)
	}
	if calls := mock.calls.Load(); calls != 3 {
		t.Errorf("expected open breaker to skip the publisher, got %d calls", calls)
	}
}

func TestPublisher_Close(t *testing.T) {
	t.Parallel()
	mock := newMockPublisher()
	pub := NewPublisher(mock, DefaultBreakerConfig())

	if err := pub.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("second close failed: %v", err)
	}
	if n := mock.closed.Load(); n != 1 {
		t.Errorf("expected underlying publisher closed once, got %d", n)
	}

	err := pub.Publish(context.Background(), "t", message.NewMessage("x", nil))
	if !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestPublisher_CanceledContext(t *testing.T) {
	t.Parallel()
	mock := newMockPublisher()
	pub := NewPublisher(mock, DefaultBreakerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := pub.Publish(ctx, "t", message.NewMessage("x", nil)); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
	if mock.calls.Load() != 0 {
		t.Error("expected no publish on canceled context")
	}
}

func TestPublisher_GoChannelRoundTrip(t *testing.T) {
	t.Parallel()
	pubsub := newGoChannel(t)
	pub := NewPublisher(pubsub, DefaultBreakerConfig())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	msgs, err := pubsub.Subscribe(ctx, "security.alerts")
	if err != nil {
		t.Fatalf("subscribe failed: %v", err)
	}

	if err := pub.Publish(ctx, "security.alerts", message.NewMessage("a1", []byte(`{"id":"a1"}`))); err != nil {
		t.Fatalf("publish failed: %v", err)
	}

	got := receive(t, msgs)
	if got.UUID != "a1" {
		t.Errorf("expected UUID a1, got %s", got.UUID)
	}
	if string(got.Payload) != `{"id":"a1"}` {
		t.Errorf("unexpected payload %s", got.Payload)
	}
}

func TestNewNATSPublisher_RequiresURL(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	cfg.URL = ""
	if _, err := NewNATSPublisher(cfg, watermill.NopLogger{}); err == nil {
		t.Error("expected error for empty URL")
	}
}

func TestDefaultConfig(t *testing.T) {
	t.Parallel()
	cfg := DefaultConfig()
	if cfg.AuditTopic != "audit.entries" {
		t.Errorf("unexpected audit topic %s", cfg.AuditTopic)
	}
	if cfg.AlertTopic != "security.alerts" {
		t.Errorf("unexpected alert topic %s", cfg.AlertTopic)
	}
	if !cfg.TrackMsgID {
		t.Error("expected message ID tracking on by default")
	}
}
