// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package eventbus

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"

	"github.com/tomtom215/sentinel/internal/audit"
)

// MessagePublisher is the subset of Publisher used by the forwarder.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// AuditForwarder republishes stored audit entries on the event bus.
// Register Forward as an audit callback.
type AuditForwarder struct {
	publisher MessagePublisher
	topic     string
}

// NewAuditForwarder creates a forwarder. An empty topic selects
// DefaultAuditTopic.
func NewAuditForwarder(publisher MessagePublisher, topic string) *AuditForwarder {
	if topic == "" {
		topic = DefaultAuditTopic
	}
	return &AuditForwarder{publisher: publisher, topic: topic}
}

// Topic returns the destination topic.
func (f *AuditForwarder) Topic() string {
	return f.topic
}

// Forward publishes entry. Its signature matches audit.AlertCallback.
func (f *AuditForwarder) Forward(ctx context.Context, entry audit.Entry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal audit entry %s: %w", entry.ID, err)
	}

	msg := message.NewMessage(entry.ID, data)
	msg.Metadata.Set("action", string(entry.Action))
	msg.Metadata.Set("resource", string(entry.Resource))
	msg.Metadata.Set("level", string(entry.Level))
	msg.Metadata.Set("result", string(entry.Result))
	msg.Metadata.Set("user_id", entry.UserID)
	msg.SetContext(ctx)

	if err := f.publisher.Publish(ctx, f.topic, msg); err != nil {
		return fmt.Errorf("forward audit entry %s: %w", entry.ID, err)
	}
	return nil
}
