// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/goccy/go-json"
)

// DefaultAlertTopic is the event bus topic alerts are published to.
const DefaultAlertTopic = "security.alerts"

// MessagePublisher publishes watermill messages. *eventbus.Publisher
// satisfies it.
type MessagePublisher interface {
	Publish(ctx context.Context, topic string, msg *message.Message) error
}

// EventBusChannel publishes alerts as JSON messages to an event bus topic.
type EventBusChannel struct {
	publisher MessagePublisher
	topic     string
}

// NewEventBusChannel creates a channel publishing to topic. An empty topic
// selects DefaultAlertTopic.
func NewEventBusChannel(publisher MessagePublisher, topic string) *EventBusChannel {
	if topic == "" {
		topic = DefaultAlertTopic
	}
	return &EventBusChannel{publisher: publisher, topic: topic}
}

// Name returns the channel name.
func (c *EventBusChannel) Name() string {
	return "eventbus"
}

// Send publishes the alert. The alert ID is the message UUID so downstream
// consumers can deduplicate redeliveries.
func (c *EventBusChannel) Send(ctx context.Context, alert *Alert) error {
	data, err := json.Marshal(alert)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}

	msg := message.NewMessage(alert.ID, data)
	msg.Metadata.Set("alert_type", string(alert.Type))
	msg.Metadata.Set("severity", string(alert.Severity))
	if alert.UserID != "" {
		msg.Metadata.Set("user_id", alert.UserID)
	}
	msg.SetContext(ctx)

	if err := c.publisher.Publish(ctx, c.topic, msg); err != nil {
		return fmt.Errorf("publish alert %s to %s: %w", alert.ID, c.topic, err)
	}
	return nil
}
