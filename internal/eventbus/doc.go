// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package eventbus publishes audit entries and security alerts to a message
bus.

Production deployments connect to NATS JetStream through Watermill:

	pub, err := eventbus.NewNATSPublisher(cfg, watermill.NewSlogLogger(logging.NewSlogLogger()))
	if err != nil {
	    return err
	}
	defer pub.Close()

	fwd := eventbus.NewAuditForwarder(pub, cfg.AuditTopic)
	auditLogger.RegisterAlert("eventbus", fwd.Forward)

Any watermill message.Publisher can be wrapped with NewPublisher, which is
how tests run against the in-memory gochannel pub/sub.

Every publish goes through a circuit breaker. Message UUIDs are copied into
the Nats-Msg-Id header so JetStream deduplicates redeliveries.
*/
package eventbus
