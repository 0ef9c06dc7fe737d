// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package audit records security-relevant actions as immutable audit entries.
//
// # Overview
//
// The package provides:
//   - Typed entries (action, resource, level, result) with request-derived
//     IP address and User-Agent
//   - A Store contract with a bounded, newest-first in-memory implementation
//   - A Logger that writes entries, fans each stored entry out to registered
//     alert callbacks, and exposes query, statistics, export and retention
//   - JSON and CEF export for SIEM consumers
//
// # Architecture
//
//	Logger.Log() -> Store.Create() -> alert callbacks (synchronous, in name order)
//	                     |                     |
//	               source of truth      errors/panics logged, never returned
//
// The store write is the source of truth. A failing callback never rolls it
// back and never surfaces to the caller of Log.
//
// # Usage Example
//
//	store := audit.NewMemoryStore(10000)
//	logger := audit.NewLogger(store, audit.DefaultConfig())
//
//	logger.RegisterAlert("security", func(ctx context.Context, e audit.Entry) error {
//	    return manager.HandleAuditEntry(ctx, e)
//	})
//
//	entry, err := logger.LogLogin(ctx, "user-123", audit.ResultFailure, r)
//
// # Thread Safety
//
// MemoryStore and Logger are safe for concurrent use. Entries returned from
// the store are values; their Details and Metadata maps are shared with the
// store and must be treated as read-only.
package audit
