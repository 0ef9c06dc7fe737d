// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

// Package services adapts Sentinel components to suture.Service.
//
//   - HTTPServerService runs an *http.Server and drains it on shutdown.
//   - RetentionService sweeps expired audit entries and resolved alerts on
//     an interval.
//
// Wrappers depend on small interfaces rather than concrete packages where
// possible so they can be tested with fakes.
package services
