// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/detection"
)

// Handler serves the audit, alert and scan endpoints.
type Handler struct {
	audit     *audit.Logger
	alerts    *detection.Manager
	version   string
	startTime time.Time
}

// NewHandler creates a handler over the audit logger and alert manager.
func NewHandler(auditLogger *audit.Logger, alerts *detection.Manager, version string) *Handler {
	if version == "" {
		version = "dev"
	}
	return &Handler{
		audit:     auditLogger,
		alerts:    alerts,
		version:   version,
		startTime: time.Now(),
	}
}
