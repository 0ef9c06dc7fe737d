// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/sentinel/internal/logging"
)

// HealthStatus is the body of GET /api/v1/health.
type HealthStatus struct {
	Status        string   `json:"status"`
	Version       string   `json:"version"`
	Uptime        float64  `json:"uptimeSeconds"`
	AuditEntries  int64    `json:"auditEntries"`
	RetentionDays int      `json:"auditRetentionDays"`
	Channels      []string `json:"channels"`
}

// HealthLive handles GET /api/v1/health/live. It only reports that the
// process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "alive"})
}

// Health handles GET /api/v1/health. A failing audit store reports
// "degraded" with 503.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	status, code := "healthy", http.StatusOK
	entries, err := h.audit.Store().Count(r.Context(), nil)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Audit store health check failed")
		status, code = "degraded", http.StatusServiceUnavailable
	}

	channels := h.alerts.Channels()
	if channels == nil {
		channels = []string{}
	}

	respondJSON(w, r, code, HealthStatus{
		Status:        status,
		Version:       h.version,
		Uptime:        time.Since(h.startTime).Seconds(),
		AuditEntries:  entries,
		RetentionDays: h.audit.Config().RetentionDays,
		Channels:      channels,
	})
}
