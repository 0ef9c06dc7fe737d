// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"
	"strings"
	"testing"
)

func TestHealthEndpoints(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/health/live", nil)
	var live map[string]string
	decodeData(t, decodeEnvelope(t, rec, http.StatusOK), &live)
	if live["status"] != "alive" {
		t.Errorf("live = %v", live)
	}

	rec = env.do(t, http.MethodGet, "/api/v1/health", nil)
	var health HealthStatus
	decodeData(t, decodeEnvelope(t, rec, http.StatusOK), &health)
	if health.Status != "healthy" || health.Version != "test" {
		t.Errorf("health = %+v", health)
	}
	if len(health.Channels) != 1 || health.Channels[0] != "recording" {
		t.Errorf("channels = %v", health.Channels)
	}
	if health.RetentionDays != 90 {
		t.Errorf("retention = %d, want default 90", health.RetentionDays)
	}
}

func TestRouter_NotFoundAndMethodNotAllowed(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/nothing-here", nil)
	body := decodeEnvelope(t, rec, http.StatusNotFound)
	if body.Error.Code != ErrCodeNotFound {
		t.Errorf("code = %s", body.Error.Code)
	}

	rec = env.do(t, http.MethodDelete, "/api/v1/alerts/stats", nil)
	decodeEnvelope(t, rec, http.StatusMethodNotAllowed)
}

func TestRouter_RequestIDPropagation(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodGet, "/api/v1/alerts/stats", nil, "X-Request-ID", "req-123")
	if got := rec.Header().Get("X-Request-ID"); got != "req-123" {
		t.Errorf("X-Request-ID = %q", got)
	}
	body := decodeEnvelope(t, rec, http.StatusOK)
	if body.Meta.RequestID != "req-123" {
		t.Errorf("meta request ID = %q", body.Meta.RequestID)
	}
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	env.do(t, http.MethodGet, "/api/v1/alerts/stats", nil)
	rec := env.do(t, http.MethodGet, "/metrics", nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("expected api_requests_total in exposition")
	}
}

func TestRouter_RecoversPanics(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)
	env.handler.alerts = nil // GetAlertStats dereferences the manager

	rec := env.do(t, http.MethodGet, "/api/v1/alerts/stats", nil)
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500 from the recoverer", rec.Code)
	}
}
