// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sentinel/internal/detection"
)

// ListAlerts handles GET /api/v1/alerts.
// Query parameters: type, severity, acknowledged, resolved, start_date,
// end_date, limit (default 100).
func (h *Handler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	q, ok := parseAlertQuery(w, r)
	if !ok {
		return
	}

	alerts, err := h.alerts.GetAllAlerts(r.Context(), q.filter())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeAlertError, "Failed to fetch alerts", err)
		return
	}

	respondList(w, r, alerts)
}

// GetAlert handles GET /api/v1/alerts/{id}.
func (h *Handler) GetAlert(w http.ResponseWriter, r *http.Request) {
	alert, found, err := h.alerts.GetAlert(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeAlertError, "Failed to fetch alert", err)
		return
	}
	if !found {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Alert not found", nil)
		return
	}

	respondJSON(w, r, http.StatusOK, alert)
}

// CreateAlert handles POST /api/v1/alerts.
// High and critical alerts are dispatched to the notification channels
// before the response is written.
func (h *Handler) CreateAlert(w http.ResponseWriter, r *http.Request) {
	var req CreateAlertRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	alert, err := h.alerts.CreateAlert(r.Context(), req.toParams(r))
	if err != nil {
		if errors.Is(err, detection.ErrInvalidAlert) {
			respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeAlertError, "Failed to create alert", err)
		return
	}

	respondJSON(w, r, http.StatusCreated, alert)
}

// AcknowledgeAlert handles POST /api/v1/alerts/{id}/acknowledge.
func (h *Handler) AcknowledgeAlert(w http.ResponseWriter, r *http.Request) {
	h.transitionAlert(w, r, "acknowledge", h.alerts.AcknowledgeAlert)
}

// ResolveAlert handles POST /api/v1/alerts/{id}/resolve.
func (h *Handler) ResolveAlert(w http.ResponseWriter, r *http.Request) {
	h.transitionAlert(w, r, "resolve", h.alerts.ResolveAlert)
}

// transitionAlert applies an acknowledge or resolve operation and responds
// with the updated alert. Repeating a transition is not an error.
func (h *Handler) transitionAlert(w http.ResponseWriter, r *http.Request, op string,
	apply func(ctx context.Context, id, userID string) (bool, error)) {
	var req AlertActionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	id := chi.URLParam(r, "id")
	found, err := apply(r.Context(), id, req.UserID)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeAlertError, "Failed to "+op+" alert", err)
		return
	}
	if !found {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Alert not found", nil)
		return
	}

	alert, found, err := h.alerts.GetAlert(r.Context(), id)
	if err != nil || !found {
		respondError(w, r, http.StatusInternalServerError, ErrCodeAlertError, "Failed to fetch alert", err)
		return
	}

	respondJSON(w, r, http.StatusOK, alert)
}

// GetAlertStats handles GET /api/v1/alerts/stats.
func (h *Handler) GetAlertStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.alerts.GetStats(r.Context())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeAlertError, "Failed to compute alert statistics", err)
		return
	}

	respondJSON(w, r, http.StatusOK, stats)
}
