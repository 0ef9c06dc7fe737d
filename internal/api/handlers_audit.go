// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/sentinel/internal/audit"
)

// CreateEvent handles POST /api/v1/audit/events.
// The client IP and User-Agent come from the request headers.
func (h *Handler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.audit.Log(r.Context(), req.toParams(r))
	if err != nil {
		h.respondAuditError(w, r, err, "Failed to record audit event")
		return
	}

	respondJSON(w, r, http.StatusCreated, entry)
}

// CreateEventBatch handles POST /api/v1/audit/events/batch.
// The batch is best-effort: stored entries are returned with 201 even when
// some events failed, and the failures are listed alongside them.
func (h *Handler) CreateEventBatch(w http.ResponseWriter, r *http.Request) {
	var req BatchEventRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	params := make([]audit.LogParams, len(req.Events))
	for i := range req.Events {
		params[i] = req.Events[i].toParams(r)
	}

	entries, err := h.audit.LogBatch(r.Context(), params)
	if entries == nil {
		entries = []audit.Entry{}
	}

	resp := map[string]interface{}{
		"entries": entries,
		"stored":  len(entries),
		"failed":  len(params) - len(entries),
	}
	if err != nil {
		if len(entries) == 0 {
			h.respondAuditError(w, r, err, "Failed to record audit events")
			return
		}
		resp["error"] = err.Error()
	}

	respondJSON(w, r, http.StatusCreated, resp)
}

// ListEvents handles GET /api/v1/audit/events.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	q, ok := parseEventQuery(w, r, audit.DefaultQueryLimit)
	if !ok {
		return
	}

	entries, err := h.audit.Query(r.Context(), q.filter(), q.Limit)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeAuditError, "Failed to fetch audit events", err)
		return
	}

	respondList(w, r, entries)
}

// GetEvent handles GET /api/v1/audit/events/{id}.
func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	entry, err := h.audit.Store().FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, audit.ErrEntryNotFound) {
			respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Audit event not found", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeAuditError, "Failed to fetch audit event", err)
		return
	}

	respondJSON(w, r, http.StatusOK, entry)
}

// GetAuditStats handles GET /api/v1/audit/stats.
func (h *Handler) GetAuditStats(w http.ResponseWriter, r *http.Request) {
	q, ok := parseEventQuery(w, r, 0)
	if !ok {
		return
	}

	stats, err := h.audit.GetStats(r.Context(), q.filter())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeAuditError, "Failed to compute audit statistics", err)
		return
	}

	respondJSON(w, r, http.StatusOK, stats)
}

// ExportEvents handles GET /api/v1/audit/export?format=json|cef.
// The JSON document is {format, data, exportedAt}; CEF is one line per entry.
func (h *Handler) ExportEvents(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = audit.FormatJSON
	}
	exporter, err := audit.NewExporter(format)
	if err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "format must be json or cef", nil)
		return
	}

	q, ok := parseEventQuery(w, r, 0)
	if !ok {
		return
	}

	export, err := h.audit.Export(r.Context(), q.filter())
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeAuditError, "Failed to query events for export", err)
		return
	}

	data, err := exporter.Export(&export)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeAuditError, "Failed to export events", err)
		return
	}

	filename := "audit-events-" + export.ExportedAt.UTC().Format("20060102T150405Z") + "." + format
	w.Header().Set("Content-Type", exporter.ContentType())
	w.Header().Set("Content-Disposition", "attachment; filename=\""+filename+"\"")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data) // headers already sent
}

func (h *Handler) respondAuditError(w http.ResponseWriter, r *http.Request, err error, message string) {
	if errors.Is(err, audit.ErrInvalidParams) {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	respondError(w, r, http.StatusInternalServerError, ErrCodeAuditError, message, err)
}
