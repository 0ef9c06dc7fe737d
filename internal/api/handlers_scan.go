// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/detection"
)

var scanTitles = map[detection.AlertType]string{
	detection.AlertTypeSQLInjection: "SQL Injection Attempt Detected",
	detection.AlertTypeXSS:          "XSS Attempt Detected",
}

// Scan handles POST /api/v1/scan.
// Every field value is run through the SQL injection and XSS detectors. Each
// detector that matches at least one field raises one high severity alert
// naming the matching fields. A clean payload returns empty lists.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	var req ScanRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	names := make([]string, 0, len(req.Fields))
	for name := range req.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]detection.NamedValue, len(names))
	for i, name := range names {
		values[i] = detection.NamedValue{Name: name, Value: req.Fields[name]}
	}

	findings := detection.ScanFields(values)
	resp := ScanResponse{
		Findings: findings,
		Alerts:   []detection.Alert{},
	}
	if resp.Findings == nil {
		resp.Findings = []detection.Finding{}
	}

	fieldsByType := make(map[detection.AlertType][]string)
	var order []detection.AlertType
	for _, f := range findings {
		if _, seen := fieldsByType[f.Type]; !seen {
			order = append(order, f.Type)
		}
		fieldsByType[f.Type] = append(fieldsByType[f.Type], f.Field)
	}

	sourceIP := audit.ExtractIP(r)
	for _, alertType := range order {
		fields := fieldsByType[alertType]
		alert, err := h.alerts.CreateSecurityAlert(r.Context(),
			alertType,
			detection.SeverityHigh,
			scanTitles[alertType],
			"Suspicious input in field(s): "+strings.Join(fields, ", "),
			sourceIP,
			req.UserID,
			map[string]interface{}{
				"fields":    fields,
				"userAgent": audit.ExtractUserAgent(r),
			},
		)
		if err != nil {
			respondError(w, r, http.StatusInternalServerError, ErrCodeAlertError, "Failed to raise alert", err)
			return
		}
		resp.Alerts = append(resp.Alerts, alert)
	}

	respondJSON(w, r, http.StatusOK, resp)
}
