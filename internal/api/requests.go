// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/detection"
)

const (
	maxBodyBytes      = 1 << 20
	defaultAlertLimit = 100
)

// CreateEventRequest is the body of POST /api/v1/audit/events.
type CreateEventRequest struct {
	UserID     string                 `json:"userId" validate:"required,max=256"`
	Action     string                 `json:"action" validate:"required,audit_action"`
	Resource   string                 `json:"resource" validate:"required,audit_resource"`
	ResourceID string                 `json:"resourceId,omitempty" validate:"max=256"`
	Level      string                 `json:"level,omitempty" validate:"audit_level"`
	Result     string                 `json:"result,omitempty" validate:"audit_result"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// toParams converts the request. r supplies the client IP and User-Agent.
func (req *CreateEventRequest) toParams(r *http.Request) audit.LogParams {
	return audit.LogParams{
		UserID:     req.UserID,
		Action:     audit.Action(req.Action),
		Resource:   audit.Resource(req.Resource),
		ResourceID: req.ResourceID,
		Level:      audit.Level(req.Level),
		Result:     audit.Result(req.Result),
		Details:    req.Details,
		Metadata:   req.Metadata,
		Request:    r,
	}
}

// BatchEventRequest is the body of POST /api/v1/audit/events/batch.
type BatchEventRequest struct {
	Events []CreateEventRequest `json:"events" validate:"required,min=1,max=1000,dive"`
}

// EventQueryRequest holds the query parameters of the audit list, stats and
// export endpoints.
type EventQueryRequest struct {
	UserID    string     `json:"user_id" validate:"max=256"`
	Action    string     `json:"action" validate:"audit_action"`
	Resource  string     `json:"resource" validate:"audit_resource"`
	Level     string     `json:"level" validate:"audit_level"`
	Result    string     `json:"result" validate:"audit_result"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Limit     int        `json:"limit" validate:"min=0,max=10000"`
}

func (q *EventQueryRequest) filter() *audit.Filter {
	return &audit.Filter{
		UserID:    q.UserID,
		Action:    audit.Action(q.Action),
		Resource:  audit.Resource(q.Resource),
		Level:     audit.Level(q.Level),
		Result:    audit.Result(q.Result),
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
	}
}

// CreateAlertRequest is the body of POST /api/v1/alerts.
type CreateAlertRequest struct {
	Type     string                 `json:"type" validate:"required,alert_type"`
	Severity string                 `json:"severity" validate:"required,alert_severity"`
	Title    string                 `json:"title" validate:"required,max=200"`
	Message  string                 `json:"message" validate:"max=4000"`
	Details  map[string]interface{} `json:"details,omitempty"`
	SourceIP string                 `json:"sourceIp,omitempty" validate:"omitempty,ip"`
	UserID   string                 `json:"userId,omitempty" validate:"max=256"`
}

// toParams converts the request. A missing source IP is taken from r.
func (req *CreateAlertRequest) toParams(r *http.Request) detection.CreateParams {
	sourceIP := req.SourceIP
	if sourceIP == "" {
		sourceIP = audit.ExtractIP(r)
	}
	return detection.CreateParams{
		Type:     detection.AlertType(req.Type),
		Severity: detection.Severity(req.Severity),
		Title:    req.Title,
		Message:  req.Message,
		Details:  req.Details,
		SourceIP: sourceIP,
		UserID:   req.UserID,
	}
}

// AlertQueryRequest holds the query parameters of GET /api/v1/alerts.
type AlertQueryRequest struct {
	Type         string     `json:"type" validate:"alert_type"`
	Severity     string     `json:"severity" validate:"alert_severity"`
	Acknowledged *bool      `json:"acknowledged"`
	Resolved     *bool      `json:"resolved"`
	StartDate    *time.Time `json:"start_date"`
	EndDate      *time.Time `json:"end_date"`
	Limit        int        `json:"limit" validate:"min=0,max=10000"`
}

func (q *AlertQueryRequest) filter() *detection.AlertFilter {
	limit := q.Limit
	if limit == 0 {
		limit = defaultAlertLimit
	}
	return &detection.AlertFilter{
		Type:         detection.AlertType(q.Type),
		Severity:     detection.Severity(q.Severity),
		Acknowledged: q.Acknowledged,
		Resolved:     q.Resolved,
		StartDate:    q.StartDate,
		EndDate:      q.EndDate,
		Limit:        limit,
	}
}

// AlertActionRequest is the body of the acknowledge and resolve endpoints.
type AlertActionRequest struct {
	UserID string `json:"userId" validate:"required,max=256"`
}

// ScanRequest is the body of POST /api/v1/scan. Fields maps an input name
// (form field, header, query parameter) to the raw value to inspect.
type ScanRequest struct {
	Fields map[string]string `json:"fields" validate:"required,min=1,max=100"`
	UserID string            `json:"userId,omitempty" validate:"max=256"`
}

// ScanResponse reports detection hits and the alerts raised for them.
type ScanResponse struct {
	Findings []detection.Finding `json:"findings"`
	Alerts   []detection.Alert   `json:"alerts"`
}
