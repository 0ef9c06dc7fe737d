// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"errors"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
)

var (
	// ErrAlertNotFound is returned when an alert ID does not exist.
	ErrAlertNotFound = errors.New("security alert not found")

	// ErrInvalidAlert is returned when CreateParams are incomplete or carry
	// unknown enum values.
	ErrInvalidAlert = errors.New("invalid security alert")
)

// AlertType identifies the class of security finding.
type AlertType string

const (
	AlertTypeSuspiciousLogin     AlertType = "suspicious_login"
	AlertTypeBruteForceAttack    AlertType = "brute_force_attack"
	AlertTypePrivilegeEscalation AlertType = "privilege_escalation"
	AlertTypeBulkOperation       AlertType = "bulk_operation"
	AlertTypeAPIAbuse            AlertType = "api_abuse"
	AlertTypeDataBreach          AlertType = "data_breach"
	AlertTypeMaliciousPayload    AlertType = "malicious_payload"
	AlertTypeRateLimitExceeded   AlertType = "rate_limit_exceeded"
	AlertTypeInvalidSignature    AlertType = "invalid_signature"
	AlertTypeCSRFDetected        AlertType = "csrf_detected"
	AlertTypeSQLInjection        AlertType = "sql_injection_attempt"
	AlertTypeXSS                 AlertType = "xss_attempt"
	AlertTypeUnauthorizedAccess  AlertType = "unauthorized_access"
)

// AlertTypes lists every known alert type.
var AlertTypes = []AlertType{
	AlertTypeSuspiciousLogin, AlertTypeBruteForceAttack, AlertTypePrivilegeEscalation,
	AlertTypeBulkOperation, AlertTypeAPIAbuse, AlertTypeDataBreach, AlertTypeMaliciousPayload,
	AlertTypeRateLimitExceeded, AlertTypeInvalidSignature, AlertTypeCSRFDetected,
	AlertTypeSQLInjection, AlertTypeXSS, AlertTypeUnauthorizedAccess,
}

// Valid reports whether t is a known alert type.
func (t AlertType) Valid() bool {
	for _, known := range AlertTypes {
		if t == known {
			return true
		}
	}
	return false
}

// Severity indicates the severity level of an alert.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Severities lists every severity in ascending order.
var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

// Rank orders severities: low=1 < medium=2 < high=3 < critical=4.
// Unknown values rank 0.
func (s Severity) Rank() int {
	switch s {
	case SeverityLow:
		return 1
	case SeverityMedium:
		return 2
	case SeverityHigh:
		return 3
	case SeverityCritical:
		return 4
	default:
		return 0
	}
}

// Valid reports whether s is a known severity.
func (s Severity) Valid() bool {
	return s.Rank() > 0
}

// Alert is a security finding. Acknowledgement and resolution are one-way
// transitions; Resolved implies ResolvedAt and ResolvedBy are set.
type Alert struct {
	ID             string                 `json:"id"`
	Type           AlertType              `json:"type"`
	Severity       Severity               `json:"severity"`
	Title          string                 `json:"title"`
	Message        string                 `json:"message"`
	Details        map[string]interface{} `json:"details"`
	SourceIP       string                 `json:"sourceIp"`
	UserID         string                 `json:"userId,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
	Acknowledged   bool                   `json:"acknowledged"`
	AcknowledgedBy string                 `json:"acknowledgedBy,omitempty"`
	AcknowledgedAt *time.Time             `json:"acknowledgedAt,omitempty"`
	Resolved       bool                   `json:"resolved"`
	ResolvedAt     *time.Time             `json:"resolvedAt,omitempty"`
	ResolvedBy     string                 `json:"resolvedBy,omitempty"`
}

// CreateParams describes an alert to raise.
type CreateParams struct {
	Type     AlertType              `json:"type"`
	Severity Severity               `json:"severity"`
	Title    string                 `json:"title"`
	Message  string                 `json:"message"`
	Details  map[string]interface{} `json:"details,omitempty"`
	SourceIP string                 `json:"sourceIp"`
	UserID   string                 `json:"userId,omitempty"`
}

// AlertFilter narrows GetAllAlerts. Unset fields match everything; set
// fields combine with AND semantics.
type AlertFilter struct {
	Type         AlertType  `json:"type,omitempty"`
	Severity     Severity   `json:"severity,omitempty"`
	Acknowledged *bool      `json:"acknowledged,omitempty"`
	Resolved     *bool      `json:"resolved,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	Limit        int        `json:"limit,omitempty"`
}

// Matches reports whether a satisfies every set field of f.
// A nil filter matches everything.
func (f *AlertFilter) Matches(a *Alert) bool {
	if f == nil {
		return true
	}
	if f.Type != "" && a.Type != f.Type {
		return false
	}
	if f.Severity != "" && a.Severity != f.Severity {
		return false
	}
	if f.Acknowledged != nil && a.Acknowledged != *f.Acknowledged {
		return false
	}
	if f.Resolved != nil && a.Resolved != *f.Resolved {
		return false
	}
	if f.StartDate != nil && a.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && a.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}

// AlertStats summarizes the alert store.
type AlertStats struct {
	Total          int            `json:"total"`
	ByType         map[string]int `json:"byType"`
	BySeverity     map[string]int `json:"bySeverity"`
	Unacknowledged int            `json:"unacknowledged"`
	Unresolved     int            `json:"unresolved"`
}

// AlertStore persists alerts. Implementations must be safe for concurrent use.
type AlertStore interface {
	// SaveAlert inserts or replaces the alert with the same ID.
	SaveAlert(ctx context.Context, alert *Alert) error

	// GetAlert returns ErrAlertNotFound when the ID is unknown.
	GetAlert(ctx context.Context, id string) (Alert, error)

	// ListAlerts returns matching alerts newest-first.
	ListAlerts(ctx context.Context, filter *AlertFilter) ([]Alert, error)

	// UpdateAlert applies mutate atomically and returns the updated alert.
	UpdateAlert(ctx context.Context, id string, mutate func(*Alert)) (Alert, error)

	// DeleteResolvedBefore removes resolved alerts whose ResolvedAt is
	// before cutoff. Unresolved alerts are never deleted.
	DeleteResolvedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Channel is a notification transport.
type Channel interface {
	// Name identifies the channel in the registry, logs and metrics.
	Name() string

	// Send delivers the alert. ctx carries the per-channel timeout.
	Send(ctx context.Context, alert *Alert) error
}

// AuditQuerier is the read side of the audit logger that rules depend on.
// *audit.Logger satisfies it.
type AuditQuerier interface {
	Query(ctx context.Context, filter *audit.Filter, limit int) ([]audit.Entry, error)
}

// RuleContext carries the dependencies a rule may consult.
type RuleContext struct {
	Audit AuditQuerier
	Now   time.Time
}

// Rule inspects one audit entry and optionally proposes an alert.
type Rule interface {
	Type() AlertType

	// Evaluate returns nil params when the rule does not fire. An empty
	// history is not an error.
	Evaluate(ctx context.Context, rc RuleContext, entry audit.Entry) (*CreateParams, error)
}
