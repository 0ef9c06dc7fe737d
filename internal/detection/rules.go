// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"fmt"
	"maps"
	"time"

	"github.com/tomtom215/sentinel/internal/audit"
)

// RuleConfig holds windows and thresholds for the default rules.
type RuleConfig struct {
	SuspiciousLoginWindow    time.Duration `json:"suspicious_login_window"`
	SuspiciousLoginThreshold int           `json:"suspicious_login_threshold"`
	SuspiciousLoginLimit     int           `json:"suspicious_login_limit"`

	BulkOperationWindow    time.Duration `json:"bulk_operation_window"`
	BulkOperationThreshold int           `json:"bulk_operation_threshold"`
	BulkOperationLimit     int           `json:"bulk_operation_limit"`
}

// DefaultRuleConfig returns the reference windows and thresholds.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		SuspiciousLoginWindow:    10 * time.Minute,
		SuspiciousLoginThreshold: 5,
		SuspiciousLoginLimit:     10,
		BulkOperationWindow:      time.Minute,
		BulkOperationThreshold:   50,
		BulkOperationLimit:       50,
	}
}

// DefaultRules builds the suspicious-login, privilege-escalation and
// bulk-operation rules.
func DefaultRules(cfg RuleConfig) []Rule {
	return []Rule{
		&SuspiciousLoginRule{
			Window:    cfg.SuspiciousLoginWindow,
			Threshold: cfg.SuspiciousLoginThreshold,
			Limit:     cfg.SuspiciousLoginLimit,
		},
		&PrivilegeEscalationRule{},
		&BulkOperationRule{
			Window:    cfg.BulkOperationWindow,
			Threshold: cfg.BulkOperationThreshold,
			Limit:     cfg.BulkOperationLimit,
		},
	}
}

// SuspiciousLoginRule fires when a user accumulates failed logins inside
// the window. The lookup is bounded by Limit, so Threshold must not exceed it.
type SuspiciousLoginRule struct {
	Window    time.Duration
	Threshold int
	Limit     int
}

// Type implements Rule.
func (r *SuspiciousLoginRule) Type() AlertType { return AlertTypeSuspiciousLogin }

// Evaluate implements Rule.
func (r *SuspiciousLoginRule) Evaluate(ctx context.Context, rc RuleContext, entry audit.Entry) (*CreateParams, error) {
	if entry.Action != audit.ActionLogin || entry.Result != audit.ResultFailure {
		return nil, nil
	}

	start := rc.Now.Add(-r.Window)
	failures, err := rc.Audit.Query(ctx, &audit.Filter{
		UserID:    entry.UserID,
		Action:    audit.ActionLogin,
		Result:    audit.ResultFailure,
		StartDate: &start,
	}, r.Limit)
	if err != nil {
		return nil, fmt.Errorf("query failed logins: %w", err)
	}

	if len(failures) < r.Threshold {
		return nil, nil
	}

	window := describeWindow(r.Window)
	return &CreateParams{
		Type:     AlertTypeSuspiciousLogin,
		Severity: SeverityHigh,
		Title:    "Suspicious Login Activity",
		Message:  fmt.Sprintf("User %s has %d failed login attempts in the last %s", entry.UserID, len(failures), window),
		Details: map[string]interface{}{
			"userId":       entry.UserID,
			"attemptCount": len(failures),
			"timeWindow":   window,
		},
		SourceIP: entry.IPAddress,
		UserID:   entry.UserID,
	}, nil
}

// PrivilegeEscalationRule fires once for every role or permission change.
type PrivilegeEscalationRule struct{}

// Type implements Rule.
func (r *PrivilegeEscalationRule) Type() AlertType { return AlertTypePrivilegeEscalation }

// Evaluate implements Rule.
func (r *PrivilegeEscalationRule) Evaluate(_ context.Context, _ RuleContext, entry audit.Entry) (*CreateParams, error) {
	if entry.Action != audit.ActionRoleChange && entry.Action != audit.ActionPermissionChange {
		return nil, nil
	}

	return &CreateParams{
		Type:     AlertTypePrivilegeEscalation,
		Severity: SeverityMedium,
		Title:    "Privilege Escalation Detected",
		Message:  fmt.Sprintf("User %s has changed privileges", entry.UserID),
		Details:  maps.Clone(entry.Details),
		SourceIP: entry.IPAddress,
		UserID:   entry.UserID,
	}, nil
}

// BulkOperationRule fires when a user repeats the same action at least
// Threshold times inside the window.
type BulkOperationRule struct {
	Window    time.Duration
	Threshold int
	Limit     int
}

// Type implements Rule.
func (r *BulkOperationRule) Type() AlertType { return AlertTypeBulkOperation }

// Evaluate implements Rule.
func (r *BulkOperationRule) Evaluate(ctx context.Context, rc RuleContext, entry audit.Entry) (*CreateParams, error) {
	start := rc.Now.Add(-r.Window)
	recent, err := rc.Audit.Query(ctx, &audit.Filter{
		UserID:    entry.UserID,
		Action:    entry.Action,
		StartDate: &start,
	}, r.Limit)
	if err != nil {
		return nil, fmt.Errorf("query recent operations: %w", err)
	}

	if len(recent) < r.Threshold {
		return nil, nil
	}

	return &CreateParams{
		Type:     AlertTypeBulkOperation,
		Severity: SeverityMedium,
		Title:    "Bulk Operation Detected",
		Message:  fmt.Sprintf("User %s performed %d operations in %s", entry.UserID, len(recent), describeWindow(r.Window)),
		Details: map[string]interface{}{
			"userId":         entry.UserID,
			"operationCount": len(recent),
			"action":         string(entry.Action),
		},
		SourceIP: entry.IPAddress,
		UserID:   entry.UserID,
	}, nil
}

// describeWindow renders a window as "1 minute", "10 minutes" or "45 seconds".
func describeWindow(d time.Duration) string {
	if d >= time.Minute && d%time.Minute == 0 {
		if m := int(d / time.Minute); m != 1 {
			return fmt.Sprintf("%d minutes", m)
		}
		return "1 minute"
	}
	if s := int(d / time.Second); s != 1 {
		return fmt.Sprintf("%d seconds", s)
	}
	return "1 second"
}
