// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"
	"testing"

	"github.com/tomtom215/sentinel/internal/detection"
)

func TestScan(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		fields     map[string]string
		wantTypes  []detection.AlertType
		wantFields int
	}{
		{
			name:   "clean payload",
			fields: map[string]string{"q": "weekly report", "page": "2"},
		},
		{
			name:       "sql injection",
			fields:     map[string]string{"username": "admin'--", "note": "hello"},
			wantTypes:  []detection.AlertType{detection.AlertTypeSQLInjection},
			wantFields: 1,
		},
		{
			name:       "xss in two fields",
			fields:     map[string]string{"bio": "<script>alert(1)</script>", "name": "<img src=x onerror=alert(1)>"},
			wantTypes:  []detection.AlertType{detection.AlertTypeXSS},
			wantFields: 2,
		},
		{
			name: "both detectors",
			fields: map[string]string{
				"a": "1' UNION SELECT * FROM users--",
				"b": "javascript:alert(1)",
			},
			wantTypes:  []detection.AlertType{detection.AlertTypeSQLInjection, detection.AlertTypeXSS},
			wantFields: 2,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			env := newTestEnv(t, nil)

			rec := env.do(t, http.MethodPost, "/api/v1/scan", map[string]interface{}{
				"fields": tt.fields,
				"userId": "u-1",
			}, "X-Forwarded-For", "192.0.2.44")

			var resp ScanResponse
			decodeData(t, decodeEnvelope(t, rec, http.StatusOK), &resp)

			if len(resp.Findings) != tt.wantFields {
				t.Errorf("findings = %+v, want %d", resp.Findings, tt.wantFields)
			}
			if len(resp.Alerts) != len(tt.wantTypes) {
				t.Fatalf("alerts = %d, want %d", len(resp.Alerts), len(tt.wantTypes))
			}
			for i, alert := range resp.Alerts {
				if alert.Type != tt.wantTypes[i] {
					t.Errorf("alert[%d].Type = %s, want %s", i, alert.Type, tt.wantTypes[i])
				}
				if alert.Severity != detection.SeverityHigh || alert.SourceIP != "192.0.2.44" || alert.UserID != "u-1" {
					t.Errorf("unexpected alert %+v", alert)
				}
			}
			if len(env.channel.sent()) != len(tt.wantTypes) {
				t.Errorf("dispatched %d alerts, want %d", len(env.channel.sent()), len(tt.wantTypes))
			}
		})
	}
}

func TestScan_RequiresFields(t *testing.T) {
	t.Parallel()
	env := newTestEnv(t, nil)

	rec := env.do(t, http.MethodPost, "/api/v1/scan", map[string]interface{}{"fields": map[string]string{}})
	decodeEnvelope(t, rec, http.StatusBadRequest)
}
