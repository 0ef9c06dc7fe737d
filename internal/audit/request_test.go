// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestExtractIP(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{
			name:    "forwarded for takes first value",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.195, 70.41.3.18, 150.172.238.178"},
			want:    "203.0.113.195",
		},
		{
			name:    "forwarded for trimmed",
			headers: map[string]string{"X-Forwarded-For": "  198.51.100.7  "},
			want:    "198.51.100.7",
		},
		{
			name:    "forwarded for beats real ip",
			headers: map[string]string{"X-Forwarded-For": "10.0.0.1", "X-Real-IP": "192.168.1.100"},
			want:    "10.0.0.1",
		},
		{
			name:    "real ip fallback",
			headers: map[string]string{"X-Real-IP": "192.168.1.100"},
			want:    "192.168.1.100",
		},
		{
			name: "no headers",
			want: SourceUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			if got := ExtractIP(req); got != tt.want {
				t.Errorf("ExtractIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestExtractIP_NilRequest(t *testing.T) {
	t.Parallel()
	if got := ExtractIP(nil); got != SourceSystem {
		t.Errorf("expected %q, got %q", SourceSystem, got)
	}
}

func TestExtractUserAgent(t *testing.T) {
	t.Parallel()

	if got := ExtractUserAgent(nil); got != SourceSystem {
		t.Errorf("nil request: expected %q, got %q", SourceSystem, got)
	}

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Del("User-Agent")
	if got := ExtractUserAgent(req); got != SourceUnknown {
		t.Errorf("missing header: expected %q, got %q", SourceUnknown, got)
	}

	req.Header.Set("User-Agent", "curl/8.5.0")
	if got := ExtractUserAgent(req); got != "curl/8.5.0" {
		t.Errorf("expected curl/8.5.0, got %q", got)
	}
}
