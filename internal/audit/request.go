// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"net/http"
	"strings"
)

// ExtractIP returns the client IP recorded for an entry: the first
// X-Forwarded-For value, then X-Real-IP, then SourceUnknown. A nil request
// yields SourceSystem. Only headers are read; the body is never touched.
func ExtractIP(r *http.Request) string {
	if r == nil {
		return SourceSystem
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}

	return SourceUnknown
}

// ExtractUserAgent returns the User-Agent header, SourceUnknown when absent
// and SourceSystem for a nil request.
func ExtractUserAgent(r *http.Request) string {
	if r == nil {
		return SourceSystem
	}
	if ua := r.UserAgent(); ua != "" {
		return ua
	}
	return SourceUnknown
}
