// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package api provides the Sentinel HTTP API using the chi router.

Routes:

	GET  /api/v1/health/live                liveness probe
	GET  /api/v1/health                     status, uptime, channels
	POST /api/v1/audit/events               record one audit entry
	POST /api/v1/audit/events/batch         record up to 1000 entries (best-effort)
	GET  /api/v1/audit/events               query (user_id, action, resource,
	                                        level, result, start_date, end_date, limit)
	GET  /api/v1/audit/events/{id}          one entry
	GET  /api/v1/audit/stats                counts by action, resource, level, result
	GET  /api/v1/audit/export?format=json   export document (json or cef)
	GET  /api/v1/alerts                     list (type, severity, acknowledged,
	                                        resolved, start_date, end_date, limit)
	POST /api/v1/alerts                     raise an alert
	GET  /api/v1/alerts/stats               alert statistics
	GET  /api/v1/alerts/{id}                one alert
	POST /api/v1/alerts/{id}/acknowledge    {"userId": "..."}
	POST /api/v1/alerts/{id}/resolve        {"userId": "..."}
	POST /api/v1/scan                       run SQL injection and XSS detection
	GET  /metrics                           Prometheus exposition

Every JSON response uses the APIResponse envelope:

	{"success": true, "data": {...}, "meta": {"requestId": "...", "timestamp": "..."}}
	{"success": false, "error": {"code": "VALIDATION_ERROR", "message": "..."}, "meta": {...}}

Request bodies and query parameters are validated with go-playground/validator
through internal/validation; unknown enum values are rejected with 400 here,
although the Go API treats them as matching nothing.

Audit ingestion reads the client IP from X-Forwarded-For, then X-Real-IP,
so deployments behind a proxy must forward those headers. Throttled clients
receive 429 and, once per window, a low severity rate_limit_exceeded alert.
*/
package api
