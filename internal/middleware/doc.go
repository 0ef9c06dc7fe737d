// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

/*
Package middleware provides HTTP middleware for the Sentinel API.

All middleware uses chi's func(http.Handler) http.Handler shape and is
mounted with r.Use in internal/api.

Key Components:

  - RequestID: honors or generates X-Request-ID and seeds the logging context
  - PrometheusMetrics: request count, latency and in-flight gauge, labelled
    by chi route pattern
  - RequestLogger: debug line per request, warning above a slow threshold
  - Compression: gzip for JSON and CEF responses via chi's compressor

Middleware Stack:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(time.Second))
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(middleware.PrometheusMetrics)
	    r.With(middleware.Compression(0)).Get("/audit/export", h.ExportAudit)
	})

PrometheusMetrics must sit inside the router so the route pattern is known
once the handler returns. Unrouted requests are recorded under "unmatched".
*/
package middleware
