// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/sentinel/internal/middleware"
)

// Router wires the handler and middleware into a chi route tree.
type Router struct {
	handler    *Handler
	middleware *ChiMiddleware
}

// NewRouter creates a router.
func NewRouter(handler *Handler, mw *ChiMiddleware) *Router {
	return &Router{handler: handler, middleware: mw}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()
	h := router.handler

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.RequestLogger(router.middleware.config.SlowRequestThreshold))
	r.Use(router.middleware.CORS()) // global so OPTIONS preflight is answered

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.middleware.RateLimitCustom(RateLimitHealth))
		r.Use(APISecurityHeaders())
		r.Get("/live", h.HealthLive)
		r.Get("/", h.Health)
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)

		r.Route("/audit", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(router.middleware.RateLimitCustom(RateLimitIngest))
				r.Post("/events", h.CreateEvent)
				r.Post("/events/batch", h.CreateEventBatch)
			})

			r.Group(func(r chi.Router) {
				r.Use(router.middleware.RateLimit())
				r.With(middleware.Compression(0)).Get("/events", h.ListEvents)
				r.Get("/events/{id}", h.GetEvent)
				r.Get("/stats", h.GetAuditStats)
			})

			r.With(router.middleware.RateLimitCustom(RateLimitExport), middleware.Compression(0)).
				Get("/export", h.ExportEvents)
		})

		r.Route("/alerts", func(r chi.Router) {
			r.Use(router.middleware.RateLimit())
			r.With(middleware.Compression(0)).Get("/", h.ListAlerts)
			r.Post("/", h.CreateAlert)
			r.Get("/stats", h.GetAlertStats)
			r.Get("/{id}", h.GetAlert)
			r.Post("/{id}/acknowledge", h.AcknowledgeAlert)
			r.Post("/{id}/resolve", h.ResolveAlert)
		})

		r.With(router.middleware.RateLimit()).Post("/scan", h.Scan)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
