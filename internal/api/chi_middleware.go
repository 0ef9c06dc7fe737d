// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/logging"
)

// MiddlewareConfig holds configuration for the chi middleware factories.
type MiddlewareConfig struct {
	// CORS configuration
	CORSAllowedOrigins []string
	CORSAllowedMethods []string
	CORSAllowedHeaders []string
	CORSMaxAge         int // seconds

	// Rate limiting configuration
	RateLimitRequests int
	RateLimitWindow   time.Duration
	RateLimitDisabled bool

	// SlowRequestThreshold is passed to middleware.RequestLogger.
	SlowRequestThreshold time.Duration
}

// DefaultMiddlewareConfig returns a secure default configuration.
// CORS origins default to empty, requiring explicit configuration.
func DefaultMiddlewareConfig() *MiddlewareConfig {
	return &MiddlewareConfig{
		CORSAllowedOrigins: []string{},
		CORSAllowedMethods: []string{"GET", "POST", "OPTIONS"},
		CORSAllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		CORSMaxAge:         86400,

		RateLimitRequests: 100,
		RateLimitWindow:   time.Minute,

		SlowRequestThreshold: time.Second,
	}
}

// Endpoint-specific rate limits.
var (
	// RateLimitIngest is permissive for audit ingestion from trusted services.
	RateLimitIngest = RateLimitConfig{Requests: 1000, Window: time.Minute}

	// RateLimitExport is strict for export, which reads up to 10,000 entries.
	RateLimitExport = RateLimitConfig{Requests: 10, Window: time.Minute}

	// RateLimitHealth allows frequent probes from monitoring tools.
	RateLimitHealth = RateLimitConfig{Requests: 1000, Window: time.Minute}
)

// RateLimitConfig defines rate limit parameters for specific endpoints.
type RateLimitConfig struct {
	Requests int
	Window   time.Duration
}

// ChiMiddleware provides chi-compatible middleware factories.
type ChiMiddleware struct {
	config  *MiddlewareConfig
	cors    func(http.Handler) http.Handler
	limited *rateLimitAlerter
}

// NewChiMiddleware creates the middleware factory. alerts, when non-nil,
// receives a rate_limit_exceeded alert the first time a client is throttled
// in each window.
func NewChiMiddleware(config *MiddlewareConfig, alerts *detection.Manager) *ChiMiddleware {
	if config == nil {
		config = DefaultMiddlewareConfig()
	}

	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins:   config.CORSAllowedOrigins,
		AllowedMethods:   config.CORSAllowedMethods,
		AllowedHeaders:   config.CORSAllowedHeaders,
		ExposedHeaders:   []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: false,
		MaxAge:           config.CORSMaxAge,
	})

	m := &ChiMiddleware{config: config, cors: corsHandler}
	if alerts != nil {
		m.limited = newRateLimitAlerter(alerts, config.RateLimitWindow)
	}
	return m
}

// CORS returns the go-chi/cors handler.
func (m *ChiMiddleware) CORS() func(http.Handler) http.Handler {
	return m.cors
}

// RateLimit returns the default per-IP limiter.
func (m *ChiMiddleware) RateLimit() func(http.Handler) http.Handler {
	return m.RateLimitCustom(RateLimitConfig{
		Requests: m.config.RateLimitRequests,
		Window:   m.config.RateLimitWindow,
	})
}

// RateLimitCustom returns a per-IP limiter with custom limits. Throttled
// requests receive a 429 envelope.
func (m *ChiMiddleware) RateLimitCustom(config RateLimitConfig) func(http.Handler) http.Handler {
	if m.config.RateLimitDisabled {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	return httprate.Limit(
		config.Requests,
		config.Window,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(m.onLimit),
	)
}

func (m *ChiMiddleware) onLimit(w http.ResponseWriter, r *http.Request) {
	if m.limited != nil {
		m.limited.observe(r)
	}
	respondError(w, r, http.StatusTooManyRequests, ErrCodeTooManyRequests, "Rate limit exceeded", nil)
}

// APISecurityHeaders adds security headers to API responses.
//
// Headers added:
//   - X-Content-Type-Options: nosniff
//   - X-Frame-Options: DENY
//   - Referrer-Policy: strict-origin-when-cross-origin
//   - Strict-Transport-Security when served over HTTPS
func APISecurityHeaders() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			if r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https" {
				w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
			}

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitAlerter raises one low severity rate_limit_exceeded alert per
// client IP per window.
type rateLimitAlerter struct {
	alerts *detection.Manager
	window time.Duration
	now    func() time.Time

	mu   sync.Mutex
	seen map[string]time.Time
}

func newRateLimitAlerter(alerts *detection.Manager, window time.Duration) *rateLimitAlerter {
	if window <= 0 {
		window = time.Minute
	}
	return &rateLimitAlerter{
		alerts: alerts,
		window: window,
		now:    time.Now,
		seen:   make(map[string]time.Time),
	}
}

// observe records a throttled request and reports whether it raised an alert.
func (a *rateLimitAlerter) observe(r *http.Request) bool {
	ip := audit.ExtractIP(r)
	if ip == audit.SourceUnknown {
		ip = r.RemoteAddr
	}

	now := a.now()
	a.mu.Lock()
	for key, at := range a.seen {
		if now.Sub(at) >= a.window {
			delete(a.seen, key)
		}
	}
	_, recent := a.seen[ip]
	if !recent {
		a.seen[ip] = now
	}
	a.mu.Unlock()

	if recent {
		return false
	}

	_, err := a.alerts.CreateSecurityAlert(context.WithoutCancel(r.Context()),
		detection.AlertTypeRateLimitExceeded,
		detection.SeverityLow,
		"Rate Limit Exceeded",
		"Client exceeded the API rate limit",
		ip,
		"",
		map[string]interface{}{
			"path":   r.URL.Path,
			"method": r.Method,
			"window": a.window.String(),
		},
	)
	if err != nil {
		logging.Ctx(r.Context()).Warn().Err(err).Msg("Failed to raise rate limit alert")
	}
	return true
}
