// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/tomtom215/sentinel/internal/api"
	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/config"
	"github.com/tomtom215/sentinel/internal/detection"
	"github.com/tomtom215/sentinel/internal/eventbus"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/supervisor"
	"github.com/tomtom215/sentinel/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

// securityCallback is the audit callback name the alert manager registers under.
const securityCallback = "security"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(cfg.Logging.ToLogging())

	logging.Info().
		Str("version", version).
		Str("addr", cfg.Server.Addr()).
		Int("audit_capacity", cfg.Audit.Capacity).
		Int("audit_retention_days", cfg.Audit.RetentionDays).
		Bool("nats_enabled", cfg.NATS.Enabled).
		Msg("Starting Sentinel")

	auditLogger := audit.NewLogger(audit.NewMemoryStore(cfg.Audit.Capacity), cfg.Audit.ToAudit())
	alerts := detection.NewManager(detection.NewMemoryAlertStore(), auditLogger, cfg.Alerts.ToDetection())

	channels, err := buildChannels(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to configure notification channels")
	}
	for _, ch := range channels {
		alerts.RegisterChannel(ch)
	}

	publisher := initEventBus(cfg, auditLogger, alerts)
	if publisher != nil {
		defer func() {
			if err := publisher.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing event bus publisher")
			}
		}()
	}

	auditLogger.RegisterAlert(securityCallback, alerts.HandleAuditEntry)
	logging.Info().Strs("channels", alerts.Channels()).Msg("Alert manager initialized")

	router := api.NewRouter(
		api.NewHandler(auditLogger, alerts, version),
		api.NewChiMiddleware(middlewareConfig(cfg), alerts),
	)
	server := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	treeCfg := supervisor.DefaultTreeConfig()
	treeCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout + treeCfg.ShutdownTimeout
	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), treeCfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddMaintenanceService(services.NewRetentionService(auditLogger, alerts, services.RetentionConfig{
		Interval:           cfg.Audit.CleanupInterval,
		AuditRetentionDays: cfg.Audit.RetentionDays,
		AlertRetentionDays: alerts.RetentionDays(),
	}))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}
	logging.Info().Msg("Sentinel stopped")
}

// middlewareConfig maps the security section onto API middleware settings.
func middlewareConfig(cfg *config.Config) *api.MiddlewareConfig {
	mw := api.DefaultMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mw.RateLimitDisabled = cfg.Security.RateLimitDisabled
	if cfg.Security.RateLimitReqs > 0 {
		mw.RateLimitRequests = cfg.Security.RateLimitReqs
	}
	if cfg.Security.RateLimitWindow > 0 {
		mw.RateLimitWindow = cfg.Security.RateLimitWindow
	}
	return mw
}

// initEventBus connects to NATS when enabled, registers the event bus alert
// channel and, if configured, the audit forwarder. A connection failure is
// logged and the server continues without the bus.
func initEventBus(cfg *config.Config, auditLogger *audit.Logger, alerts *detection.Manager) *eventbus.Publisher {
	if !cfg.NATS.Enabled {
		logging.Info().Msg("Event bus disabled (NATS_ENABLED=false)")
		return nil
	}

	busCfg := cfg.EventBusConfig()
	publisher, err := eventbus.NewNATSPublisher(busCfg, nil)
	if err != nil {
		logging.Warn().Err(err).Str("url", busCfg.URL).Msg("Failed to connect to NATS, continuing without event bus")
		return nil
	}

	alerts.RegisterChannel(detection.NewEventBusChannel(publisher, busCfg.AlertTopic))

	if cfg.NATS.ForwardAudit {
		fwd := eventbus.NewAuditForwarder(publisher, busCfg.AuditTopic)
		auditLogger.RegisterAlert("eventbus", fwd.Forward)
		logging.Info().Str("topic", fwd.Topic()).Msg("Audit forwarding enabled")
	}

	logging.Info().Str("url", busCfg.URL).Str("alert_topic", busCfg.AlertTopic).Msg("Event bus connected")
	return publisher
}
