// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

// Cleaner deletes records older than a retention period.
//
// Satisfied by *audit.Logger and *detection.Manager.
type Cleaner interface {
	Cleanup(ctx context.Context, retentionDays int) (int64, error)
}

// RetentionConfig configures a RetentionService.
type RetentionConfig struct {
	// Interval between sweeps. Default: 24h
	Interval time.Duration

	AuditRetentionDays int
	AlertRetentionDays int
}

// RetentionService periodically purges expired audit entries and resolved
// alerts. A sweep runs immediately on start.
//
// Example usage:
//
//	svc := services.NewRetentionService(auditLogger, alertManager, services.RetentionConfig{
//	    Interval:           cfg.Audit.CleanupInterval,
//	    AuditRetentionDays: cfg.Audit.RetentionDays,
//	    AlertRetentionDays: alertManager.RetentionDays(),
//	})
//	tree.AddMaintenanceService(svc)
type RetentionService struct {
	audit  Cleaner
	alerts Cleaner
	config RetentionConfig
	log    zerolog.Logger
	name   string
}

// NewRetentionService creates a retention service. Either cleaner may be nil.
func NewRetentionService(audit, alerts Cleaner, config RetentionConfig) *RetentionService {
	if config.Interval <= 0 {
		config.Interval = 24 * time.Hour
	}
	return &RetentionService{
		audit:  audit,
		alerts: alerts,
		config: config,
		log:    logging.WithComponent("retention"),
		name:   "retention",
	}
}

// Serve implements suture.Service. Sweep failures are logged and retried on
// the next tick rather than restarting the service.
func (s *RetentionService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	s.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Sweep(ctx)
		}
	}
}

// Sweep runs one cleanup pass and returns the number of audit entries and
// alerts deleted.
func (s *RetentionService) Sweep(ctx context.Context) (auditDeleted, alertsDeleted int64) {
	auditDeleted = s.cleanup(ctx, "audit", s.audit, s.config.AuditRetentionDays)
	alertsDeleted = s.cleanup(ctx, "alerts", s.alerts, s.config.AlertRetentionDays)

	metrics.RecordCleanup(auditDeleted, alertsDeleted)
	s.log.Debug().
		Int64("audit_deleted", auditDeleted).
		Int64("alerts_deleted", alertsDeleted).
		Msg("Retention sweep complete")
	return auditDeleted, alertsDeleted
}

func (s *RetentionService) cleanup(ctx context.Context, target string, c Cleaner, days int) int64 {
	// Zero would purge everything; never do that from a timer.
	if c == nil || days <= 0 {
		return 0
	}
	n, err := c.Cleanup(ctx, days)
	if err != nil {
		s.log.Error().Err(err).Str("target", target).Msg("Retention cleanup failed")
		return 0
	}
	return n
}

// String implements fmt.Stringer for suture log events.
func (s *RetentionService) String() string {
	return s.name
}
