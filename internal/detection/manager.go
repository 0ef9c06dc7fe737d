// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

const (
	// DefaultRetentionDays is how long resolved alerts are kept.
	DefaultRetentionDays = 30

	// DefaultChannelTimeout bounds a single channel Send.
	DefaultChannelTimeout = 10 * time.Second
)

// Config configures the alert manager.
type Config struct {
	// RetentionDays is how long resolved alerts are kept after resolution.
	RetentionDays int `json:"retention_days"`

	// ChannelTimeout bounds each channel Send.
	ChannelTimeout time.Duration `json:"channel_timeout"`

	// MinDispatchSeverity is the lowest severity sent to channels: high or
	// critical. Anything lower is raised to high.
	MinDispatchSeverity Severity `json:"min_dispatch_severity"`

	// Rules configures the default rule set.
	Rules RuleConfig `json:"rules"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:       DefaultRetentionDays,
		ChannelTimeout:      DefaultChannelTimeout,
		MinDispatchSeverity: SeverityHigh,
		Rules:               DefaultRuleConfig(),
	}
}

// Manager owns the alert store, rule set and channel registry. It subscribes
// to the audit logger through HandleAuditEntry.
type Manager struct {
	config *Config
	store  AlertStore
	audit  AuditQuerier
	log    zerolog.Logger
	now    func() time.Time

	mu       sync.RWMutex
	channels map[string]Channel
	rules    map[AlertType]Rule
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithClock overrides the manager time source.
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates an alert manager with the default rules registered.
func NewManager(store AlertStore, auditQuerier AuditQuerier, config *Config, opts ...ManagerOption) *Manager {
	if config == nil {
		config = DefaultConfig()
	}
	cfg := *config
	if cfg.ChannelTimeout <= 0 {
		cfg.ChannelTimeout = DefaultChannelTimeout
	}
	if cfg.MinDispatchSeverity.Rank() < SeverityHigh.Rank() {
		cfg.MinDispatchSeverity = SeverityHigh
	}

	m := &Manager{
		config:   &cfg,
		store:    store,
		audit:    auditQuerier,
		log:      logging.WithComponent("detection"),
		now:      time.Now,
		channels: make(map[string]Channel),
		rules:    make(map[AlertType]Rule),
	}
	for _, opt := range opts {
		opt(m)
	}
	for _, rule := range DefaultRules(cfg.Rules) {
		m.rules[rule.Type()] = rule
	}
	return m
}

// CreateAlert stores a new alert and dispatches it to the registered
// channels when its severity reaches the dispatch threshold. It returns
// after every dispatch attempt has finished. Channel failures are logged,
// never returned, and the caller's cancellation does not abort dispatch.
func (m *Manager) CreateAlert(ctx context.Context, params CreateParams) (Alert, error) {
	if err := validateParams(&params); err != nil {
		return Alert{}, err
	}
	ctx = context.WithoutCancel(ctx)

	details := maps.Clone(params.Details)
	if details == nil {
		details = map[string]interface{}{}
	}

	alert := Alert{
		ID:        newAlertID(),
		Type:      params.Type,
		Severity:  params.Severity,
		Title:     params.Title,
		Message:   params.Message,
		Details:   details,
		SourceIP:  params.SourceIP,
		UserID:    params.UserID,
		Timestamp: m.now(),
	}

	if err := m.store.SaveAlert(ctx, &alert); err != nil {
		return Alert{}, fmt.Errorf("save alert: %w", err)
	}
	metrics.RecordAlertCreated(string(alert.Type), string(alert.Severity))

	m.log.Warn().
		Str("alert_id", alert.ID).
		Str("type", string(alert.Type)).
		Str("severity", string(alert.Severity)).
		Str("user_id", logging.SanitizeValue(alert.UserID)).
		Str("source_ip", logging.SanitizeValue(alert.SourceIP)).
		Msg(alert.Title)

	m.dispatch(ctx, &alert)
	return alert, nil
}

// CreateSecurityAlert is a convenience wrapper around CreateAlert.
func (m *Manager) CreateSecurityAlert(ctx context.Context, alertType AlertType, severity Severity, title, message, sourceIP, userID string, details map[string]interface{}) (Alert, error) {
	return m.CreateAlert(ctx, CreateParams{
		Type:     alertType,
		Severity: severity,
		Title:    title,
		Message:  message,
		Details:  details,
		SourceIP: sourceIP,
		UserID:   userID,
	})
}

func validateParams(p *CreateParams) error {
	if !p.Type.Valid() {
		return fmt.Errorf("%w: unknown type %q", ErrInvalidAlert, p.Type)
	}
	if !p.Severity.Valid() {
		return fmt.Errorf("%w: unknown severity %q", ErrInvalidAlert, p.Severity)
	}
	if p.Title == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidAlert)
	}
	return nil
}

// dispatch sends the alert to every channel concurrently, each bounded by
// the channel timeout, and waits for all of them.
func (m *Manager) dispatch(ctx context.Context, alert *Alert) {
	if alert.Severity.Rank() < m.config.MinDispatchSeverity.Rank() {
		return
	}

	channels := m.channelSnapshot()
	if len(channels) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, ch := range channels {
		wg.Add(1)
		go func(ch Channel, a Alert) {
			defer wg.Done()
			m.send(ctx, ch, &a)
		}(ch, cloneAlert(alert))
	}
	wg.Wait()
}

func (m *Manager) send(ctx context.Context, ch Channel, alert *Alert) {
	name := ch.Name()
	start := time.Now()

	ctx, cancel := context.WithTimeout(ctx, m.config.ChannelTimeout)
	defer cancel()

	err := func() (err error) {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("channel panicked: %v", r)
			}
		}()
		return ch.Send(ctx, alert)
	}()

	metrics.RecordNotification(name, time.Since(start), err)
	if err != nil {
		m.log.Error().
			Err(err).
			Str("channel", name).
			Str("alert_id", alert.ID).
			Msg("Failed to send alert notification")
		return
	}
	m.log.Debug().Str("channel", name).Str("alert_id", alert.ID).Msg("Alert notification sent")
}

func (m *Manager) channelSnapshot() []Channel {
	m.mu.RLock()
	defer m.mu.RUnlock()

	channels := make([]Channel, 0, len(m.channels))
	for _, ch := range m.channels {
		channels = append(channels, ch)
	}
	sort.Slice(channels, func(i, j int) bool {
		return channels[i].Name() < channels[j].Name()
	})
	return channels
}

// AcknowledgeAlert marks the alert acknowledged. It reports false when the
// alert does not exist. Repeated calls keep the first acknowledger.
func (m *Manager) AcknowledgeAlert(ctx context.Context, id, userID string) (bool, error) {
	now := m.now()
	_, err := m.store.UpdateAlert(ctx, id, func(a *Alert) {
		if a.Acknowledged {
			return
		}
		a.Acknowledged = true
		a.AcknowledgedBy = userID
		a.AcknowledgedAt = &now
	})
	return m.transitionResult(err, "acknowledge", id)
}

// ResolveAlert marks the alert resolved. It reports false when the alert
// does not exist. Repeated calls keep the first resolution.
func (m *Manager) ResolveAlert(ctx context.Context, id, userID string) (bool, error) {
	now := m.now()
	_, err := m.store.UpdateAlert(ctx, id, func(a *Alert) {
		if a.Resolved {
			return
		}
		a.Resolved = true
		a.ResolvedBy = userID
		a.ResolvedAt = &now
	})
	return m.transitionResult(err, "resolve", id)
}

func (m *Manager) transitionResult(err error, op, id string) (bool, error) {
	switch {
	case err == nil:
		m.log.Info().Str("alert_id", id).Str("op", op).Msg("Alert updated")
		return true, nil
	case errors.Is(err, ErrAlertNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("%s alert %s: %w", op, id, err)
	}
}

// GetAlert returns the alert and whether it exists.
func (m *Manager) GetAlert(ctx context.Context, id string) (Alert, bool, error) {
	alert, err := m.store.GetAlert(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAlertNotFound) {
			return Alert{}, false, nil
		}
		return Alert{}, false, fmt.Errorf("get alert %s: %w", id, err)
	}
	return alert, true, nil
}

// GetAllAlerts returns alerts matching filter, newest first.
func (m *Manager) GetAllAlerts(ctx context.Context, filter *AlertFilter) ([]Alert, error) {
	alerts, err := m.store.ListAlerts(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

// GetStats summarizes every stored alert.
func (m *Manager) GetStats(ctx context.Context) (AlertStats, error) {
	alerts, err := m.store.ListAlerts(ctx, nil)
	if err != nil {
		return AlertStats{}, fmt.Errorf("list alerts: %w", err)
	}

	stats := AlertStats{
		Total:      len(alerts),
		ByType:     make(map[string]int),
		BySeverity: make(map[string]int),
	}
	for i := range alerts {
		stats.ByType[string(alerts[i].Type)]++
		stats.BySeverity[string(alerts[i].Severity)]++
		if !alerts[i].Acknowledged {
			stats.Unacknowledged++
		}
		if !alerts[i].Resolved {
			stats.Unresolved++
		}
	}
	return stats, nil
}

// Cleanup deletes resolved alerts whose resolution is older than
// retentionDays. retentionDays <= 0 deletes every alert resolved before now.
// Unresolved alerts are never deleted.
func (m *Manager) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := m.now()
	if retentionDays > 0 {
		cutoff = cutoff.Add(-time.Duration(retentionDays) * 24 * time.Hour)
	}

	deleted, err := m.store.DeleteResolvedBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete resolved alerts: %w", err)
	}
	if deleted > 0 {
		m.log.Info().Int64("count", deleted).Time("cutoff", cutoff).Msg("Cleaned up resolved alerts")
	}
	return deleted, nil
}

// RetentionDays returns the configured alert retention.
func (m *Manager) RetentionDays() int {
	return m.config.RetentionDays
}

// RegisterChannel adds a channel, replacing any channel with the same name.
func (m *Manager) RegisterChannel(ch Channel) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channels[ch.Name()] = ch
	m.log.Info().Str("channel", ch.Name()).Msg("Notification channel registered")
}

// UnregisterChannel removes the named channel.
func (m *Manager) UnregisterChannel(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.channels, name)
}

// Channels returns the registered channel names in order.
func (m *Manager) Channels() []string {
	channels := m.channelSnapshot()
	names := make([]string, len(channels))
	for i, ch := range channels {
		names[i] = ch.Name()
	}
	return names
}

// RegisterRule adds a rule under alertType, replacing any existing rule.
func (m *Manager) RegisterRule(alertType AlertType, rule Rule) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rules[alertType] = rule
}

// UnregisterRule removes the rule registered under alertType.
func (m *Manager) UnregisterRule(alertType AlertType) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.rules, alertType)
}

type registeredRule struct {
	alertType AlertType
	rule      Rule
}

func (m *Manager) ruleSnapshot() []registeredRule {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rules := make([]registeredRule, 0, len(m.rules))
	for t, r := range m.rules {
		rules = append(rules, registeredRule{alertType: t, rule: r})
	}
	sort.Slice(rules, func(i, j int) bool {
		return rules[i].alertType < rules[j].alertType
	})
	return rules
}

// HandleAuditEntry evaluates every registered rule against entry and raises
// an alert for each rule that fires. A failing rule does not stop the
// others; rule failures are returned together.
func (m *Manager) HandleAuditEntry(ctx context.Context, entry audit.Entry) error {
	rc := RuleContext{Audit: m.audit, Now: m.now()}
	var result *multierror.Error

	for _, r := range m.ruleSnapshot() {
		params, err := r.rule.Evaluate(ctx, rc, entry)
		if err != nil {
			metrics.RecordRuleError(string(r.alertType))
			result = multierror.Append(result, fmt.Errorf("rule %s: %w", r.alertType, err))
			continue
		}
		if params == nil {
			continue
		}
		if _, err := m.CreateAlert(ctx, *params); err != nil {
			result = multierror.Append(result, fmt.Errorf("rule %s: %w", r.alertType, err))
		}
	}

	return result.ErrorOrNil()
}

func newAlertID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
