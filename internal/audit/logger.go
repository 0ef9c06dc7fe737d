// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"

	"github.com/tomtom215/sentinel/internal/logging"
	"github.com/tomtom215/sentinel/internal/metrics"
)

const (
	// DefaultQueryLimit is used by Query when no positive limit is given.
	DefaultQueryLimit = 100

	// MaxExportEntries bounds Export and GetStats.
	MaxExportEntries = 10000

	// DefaultRetentionDays is the default audit retention.
	DefaultRetentionDays = 90
)

// Config holds configuration for the audit logger.
type Config struct {
	// RetentionDays is how long to keep audit entries.
	RetentionDays int `json:"retention_days"`

	// CleanupInterval is how often the retention service runs.
	CleanupInterval time.Duration `json:"cleanup_interval"`
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:   DefaultRetentionDays,
		CleanupInterval: 24 * time.Hour,
	}
}

// Logger is the audit logging service. It writes entries to a Store and
// synchronously notifies registered alert callbacks.
type Logger struct {
	config *Config
	store  Store
	log    zerolog.Logger
	now    func() time.Time

	mu        sync.RWMutex
	callbacks map[string]AlertCallback
}

// NewLogger creates a new audit logger.
func NewLogger(store Store, config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	return &Logger{
		config:    config,
		store:     store,
		log:       logging.WithComponent("audit"),
		now:       time.Now,
		callbacks: make(map[string]AlertCallback),
	}
}

// Config returns the logger configuration.
func (l *Logger) Config() Config {
	return *l.config
}

// Log records an entry and runs every registered alert callback with the
// stored entry. The write is not cancelled by ctx. Callback failures are
// logged and never returned.
func (l *Logger) Log(ctx context.Context, params LogParams) (Entry, error) {
	ctx = context.WithoutCancel(ctx)

	entry, err := l.buildEntry(&params)
	if err != nil {
		return Entry{}, err
	}

	stored, err := l.store.Create(ctx, entry)
	if err != nil {
		metrics.RecordAuditWriteError()
		return Entry{}, fmt.Errorf("create audit entry: %w", err)
	}
	metrics.RecordAuditEntry(string(stored.Action), string(stored.Result))

	l.log.Debug().
		Str("entry_id", stored.ID).
		Str("user_id", logging.SanitizeValue(stored.UserID)).
		Str("action", string(stored.Action)).
		Str("resource", string(stored.Resource)).
		Str("result", string(stored.Result)).
		Msg("Audit entry recorded")

	l.logNoteworthy(&stored)
	l.runCallbacks(ctx, stored)

	return stored, nil
}

// buildEntry validates params and applies defaults.
func (l *Logger) buildEntry(params *LogParams) (Entry, error) {
	if params.UserID == "" || params.Action == "" || params.Resource == "" {
		return Entry{}, fmt.Errorf("%w: userId, action and resource are required", ErrInvalidParams)
	}
	if !params.Action.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown action %q", ErrInvalidParams, params.Action)
	}
	if !params.Resource.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown resource %q", ErrInvalidParams, params.Resource)
	}

	level := params.Level
	if level == "" {
		level = LevelInfo
	} else if !level.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown level %q", ErrInvalidParams, level)
	}

	result := params.Result
	if result == "" {
		result = ResultSuccess
	} else if !result.Valid() {
		return Entry{}, fmt.Errorf("%w: unknown result %q", ErrInvalidParams, result)
	}

	return Entry{
		UserID:     params.UserID,
		Action:     params.Action,
		Resource:   params.Resource,
		ResourceID: params.ResourceID,
		Level:      level,
		Details:    params.Details,
		Result:     result,
		IPAddress:  ExtractIP(params.Request),
		UserAgent:  ExtractUserAgent(params.Request),
		Metadata:   params.Metadata,
	}, nil
}

// logNoteworthy emits a warning line for entries an operator should see in
// the service log regardless of alert rules.
func (l *Logger) logNoteworthy(e *Entry) {
	var reason string
	switch {
	case e.Action == ActionRoleChange || e.Action == ActionPermissionChange:
		reason = "privilege change detected"
	case e.Action == ActionAPIKeyCreate || e.Action == ActionAPIKeyRevoke:
		reason = "api key operation"
	case e.Result == ResultFailure && e.Level == LevelError:
		reason = "operation failed"
	default:
		return
	}

	l.log.Warn().
		Str("entry_id", e.ID).
		Str("user_id", logging.SanitizeValue(e.UserID)).
		Str("action", string(e.Action)).
		Str("resource", string(e.Resource)).
		Str("ip_address", logging.SanitizeValue(e.IPAddress)).
		Str("reason", reason).
		Msg("Noteworthy audit entry")
}

// runCallbacks invokes callbacks in name order outside the registry lock.
func (l *Logger) runCallbacks(ctx context.Context, entry Entry) {
	type namedCallback struct {
		name string
		cb   AlertCallback
	}

	l.mu.RLock()
	callbacks := make([]namedCallback, 0, len(l.callbacks))
	for name, cb := range l.callbacks {
		callbacks = append(callbacks, namedCallback{name: name, cb: cb})
	}
	l.mu.RUnlock()

	sort.Slice(callbacks, func(i, j int) bool {
		return callbacks[i].name < callbacks[j].name
	})
	for _, c := range callbacks {
		l.invokeCallback(ctx, c.name, c.cb, cloneEntry(&entry))
	}
}

func (l *Logger) invokeCallback(ctx context.Context, name string, cb AlertCallback, entry Entry) {
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordCallbackError(name)
			l.log.Error().
				Str("callback", name).
				Str("entry_id", entry.ID).
				Interface("panic", r).
				Msg("Alert callback panicked")
		}
	}()

	if err := cb(ctx, entry); err != nil {
		metrics.RecordCallbackError(name)
		l.log.Error().
			Err(err).
			Str("callback", name).
			Str("entry_id", entry.ID).
			Msg("Alert callback failed")
	}
}

// LogBatch records each entry in order. Every entry is attempted; the
// stored entries are returned together with an aggregate of the failures.
func (l *Logger) LogBatch(ctx context.Context, batch []LogParams) ([]Entry, error) {
	entries := make([]Entry, 0, len(batch))
	var result *multierror.Error

	for i := range batch {
		entry, err := l.Log(ctx, batch[i])
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("entry %d: %w", i, err))
			continue
		}
		entries = append(entries, entry)
	}

	return entries, result.ErrorOrNil()
}

// Query returns entries matching filter, newest first.
//
// The store lookup is chosen by precedence: user ID, then date range, then
// most recent. The limit bounds that lookup; every set filter field is then
// applied to its result, so fewer than limit entries may be returned.
func (l *Logger) Query(ctx context.Context, filter *Filter, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultQueryLimit
	}

	var (
		entries []Entry
		err     error
	)
	switch {
	case filter != nil && filter.UserID != "":
		entries, err = l.store.FindByUserID(ctx, filter.UserID, limit)
	case filter != nil && (filter.StartDate != nil || filter.EndDate != nil):
		var start time.Time
		end := l.now()
		if filter.StartDate != nil {
			start = *filter.StartDate
		}
		if filter.EndDate != nil {
			end = *filter.EndDate
		}
		entries, err = l.store.FindByDateRange(ctx, start, end, limit)
	default:
		entries, err = l.store.FindRecent(ctx, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query audit entries: %w", err)
	}

	if filter == nil {
		return entries, nil
	}
	filtered := entries[:0]
	for i := range entries {
		if filter.Matches(&entries[i]) {
			filtered = append(filtered, entries[i])
		}
	}
	return filtered, nil
}

// GetStats aggregates up to MaxExportEntries matching entries.
func (l *Logger) GetStats(ctx context.Context, filter *Filter) (Stats, error) {
	entries, err := l.Query(ctx, filter, MaxExportEntries)
	if err != nil {
		return Stats{}, err
	}

	stats := Stats{
		Total:      len(entries),
		ByAction:   make(map[string]int),
		ByResource: make(map[string]int),
		ByLevel:    make(map[string]int),
		ByResult:   make(map[string]int),
	}
	for i := range entries {
		stats.ByAction[string(entries[i].Action)]++
		stats.ByResource[string(entries[i].Resource)]++
		stats.ByLevel[string(entries[i].Level)]++
		stats.ByResult[string(entries[i].Result)]++
	}
	return stats, nil
}

// Export returns up to MaxExportEntries matching entries as a JSON export document.
func (l *Logger) Export(ctx context.Context, filter *Filter) (Export, error) {
	entries, err := l.Query(ctx, filter, MaxExportEntries)
	if err != nil {
		return Export{}, err
	}
	return Export{
		Format:     FormatJSON,
		Data:       entries,
		ExportedAt: l.now(),
	}, nil
}

// Cleanup deletes entries older than retentionDays. retentionDays <= 0
// deletes everything recorded before now.
func (l *Logger) Cleanup(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := l.now()
	if retentionDays > 0 {
		cutoff = cutoff.Add(-time.Duration(retentionDays) * 24 * time.Hour)
	}

	deleted, err := l.store.DeleteOldLogs(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("delete old audit entries: %w", err)
	}
	if deleted > 0 {
		l.log.Info().Int64("count", deleted).Time("cutoff", cutoff).Msg("Cleaned up old audit entries")
	}
	return deleted, nil
}

// RegisterAlert adds a callback under name, replacing any existing one.
func (l *Logger) RegisterAlert(name string, cb AlertCallback) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.callbacks[name] = cb
}

// UnregisterAlert removes the named callback. Unknown names are ignored.
func (l *Logger) UnregisterAlert(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.callbacks, name)
}

// Store returns the underlying store.
func (l *Logger) Store() Store {
	return l.store
}

// Helper methods for common audit events

// LogOperation records a generic operation.
func (l *Logger) LogOperation(ctx context.Context, params LogParams) (Entry, error) {
	return l.Log(ctx, params)
}

// LogLogin records a login attempt. Failures are recorded at warning level.
func (l *Logger) LogLogin(ctx context.Context, userID string, result Result, r *http.Request) (Entry, error) {
	level := LevelInfo
	if result != ResultSuccess {
		level = LevelWarning
	}
	return l.Log(ctx, LogParams{
		UserID:     userID,
		Action:     ActionLogin,
		Resource:   ResourceUser,
		ResourceID: userID,
		Result:     result,
		Level:      level,
		Details:    map[string]interface{}{"event": "login_attempt"},
		Request:    r,
	})
}

// LogLogout records a logout.
func (l *Logger) LogLogout(ctx context.Context, userID string, r *http.Request) (Entry, error) {
	return l.Log(ctx, LogParams{
		UserID:     userID,
		Action:     ActionLogout,
		Resource:   ResourceUser,
		ResourceID: userID,
		Result:     ResultSuccess,
		Request:    r,
	})
}

// LogDataAccess records access to a resource. An empty action defaults to read.
func (l *Logger) LogDataAccess(ctx context.Context, userID string, resource Resource, resourceID string, action Action, r *http.Request) (Entry, error) {
	if action == "" {
		action = ActionRead
	}
	return l.Log(ctx, LogParams{
		UserID:     userID,
		Action:     action,
		Resource:   resource,
		ResourceID: resourceID,
		Result:     ResultSuccess,
		Details:    map[string]interface{}{"event": "data_access"},
		Request:    r,
	})
}
