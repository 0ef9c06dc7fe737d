// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"context"
	"errors"
	"net/http"
	"time"
)

var (
	// ErrEntryNotFound is returned when an entry ID does not exist in the store.
	ErrEntryNotFound = errors.New("audit entry not found")

	// ErrInvalidParams is returned when LogParams lack a user, action or resource.
	ErrInvalidParams = errors.New("invalid audit log parameters")
)

// Action is the security-relevant operation that was performed.
type Action string

const (
	ActionCreate           Action = "create"
	ActionRead             Action = "read"
	ActionUpdate           Action = "update"
	ActionDelete           Action = "delete"
	ActionLogin            Action = "login"
	ActionLogout           Action = "logout"
	ActionExport           Action = "export"
	ActionImport           Action = "import"
	ActionShare            Action = "share"
	ActionPermissionChange Action = "permission_change"
	ActionRoleChange       Action = "role_change"
	ActionPasswordChange   Action = "password_change"
	ActionAPIKeyCreate     Action = "api_key_create"
	ActionAPIKeyRevoke     Action = "api_key_revoke"
)

// Actions lists every known action.
var Actions = []Action{
	ActionCreate, ActionRead, ActionUpdate, ActionDelete, ActionLogin, ActionLogout,
	ActionExport, ActionImport, ActionShare, ActionPermissionChange, ActionRoleChange,
	ActionPasswordChange, ActionAPIKeyCreate, ActionAPIKeyRevoke,
}

// Resource is the kind of object the action applied to.
type Resource string

const (
	ResourceUser     Resource = "user"
	ResourceCustomer Resource = "customer"
	ResourceTask     Resource = "task"
	ResourceWorkflow Resource = "workflow"
	ResourceConfig   Resource = "config"
	ResourceSystem   Resource = "system"
	ResourceAPIKey   Resource = "api_key"
	ResourceData     Resource = "data"
)

// Resources lists every known resource.
var Resources = []Resource{
	ResourceUser, ResourceCustomer, ResourceTask, ResourceWorkflow,
	ResourceConfig, ResourceSystem, ResourceAPIKey, ResourceData,
}

// Level is the importance of an entry.
type Level string

const (
	LevelInfo     Level = "info"
	LevelWarning  Level = "warning"
	LevelError    Level = "error"
	LevelCritical Level = "critical"
)

// Levels lists every known level.
var Levels = []Level{LevelInfo, LevelWarning, LevelError, LevelCritical}

// Result is the outcome of the action.
type Result string

const (
	ResultSuccess Result = "success"
	ResultFailure Result = "failure"
)

// Results lists every known result.
var Results = []Result{ResultSuccess, ResultFailure}

// Valid reports whether a is a known action.
func (a Action) Valid() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

// Valid reports whether r is a known resource.
func (r Resource) Valid() bool {
	for _, known := range Resources {
		if r == known {
			return true
		}
	}
	return false
}

// Valid reports whether l is a known level.
func (l Level) Valid() bool {
	for _, known := range Levels {
		if l == known {
			return true
		}
	}
	return false
}

// Valid reports whether r is a known result.
func (r Result) Valid() bool {
	return r == ResultSuccess || r == ResultFailure
}

// Values used for IP address and User-Agent when no request is available.
const (
	SourceSystem  = "system"
	SourceUnknown = "unknown"
)

// Entry is one recorded security-relevant action. It is immutable once
// returned by Store.Create.
type Entry struct {
	ID         string                 `json:"id"`
	UserID     string                 `json:"userId"`
	Action     Action                 `json:"action"`
	Resource   Resource               `json:"resource"`
	ResourceID string                 `json:"resourceId,omitempty"`
	Level      Level                  `json:"level"`
	Details    map[string]interface{} `json:"details"`
	Result     Result                 `json:"result"`
	IPAddress  string                 `json:"ipAddress"`
	UserAgent  string                 `json:"userAgent"`
	Timestamp  time.Time              `json:"timestamp"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// LogParams describes an action to record. Level, Result and Details are
// defaulted when empty. Request, when non-nil, supplies the client IP and
// User-Agent; only its headers are read.
type LogParams struct {
	UserID     string
	Action     Action
	Resource   Resource
	ResourceID string
	Level      Level
	Details    map[string]interface{}
	Result     Result
	Metadata   map[string]interface{}
	Request    *http.Request
}

// Filter narrows queries. Zero-valued fields match everything; all set
// fields must match (AND semantics). Unknown enum values match nothing.
type Filter struct {
	UserID    string     `json:"userId,omitempty"`
	Action    Action     `json:"action,omitempty"`
	Resource  Resource   `json:"resource,omitempty"`
	Level     Level      `json:"level,omitempty"`
	Result    Result     `json:"result,omitempty"`
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// Matches reports whether e satisfies every set field of f.
// A nil filter matches everything.
//
//nolint:gocyclo // flat field-by-field comparison
func (f *Filter) Matches(e *Entry) bool {
	if f == nil {
		return true
	}
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}
	if f.Action != "" && e.Action != f.Action {
		return false
	}
	if f.Resource != "" && e.Resource != f.Resource {
		return false
	}
	if f.Level != "" && e.Level != f.Level {
		return false
	}
	if f.Result != "" && e.Result != f.Result {
		return false
	}
	if f.StartDate != nil && e.Timestamp.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && e.Timestamp.After(*f.EndDate) {
		return false
	}
	return true
}

// Store persists audit entries. Implementations must be safe for concurrent
// use. All list operations return entries newest-first, with ties broken by
// insertion order.
type Store interface {
	// Create assigns the ID and Timestamp, persists the entry and returns it.
	Create(ctx context.Context, entry Entry) (Entry, error)

	// FindByID returns ErrEntryNotFound when no entry has the given ID.
	FindByID(ctx context.Context, id string) (Entry, error)

	FindByUserID(ctx context.Context, userID string, limit int) ([]Entry, error)

	// FindByDateRange returns entries with start <= Timestamp <= end.
	FindByDateRange(ctx context.Context, start, end time.Time, limit int) ([]Entry, error)

	FindRecent(ctx context.Context, limit int) ([]Entry, error)

	Count(ctx context.Context, filter *Filter) (int64, error)

	// DeleteOldLogs removes entries with Timestamp < before.
	DeleteOldLogs(ctx context.Context, before time.Time) (int64, error)
}

// AlertCallback is invoked synchronously with every stored entry.
type AlertCallback func(ctx context.Context, entry Entry) error

// Stats aggregates entries by dimension.
type Stats struct {
	Total      int            `json:"total"`
	ByAction   map[string]int `json:"byAction"`
	ByResource map[string]int `json:"byResource"`
	ByLevel    map[string]int `json:"byLevel"`
	ByResult   map[string]int `json:"byResult"`
}

// Export is the JSON export document.
type Export struct {
	Format     string    `json:"format"`
	Data       []Entry   `json:"data"`
	ExportedAt time.Time `json:"exportedAt"`
}
