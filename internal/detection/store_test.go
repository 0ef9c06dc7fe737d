// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func testAlert(id string, ts time.Time) *Alert {
	return &Alert{
		ID:        id,
		Type:      AlertTypeBulkOperation,
		Severity:  SeverityMedium,
		Title:     "Bulk Operation Detected",
		Details:   map[string]interface{}{"n": 1},
		Timestamp: ts,
	}
}

func TestMemoryAlertStore_SaveAndGet(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryAlertStore()
	ts := time.Now()

	if err := s.SaveAlert(ctx, testAlert("a1", ts)); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	got, err := s.GetAlert(ctx, "a1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ID != "a1" || got.Type != AlertTypeBulkOperation {
		t.Errorf("unexpected alert %+v", got)
	}

	if _, err := s.GetAlert(ctx, "missing"); !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("expected ErrAlertNotFound, got %v", err)
	}
}

func TestMemoryAlertStore_ReturnsCopies(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryAlertStore()

	original := testAlert("a1", time.Now())
	_ = s.SaveAlert(ctx, original)
	original.Details["n"] = 99

	got, _ := s.GetAlert(ctx, "a1")
	if got.Details["n"] != 1 {
		t.Errorf("store shares details with caller: %v", got.Details["n"])
	}

	got.Details["n"] = 42
	again, _ := s.GetAlert(ctx, "a1")
	if again.Details["n"] != 1 {
		t.Errorf("store shares details with reader: %v", again.Details["n"])
	}
}

func TestMemoryAlertStore_ListOrderAndLimit(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryAlertStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_ = s.SaveAlert(ctx, testAlert("old", base))
	_ = s.SaveAlert(ctx, testAlert("new", base.Add(time.Hour)))
	_ = s.SaveAlert(ctx, testAlert("same-1", base.Add(30*time.Minute)))
	_ = s.SaveAlert(ctx, testAlert("same-2", base.Add(30*time.Minute)))

	all, err := s.ListAlerts(ctx, nil)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	want := []string{"new", "same-2", "same-1", "old"}
	if len(all) != len(want) {
		t.Fatalf("expected %d alerts, got %d", len(want), len(all))
	}
	for i, id := range want {
		if all[i].ID != id {
			t.Errorf("position %d: expected %s, got %s", i, id, all[i].ID)
		}
	}

	limited, _ := s.ListAlerts(ctx, &AlertFilter{Limit: 2})
	if len(limited) != 2 || limited[0].ID != "new" {
		t.Errorf("unexpected limited result %+v", limited)
	}
}

func TestAlertFilter_Matches(t *testing.T) {
	t.Parallel()
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	yes, no := true, false
	before, after := ts.Add(-time.Hour), ts.Add(time.Hour)

	alert := testAlert("a", ts)
	alert.Acknowledged = true

	tests := []struct {
		name   string
		filter *AlertFilter
		want   bool
	}{
		{"nil filter", nil, true},
		{"empty filter", &AlertFilter{}, true},
		{"type match", &AlertFilter{Type: AlertTypeBulkOperation}, true},
		{"type mismatch", &AlertFilter{Type: AlertTypeXSS}, false},
		{"severity mismatch", &AlertFilter{Severity: SeverityCritical}, false},
		{"acknowledged true", &AlertFilter{Acknowledged: &yes}, true},
		{"acknowledged false", &AlertFilter{Acknowledged: &no}, false},
		{"resolved false", &AlertFilter{Resolved: &no}, true},
		{"inside range", &AlertFilter{StartDate: &before, EndDate: &after}, true},
		{"start after", &AlertFilter{StartDate: &after}, false},
		{"end before", &AlertFilter{EndDate: &before}, false},
		{"inclusive bounds", &AlertFilter{StartDate: &ts, EndDate: &ts}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(alert); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemoryAlertStore_DeleteResolvedBefore(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryAlertStore()
	now := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	oldResolved := now.Add(-40 * 24 * time.Hour)
	recentResolved := now.Add(-time.Hour)

	a := testAlert("old-resolved", oldResolved)
	a.Resolved, a.ResolvedAt = true, &oldResolved
	b := testAlert("recent-resolved", recentResolved)
	b.Resolved, b.ResolvedAt = true, &recentResolved
	c := testAlert("old-open", oldResolved)

	for _, alert := range []*Alert{a, b, c} {
		_ = s.SaveAlert(ctx, alert)
	}

	deleted, err := s.DeleteResolvedBefore(ctx, now.Add(-30*24*time.Hour))
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if deleted != 1 {
		t.Errorf("expected 1 deleted, got %d", deleted)
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 remaining, got %d", s.Len())
	}
	if _, err := s.GetAlert(ctx, "old-open"); err != nil {
		t.Error("unresolved alert must never be deleted")
	}
}

func TestMemoryAlertStore_UpdateAlert(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewMemoryAlertStore()
	_ = s.SaveAlert(ctx, testAlert("a1", time.Now()))

	updated, err := s.UpdateAlert(ctx, "a1", func(a *Alert) { a.Acknowledged = true })
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !updated.Acknowledged {
		t.Error("expected returned alert to be acknowledged")
	}

	if _, err := s.UpdateAlert(ctx, "missing", func(*Alert) {}); !errors.Is(err, ErrAlertNotFound) {
		t.Errorf("expected ErrAlertNotFound, got %v", err)
	}
}
