// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"

	"github.com/tomtom215/sentinel/internal/audit"
	"github.com/tomtom215/sentinel/internal/detection"
)

var _ suture.Service = (*RetentionService)(nil)

var (
	_ Cleaner = (*audit.Logger)(nil)
	_ Cleaner = (*detection.Manager)(nil)
)

type fakeCleaner struct {
	mu      sync.Mutex
	days    []int
	deleted int64
	err     error
}

func (f *fakeCleaner) Cleanup(_ context.Context, retentionDays int) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.days = append(f.days, retentionDays)
	return f.deleted, f.err
}

func (f *fakeCleaner) calls() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.days...)
}

func TestRetentionService_Sweep(t *testing.T) {
	auditCleaner := &fakeCleaner{deleted: 7}
	alertCleaner := &fakeCleaner{deleted: 2}
	svc := NewRetentionService(auditCleaner, alertCleaner, RetentionConfig{
		AuditRetentionDays: 90,
		AlertRetentionDays: 30,
	})

	a, b := svc.Sweep(context.Background())
	if a != 7 || b != 2 {
		t.Errorf("Sweep() = %d, %d; want 7, 2", a, b)
	}
	if got := auditCleaner.calls(); len(got) != 1 || got[0] != 90 {
		t.Errorf("audit cleanup calls = %v, want [90]", got)
	}
	if got := alertCleaner.calls(); len(got) != 1 || got[0] != 30 {
		t.Errorf("alert cleanup calls = %v, want [30]", got)
	}
}

func TestRetentionService_SweepSkipsDisabled(t *testing.T) {
	auditCleaner := &fakeCleaner{deleted: 1}
	svc := NewRetentionService(auditCleaner, nil, RetentionConfig{AuditRetentionDays: 0})

	if a, b := svc.Sweep(context.Background()); a != 0 || b != 0 {
		t.Errorf("Sweep() = %d, %d; want 0, 0", a, b)
	}
	if got := auditCleaner.calls(); len(got) != 0 {
		t.Errorf("cleanup called with non-positive retention: %v", got)
	}
}

func TestRetentionService_SweepContinuesAfterError(t *testing.T) {
	auditCleaner := &fakeCleaner{err: errors.New("store unavailable")}
	alertCleaner := &fakeCleaner{deleted: 4}
	svc := NewRetentionService(auditCleaner, alertCleaner, RetentionConfig{
		AuditRetentionDays: 1,
		AlertRetentionDays: 1,
	})

	a, b := svc.Sweep(context.Background())
	if a != 0 || b != 4 {
		t.Errorf("Sweep() = %d, %d; want 0, 4", a, b)
	}
}

func TestRetentionService_Serve(t *testing.T) {
	cleaner := &fakeCleaner{}
	svc := NewRetentionService(cleaner, nil, RetentionConfig{
		Interval:           10 * time.Millisecond,
		AuditRetentionDays: 90,
	})

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- svc.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for len(cleaner.calls()) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	cancel()

	if err := <-errCh; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if n := len(cleaner.calls()); n < 3 {
		t.Errorf("expected at least 3 sweeps, got %d", n)
	}
}

func TestRetentionService_PurgesRealStores(t *testing.T) {
	ctx := context.Background()
	now := time.Now()

	store := audit.NewMemoryStore(100, audit.WithClock(func() time.Time { return now.Add(-100 * 24 * time.Hour) }))
	logger := audit.NewLogger(store, nil)
	if _, err := logger.Log(ctx, audit.LogParams{
		Action:   audit.ActionLogin,
		Resource: audit.ResourceUser,
		UserID:   "alice",
		Result:   audit.ResultSuccess,
	}); err != nil {
		t.Fatalf("Log: %v", err)
	}

	svc := NewRetentionService(logger, nil, RetentionConfig{AuditRetentionDays: 90})
	if deleted, _ := svc.Sweep(ctx); deleted != 1 {
		t.Errorf("audit deleted = %d, want 1", deleted)
	}
	if store.Len() != 0 {
		t.Errorf("store still holds %d entries", store.Len())
	}
}

func TestRetentionService_DefaultInterval(t *testing.T) {
	svc := NewRetentionService(nil, nil, RetentionConfig{})
	if svc.config.Interval != 24*time.Hour {
		t.Errorf("Interval = %v, want 24h", svc.config.Interval)
	}
	if svc.String() != "retention" {
		t.Errorf("String() = %q", svc.String())
	}
}
