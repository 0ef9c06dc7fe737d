// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package detection

import (
	"context"
	"maps"
	"sort"
	"sync"
	"time"
)

// MemoryAlertStore keeps alerts in memory keyed by ID.
type MemoryAlertStore struct {
	mu     sync.RWMutex
	alerts map[string]*storedAlert
	next   uint64
}

// storedAlert pairs an alert with its insertion sequence, used to order
// alerts that share a timestamp.
type storedAlert struct {
	alert Alert
	seq   uint64
}

// NewMemoryAlertStore creates an empty alert store.
func NewMemoryAlertStore() *MemoryAlertStore {
	return &MemoryAlertStore{alerts: make(map[string]*storedAlert)}
}

// SaveAlert inserts or replaces an alert.
func (s *MemoryAlertStore) SaveAlert(_ context.Context, alert *Alert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.alerts[alert.ID]; ok {
		existing.alert = cloneAlert(alert)
		return nil
	}
	s.alerts[alert.ID] = &storedAlert{alert: cloneAlert(alert), seq: s.next}
	s.next++
	return nil
}

// GetAlert returns the alert with the given ID.
func (s *MemoryAlertStore) GetAlert(_ context.Context, id string) (Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.alerts[id]
	if !ok {
		return Alert{}, ErrAlertNotFound
	}
	return cloneAlert(&stored.alert), nil
}

// ListAlerts returns alerts matching filter, newest first. A positive
// filter.Limit bounds the result.
func (s *MemoryAlertStore) ListAlerts(_ context.Context, filter *AlertFilter) ([]Alert, error) {
	s.mu.RLock()
	matched := make([]*storedAlert, 0, len(s.alerts))
	for _, stored := range s.alerts {
		if filter.Matches(&stored.alert) {
			matched = append(matched, stored)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		ti, tj := matched[i].alert.Timestamp, matched[j].alert.Timestamp
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return matched[i].seq > matched[j].seq
	})

	if filter != nil && filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}

	result := make([]Alert, len(matched))
	for i, stored := range matched {
		result[i] = cloneAlert(&stored.alert)
	}
	s.mu.RUnlock()

	return result, nil
}

// UpdateAlert applies mutate to the stored alert under the write lock.
func (s *MemoryAlertStore) UpdateAlert(_ context.Context, id string, mutate func(*Alert)) (Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.alerts[id]
	if !ok {
		return Alert{}, ErrAlertNotFound
	}
	mutate(&stored.alert)
	return cloneAlert(&stored.alert), nil
}

// DeleteResolvedBefore removes resolved alerts with ResolvedAt before cutoff.
func (s *MemoryAlertStore) DeleteResolvedBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var deleted int64
	for id, stored := range s.alerts {
		a := &stored.alert
		if a.Resolved && a.ResolvedAt != nil && a.ResolvedAt.Before(cutoff) {
			delete(s.alerts, id)
			deleted++
		}
	}
	return deleted, nil
}

// Len returns the number of stored alerts.
func (s *MemoryAlertStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.alerts)
}

// cloneAlert copies an alert so callers cannot mutate stored state.
func cloneAlert(a *Alert) Alert {
	c := *a
	c.Details = maps.Clone(a.Details)
	if a.AcknowledgedAt != nil {
		t := *a.AcknowledgedAt
		c.AcknowledgedAt = &t
	}
	if a.ResolvedAt != nil {
		t := *a.ResolvedAt
		c.ResolvedAt = &t
	}
	return c
}
