// Sentinel - Security Audit and Alert Detection Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/sentinel

package audit

import (
	"context"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/sentinel/internal/metrics"
)

// DefaultStoreCapacity is the number of entries MemoryStore retains before
// evicting the oldest.
const DefaultStoreCapacity = 10000

// MemoryStore is an in-memory Store bounded to a fixed number of entries.
// Entries are kept in insertion order; once the capacity is exceeded the
// oldest entry is evicted. Capacity eviction is independent of time-based
// retention (DeleteOldLogs).
type MemoryStore struct {
	mu      sync.RWMutex
	entries []Entry
	byID    map[string]int // id -> insertion sequence
	seq     []int          // insertion sequence per entries[i]
	next    int
	maxLen  int
	now     func() time.Time
}

// StoreOption configures a MemoryStore.
type StoreOption func(*MemoryStore)

// WithClock overrides the time source used to stamp entries.
func WithClock(now func() time.Time) StoreOption {
	return func(s *MemoryStore) {
		s.now = now
	}
}

// NewMemoryStore creates a new in-memory audit store.
// maxLen <= 0 selects DefaultStoreCapacity.
func NewMemoryStore(maxLen int, opts ...StoreOption) *MemoryStore {
	if maxLen <= 0 {
		maxLen = DefaultStoreCapacity
	}
	s := &MemoryStore{
		entries: make([]Entry, 0, min(maxLen, 1024)),
		byID:    make(map[string]int),
		maxLen:  maxLen,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create assigns an ID and timestamp and appends the entry.
func (s *MemoryStore) Create(_ context.Context, entry Entry) (Entry, error) {
	entry.ID = newEntryID()
	entry.Details = maps.Clone(entry.Details)
	entry.Metadata = maps.Clone(entry.Metadata)
	if entry.Details == nil {
		entry.Details = map[string]interface{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	entry.Timestamp = s.now()
	s.entries = append(s.entries, entry)
	s.seq = append(s.seq, s.next)
	s.byID[entry.ID] = s.next
	s.next++

	if overflow := len(s.entries) - s.maxLen; overflow > 0 {
		for i := 0; i < overflow; i++ {
			delete(s.byID, s.entries[i].ID)
			s.entries[i] = Entry{}
		}
		s.entries = s.entries[overflow:]
		s.seq = s.seq[overflow:]
	}

	metrics.AuditStoreEntries.Set(float64(len(s.entries)))
	return cloneEntry(&entry), nil
}

// FindByID returns the entry with the given ID.
func (s *MemoryStore) FindByID(_ context.Context, id string) (Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq, ok := s.byID[id]
	if !ok {
		return Entry{}, ErrEntryNotFound
	}
	idx := s.indexOf(seq)
	if idx < 0 {
		return Entry{}, ErrEntryNotFound
	}
	return cloneEntry(&s.entries[idx]), nil
}

// indexOf locates the slice index for an insertion sequence number.
// Must be called with the lock held.
func (s *MemoryStore) indexOf(seq int) int {
	lo, hi := 0, len(s.seq)-1
	for lo <= hi {
		mid := (lo + hi) / 2
		switch {
		case s.seq[mid] == seq:
			return mid
		case s.seq[mid] < seq:
			lo = mid + 1
		default:
			hi = mid - 1
		}
	}
	return -1
}

// FindByUserID returns up to limit entries for userID, newest first.
func (s *MemoryStore) FindByUserID(_ context.Context, userID string, limit int) ([]Entry, error) {
	return s.collect(limit, func(e *Entry) bool {
		return e.UserID == userID
	}), nil
}

// FindByDateRange returns up to limit entries with start <= Timestamp <= end, newest first.
func (s *MemoryStore) FindByDateRange(_ context.Context, start, end time.Time, limit int) ([]Entry, error) {
	return s.collect(limit, func(e *Entry) bool {
		return !e.Timestamp.Before(start) && !e.Timestamp.After(end)
	}), nil
}

// FindRecent returns up to limit entries, newest first.
func (s *MemoryStore) FindRecent(_ context.Context, limit int) ([]Entry, error) {
	return s.collect(limit, nil), nil
}

// collect walks entries newest-first and returns up to limit matches.
// limit <= 0 means no limit.
func (s *MemoryStore) collect(limit int, match func(*Entry) bool) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	capHint := len(s.entries)
	if limit > 0 && limit < capHint {
		capHint = limit
	}
	result := make([]Entry, 0, capHint)

	for i := len(s.entries) - 1; i >= 0; i-- {
		if match != nil && !match(&s.entries[i]) {
			continue
		}
		result = append(result, cloneEntry(&s.entries[i]))
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result
}

// cloneEntry copies an entry so callers cannot mutate stored state.
func cloneEntry(e *Entry) Entry {
	c := *e
	c.Details = maps.Clone(e.Details)
	c.Metadata = maps.Clone(e.Metadata)
	return c
}

// Count returns the number of entries matching filter.
func (s *MemoryStore) Count(_ context.Context, filter *Filter) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for i := range s.entries {
		if filter.Matches(&s.entries[i]) {
			count++
		}
	}
	return count, nil
}

// DeleteOldLogs removes entries with Timestamp strictly before the cutoff.
func (s *MemoryStore) DeleteOldLogs(_ context.Context, before time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.entries[:0]
	keptSeq := s.seq[:0]
	var deleted int64

	for i := range s.entries {
		if s.entries[i].Timestamp.Before(before) {
			delete(s.byID, s.entries[i].ID)
			deleted++
			continue
		}
		kept = append(kept, s.entries[i])
		keptSeq = append(keptSeq, s.seq[i])
	}
	for i := len(kept); i < len(s.entries); i++ {
		s.entries[i] = Entry{}
	}

	s.entries = kept
	s.seq = keptSeq
	metrics.AuditStoreEntries.Set(float64(len(s.entries)))
	return deleted, nil
}

// Len returns the number of retained entries.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// newEntryID returns a time-ordered UUIDv7, falling back to a random UUID.
func newEntryID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
