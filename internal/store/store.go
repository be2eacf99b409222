// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package store supplies audit event snapshots to the query engine. The
// engine itself is pure; everything stateful about events lives behind the
// EventSource interface. Two implementations ship: an in-memory store fed
// by seed files, and a DuckDB-backed store for durable trails.
package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/tomtom215/auditorium/internal/models"
)

// EventSource hands immutable event snapshots to readers.
type EventSource interface {
	// Snapshot returns every live event, newest first. The returned slice
	// is owned by the caller.
	Snapshot(ctx context.Context) ([]models.AuditEvent, error)

	// Get returns one event by id.
	Get(ctx context.Context, id string) (models.AuditEvent, bool, error)

	// Count returns the number of live events.
	Count(ctx context.Context) (int, error)
}

// EventArchiver removes events from the live trail. Archival is the only
// mutation the engine performs, and it always runs behind a confirmation.
type EventArchiver interface {
	// Archive removes the events with the given ids and reports how many
	// were actually present.
	Archive(ctx context.Context, ids []string) (int, error)
}

// MemoryStore is an in-memory EventSource. It keeps events sorted newest
// first and is safe for concurrent use.
type MemoryStore struct {
	mu     sync.RWMutex
	events []models.AuditEvent
	byID   map[string]int
}

// NewMemoryStore returns a store seeded with the given events.
func NewMemoryStore(events []models.AuditEvent) *MemoryStore {
	s := &MemoryStore{}
	s.Replace(events)
	return s
}

// Replace swaps the full event set. Events are copied and re-sorted newest
// first; duplicate ids keep the first occurrence.
func (s *MemoryStore) Replace(events []models.AuditEvent) {
	sorted := make([]models.AuditEvent, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, dup := seen[e.ID]; dup {
			continue
		}
		seen[e.ID] = struct{}{}
		sorted = append(sorted, e)
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})

	byID := make(map[string]int, len(sorted))
	for i, e := range sorted {
		byID[e.ID] = i
	}

	s.mu.Lock()
	s.events = sorted
	s.byID = byID
	s.mu.Unlock()
}

// Snapshot implements EventSource.
func (s *MemoryStore) Snapshot(_ context.Context) ([]models.AuditEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.AuditEvent, len(s.events))
	copy(out, s.events)
	return out, nil
}

// Get implements EventSource.
func (s *MemoryStore) Get(_ context.Context, id string) (models.AuditEvent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.byID[id]
	if !ok {
		return models.AuditEvent{}, false, nil
	}
	return s.events[i], true, nil
}

// Count implements EventSource.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.events), nil
}

// Archive implements EventArchiver.
func (s *MemoryStore) Archive(_ context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.events[:0]
	removed := 0
	for _, e := range s.events {
		if _, gone := drop[e.ID]; gone {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	s.events = kept

	s.byID = make(map[string]int, len(s.events))
	for i, e := range s.events {
		s.byID[e.ID] = i
	}
	return removed, nil
}

// SelectByIDs resolves a snapshot of specific events in stored order.
// Unknown ids are skipped; exports tolerate events archived between
// submission and rendering.
func SelectByIDs(events []models.AuditEvent, ids []string) []models.AuditEvent {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	out := make([]models.AuditEvent, 0, len(ids))
	for _, e := range events {
		if _, ok := want[e.ID]; ok {
			out = append(out, e)
		}
	}
	return out
}

// validateEvent checks the fixed vocabulary fields on an ingested event.
func validateEvent(e *models.AuditEvent) error {
	if e.ID == "" {
		return fmt.Errorf("event has no id")
	}
	if e.Timestamp.IsZero() {
		return fmt.Errorf("event %s has no timestamp", e.ID)
	}
	switch e.Outcome {
	case models.OutcomeSuccess, models.OutcomeFailed, models.OutcomePending:
	default:
		return fmt.Errorf("event %s has unknown outcome %q", e.ID, e.Outcome)
	}
	switch e.RiskLevel {
	case models.RiskLow, models.RiskMedium, models.RiskHigh:
	default:
		return fmt.Errorf("event %s has unknown risk level %q", e.ID, e.RiskLevel)
	}
	return nil
}
