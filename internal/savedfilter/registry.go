// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package savedfilter keeps named filter presets. A preset snapshots the
// criteria at save time; applying one overlays the snapshot onto the current
// criteria facet by facet, so facets the preset left empty survive.
package savedfilter

import (
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/tomtom215/auditorium/internal/models"
)

// Registry is a concurrency-safe, in-memory store of saved filters.
// Presets list in creation order.
type Registry struct {
	mu      sync.RWMutex
	byID    map[string]models.SavedFilter
	ordered []string
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		byID: make(map[string]models.SavedFilter),
	}
}

// Save stores a snapshot of criteria under name and returns the stored
// preset. The name must be non-blank after trimming and unique among live
// presets; violations return a *models.ValidationError and leave the
// registry unchanged.
func (r *Registry) Save(name string, criteria models.FilterCriteria) (models.SavedFilter, error) {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return models.SavedFilter{}, models.NewValidationError("name", "filter name must not be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.ordered {
		if r.byID[id].Name == trimmed {
			return models.SavedFilter{}, models.NewValidationError("name", "a saved filter named "+strconv.Quote(trimmed)+" already exists")
		}
	}

	sf := models.SavedFilter{
		ID:       uuid.NewString(),
		Name:     trimmed,
		Criteria: criteria.Clone(),
	}
	r.byID[sf.ID] = sf
	r.ordered = append(r.ordered, sf.ID)
	return sf, nil
}

// Get returns the preset with the given id.
func (r *Registry) Get(id string) (models.SavedFilter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	sf, ok := r.byID[id]
	if !ok {
		return models.SavedFilter{}, false
	}
	sf.Criteria = sf.Criteria.Clone()
	return sf, true
}

// Apply overlays the preset's criteria onto current and returns the merged
// criteria. Facets the preset populated replace their counterparts; empty
// facets keep the current values. The second return is false when no preset
// has that id.
func (r *Registry) Apply(id string, current models.FilterCriteria) (models.FilterCriteria, bool) {
	sf, ok := r.Get(id)
	if !ok {
		return models.FilterCriteria{}, false
	}
	return current.Merge(sf.Criteria), true
}

// List returns every preset in creation order. Criteria are cloned so
// callers cannot reach the registry's state.
func (r *Registry) List() []models.SavedFilter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.SavedFilter, 0, len(r.ordered))
	for _, id := range r.ordered {
		sf := r.byID[id]
		sf.Criteria = sf.Criteria.Clone()
		out = append(out, sf)
	}
	return out
}

// Remove deletes the preset with the given id. Removing an unknown id
// returns false. A removed preset's name becomes reusable.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, candidate := range r.ordered {
		if candidate == id {
			r.ordered = append(r.ordered[:i], r.ordered[i+1:]...)
			break
		}
	}
	return true
}
