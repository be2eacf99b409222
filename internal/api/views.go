// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package api

import (
	"sync"

	"github.com/google/uuid"

	"github.com/tomtom215/auditorium/internal/query"
)

// viewRegistry keys immutable ViewStates by view id. Updates swap the whole
// value under the lock; the states themselves are never mutated, so reads
// can hand out copies without further synchronization.
type viewRegistry struct {
	mu    sync.RWMutex
	views map[string]query.ViewState
}

func newViewRegistry() *viewRegistry {
	return &viewRegistry{views: make(map[string]query.ViewState)}
}

// create registers a fresh view and returns its id.
func (r *viewRegistry) create() (string, query.ViewState) {
	id := uuid.NewString()
	state := query.NewViewState()

	r.mu.Lock()
	r.views[id] = state
	r.mu.Unlock()
	return id, state
}

// get returns the current state of a view.
func (r *viewRegistry) get(id string) (query.ViewState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	state, ok := r.views[id]
	return state, ok
}

// update applies a pure transition to the view under the lock, so two
// concurrent updates serialize instead of losing one another's changes.
func (r *viewRegistry) update(id string, transition func(query.ViewState) query.ViewState) (query.ViewState, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	state, ok := r.views[id]
	if !ok {
		return query.ViewState{}, false
	}
	state = transition(state)
	r.views[id] = state
	return state, true
}

// remove drops a view.
func (r *viewRegistry) remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.views[id]; !ok {
		return false
	}
	delete(r.views, id)
	return true
}
