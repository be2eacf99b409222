// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package query

import "github.com/tomtom215/auditorium/internal/models"

// ViewState bundles the criteria, ordering and selection of one table or
// timeline view. It is an immutable value: every user action derives a new
// ViewState through one of the With* transitions instead of mutating shared
// state.
type ViewState struct {
	Criteria  models.FilterCriteria
	Sort      models.SortSpec
	Selection Selection
}

// NewViewState returns the initial view: no restrictions, newest first,
// nothing selected.
func NewViewState() ViewState {
	return ViewState{Sort: models.DefaultSortSpec()}
}

// WithCriteria replaces the filter criteria and prunes the selection against
// the events visible under the new criteria, so selected ids can never
// outlive their visibility.
func (v ViewState) WithCriteria(criteria models.FilterCriteria, events []models.AuditEvent) ViewState {
	out := v
	out.Criteria = criteria.Clone()
	out.Selection = v.Selection.Prune(VisibleIDs(events, criteria))
	return out
}

// WithSort replaces the sort spec. Sorting never changes visibility, so the
// selection is untouched.
func (v ViewState) WithSort(spec models.SortSpec) ViewState {
	out := v
	out.Sort = spec
	return out
}

// WithSelection replaces the selection.
func (v ViewState) WithSelection(sel Selection) ViewState {
	out := v
	out.Selection = sel
	return out
}

// Visible applies the view's criteria and sort to an event snapshot.
func (v ViewState) Visible(events []models.AuditEvent) []models.AuditEvent {
	return Sort(Filter(events, v.Criteria), v.Sort)
}
