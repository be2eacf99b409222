// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package query

import (
	"strings"

	"github.com/tomtom215/auditorium/internal/models"
)

// Filter returns the events matching criteria, preserving input order.
//
// Facets combine with logical AND; within a multi-value facet membership is
// logical OR, and an empty facet set restricts nothing. Date bounds are
// inclusive on both ends; an unparseable bound is treated as absent. The
// free-text search is a case-insensitive substring match against the actor
// display name, the humanized action tag, the resource name and the source
// address. Filter is total: it never errors and an empty criteria returns
// every event.
func Filter(events []models.AuditEvent, criteria models.FilterCriteria) []models.AuditEvent {
	if criteria.IsEmpty() {
		out := make([]models.AuditEvent, len(events))
		copy(out, events)
		return out
	}

	start, hasStart := models.ParseBound(criteria.DateRange.Start)
	end, hasEnd := models.ParseBound(criteria.DateRange.End)
	search := strings.ToLower(criteria.SearchText)

	out := make([]models.AuditEvent, 0, len(events))
	for i := range events {
		e := &events[i]
		if hasStart && e.Timestamp.Before(start) {
			continue
		}
		if hasEnd && e.Timestamp.After(end) {
			continue
		}
		if !containsString(criteria.ActorIDs, e.Actor.ID) {
			continue
		}
		if !containsString(criteria.Actions, e.Action) {
			continue
		}
		if !containsString(criteria.Resources, e.Resource) {
			continue
		}
		if !containsOutcome(criteria.Outcomes, e.Outcome) {
			continue
		}
		if !containsRisk(criteria.RiskLevels, e.RiskLevel) {
			continue
		}
		if search != "" && !matchesSearch(e, search) {
			continue
		}
		out = append(out, *e)
	}
	return out
}

// VisibleIDs returns the ids of the events passing criteria, in view order.
func VisibleIDs(events []models.AuditEvent, criteria models.FilterCriteria) []string {
	visible := Filter(events, criteria)
	ids := make([]string, len(visible))
	for i := range visible {
		ids[i] = visible[i].ID
	}
	return ids
}

// matchesSearch requires the lowercased query to appear in at least one of
// the searchable fields. The action tag is humanized first so "permission
// change" finds PERMISSION_CHANGE.
func matchesSearch(e *models.AuditEvent, query string) bool {
	return strings.Contains(strings.ToLower(e.Actor.DisplayName), query) ||
		strings.Contains(strings.ToLower(models.HumanizeAction(e.Action)), query) ||
		strings.Contains(strings.ToLower(e.Resource), query) ||
		strings.Contains(strings.ToLower(e.SourceAddress), query)
}

// containsString treats an empty set as "no restriction".
func containsString(set []string, v string) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsOutcome(set []models.Outcome, v models.Outcome) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func containsRisk(set []models.RiskLevel, v models.RiskLevel) bool {
	if len(set) == 0 {
		return true
	}
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
