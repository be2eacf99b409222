// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package query

import (
	"sort"
	"strings"

	"github.com/tomtom215/auditorium/internal/models"
)

// Sort returns a new slice ordered by spec. The sort is stable: ties keep
// their prior relative order regardless of direction, because descending
// reverses the comparator's sign, not the tie-break.
func Sort(events []models.AuditEvent, spec models.SortSpec) []models.AuditEvent {
	out := make([]models.AuditEvent, len(events))
	copy(out, events)

	cmp := comparatorFor(spec.Field)
	desc := spec.Direction == models.SortDescending

	sort.SliceStable(out, func(i, j int) bool {
		c := cmp(&out[i], &out[j])
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

// comparatorFor returns a three-way comparator for the given field.
// Timestamp compares as an instant; the remaining fields compare their
// canonical display strings case-sensitively. An unknown field falls back to
// timestamp so the sort stays total.
func comparatorFor(field models.SortField) func(a, b *models.AuditEvent) int {
	switch field {
	case models.SortByActorName:
		return func(a, b *models.AuditEvent) int {
			return strings.Compare(a.Actor.DisplayName, b.Actor.DisplayName)
		}
	case models.SortByAction:
		return func(a, b *models.AuditEvent) int {
			return strings.Compare(a.Action, b.Action)
		}
	case models.SortByResource:
		return func(a, b *models.AuditEvent) int {
			return strings.Compare(a.Resource, b.Resource)
		}
	case models.SortByOutcome:
		return func(a, b *models.AuditEvent) int {
			return strings.Compare(string(a.Outcome), string(b.Outcome))
		}
	case models.SortByRiskLevel:
		return func(a, b *models.AuditEvent) int {
			return strings.Compare(string(a.RiskLevel), string(b.RiskLevel))
		}
	default:
		return func(a, b *models.AuditEvent) int {
			return a.Timestamp.Compare(b.Timestamp)
		}
	}
}
