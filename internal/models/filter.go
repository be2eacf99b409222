// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package models

import "time"

// DateRange bounds a filter to an inclusive time window. Either bound may be
// empty. Bounds are carried as strings so that an unparseable value can be
// treated as "no bound" by the engine instead of failing the whole filter;
// validating the input belongs to the caller, not the engine.
type DateRange struct {
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// dateBoundLayouts are the accepted bound formats, tried in order.
var dateBoundLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseBound parses a date-range bound leniently. The second return is false
// when the bound is absent or unparseable, which callers treat as
// unrestricted.
func ParseBound(bound string) (time.Time, bool) {
	if bound == "" {
		return time.Time{}, false
	}
	for _, layout := range dateBoundLayouts {
		if t, err := time.Parse(layout, bound); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// FilterCriteria describes one query against the audit trail. An empty set on
// any facet means no restriction on that facet; a zero-value FilterCriteria
// matches every event.
type FilterCriteria struct {
	DateRange  DateRange   `json:"dateRange"`
	ActorIDs   []string    `json:"actorIds,omitempty"`
	Actions    []string    `json:"actions,omitempty"`
	Resources  []string    `json:"resources,omitempty"`
	Outcomes   []Outcome   `json:"outcomes,omitempty"`
	RiskLevels []RiskLevel `json:"riskLevels,omitempty"`
	SearchText string      `json:"searchText,omitempty"`
}

// IsEmpty reports whether the criteria restrict nothing.
func (c FilterCriteria) IsEmpty() bool {
	return c.DateRange.Start == "" && c.DateRange.End == "" &&
		len(c.ActorIDs) == 0 && len(c.Actions) == 0 && len(c.Resources) == 0 &&
		len(c.Outcomes) == 0 && len(c.RiskLevels) == 0 && c.SearchText == ""
}

// Clone returns a deep copy so that callers can derive new criteria without
// sharing facet slices.
func (c FilterCriteria) Clone() FilterCriteria {
	out := c
	out.ActorIDs = append([]string(nil), c.ActorIDs...)
	out.Actions = append([]string(nil), c.Actions...)
	out.Resources = append([]string(nil), c.Resources...)
	out.Outcomes = append([]Outcome(nil), c.Outcomes...)
	out.RiskLevels = append([]RiskLevel(nil), c.RiskLevels...)
	return out
}

// Merge overlays the non-empty facets of other onto a copy of c. Facets the
// overlay does not set are left untouched. This is the semantics of applying
// a saved filter on top of the active criteria.
func (c FilterCriteria) Merge(other FilterCriteria) FilterCriteria {
	out := c.Clone()
	if other.DateRange.Start != "" || other.DateRange.End != "" {
		out.DateRange = other.DateRange
	}
	if len(other.ActorIDs) > 0 {
		out.ActorIDs = append([]string(nil), other.ActorIDs...)
	}
	if len(other.Actions) > 0 {
		out.Actions = append([]string(nil), other.Actions...)
	}
	if len(other.Resources) > 0 {
		out.Resources = append([]string(nil), other.Resources...)
	}
	if len(other.Outcomes) > 0 {
		out.Outcomes = append([]Outcome(nil), other.Outcomes...)
	}
	if len(other.RiskLevels) > 0 {
		out.RiskLevels = append([]RiskLevel(nil), other.RiskLevels...)
	}
	if other.SearchText != "" {
		out.SearchText = other.SearchText
	}
	return out
}
