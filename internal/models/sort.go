// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package models

// SortField selects the event attribute a view is ordered by.
type SortField string

const (
	SortByTimestamp SortField = "timestamp"
	SortByActorName SortField = "actorName"
	SortByAction    SortField = "action"
	SortByResource  SortField = "resource"
	SortByOutcome   SortField = "outcome"
	SortByRiskLevel SortField = "riskLevel"
)

// Valid reports whether f names a sortable field.
func (f SortField) Valid() bool {
	switch f {
	case SortByTimestamp, SortByActorName, SortByAction, SortByResource, SortByOutcome, SortByRiskLevel:
		return true
	}
	return false
}

// SortDirection orders a view ascending or descending.
type SortDirection string

const (
	SortAscending  SortDirection = "ascending"
	SortDescending SortDirection = "descending"
)

// SortSpec pairs a field with a direction.
type SortSpec struct {
	Field     SortField     `json:"field"`
	Direction SortDirection `json:"direction"`
}

// DefaultSortSpec matches the table view's initial ordering: newest first.
func DefaultSortSpec() SortSpec {
	return SortSpec{Field: SortByTimestamp, Direction: SortDescending}
}
