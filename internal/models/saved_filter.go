// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package models

// SavedFilter is a named FilterCriteria preset. Name is non-empty and unique
// within a registry at creation time.
type SavedFilter struct {
	ID       string         `json:"id"`
	Name     string         `json:"name"`
	Criteria FilterCriteria `json:"criteria"`
}
