// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package query implements the filter and sort engines plus the per-view
// selection state.
//
// Filter and Sort are pure functions over event snapshots: they never error,
// never mutate their input, and hold no state between calls, so concurrent
// invocations over different snapshots are safe without locks. Selection and
// ViewState are value types threaded through pure transitions; each user
// action produces a new value rather than mutating shared fields.
package query
