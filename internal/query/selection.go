// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package query

import "sort"

// Selection is an immutable set of selected event ids scoped to the current
// visible view. Every operation returns a new Selection; the zero value is
// an empty selection and ready to use.
type Selection struct {
	ids map[string]struct{}
}

// NewSelection builds a selection from the given ids.
func NewSelection(ids ...string) Selection {
	s := Selection{ids: make(map[string]struct{}, len(ids))}
	for _, id := range ids {
		s.ids[id] = struct{}{}
	}
	return s
}

// Toggle flips the membership of id.
func (s Selection) Toggle(id string) Selection {
	out := s.clone()
	if _, ok := out.ids[id]; ok {
		delete(out.ids, id)
	} else {
		out.ids[id] = struct{}{}
	}
	return out
}

// ToggleAll implements the header checkbox: if every visible id is already
// selected the selection clears, otherwise it becomes exactly the visible
// set. Tri-state rendering of partial selections is the caller's concern.
func (s Selection) ToggleAll(visibleIDs []string) Selection {
	if len(visibleIDs) > 0 && s.containsAll(visibleIDs) {
		return Selection{}
	}
	return NewSelection(visibleIDs...)
}

// Clear drops every selected id.
func (s Selection) Clear() Selection {
	return Selection{}
}

// Prune drops ids no longer in the visible set. It is invoked on every
// filter change so the invariant selected ⊆ visible holds; ids that fall
// outside the new view disappear silently.
func (s Selection) Prune(visibleIDs []string) Selection {
	if len(s.ids) == 0 {
		return Selection{}
	}
	visible := make(map[string]struct{}, len(visibleIDs))
	for _, id := range visibleIDs {
		visible[id] = struct{}{}
	}
	out := Selection{ids: make(map[string]struct{})}
	for id := range s.ids {
		if _, ok := visible[id]; ok {
			out.ids[id] = struct{}{}
		}
	}
	return out
}

// Contains reports whether id is selected.
func (s Selection) Contains(id string) bool {
	_, ok := s.ids[id]
	return ok
}

// Len returns the number of selected ids.
func (s Selection) Len() int {
	return len(s.ids)
}

// IDs returns the selected ids sorted lexicographically for deterministic
// output.
func (s Selection) IDs() []string {
	out := make([]string, 0, len(s.ids))
	for id := range s.ids {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s Selection) containsAll(ids []string) bool {
	for _, id := range ids {
		if _, ok := s.ids[id]; !ok {
			return false
		}
	}
	return true
}

func (s Selection) clone() Selection {
	out := Selection{ids: make(map[string]struct{}, len(s.ids))}
	for id := range s.ids {
		out.ids[id] = struct{}{}
	}
	return out
}
