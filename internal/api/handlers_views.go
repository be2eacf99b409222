// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/auditorium/internal/compliance"
	"github.com/tomtom215/auditorium/internal/metrics"
	"github.com/tomtom215/auditorium/internal/models"
	"github.com/tomtom215/auditorium/internal/query"
)

// viewPayload is the wire shape of a view's state.
type viewPayload struct {
	ID            string                `json:"id"`
	Criteria      models.FilterCriteria `json:"criteria"`
	Sort          models.SortSpec       `json:"sort"`
	SelectedIDs   []string              `json:"selectedIds"`
	SelectedCount int                   `json:"selectedCount"`
}

func toViewPayload(id string, state query.ViewState) viewPayload {
	return viewPayload{
		ID:            id,
		Criteria:      state.Criteria,
		Sort:          state.Sort,
		SelectedIDs:   state.Selection.IDs(),
		SelectedCount: state.Selection.Len(),
	}
}

// ViewCreate registers a fresh view: empty criteria, newest first, nothing
// selected.
func (h *Handler) ViewCreate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id, state := h.views.create()
	respondData(w, http.StatusCreated, toViewPayload(id, state), started)
}

// ViewGet returns the current state of a view.
func (h *Handler) ViewGet(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")
	state, ok := h.views.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}
	respondData(w, http.StatusOK, toViewPayload(id, state), started)
}

// ViewDelete drops a view.
func (h *Handler) ViewDelete(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")
	if !h.views.remove(id) {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": id}, started)
}

// ViewUpdateCriteria replaces the view's filter criteria. The selection is
// pruned against the newly visible events, so selected ids never outlive
// their visibility.
func (h *Handler) ViewUpdateCriteria(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	var criteria models.FilterCriteria
	if err := decodeBody(r, &criteria); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid filter criteria", err)
		return
	}

	events, err := h.source.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "event source unavailable", err)
		return
	}

	state, ok := h.views.update(id, func(v query.ViewState) query.ViewState {
		return v.WithCriteria(criteria, events)
	})
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}
	respondData(w, http.StatusOK, toViewPayload(id, state), started)
}

// ViewUpdateSort replaces the view's sort spec. Sorting never changes
// visibility, so the selection is untouched.
func (h *Handler) ViewUpdateSort(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	var spec models.SortSpec
	if err := decodeBody(r, &spec); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not a valid sort spec", err)
		return
	}
	if !spec.Field.Valid() {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("unknown sort field %q", spec.Field), nil)
		return
	}
	if spec.Direction != models.SortAscending && spec.Direction != models.SortDescending {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR",
			fmt.Sprintf("unknown sort direction %q", spec.Direction), nil)
		return
	}

	state, ok := h.views.update(id, func(v query.ViewState) query.ViewState {
		return v.WithSort(spec)
	})
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}
	respondData(w, http.StatusOK, toViewPayload(id, state), started)
}

// ViewEvents lists the view's visible events, filtered, sorted and
// paginated. The total counts the whole visible set, not the page.
func (h *Handler) ViewEvents(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	state, ok := h.views.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}

	events, err := h.source.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "event source unavailable", err)
		return
	}

	visible := state.Visible(events)
	limit, offset := h.pageBounds(r)

	page := visible
	if offset >= len(page) {
		page = nil
	} else {
		page = page[offset:]
	}
	if len(page) > limit {
		page = page[:limit]
	}
	if page == nil {
		page = []models.AuditEvent{}
	}

	metrics.RecordQuery("view_events", time.Since(started), len(visible))

	respondData(w, http.StatusOK, map[string]interface{}{
		"events": page,
		"total":  len(visible),
		"limit":  limit,
		"offset": offset,
	}, started)
}

// ViewSummary computes the compliance summary over the view's visible
// events, anchored on the server clock.
func (h *Handler) ViewSummary(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	state, ok := h.views.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}

	events, err := h.source.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "event source unavailable", err)
		return
	}

	summary := compliance.Summarize(query.Filter(events, state.Criteria), h.now())
	metrics.RecordQuery("summary", time.Since(started), summary.Total)
	respondData(w, http.StatusOK, summary, started)
}

// SelectionToggle flips one event id in the view's selection. Only ids
// visible under the view's current criteria can be toggled, so the selection
// never reaches outside the filtered set.
func (h *Handler) SelectionToggle(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	var body struct {
		EventID string `json:"eventId"`
	}
	if err := decodeBody(r, &body); err != nil || body.EventID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "eventId is required", err)
		return
	}

	events, err := h.source.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "event source unavailable", err)
		return
	}

	toggled := false
	state, ok := h.views.update(id, func(v query.ViewState) query.ViewState {
		for _, visible := range query.VisibleIDs(events, v.Criteria) {
			if visible == body.EventID {
				toggled = true
				return v.WithSelection(v.Selection.Toggle(body.EventID))
			}
		}
		return v
	})
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}
	if !toggled {
		respondError(w, http.StatusNotFound, "EVENT_NOT_FOUND", "event id is not visible in this view", nil)
		return
	}
	respondData(w, http.StatusOK, toViewPayload(id, state), started)
}

// SelectionToggleAll implements the header checkbox: clear if every visible
// id is selected, otherwise select exactly the visible set.
func (h *Handler) SelectionToggleAll(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	events, err := h.source.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "event source unavailable", err)
		return
	}

	state, ok := h.views.update(id, func(v query.ViewState) query.ViewState {
		visible := query.VisibleIDs(events, v.Criteria)
		return v.WithSelection(v.Selection.ToggleAll(visible))
	})
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}
	respondData(w, http.StatusOK, toViewPayload(id, state), started)
}

// SelectionClear drops every selected id.
func (h *Handler) SelectionClear(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	state, ok := h.views.update(id, func(v query.ViewState) query.ViewState {
		return v.WithSelection(v.Selection.Clear())
	})
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}
	respondData(w, http.StatusOK, toViewPayload(id, state), started)
}

// SelectionGet returns the selected ids.
func (h *Handler) SelectionGet(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	state, ok := h.views.get(id)
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"ids":   state.Selection.IDs(),
		"count": state.Selection.Len(),
	}, started)
}
