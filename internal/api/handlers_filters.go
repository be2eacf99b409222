// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/auditorium/internal/models"
	"github.com/tomtom215/auditorium/internal/query"
)

// FilterSave stores the given criteria under a name.
func (h *Handler) FilterSave(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var body struct {
		Name     string                `json:"name"`
		Criteria models.FilterCriteria `json:"criteria"`
	}
	if err := decodeBody(r, &body); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not a valid saved filter", err)
		return
	}

	saved, err := h.filters.Save(body.Name, body.Criteria)
	if err != nil {
		respondValidationError(w, err)
		return
	}
	respondData(w, http.StatusCreated, saved, started)
}

// FilterList returns saved filters in creation order.
func (h *Handler) FilterList(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, h.filters.List(), time.Now())
}

// FilterDelete removes a saved filter, freeing its name.
func (h *Handler) FilterDelete(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")
	if !h.filters.Remove(id) {
		respondError(w, http.StatusNotFound, "FILTER_NOT_FOUND", "unknown saved filter id", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": id}, started)
}

// FilterApply overlays a saved filter onto a view's active criteria. Saved
// facets replace, absent facets stay untouched. The view's selection is
// pruned against the merged visibility.
func (h *Handler) FilterApply(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	filterID := chi.URLParam(r, "id")

	var body struct {
		ViewID string `json:"viewId"`
	}
	if err := decodeBody(r, &body); err != nil || body.ViewID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "viewId is required", err)
		return
	}

	events, err := h.source.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "event source unavailable", err)
		return
	}

	var applied bool
	state, ok := h.views.update(body.ViewID, func(v query.ViewState) query.ViewState {
		merged, found := h.filters.Apply(filterID, v.Criteria)
		if !found {
			return v
		}
		applied = true
		return v.WithCriteria(merged, events)
	})
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}
	if !applied {
		respondError(w, http.StatusNotFound, "FILTER_NOT_FOUND", "unknown saved filter id", nil)
		return
	}
	respondData(w, http.StatusOK, toViewPayload(body.ViewID, state), started)
}
