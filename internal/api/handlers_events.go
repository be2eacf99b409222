// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package api

import (
	"net/http"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/auditorium/internal/models"
)

// EventGet returns a single event by id.
func (h *Handler) EventGet(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	id := chi.URLParam(r, "id")

	event, ok, err := h.source.Get(r.Context(), id)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "event source unavailable", err)
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "EVENT_NOT_FOUND", "unknown event id", nil)
		return
	}
	respondData(w, http.StatusOK, event, started)
}

// facetsPayload lists the filterable vocabularies present in the trail.
type facetsPayload struct {
	Actions    []string           `json:"actions"`
	Resources  []string           `json:"resources"`
	Actors     []models.Actor     `json:"actors"`
	Outcomes   []models.Outcome   `json:"outcomes"`
	RiskLevels []models.RiskLevel `json:"riskLevels"`
}

// EventFacets derives the filter vocabularies from the live event set.
// Outcome and risk vocabularies are the closed enum sets; actions, resources
// and actors reflect what the trail actually contains, sorted for stable
// dropdowns.
func (h *Handler) EventFacets(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	events, err := h.source.Snapshot(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STORE_ERROR", "event source unavailable", err)
		return
	}

	actions := make(map[string]struct{})
	resources := make(map[string]struct{})
	actors := make(map[string]models.Actor)
	for i := range events {
		e := &events[i]
		actions[e.Action] = struct{}{}
		resources[e.Resource] = struct{}{}
		actors[e.Actor.ID] = e.Actor
	}

	payload := facetsPayload{
		Actions:    sortedKeys(actions),
		Resources:  sortedKeys(resources),
		Outcomes:   []models.Outcome{models.OutcomeSuccess, models.OutcomeFailed, models.OutcomePending},
		RiskLevels: []models.RiskLevel{models.RiskLow, models.RiskMedium, models.RiskHigh},
	}
	payload.Actors = make([]models.Actor, 0, len(actors))
	for _, a := range actors {
		payload.Actors = append(payload.Actors, a)
	}
	sort.Slice(payload.Actors, func(i, j int) bool {
		return payload.Actors[i].ID < payload.Actors[j].ID
	})

	respondData(w, http.StatusOK, payload, started)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
