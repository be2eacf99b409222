// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/auditorium/internal/export/delivery"
	"github.com/tomtom215/auditorium/internal/logging"
	"github.com/tomtom215/auditorium/internal/models"
	"github.com/tomtom215/auditorium/internal/query"
)

// exportRequest submits an export anchored on a view. When the view has a
// selection the job snapshots exactly those ids; otherwise it carries the
// filtered visible set.
type exportRequest struct {
	ViewID  string               `json:"viewId"`
	Options models.ExportOptions `json:"options"`
}

// ExportSubmit validates the options, builds the job and hands it to the
// delivery pipeline. The 202 means accepted, not delivered.
func (h *Handler) ExportSubmit(w http.ResponseWriter, r *http.Request) {
	started := time.Now()

	var req exportRequest
	if err := decodeBody(r, &req); err != nil || req.ViewID == "" {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "viewId and options are required", err)
		return
	}

	state, ok := h.views.get(req.ViewID)
	if !ok {
		respondError(w, http.StatusNotFound, "VIEW_NOT_FOUND", "unknown view id", nil)
		return
	}

	eventIDs := state.Selection.IDs()
	if len(eventIDs) == 0 {
		events, err := h.source.Snapshot(r.Context())
		if err != nil {
			respondError(w, http.StatusInternalServerError, "STORE_ERROR", "event source unavailable", err)
			return
		}
		eventIDs = query.VisibleIDs(events, state.Criteria)
	}

	job, err := h.builder.Build(req.Options, eventIDs)
	if err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.submitter.Submit(job); err != nil {
		respondError(w, http.StatusServiceUnavailable, "SUBMIT_FAILED", "export pipeline unavailable", err)
		return
	}

	logger := logging.Ctx(r.Context())
	logger.Info().
		Str("job", job.ID).
		Str("format", string(job.Format)).
		Int("events", len(job.EventIDs)).
		Msg("export submitted")
	respondData(w, http.StatusAccepted, job, started)
}

// ExportJournalList returns the delivery journal, newest first.
func (h *Handler) ExportJournalList(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if h.journal == nil {
		respondError(w, http.StatusServiceUnavailable, "JOURNAL_DISABLED", "delivery journal is not configured", nil)
		return
	}

	entries, err := h.journal.List()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "JOURNAL_ERROR", "journal unavailable", err)
		return
	}
	respondData(w, http.StatusOK, entries, started)
}

// ExportJournalGet returns the delivery record of one job.
func (h *Handler) ExportJournalGet(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if h.journal == nil {
		respondError(w, http.StatusServiceUnavailable, "JOURNAL_DISABLED", "delivery journal is not configured", nil)
		return
	}

	entry, err := h.journal.Get(chi.URLParam(r, "jobID"))
	if err != nil {
		if errors.Is(err, delivery.ErrEntryNotFound) {
			respondError(w, http.StatusNotFound, "JOB_NOT_FOUND", "no journal entry for job id", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "JOURNAL_ERROR", "journal unavailable", err)
		return
	}
	respondData(w, http.StatusOK, entry, started)
}

// ScheduleCreate registers a recurring export. The options must validate
// like a one-shot export and carry a schedule.
func (h *Handler) ScheduleCreate(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "SCHEDULER_DISABLED", "recurring exports are not configured", nil)
		return
	}

	var options models.ExportOptions
	if err := decodeBody(r, &options); err != nil {
		respondError(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid export options", err)
		return
	}
	if options.Schedule == nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "recurring exports need a schedule", nil)
		return
	}

	// Run the options through the builder so a schedule that can never
	// produce a valid job is rejected up front.
	if _, err := h.builder.Build(options, nil); err != nil {
		respondValidationError(w, err)
		return
	}

	job, err := h.scheduler.Register(options)
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	respondData(w, http.StatusCreated, job, started)
}

// ScheduleList returns registered schedules ordered by next run.
func (h *Handler) ScheduleList(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "SCHEDULER_DISABLED", "recurring exports are not configured", nil)
		return
	}
	respondData(w, http.StatusOK, h.scheduler.List(), started)
}

// ScheduleDelete removes a recurring export.
func (h *Handler) ScheduleDelete(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	if h.scheduler == nil {
		respondError(w, http.StatusServiceUnavailable, "SCHEDULER_DISABLED", "recurring exports are not configured", nil)
		return
	}

	id := chi.URLParam(r, "id")
	if !h.scheduler.Remove(id) {
		respondError(w, http.StatusNotFound, "SCHEDULE_NOT_FOUND", "unknown schedule id", nil)
		return
	}
	respondData(w, http.StatusOK, map[string]string{"deleted": id}, started)
}
