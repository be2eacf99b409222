// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package api exposes the query, analytics, export and confirmation
// operations over HTTP using the chi router. Views are server-side state
// keyed by id; every mutation is a pure ViewState transition, so the
// handlers stay thin and the engine stays testable without HTTP.
package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/auditorium/internal/confirm"
	"github.com/tomtom215/auditorium/internal/export"
	"github.com/tomtom215/auditorium/internal/export/delivery"
	"github.com/tomtom215/auditorium/internal/models"
	"github.com/tomtom215/auditorium/internal/savedfilter"
	"github.com/tomtom215/auditorium/internal/store"
)

// jobSubmitter hands a validated job to the delivery pipeline. Satisfied by
// *export.Submitter; tests swap in a recorder.
type jobSubmitter interface {
	Submit(job models.ExportJob) error
}

// HandlerConfig wires the handler's collaborators. Archiver, Journal and
// Scheduler are optional; their endpoints answer 503 when absent.
type HandlerConfig struct {
	Source    store.EventSource
	Archiver  store.EventArchiver
	Filters   *savedfilter.Registry
	Confirm   *confirm.Broker
	Builder   *export.Builder
	Submitter jobSubmitter
	Journal   *delivery.Journal
	Scheduler *delivery.Scheduler

	DefaultPageSize int
	MaxPageSize     int
}

// Handler carries the HTTP handlers and their collaborators.
type Handler struct {
	source        store.EventSource
	archiver      store.EventArchiver
	views         *viewRegistry
	filters       *savedfilter.Registry
	confirmations *confirm.Broker
	builder       *export.Builder
	submitter     jobSubmitter
	journal       *delivery.Journal
	scheduler     *delivery.Scheduler

	defaultPageSize int
	maxPageSize     int
	now             func() time.Time
}

// NewHandler builds the handler set.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 25
	}
	if cfg.MaxPageSize < cfg.DefaultPageSize {
		cfg.MaxPageSize = cfg.DefaultPageSize
	}
	return &Handler{
		source:          cfg.Source,
		archiver:        cfg.Archiver,
		views:           newViewRegistry(),
		filters:         cfg.Filters,
		confirmations:   cfg.Confirm,
		builder:         cfg.Builder,
		submitter:       cfg.Submitter,
		journal:         cfg.Journal,
		scheduler:       cfg.Scheduler,
		defaultPageSize: cfg.DefaultPageSize,
		maxPageSize:     cfg.MaxPageSize,
		now:             time.Now,
	}
}

// HealthLive reports process liveness.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, http.StatusOK, map[string]string{"status": "alive"}, time.Now())
}

// HealthReady reports whether the event source answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	started := time.Now()
	count, err := h.source.Count(r.Context())
	if err != nil {
		respondError(w, http.StatusServiceUnavailable, "NOT_READY", "event source unavailable", err)
		return
	}
	respondData(w, http.StatusOK, map[string]interface{}{
		"status": "ready",
		"events": count,
	}, started)
}
