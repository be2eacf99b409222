// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires every route. The global stack handles request ids, real
// IP extraction, panic recovery and CORS; the per-group stacks add rate
// limits, security headers and metrics.
func NewRouter(handler *Handler, mw *Middleware) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(mw.CORS())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(SecurityHeaders())
		r.Get("/live", handler.HealthLive)
		r.Get("/ready", handler.HealthReady)
	})

	r.Route("/api/v1/views", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Post("/", handler.ViewCreate)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", handler.ViewGet)
			r.Delete("/", handler.ViewDelete)
			r.Put("/criteria", handler.ViewUpdateCriteria)
			r.Put("/sort", handler.ViewUpdateSort)
			r.Get("/events", handler.ViewEvents)
			r.Get("/summary", handler.ViewSummary)

			r.Route("/selection", func(r chi.Router) {
				r.Get("/", handler.SelectionGet)
				r.Post("/toggle", handler.SelectionToggle)
				r.Post("/toggle-all", handler.SelectionToggleAll)
				r.Post("/clear", handler.SelectionClear)
			})
		})
	})

	r.Route("/api/v1/events", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/facets", handler.EventFacets)
		r.Get("/{id}", handler.EventGet)
		r.Post("/archive", handler.ArchiveRequest)
	})

	r.Route("/api/v1/filters", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/", handler.FilterList)
		r.Post("/", handler.FilterSave)
		r.Delete("/{id}", handler.FilterDelete)
		r.Post("/{id}/apply", handler.FilterApply)
	})

	r.Route("/api/v1/exports", func(r chi.Router) {
		r.Use(mw.RateLimitExport())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Post("/", handler.ExportSubmit)
		r.Get("/journal", handler.ExportJournalList)
		r.Get("/journal/{jobID}", handler.ExportJournalGet)

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", handler.ScheduleList)
			r.Post("/", handler.ScheduleCreate)
			r.Delete("/{id}", handler.ScheduleDelete)
		})
	})

	r.Route("/api/v1/confirmations", func(r chi.Router) {
		r.Use(mw.RateLimit())
		r.Use(SecurityHeaders())
		r.Use(PrometheusMetrics())

		r.Get("/", handler.ConfirmationList)
		r.Post("/{token}/confirm", handler.ConfirmationConfirm)
		r.Post("/{token}/cancel", handler.ConfirmationCancel)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
