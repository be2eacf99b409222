// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package main is the entry point for the Auditorium server.
//
// Auditorium is a self-hosted audit trail engine: it filters, sorts and
// paginates audit events, computes compliance summaries, renders validated
// exports (CSV, JSON, PDF) and guards destructive operations behind
// two-phase confirmations.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered settings from defaults, config.yaml and
//     environment variables (Koanf v2)
//  2. Event store: in-memory store fed by a seed file, optionally backed
//     by DuckDB for durable trails
//  3. Export pipeline: Watermill bus, delivery worker, badger-backed
//     delivery journal and optional SMTP sender
//  4. Scheduler: recurring exports at configured wall-clock times
//  5. HTTP Server: REST API under /api/v1 plus /metrics
//
// Everything long-running is owned by a suture supervisor tree; a failing
// worker restarts without taking down the API.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables (HTTP_PORT, SEED_PATH, SMTP_HOST, ...)
//   - Config file (config.yaml, or CONFIG_PATH)
//   - Built-in defaults
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the listener
// stops accepting connections, in-flight requests drain within the
// shutdown timeout, and the supervisor tree winds down its services.
package main

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/tomtom215/auditorium/internal/api"
	"github.com/tomtom215/auditorium/internal/config"
	"github.com/tomtom215/auditorium/internal/confirm"
	"github.com/tomtom215/auditorium/internal/export"
	"github.com/tomtom215/auditorium/internal/export/delivery"
	"github.com/tomtom215/auditorium/internal/logging"
	"github.com/tomtom215/auditorium/internal/models"
	"github.com/tomtom215/auditorium/internal/savedfilter"
	"github.com/tomtom215/auditorium/internal/store"
	"github.com/tomtom215/auditorium/internal/supervisor"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("seed_path", cfg.Store.SeedPath).
		Bool("duckdb", cfg.Store.DuckDBEnabled).
		Bool("scheduler", cfg.Scheduler.Enabled).
		Bool("mail", cfg.MailEnabled()).
		Msg("Starting Auditorium")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Event store: seed events into memory, or into DuckDB when enabled.
	var seed []models.AuditEvent
	if cfg.Store.SeedPath != "" {
		seed, err = store.LoadSeedFile(cfg.Store.SeedPath)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to load seed file")
		}
	}

	var (
		source   store.EventSource
		archiver store.EventArchiver
	)
	if cfg.Store.DuckDBEnabled {
		db, err := sql.Open("duckdb", cfg.Store.DuckDBPath)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open DuckDB")
		}
		defer func() {
			if err := db.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing DuckDB")
			}
		}()

		duck := store.NewDuckDBStore(db)
		if err := duck.CreateTable(ctx); err != nil {
			logging.Fatal().Err(err).Msg("Failed to create audit_events table")
		}

		// Seed only an empty trail; on restart the durable rows win.
		count, err := duck.Count(ctx)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to count audit events")
		}
		if count == 0 && len(seed) > 0 {
			if err := duck.Insert(ctx, seed); err != nil {
				logging.Fatal().Err(err).Msg("Failed to seed DuckDB")
			}
			logging.Info().Int("events", len(seed)).Msg("DuckDB seeded")
		}
		source, archiver = duck, duck
	} else {
		mem := store.NewMemoryStore(seed)
		source, archiver = mem, mem
	}

	// Export pipeline: bus, journal, optional mail, delivery worker.
	bus := gochannel.NewGoChannel(gochannel.Config{}, logging.NewWatermillAdapter())
	defer func() {
		if err := bus.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing message bus")
		}
	}()

	journal, err := delivery.OpenJournal(cfg.Export.JournalDir)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open delivery journal")
	}
	defer func() {
		if err := journal.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing delivery journal")
		}
	}()

	var email *delivery.EmailSender
	if cfg.MailEnabled() {
		email = delivery.NewEmailSender(cfg.SMTP)
		logging.Info().Str("host", cfg.SMTP.Host).Msg("SMTP delivery enabled")
	} else {
		logging.Info().Msg("SMTP delivery disabled (no SMTP_HOST)")
	}

	if cfg.Export.OutputDir != "" {
		if err := os.MkdirAll(cfg.Export.OutputDir, 0o750); err != nil {
			logging.Fatal().Err(err).Str("dir", cfg.Export.OutputDir).Msg("Failed to create export output dir")
		}
	}

	worker := delivery.NewWorker(bus, source, journal, email, cfg.Export.OutputDir)
	builder := export.NewBuilder()
	submitter := export.NewSubmitter(bus)

	// Scheduler: recurring exports feed the same pipeline as one-shot jobs.
	var scheduler *delivery.Scheduler
	if cfg.Scheduler.Enabled {
		loc, err := time.LoadLocation(cfg.Scheduler.Timezone)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to load scheduler timezone")
		}
		runner := delivery.JobRunnerFunc(func(_ context.Context, options models.ExportOptions) error {
			job, err := builder.Build(options, nil)
			if err != nil {
				return err
			}
			return submitter.Submit(job)
		})
		scheduler = delivery.NewScheduler(runner, loc, delivery.SchedulerConfig{
			CheckInterval:    cfg.Scheduler.CheckInterval,
			ExecutionTimeout: cfg.Scheduler.ExecutionTimeout,
		})
	} else {
		logging.Info().Msg("Scheduler disabled (SCHEDULER_ENABLED=false)")
	}

	handler := api.NewHandler(api.HandlerConfig{
		Source:    source,
		Archiver:  archiver,
		Filters:   savedfilter.NewRegistry(),
		Confirm:   confirm.NewBroker(confirm.DefaultTTL),
		Builder:   builder,
		Submitter: submitter,
		Journal:   journal,
		Scheduler: scheduler,

		DefaultPageSize: cfg.API.DefaultPageSize,
		MaxPageSize:     cfg.API.MaxPageSize,
	})

	mw := api.NewMiddleware(api.MiddlewareConfig{
		CORSAllowedOrigins: cfg.Server.CORSOrigins,
		RateLimitRequests:  cfg.Server.RateLimitReqs,
		RateLimitWindow:    cfg.Server.RateLimitWindow,
	})

	server := api.NewServer(api.ServerConfig{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ReadTimeout:     cfg.Server.Timeout,
		WriteTimeout:    cfg.Server.Timeout,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, api.NewRouter(handler, mw))

	// Supervisor tree: export pipeline and API run as supervised services.
	tree := supervisor.NewTree(slog.New(logging.NewSlogHandler()), supervisor.DefaultTreeConfig())
	tree.AddExportService(worker)
	if scheduler != nil {
		tree.AddExportService(scheduler)
	}
	tree.AddAPIService(server)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Msg("Starting supervisor tree")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("Context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Application stopped gracefully")
}
