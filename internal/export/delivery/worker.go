// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package delivery

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"

	"github.com/tomtom215/auditorium/internal/logging"
	"github.com/tomtom215/auditorium/internal/metrics"
	"github.com/tomtom215/auditorium/internal/models"
	"github.com/tomtom215/auditorium/internal/store"
)

// jobsTopic mirrors the topic the submitter publishes on. Kept as a local
// constant to avoid an import cycle with the export package.
const jobsTopic = "export.jobs"

// Worker consumes export jobs from the bus, renders them, writes the
// artifact, journals the outcome and mails scheduled exports. Failures are
// journaled and acked; a job is never redelivered into a crash loop.
type Worker struct {
	subscriber message.Subscriber
	source     store.EventSource
	journal    *Journal
	email      *EmailSender // nil when no relay is configured
	outputDir  string
	now        func() time.Time
}

// NewWorker wires a delivery worker. email may be nil; outputDir may be
// empty to skip writing artifacts to disk.
func NewWorker(subscriber message.Subscriber, source store.EventSource, journal *Journal, email *EmailSender, outputDir string) *Worker {
	return &Worker{
		subscriber: subscriber,
		source:     source,
		journal:    journal,
		email:      email,
		outputDir:  outputDir,
		now:        time.Now,
	}
}

// Serve implements suture.Service: it consumes jobs until ctx is done.
func (w *Worker) Serve(ctx context.Context) error {
	messages, err := w.subscriber.Subscribe(ctx, jobsTopic)
	if err != nil {
		return fmt.Errorf("delivery: subscribe %s: %w", jobsTopic, err)
	}

	logging.Info().Str("topic", jobsTopic).Msg("delivery worker started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-messages:
			if !ok {
				return fmt.Errorf("delivery: subscription closed")
			}
			w.handle(ctx, msg)
			msg.Ack()
		}
	}
}

// handle processes one job message end to end.
func (w *Worker) handle(ctx context.Context, msg *message.Message) {
	var job models.ExportJob
	if err := json.Unmarshal(msg.Payload, &job); err != nil {
		metrics.RecordExportFailure("unknown", "decode")
		logging.Err(err).Str("message", msg.UUID).Msg("undecodable export job")
		return
	}

	entry := JournalEntry{
		JobID:      job.ID,
		Format:     job.Format,
		Status:     StatusReceived,
		ReceivedAt: w.now().UTC(),
	}
	w.record(entry)

	start := w.now()
	events, err := w.resolveEvents(ctx, &job)
	if err != nil {
		w.fail(entry, "render", err)
		return
	}

	doc, err := Render(&job, events)
	if err != nil {
		w.fail(entry, "render", err)
		return
	}

	entry.Status = StatusRendered
	entry.EventCount = len(events)
	entry.SizeBytes = len(doc.Data)
	entry.Filename = doc.Filename
	w.record(entry)

	if w.outputDir != "" {
		path := filepath.Join(w.outputDir, job.ID+"-"+doc.Filename)
		if err := os.WriteFile(path, doc.Data, 0o600); err != nil {
			w.fail(entry, "journal", err)
			return
		}
	}

	if job.Schedule != nil && w.email != nil {
		subject := fmt.Sprintf("Audit export %s", job.GeneratedAt.Format("2006-01-02"))
		if err := w.email.Send(ctx, job.Schedule.Recipients, subject, doc); err != nil {
			w.fail(entry, "email", err)
			return
		}
	}

	entry.Status = StatusDelivered
	entry.CompletedAt = w.now().UTC()
	w.record(entry)
	metrics.RecordExportDelivered(string(job.Format), w.now().Sub(start), len(doc.Data))

	logging.Info().
		Str("job", job.ID).
		Str("format", string(job.Format)).
		Int("events", len(events)).
		Int("bytes", len(doc.Data)).
		Msg("export delivered")
}

// resolveEvents materializes the job's event set. A non-empty EventIDs
// snapshot wins; otherwise the date scope is applied to the full trail.
func (w *Worker) resolveEvents(ctx context.Context, job *models.ExportJob) ([]models.AuditEvent, error) {
	snapshot, err := w.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("delivery: event snapshot: %w", err)
	}

	if len(job.EventIDs) > 0 {
		return store.SelectByIDs(snapshot, job.EventIDs), nil
	}
	return w.applyScope(snapshot, job), nil
}

// applyScope restricts events to the job's date window, inclusive at both
// ends. Relative scopes anchor on the job's generation time so a delayed
// render exports the same window the user requested.
func (w *Worker) applyScope(events []models.AuditEvent, job *models.ExportJob) []models.AuditEvent {
	ref := job.GeneratedAt
	var start, end time.Time

	switch job.DateScope {
	case models.ScopeAll:
		return events
	case models.ScopeToday:
		y, m, d := ref.Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, ref.Location())
		end = ref
	case models.ScopeWeek:
		start = ref.AddDate(0, 0, -7)
		end = ref
	case models.ScopeMonth:
		start = ref.AddDate(0, -1, 0)
		end = ref
	case models.ScopeCustom:
		var ok bool
		if start, ok = models.ParseBound(job.CustomStart); !ok {
			return events
		}
		if end, ok = models.ParseBound(job.CustomEnd); !ok {
			return events
		}
	default:
		return events
	}

	out := make([]models.AuditEvent, 0, len(events))
	for _, e := range events {
		if e.Timestamp.Before(start) || e.Timestamp.After(end) {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (w *Worker) record(entry JournalEntry) {
	if err := w.journal.Record(entry); err != nil {
		logging.Err(err).Str("job", entry.JobID).Msg("journal write failed")
	}
}

func (w *Worker) fail(entry JournalEntry, stage string, err error) {
	entry.Status = StatusFailed
	entry.Error = err.Error()
	entry.CompletedAt = w.now().UTC()
	w.record(entry)
	metrics.RecordExportFailure(string(entry.Format), stage)
	logging.Err(err).Str("job", entry.JobID).Str("stage", stage).Msg("export failed")
}
