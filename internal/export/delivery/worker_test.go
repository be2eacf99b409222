// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package delivery

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	json "github.com/goccy/go-json"

	"github.com/tomtom215/auditorium/internal/models"
	"github.com/tomtom215/auditorium/internal/store"
)

func workerEvents() []models.AuditEvent {
	return []models.AuditEvent{
		{
			ID:        "audit_001",
			Timestamp: time.Date(2024, 3, 10, 10, 30, 0, 0, time.UTC),
			Actor:     models.Actor{ID: "user_001", DisplayName: "John Smith"},
			Action:    "USER_LOGIN",
			Outcome:   models.OutcomeSuccess,
			RiskLevel: models.RiskLow,
		},
		{
			ID:        "audit_002",
			Timestamp: time.Date(2024, 3, 5, 9, 0, 0, 0, time.UTC),
			Actor:     models.Actor{ID: "user_002", DisplayName: "Sarah Johnson"},
			Action:    "DATA_EXPORT",
			Outcome:   models.OutcomeFailed,
			RiskLevel: models.RiskHigh,
		},
		{
			ID:        "audit_003",
			Timestamp: time.Date(2024, 1, 20, 8, 0, 0, 0, time.UTC),
			Actor:     models.Actor{ID: "user_003", DisplayName: "Mike Wilson"},
			Action:    "CONFIG_UPDATE",
			Outcome:   models.OutcomePending,
			RiskLevel: models.RiskMedium,
		},
	}
}

func newTestWorker(t *testing.T, outputDir string) *Worker {
	t.Helper()
	return NewWorker(nil, store.NewMemoryStore(workerEvents()), newTestJournal(t), nil, outputDir)
}

func jobMessage(t *testing.T, job *models.ExportJob) *message.Message {
	t.Helper()
	payload, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	return message.NewMessage(job.ID, payload)
}

func TestWorkerHandleDeliversToDisk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	w := newTestWorker(t, dir)

	job := testJob(models.FormatCSV)
	job.ID = "job-disk"
	w.handle(context.Background(), jobMessage(t, job))

	entry, err := w.journal.Get("job-disk")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if entry.Status != StatusDelivered {
		t.Errorf("status = %s", entry.Status)
	}
	if entry.EventCount != 3 {
		t.Errorf("eventCount = %d", entry.EventCount)
	}

	artifact := filepath.Join(dir, "job-disk-"+entry.Filename)
	data, err := os.ReadFile(artifact)
	if err != nil {
		t.Fatalf("artifact: %v", err)
	}
	if len(data) != entry.SizeBytes {
		t.Errorf("artifact size %d, journal says %d", len(data), entry.SizeBytes)
	}
}

func TestWorkerHandleSelectedEventIDs(t *testing.T) {
	t.Parallel()

	w := newTestWorker(t, "")
	job := testJob(models.FormatJSON)
	job.ID = "job-selected"
	job.EventIDs = []string{"audit_003", "audit_001"}
	w.handle(context.Background(), jobMessage(t, job))

	entry, err := w.journal.Get("job-selected")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if entry.EventCount != 2 {
		t.Errorf("eventCount = %d, want only the snapshot ids", entry.EventCount)
	}
}

func TestWorkerHandleUndecodablePayload(t *testing.T) {
	t.Parallel()

	w := newTestWorker(t, "")
	w.handle(context.Background(), message.NewMessage("bad", []byte("{not json")))

	entries, err := w.journal.List()
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("undecodable payload must not reach the journal, got %d entries", len(entries))
	}
}

func TestWorkerHandleRenderFailureJournaled(t *testing.T) {
	t.Parallel()

	w := newTestWorker(t, "")
	job := testJob(models.FormatCSV)
	job.ID = "job-bad-format"
	job.Format = "xlsx"
	w.handle(context.Background(), jobMessage(t, job))

	entry, err := w.journal.Get("job-bad-format")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if entry.Status != StatusFailed || entry.Error == "" {
		t.Errorf("entry = %+v", entry)
	}
}

func TestWorkerHandleEmailFailure(t *testing.T) {
	t.Parallel()

	email := NewEmailSender(testSMTPConfig())
	email.send = func(context.Context, string, []byte) error {
		return errors.New("relay down")
	}
	w := NewWorker(nil, store.NewMemoryStore(workerEvents()), newTestJournal(t), email, "")

	job := testJob(models.FormatCSV)
	job.ID = "job-mailed"
	job.Schedule = &models.ScheduleOptions{
		Frequency:  models.FrequencyDaily,
		TimeOfDay:  "08:00",
		Recipients: []string{"ops@example.com"},
	}
	w.handle(context.Background(), jobMessage(t, job))

	entry, err := w.journal.Get("job-mailed")
	if err != nil {
		t.Fatalf("journal: %v", err)
	}
	if entry.Status != StatusFailed {
		t.Errorf("status = %s, want failed when the relay is down", entry.Status)
	}
}

func TestWorkerServeConsumesFromBus(t *testing.T) {
	t.Parallel()

	bus := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})
	journal := newTestJournal(t)
	w := NewWorker(bus, store.NewMemoryStore(workerEvents()), journal, nil, "")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		_ = w.Serve(ctx)
		close(done)
	}()

	// Give the subscriber a moment to attach before publishing.
	time.Sleep(50 * time.Millisecond)

	job := testJob(models.FormatJSON)
	job.ID = "job-bus"
	payload, _ := json.Marshal(job)
	if err := bus.Publish(jobsTopic, message.NewMessage(job.ID, payload)); err != nil {
		t.Fatalf("publish: %v", err)
	}

	deadline := time.After(3 * time.Second)
	for {
		entry, err := journal.Get("job-bus")
		if err == nil && entry.Status == StatusDelivered {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("job never delivered, last: %+v err=%v", entry, err)
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Serve did not stop on cancel")
	}
}

func TestApplyScope(t *testing.T) {
	t.Parallel()

	w := newTestWorker(t, "")
	events := workerEvents()
	generated := time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		scope   models.DateScope
		start   string
		end     string
		wantIDs []string
	}{
		{name: "all", scope: models.ScopeAll, wantIDs: []string{"audit_001", "audit_002", "audit_003"}},
		{name: "today", scope: models.ScopeToday, wantIDs: []string{"audit_001"}},
		{name: "week", scope: models.ScopeWeek, wantIDs: []string{"audit_001", "audit_002"}},
		{name: "month", scope: models.ScopeMonth, wantIDs: []string{"audit_001", "audit_002"}},
		{
			name: "custom", scope: models.ScopeCustom,
			start: "2024-01-01", end: "2024-02-01",
			wantIDs: []string{"audit_003"},
		},
		{
			name: "custom unparsable falls back to all", scope: models.ScopeCustom,
			start: "whenever", end: "2024-02-01",
			wantIDs: []string{"audit_001", "audit_002", "audit_003"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			job := &models.ExportJob{
				GeneratedAt: generated,
				DateScope:   tc.scope,
				CustomStart: tc.start,
				CustomEnd:   tc.end,
			}
			got := w.applyScope(events, job)
			ids := make([]string, len(got))
			for i, e := range got {
				ids[i] = e.ID
			}
			if len(ids) != len(tc.wantIDs) {
				t.Fatalf("ids = %v, want %v", ids, tc.wantIDs)
			}
			for i := range ids {
				if ids[i] != tc.wantIDs[i] {
					t.Fatalf("ids = %v, want %v", ids, tc.wantIDs)
				}
			}
		})
	}
}
