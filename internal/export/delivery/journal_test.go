// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package delivery

import (
	"errors"
	"testing"
	"time"

	"github.com/tomtom215/auditorium/internal/models"
)

func newTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := OpenJournal("")
	if err != nil {
		t.Fatalf("OpenJournal: %v", err)
	}
	t.Cleanup(func() { _ = j.Close() })
	return j
}

func TestJournalRecordAndGet(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	entry := JournalEntry{
		JobID:      "job-1",
		Format:     models.FormatCSV,
		Status:     StatusReceived,
		ReceivedAt: time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC),
	}
	if err := j.Record(entry); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := j.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusReceived || got.Format != models.FormatCSV {
		t.Errorf("entry = %+v", got)
	}
	if !got.ReceivedAt.Equal(entry.ReceivedAt) {
		t.Errorf("ReceivedAt = %v", got.ReceivedAt)
	}
}

func TestJournalRecordOverwrites(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	entry := JournalEntry{JobID: "job-1", Status: StatusReceived, ReceivedAt: time.Now().UTC()}
	if err := j.Record(entry); err != nil {
		t.Fatalf("Record: %v", err)
	}
	entry.Status = StatusDelivered
	entry.EventCount = 12
	if err := j.Record(entry); err != nil {
		t.Fatalf("Record update: %v", err)
	}

	got, err := j.Get("job-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Status != StatusDelivered || got.EventCount != 12 {
		t.Errorf("entry after overwrite = %+v", got)
	}
}

func TestJournalGetUnknown(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	if _, err := j.Get("never-seen"); !errors.Is(err, ErrEntryNotFound) {
		t.Errorf("err = %v, want ErrEntryNotFound", err)
	}
}

func TestJournalListNewestFirst(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	base := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"job-a", "job-b", "job-c"} {
		err := j.Record(JournalEntry{
			JobID:      id,
			Status:     StatusDelivered,
			ReceivedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("Record %s: %v", id, err)
		}
	}

	entries, err := j.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("len = %d", len(entries))
	}
	if entries[0].JobID != "job-c" || entries[2].JobID != "job-a" {
		t.Errorf("order = %s %s %s", entries[0].JobID, entries[1].JobID, entries[2].JobID)
	}
}

func TestJournalListEmpty(t *testing.T) {
	t.Parallel()

	j := newTestJournal(t)
	entries, err := j.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("len = %d, want 0", len(entries))
	}
}
