// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package delivery

import (
	"errors"
	"fmt"
	"sort"
	"time"

	badger "github.com/dgraph-io/badger/v4"
	json "github.com/goccy/go-json"

	"github.com/tomtom215/auditorium/internal/models"
)

// JobStatus tracks a job through the delivery pipeline.
type JobStatus string

const (
	StatusReceived  JobStatus = "received"
	StatusRendered  JobStatus = "rendered"
	StatusDelivered JobStatus = "delivered"
	StatusFailed    JobStatus = "failed"
)

// JournalEntry is the persisted delivery record for one job.
type JournalEntry struct {
	JobID       string              `json:"jobId"`
	Format      models.ExportFormat `json:"format"`
	Status      JobStatus           `json:"status"`
	EventCount  int                 `json:"eventCount"`
	SizeBytes   int                 `json:"sizeBytes"`
	Filename    string              `json:"filename,omitempty"`
	Error       string              `json:"error,omitempty"`
	ReceivedAt  time.Time           `json:"receivedAt"`
	CompletedAt time.Time           `json:"completedAt,omitempty"`
}

// ErrEntryNotFound reports a job id the journal has never seen.
var ErrEntryNotFound = errors.New("delivery: journal entry not found")

// journalPrefix namespaces journal keys inside the shared badger database.
const journalPrefix = "export:journal:"

// Journal records delivery outcomes in badger so a restart never loses
// track of what was delivered. Entries are append-or-overwrite per job id.
type Journal struct {
	db *badger.DB
}

// NewJournal wraps an open badger handle. The handle is owned by the
// caller.
func NewJournal(db *badger.DB) *Journal {
	return &Journal{db: db}
}

// OpenJournal opens a badger database at dir and wraps it. Pass an empty
// dir to run in-memory, which tests use.
func OpenJournal(dir string) (*Journal, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("delivery: open journal: %w", err)
	}
	return &Journal{db: db}, nil
}

// Close releases the underlying database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record upserts an entry.
func (j *Journal) Record(entry JournalEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("delivery: marshal journal entry: %w", err)
	}
	err = j.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(journalPrefix+entry.JobID), data)
	})
	if err != nil {
		return fmt.Errorf("delivery: write journal entry %s: %w", entry.JobID, err)
	}
	return nil
}

// Get returns the entry for a job id.
func (j *Journal) Get(jobID string) (JournalEntry, error) {
	var entry JournalEntry
	err := j.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(journalPrefix + jobID))
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrEntryNotFound
			}
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &entry)
		})
	})
	if err != nil {
		if errors.Is(err, ErrEntryNotFound) {
			return JournalEntry{}, err
		}
		return JournalEntry{}, fmt.Errorf("delivery: read journal entry %s: %w", jobID, err)
	}
	return entry, nil
}

// List returns every entry, newest received first.
func (j *Journal) List() ([]JournalEntry, error) {
	var entries []JournalEntry
	err := j.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(journalPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var entry JournalEntry
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &entry)
			})
			if err != nil {
				return err
			}
			entries = append(entries, entry)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("delivery: list journal: %w", err)
	}

	sort.SliceStable(entries, func(i, k int) bool {
		return entries[i].ReceivedAt.After(entries[k].ReceivedAt)
	})
	return entries, nil
}
