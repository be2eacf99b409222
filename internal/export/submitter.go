// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package export

import (
	"fmt"
	"sync"

	"github.com/ThreeDotsLabs/watermill/message"
	json "github.com/goccy/go-json"

	"github.com/tomtom215/auditorium/internal/metrics"
	"github.com/tomtom215/auditorium/internal/models"
)

// TopicJobs is the pub/sub topic validated jobs are published on.
const TopicJobs = "export.jobs"

// Submitter hands validated jobs to the delivery pipeline over the message
// bus. Submit is fire-and-forget: it returns once the job is accepted by
// the bus, not when delivery completes.
type Submitter struct {
	publisher message.Publisher

	mu     sync.RWMutex
	closed bool
}

// NewSubmitter wraps a bus publisher.
func NewSubmitter(publisher message.Publisher) *Submitter {
	return &Submitter{publisher: publisher}
}

// Submit serializes the job and publishes it. The message UUID is the job
// id, so the delivery side can deduplicate on redelivery.
func (s *Submitter) Submit(job models.ExportJob) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return fmt.Errorf("export: submitter is closed")
	}
	s.mu.RUnlock()

	payload, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("export: serialize job %s: %w", job.ID, err)
	}

	msg := message.NewMessage(job.ID, payload)
	msg.Metadata.Set("format", string(job.Format))
	if job.Schedule != nil {
		msg.Metadata.Set("frequency", string(job.Schedule.Frequency))
	}

	if err := s.publisher.Publish(TopicJobs, msg); err != nil {
		return fmt.Errorf("export: publish job %s: %w", job.ID, err)
	}

	metrics.RecordExportSubmitted(string(job.Format))
	return nil
}

// Close stops the submitter. The underlying publisher is owned by the
// caller and is not closed here.
func (s *Submitter) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
