// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package delivery

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/auditorium/internal/logging"
	"github.com/tomtom215/auditorium/internal/metrics"
	"github.com/tomtom215/auditorium/internal/models"
)

// JobRunner rebuilds and submits a recurring export. The export package's
// Builder and Submitter satisfy this together; the indirection keeps the
// scheduler testable without a bus.
type JobRunner interface {
	Run(ctx context.Context, options models.ExportOptions) error
}

// JobRunnerFunc adapts a function to JobRunner.
type JobRunnerFunc func(ctx context.Context, options models.ExportOptions) error

func (f JobRunnerFunc) Run(ctx context.Context, options models.ExportOptions) error {
	return f(ctx, options)
}

// RecurringExport is one registered schedule.
type RecurringExport struct {
	ID      string               `json:"id"`
	Options models.ExportOptions `json:"options"`
	NextRun time.Time            `json:"nextRun"`
	LastRun time.Time            `json:"lastRun,omitempty"`
}

// SchedulerConfig tunes the scheduler loop.
type SchedulerConfig struct {
	// CheckInterval is how often due schedules are looked for.
	// Default: 1 minute.
	CheckInterval time.Duration

	// ExecutionTimeout bounds a single run. Default: 5 minutes.
	ExecutionTimeout time.Duration
}

// Scheduler executes recurring exports at their configured wall-clock
// times. It ticks on CheckInterval and runs everything due, so a missed
// tick delays a run by at most one interval rather than dropping it.
type Scheduler struct {
	runner JobRunner
	cfg    SchedulerConfig
	loc    *time.Location
	now    func() time.Time

	mu   sync.Mutex
	jobs map[string]*RecurringExport
}

// NewScheduler builds a scheduler running jobs in the given location.
func NewScheduler(runner JobRunner, loc *time.Location, cfg SchedulerConfig) *Scheduler {
	if cfg.CheckInterval <= 0 {
		cfg.CheckInterval = time.Minute
	}
	if cfg.ExecutionTimeout <= 0 {
		cfg.ExecutionTimeout = 5 * time.Minute
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		runner: runner,
		cfg:    cfg,
		loc:    loc,
		now:    time.Now,
		jobs:   make(map[string]*RecurringExport),
	}
}

// Register adds a recurring export. The options must carry a schedule.
func (s *Scheduler) Register(options models.ExportOptions) (RecurringExport, error) {
	if options.Schedule == nil {
		return RecurringExport{}, fmt.Errorf("delivery: recurring export needs a schedule")
	}

	next, err := nextRun(s.now().In(s.loc), options.Schedule.Frequency, options.Schedule.TimeOfDay)
	if err != nil {
		return RecurringExport{}, err
	}

	job := &RecurringExport{
		ID:      uuid.NewString(),
		Options: options,
		NextRun: next,
	}

	s.mu.Lock()
	s.jobs[job.ID] = job
	metrics.ScheduledJobsActive.Set(float64(len(s.jobs)))
	s.mu.Unlock()

	logging.Info().
		Str("schedule", job.ID).
		Str("frequency", string(options.Schedule.Frequency)).
		Time("next_run", next).
		Msg("recurring export registered")
	return *job, nil
}

// Remove deletes a recurring export.
func (s *Scheduler) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.jobs[id]; !ok {
		return false
	}
	delete(s.jobs, id)
	metrics.ScheduledJobsActive.Set(float64(len(s.jobs)))
	return true
}

// List returns the registered schedules ordered by next run.
func (s *Scheduler) List() []RecurringExport {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]RecurringExport, 0, len(s.jobs))
	for _, job := range s.jobs {
		out = append(out, *job)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].NextRun.Equal(out[j].NextRun) {
			return out[i].NextRun.Before(out[j].NextRun)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// Serve implements suture.Service: tick, run everything due, repeat.
func (s *Scheduler) Serve(ctx context.Context) error {
	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	logging.Info().Dur("interval", s.cfg.CheckInterval).Msg("export scheduler started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.runDue(ctx)
		}
	}
}

// runDue executes every schedule whose NextRun has passed.
func (s *Scheduler) runDue(ctx context.Context) {
	now := s.now().In(s.loc)

	s.mu.Lock()
	var due []*RecurringExport
	for _, job := range s.jobs {
		if !job.NextRun.After(now) {
			due = append(due, job)
		}
	}
	s.mu.Unlock()

	for _, job := range due {
		s.runOne(ctx, job, now)
	}
}

func (s *Scheduler) runOne(ctx context.Context, job *RecurringExport, now time.Time) {
	runCtx, cancel := context.WithTimeout(ctx, s.cfg.ExecutionTimeout)
	err := s.runner.Run(runCtx, job.Options)
	cancel()

	frequency := string(job.Options.Schedule.Frequency)
	metrics.RecordScheduledRun(frequency, err)
	if err != nil {
		logging.Err(err).Str("schedule", job.ID).Msg("scheduled export failed")
	}

	next, nerr := nextRun(now, job.Options.Schedule.Frequency, job.Options.Schedule.TimeOfDay)
	if nerr != nil {
		// Registration validated the schedule; treat this as corruption
		// and drop the job rather than spinning on it.
		logging.Err(nerr).Str("schedule", job.ID).Msg("dropping unschedulable export")
		s.Remove(job.ID)
		return
	}

	s.mu.Lock()
	if live, ok := s.jobs[job.ID]; ok {
		live.LastRun = now
		live.NextRun = next
	}
	s.mu.Unlock()
}

// nextRun computes the first instant strictly after now that matches the
// frequency and wall-clock time.
func nextRun(now time.Time, frequency models.ScheduleFrequency, timeOfDay string) (time.Time, error) {
	wall, err := time.Parse("15:04", timeOfDay)
	if err != nil {
		return time.Time{}, fmt.Errorf("delivery: parse time of day %q: %w", timeOfDay, err)
	}

	y, m, d := now.Date()
	candidate := time.Date(y, m, d, wall.Hour(), wall.Minute(), 0, 0, now.Location())

	for !candidate.After(now) {
		switch frequency {
		case models.FrequencyDaily:
			candidate = candidate.AddDate(0, 0, 1)
		case models.FrequencyWeekly:
			candidate = candidate.AddDate(0, 0, 7)
		case models.FrequencyMonthly:
			candidate = candidate.AddDate(0, 1, 0)
		default:
			return time.Time{}, fmt.Errorf("delivery: unknown frequency %q", frequency)
		}
	}
	return candidate, nil
}
