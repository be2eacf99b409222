// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package export turns caller-assembled export options into validated,
// immutable jobs and hands them to the delivery pipeline. Validation is
// ordered and fail-fast so a request with several problems always reports
// the same first one.
package export

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/auditorium/internal/models"
	"github.com/tomtom215/auditorium/internal/validation"
)

// timeOfDayLayout is the wall-clock format schedules use.
const timeOfDayLayout = "15:04"

// Builder assembles ExportJobs. The zero value is not usable; construct with
// NewBuilder.
type Builder struct {
	now func() time.Time
}

// NewBuilder returns a job builder stamped by the real clock.
func NewBuilder() *Builder {
	return &Builder{now: time.Now}
}

// Build validates options and snapshots eventIDs into a new ExportJob.
// Checks run in a fixed order: format, fields, schedule, then date scope.
// The first violation aborts with a *models.ValidationError and no job is
// produced. The returned job owns copies of every slice, so later mutation
// of options or eventIDs cannot reach it.
func (b *Builder) Build(options models.ExportOptions, eventIDs []string) (models.ExportJob, error) {
	if err := validateFormat(options.Format); err != nil {
		return models.ExportJob{}, err
	}
	if err := validateFields(options.Fields); err != nil {
		return models.ExportJob{}, err
	}
	if err := validateSchedule(options.Schedule); err != nil {
		return models.ExportJob{}, err
	}
	if err := validateScope(options); err != nil {
		return models.ExportJob{}, err
	}

	job := models.ExportJob{
		ID:              uuid.NewString(),
		GeneratedAt:     b.now().UTC(),
		Format:          options.Format,
		Fields:          append([]models.ExportField(nil), options.Fields...),
		DateScope:       options.DateScope,
		CustomStart:     options.CustomStart,
		CustomEnd:       options.CustomEnd,
		IncludeDetails:  options.IncludeDetails,
		IncludeMetadata: options.IncludeMetadata,
		EventIDs:        append([]string(nil), eventIDs...),
	}
	if options.Schedule != nil {
		s := *options.Schedule
		s.Recipients = append([]string(nil), options.Schedule.Recipients...)
		job.Schedule = &s
	}
	return job, nil
}

func validateFormat(format models.ExportFormat) error {
	switch format {
	case models.FormatCSV, models.FormatJSON, models.FormatPDF:
		return nil
	default:
		return models.NewValidationError("format", fmt.Sprintf("unsupported export format %q", format))
	}
}

func validateFields(fields []models.ExportField) error {
	if len(fields) == 0 {
		return models.NewValidationError("fields", "select at least one field to export")
	}
	seen := make(map[models.ExportField]struct{}, len(fields))
	for _, f := range fields {
		if !f.Valid() {
			return models.NewValidationError("fields", fmt.Sprintf("unknown export field %q", f))
		}
		if _, dup := seen[f]; dup {
			return models.NewValidationError("fields", fmt.Sprintf("export field %q listed twice", f))
		}
		seen[f] = struct{}{}
	}
	return nil
}

func validateScope(options models.ExportOptions) error {
	switch options.DateScope {
	case models.ScopeAll, models.ScopeToday, models.ScopeWeek, models.ScopeMonth:
		return nil
	case models.ScopeCustom:
	default:
		return models.NewValidationError("dateScope", fmt.Sprintf("unsupported date scope %q", options.DateScope))
	}

	start, ok := models.ParseBound(options.CustomStart)
	if !ok {
		return models.NewValidationError("customStart", "custom scope requires a parseable start date")
	}
	end, ok := models.ParseBound(options.CustomEnd)
	if !ok {
		return models.NewValidationError("customEnd", "custom scope requires a parseable end date")
	}
	if start.After(end) {
		return models.NewValidationError("customStart", "custom range start must not be after its end")
	}
	return nil
}

func validateSchedule(schedule *models.ScheduleOptions) error {
	if schedule == nil {
		return nil
	}

	switch schedule.Frequency {
	case models.FrequencyDaily, models.FrequencyWeekly, models.FrequencyMonthly:
	default:
		return models.NewValidationError("schedule.frequency", fmt.Sprintf("unsupported frequency %q", schedule.Frequency))
	}

	if _, err := time.Parse(timeOfDayLayout, schedule.TimeOfDay); err != nil {
		return models.NewValidationError("schedule.timeOfDay", "time of day must be HH:MM")
	}

	if len(schedule.Recipients) == 0 {
		return models.NewValidationError("schedule.recipients", "scheduled exports need at least one recipient")
	}
	v := validation.GetValidator()
	for _, r := range schedule.Recipients {
		if err := v.Var(r, "required,email"); err != nil {
			return models.NewValidationError("schedule.recipients", fmt.Sprintf("%q is not a valid email address", r))
		}
	}
	return nil
}
