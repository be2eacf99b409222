// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package models

import "time"

// ExportFormat names the rendering the delivery collaborator should produce.
type ExportFormat string

const (
	FormatCSV  ExportFormat = "csv"
	FormatJSON ExportFormat = "json"
	FormatPDF  ExportFormat = "pdf"
)

// DateScope restricts an export to a window relative to generation time.
type DateScope string

const (
	ScopeAll    DateScope = "all"
	ScopeToday  DateScope = "today"
	ScopeWeek   DateScope = "week"
	ScopeMonth  DateScope = "month"
	ScopeCustom DateScope = "custom"
)

// ExportField is one column a consumer may select for export. The set is
// closed: renderers switch over it exhaustively instead of reflecting over
// event structs, so an unknown name is a validation error, not a silent
// empty column.
type ExportField string

const (
	FieldTimestamp     ExportField = "timestamp"
	FieldActor         ExportField = "actor"
	FieldAction        ExportField = "action"
	FieldResource      ExportField = "resource"
	FieldSourceAddress ExportField = "sourceAddress"
	FieldOutcome       ExportField = "outcome"
	FieldRiskLevel     ExportField = "riskLevel"
	FieldDetails       ExportField = "details"
	FieldMetadata      ExportField = "metadata"
)

// AllExportFields lists the registry in column order.
func AllExportFields() []ExportField {
	return []ExportField{
		FieldTimestamp,
		FieldActor,
		FieldAction,
		FieldResource,
		FieldSourceAddress,
		FieldOutcome,
		FieldRiskLevel,
		FieldDetails,
		FieldMetadata,
	}
}

// Valid reports whether f is a registered export field.
func (f ExportField) Valid() bool {
	for _, known := range AllExportFields() {
		if f == known {
			return true
		}
	}
	return false
}

// ScheduleFrequency is how often a recurring export runs.
type ScheduleFrequency string

const (
	FrequencyDaily   ScheduleFrequency = "daily"
	FrequencyWeekly  ScheduleFrequency = "weekly"
	FrequencyMonthly ScheduleFrequency = "monthly"
)

// ScheduleOptions configures a recurring export. TimeOfDay is "HH:MM" in the
// server's zone. Recipients receive the rendered file by email.
type ScheduleOptions struct {
	Frequency  ScheduleFrequency `json:"frequency"`
	TimeOfDay  string            `json:"timeOfDay"`
	Recipients []string          `json:"recipients"`
}

// ExportOptions is the caller-assembled request for an export. Schedule is
// nil for a one-shot export.
type ExportOptions struct {
	Format          ExportFormat     `json:"format"`
	Fields          []ExportField    `json:"fields"`
	DateScope       DateScope        `json:"dateScope"`
	CustomStart     string           `json:"customStart,omitempty"`
	CustomEnd       string           `json:"customEnd,omitempty"`
	IncludeDetails  bool             `json:"includeDetails"`
	IncludeMetadata bool             `json:"includeMetadata"`
	Schedule        *ScheduleOptions `json:"schedule,omitempty"`
}

// ExportJob is the validated, immutable artifact handed to the delivery
// collaborator. EventIDs is a snapshot taken at build time; later changes to
// filters or selection cannot affect a submitted job.
type ExportJob struct {
	ID              string           `json:"id"`
	GeneratedAt     time.Time        `json:"generatedAt"`
	Format          ExportFormat     `json:"format"`
	Fields          []ExportField    `json:"fields"`
	DateScope       DateScope        `json:"dateScope"`
	CustomStart     string           `json:"customStart,omitempty"`
	CustomEnd       string           `json:"customEnd,omitempty"`
	IncludeDetails  bool             `json:"includeDetails"`
	IncludeMetadata bool             `json:"includeMetadata"`
	Schedule        *ScheduleOptions `json:"schedule,omitempty"`
	EventIDs        []string         `json:"eventIds"`
}
