// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package delivery consumes validated export jobs from the bus, renders
// them, journals the outcome, and emails scheduled exports to their
// recipients. Renderers switch over the closed field registry; adding a
// column means touching the registry and every switch, which the compiler
// points out.
package delivery

import (
	"fmt"
	"sort"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/auditorium/internal/models"
)

// Document is a rendered export artifact.
type Document struct {
	ContentType string
	Filename    string
	Data        []byte
}

// Render produces the document for a job over its resolved events.
func Render(job *models.ExportJob, events []models.AuditEvent) (Document, error) {
	switch job.Format {
	case models.FormatCSV:
		return renderCSV(job, events)
	case models.FormatJSON:
		return renderJSON(job, events)
	case models.FormatPDF:
		return renderPDF(job, events)
	default:
		return Document{}, fmt.Errorf("delivery: unsupported format %q", job.Format)
	}
}

// filename derives the artifact name from the job.
func filename(job *models.ExportJob, ext string) string {
	return fmt.Sprintf("audit-export-%s.%s", job.GeneratedAt.Format("2006-01-02"), ext)
}

// effectiveFields resolves the column set for a job. The includeDetails and
// includeMetadata flags own their columns: when set, the column is appended
// if the field selection left it out; when clear, it is stripped even if
// selected.
func effectiveFields(job *models.ExportJob) []models.ExportField {
	out := make([]models.ExportField, 0, len(job.Fields)+2)
	hasDetails, hasMetadata := false, false
	for _, f := range job.Fields {
		switch f {
		case models.FieldDetails:
			if !job.IncludeDetails {
				continue
			}
			hasDetails = true
		case models.FieldMetadata:
			if !job.IncludeMetadata {
				continue
			}
			hasMetadata = true
		}
		out = append(out, f)
	}
	if job.IncludeDetails && !hasDetails {
		out = append(out, models.FieldDetails)
	}
	if job.IncludeMetadata && !hasMetadata {
		out = append(out, models.FieldMetadata)
	}
	return out
}

// columnTitle maps a field to its human column header.
func columnTitle(f models.ExportField) string {
	switch f {
	case models.FieldTimestamp:
		return "Timestamp"
	case models.FieldActor:
		return "Actor"
	case models.FieldAction:
		return "Action"
	case models.FieldResource:
		return "Resource"
	case models.FieldSourceAddress:
		return "Source Address"
	case models.FieldOutcome:
		return "Outcome"
	case models.FieldRiskLevel:
		return "Risk Level"
	case models.FieldDetails:
		return "Details"
	case models.FieldMetadata:
		return "Metadata"
	default:
		return string(f)
	}
}

// cellValue renders a field of one event as display text, shared by the
// CSV and PDF renderers.
func cellValue(f models.ExportField, e *models.AuditEvent) string {
	switch f {
	case models.FieldTimestamp:
		return e.Timestamp.UTC().Format(time.RFC3339)
	case models.FieldActor:
		if e.Actor.Email != "" {
			return fmt.Sprintf("%s <%s>", e.Actor.DisplayName, e.Actor.Email)
		}
		return e.Actor.DisplayName
	case models.FieldAction:
		return models.HumanizeAction(e.Action)
	case models.FieldResource:
		return e.Resource
	case models.FieldSourceAddress:
		return e.SourceAddress
	case models.FieldOutcome:
		return string(e.Outcome)
	case models.FieldRiskLevel:
		return string(e.RiskLevel)
	case models.FieldDetails:
		return flattenDetails(e.Details)
	case models.FieldMetadata:
		return fmt.Sprintf("correlation=%s duration_ms=%d response=%d",
			e.Metadata.CorrelationID, e.Metadata.DurationMs, e.Metadata.ResponseCode)
	default:
		return ""
	}
}

// jsonValue renders a field as a structured value for the JSON renderer.
func jsonValue(f models.ExportField, e *models.AuditEvent) interface{} {
	switch f {
	case models.FieldTimestamp:
		return e.Timestamp.UTC().Format(time.RFC3339)
	case models.FieldActor:
		return e.Actor
	case models.FieldAction:
		return e.Action
	case models.FieldResource:
		return e.Resource
	case models.FieldSourceAddress:
		return e.SourceAddress
	case models.FieldOutcome:
		return e.Outcome
	case models.FieldRiskLevel:
		return e.RiskLevel
	case models.FieldDetails:
		return e.Details
	case models.FieldMetadata:
		return e.Metadata
	default:
		return nil
	}
}

// flattenDetails renders a details map as "k=v; k=v" with sorted keys.
func flattenDetails(details map[string]string) string {
	if len(details) == 0 {
		return ""
	}
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+details[k])
	}
	return strings.Join(parts, "; ")
}

// renderJSON emits a document with job provenance and one structured
// record per event, restricted to the selected fields.
func renderJSON(job *models.ExportJob, events []models.AuditEvent) (Document, error) {
	type envelope struct {
		ExportID    string                   `json:"exportId"`
		GeneratedAt string                   `json:"generatedAt"`
		Format      models.ExportFormat      `json:"format"`
		Fields      []models.ExportField     `json:"fields"`
		EventCount  int                      `json:"eventCount"`
		Events      []map[string]interface{} `json:"events"`
	}

	fields := effectiveFields(job)
	records := make([]map[string]interface{}, 0, len(events))
	for i := range events {
		record := make(map[string]interface{}, len(fields))
		for _, f := range fields {
			record[string(f)] = jsonValue(f, &events[i])
		}
		records = append(records, record)
	}

	data, err := json.MarshalIndent(envelope{
		ExportID:    job.ID,
		GeneratedAt: job.GeneratedAt.UTC().Format(time.RFC3339),
		Format:      job.Format,
		Fields:      fields,
		EventCount:  len(events),
		Events:      records,
	}, "", "  ")
	if err != nil {
		return Document{}, fmt.Errorf("delivery: marshal export: %w", err)
	}

	return Document{
		ContentType: "application/json",
		Filename:    filename(job, "json"),
		Data:        data,
	}, nil
}
