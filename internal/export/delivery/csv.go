// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package delivery

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/tomtom215/auditorium/internal/models"
)

// renderCSV emits one header row of column titles followed by one row per
// event, with cells quoted per RFC 4180 by the csv writer.
func renderCSV(job *models.ExportJob, events []models.AuditEvent) (Document, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	fields := effectiveFields(job)
	header := make([]string, len(fields))
	for i, f := range fields {
		header[i] = columnTitle(f)
	}
	if err := w.Write(header); err != nil {
		return Document{}, fmt.Errorf("delivery: write csv header: %w", err)
	}

	row := make([]string, len(fields))
	for i := range events {
		for j, f := range fields {
			row[j] = cellValue(f, &events[i])
		}
		if err := w.Write(row); err != nil {
			return Document{}, fmt.Errorf("delivery: write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return Document{}, fmt.Errorf("delivery: flush csv: %w", err)
	}

	return Document{
		ContentType: "text/csv",
		Filename:    filename(job, "csv"),
		Data:        buf.Bytes(),
	}, nil
}
