// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package delivery

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/auditorium/internal/models"
)

func testJob(format models.ExportFormat, fields ...models.ExportField) *models.ExportJob {
	if len(fields) == 0 {
		fields = []models.ExportField{models.FieldTimestamp, models.FieldActor, models.FieldAction, models.FieldOutcome}
	}
	return &models.ExportJob{
		ID:          "job-1",
		GeneratedAt: time.Date(2024, 3, 10, 14, 0, 0, 0, time.UTC),
		Format:      format,
		Fields:      fields,
		DateScope:   models.ScopeAll,
	}
}

func renderEvents() []models.AuditEvent {
	return []models.AuditEvent{
		{
			ID:            "audit_001",
			Timestamp:     time.Date(2024, 3, 10, 10, 30, 0, 0, time.UTC),
			Actor:         models.Actor{ID: "user_001", DisplayName: "John Smith", Email: "john.smith@company.com"},
			Action:        "USER_LOGIN",
			Resource:      "Authentication System",
			SourceAddress: "192.168.1.100",
			Outcome:       models.OutcomeSuccess,
			RiskLevel:     models.RiskLow,
			Details:       map[string]string{"mfa": "true", "browser": "firefox"},
			Metadata:      models.Metadata{CorrelationID: "corr-1", DurationMs: 120, ResponseCode: 200},
		},
		{
			ID:            "audit_002",
			Timestamp:     time.Date(2024, 3, 10, 11, 0, 0, 0, time.UTC),
			Actor:         models.Actor{ID: "user_002", DisplayName: `Sarah "SJ" Johnson`},
			Action:        "PERMISSION_CHANGE",
			Resource:      "User Management",
			SourceAddress: "192.168.1.105",
			Outcome:       models.OutcomeFailed,
			RiskLevel:     models.RiskHigh,
		},
	}
}

func TestRenderCSV(t *testing.T) {
	t.Parallel()

	doc, err := Render(testJob(models.FormatCSV), renderEvents())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.ContentType != "text/csv" {
		t.Errorf("ContentType = %q", doc.ContentType)
	}
	if doc.Filename != "audit-export-2024-03-10.csv" {
		t.Errorf("Filename = %q", doc.Filename)
	}

	rows, err := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("row count = %d, want header + 2 events", len(rows))
	}
	if rows[0][0] != "Timestamp" || rows[0][1] != "Actor" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "John Smith <john.smith@company.com>" {
		t.Errorf("actor cell = %q", rows[1][1])
	}
	if rows[1][2] != "USER LOGIN" {
		t.Errorf("action cell = %q, want humanized form", rows[1][2])
	}
	// The embedded quotes survive the round trip.
	if rows[2][1] != `Sarah "SJ" Johnson` {
		t.Errorf("quoted actor cell = %q", rows[2][1])
	}
}

func TestRenderCSVOnlySelectedFields(t *testing.T) {
	t.Parallel()

	job := testJob(models.FormatCSV, models.FieldOutcome)
	doc, err := Render(job, renderEvents())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	rows, _ := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	if len(rows[0]) != 1 || rows[0][0] != "Outcome" {
		t.Errorf("header = %v, want only the Outcome column", rows[0])
	}
	if rows[1][0] != "SUCCESS" || rows[2][0] != "FAILED" {
		t.Errorf("outcome cells = %v %v", rows[1], rows[2])
	}
}

func TestRenderAppendsFlaggedColumns(t *testing.T) {
	t.Parallel()

	// includeDetails and includeMetadata add their columns even when the
	// field selection left them out.
	job := testJob(models.FormatCSV, models.FieldOutcome)
	job.IncludeDetails = true
	job.IncludeMetadata = true

	doc, err := Render(job, renderEvents())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	rows, _ := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	want := []string{"Outcome", "Details", "Metadata"}
	if len(rows[0]) != 3 || rows[0][0] != want[0] || rows[0][1] != want[1] || rows[0][2] != want[2] {
		t.Fatalf("header = %v, want %v", rows[0], want)
	}
	if rows[1][1] != "browser=firefox; mfa=true" {
		t.Errorf("details cell = %q", rows[1][1])
	}
	if rows[1][2] != "correlation=corr-1 duration_ms=120 response=200" {
		t.Errorf("metadata cell = %q", rows[1][2])
	}
}

func TestRenderStripsUnflaggedColumns(t *testing.T) {
	t.Parallel()

	// A selection naming details or metadata without the matching flag does
	// not leak those columns; the flags own them.
	job := testJob(models.FormatCSV, models.FieldOutcome, models.FieldDetails, models.FieldMetadata)

	doc, err := Render(job, renderEvents())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	rows, _ := csv.NewReader(bytes.NewReader(doc.Data)).ReadAll()
	if len(rows[0]) != 1 || rows[0][0] != "Outcome" {
		t.Errorf("header = %v, want only the Outcome column", rows[0])
	}

	job = testJob(models.FormatJSON, models.FieldOutcome, models.FieldDetails)
	doc, err = Render(job, renderEvents())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	var envelope struct {
		Fields []models.ExportField     `json:"fields"`
		Events []map[string]interface{} `json:"events"`
	}
	if err := json.Unmarshal(doc.Data, &envelope); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(envelope.Fields) != 1 || envelope.Fields[0] != models.FieldOutcome {
		t.Errorf("envelope fields = %v, want only outcome", envelope.Fields)
	}
	if _, ok := envelope.Events[0]["details"]; ok {
		t.Error("details present in record without includeDetails")
	}
}

func TestRenderJSON(t *testing.T) {
	t.Parallel()

	job := testJob(models.FormatJSON, models.FieldActor, models.FieldRiskLevel)
	doc, err := Render(job, renderEvents())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.ContentType != "application/json" {
		t.Errorf("ContentType = %q", doc.ContentType)
	}

	var envelope struct {
		ExportID   string                   `json:"exportId"`
		EventCount int                      `json:"eventCount"`
		Events     []map[string]interface{} `json:"events"`
	}
	if err := json.Unmarshal(doc.Data, &envelope); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if envelope.ExportID != "job-1" || envelope.EventCount != 2 {
		t.Errorf("envelope = %+v", envelope)
	}
	if len(envelope.Events) != 2 {
		t.Fatalf("events = %d", len(envelope.Events))
	}

	record := envelope.Events[0]
	if _, ok := record["actor"]; !ok {
		t.Error("selected field actor missing from record")
	}
	if _, ok := record["action"]; ok {
		t.Error("unselected field action present in record")
	}
	actor, ok := record["actor"].(map[string]interface{})
	if !ok || actor["displayName"] != "John Smith" {
		t.Errorf("actor record = %v", record["actor"])
	}
}

func TestRenderPDF(t *testing.T) {
	t.Parallel()

	doc, err := Render(testJob(models.FormatPDF), renderEvents())
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if doc.ContentType != "application/pdf" {
		t.Errorf("ContentType = %q", doc.ContentType)
	}

	data := string(doc.Data)
	if !strings.HasPrefix(data, "%PDF-1.4") {
		t.Error("output missing PDF header")
	}
	if !strings.HasSuffix(data, "%%EOF\n") {
		t.Error("output missing EOF marker")
	}
	if !strings.Contains(data, "Audit Event Export") {
		t.Error("title line missing")
	}
	if !strings.Contains(data, "/Count 1") {
		t.Error("two events should fit on one page")
	}
}

func TestRenderPDFPaginates(t *testing.T) {
	t.Parallel()

	events := make([]models.AuditEvent, 0, pdfRowsPage+10)
	base := renderEvents()[0]
	for i := 0; i < pdfRowsPage+10; i++ {
		e := base
		e.ID = base.ID + "-" + strings.Repeat("x", i%3)
		events = append(events, e)
	}

	doc, err := Render(testJob(models.FormatPDF), events)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(doc.Data), "/Count 2") {
		t.Error("overflow rows should produce a second page")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	t.Parallel()

	job := testJob(models.FormatCSV)
	job.Format = "xlsx"
	if _, err := Render(job, nil); err == nil {
		t.Error("unknown format must error")
	}
}

func TestCellValueDetailsSortedFlat(t *testing.T) {
	t.Parallel()

	e := renderEvents()[0]
	got := cellValue(models.FieldDetails, &e)
	if got != "browser=firefox; mfa=true" {
		t.Errorf("details cell = %q", got)
	}
}

func TestEscapePDF(t *testing.T) {
	t.Parallel()

	if got := escapePDF(`a(b)c\d`); got != `a\(b\)c\\d` {
		t.Errorf("escapePDF = %q", got)
	}
}
