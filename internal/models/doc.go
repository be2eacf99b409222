// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package models defines the shared data structures for the audit engine.
//
// The wire schema is fixed: field names and enum value sets on AuditEvent,
// FilterCriteria, ExportOptions and ExportJob are part of the public contract
// with the ingestion and export collaborators, and every serialization must
// preserve them exactly. AuditEvent values are immutable once created; all
// derived views (filtered sequences, summaries, export snapshots) are
// computed, never written back.
//
// The package has no dependencies on the engine packages so that the store,
// query, compliance and export layers can all share it without cycles.
package models
