// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/auditorium/internal/logging"
	"github.com/tomtom215/auditorium/internal/metrics"
	"github.com/tomtom215/auditorium/internal/models"
)

// DuckDBStore implements EventSource and EventArchiver over DuckDB for
// durable audit trails.
type DuckDBStore struct {
	db *sql.DB
	mu sync.RWMutex
}

// NewDuckDBStore wraps an open DuckDB handle. Call CreateTable before the
// first query.
func NewDuckDBStore(db *sql.DB) *DuckDBStore {
	return &DuckDBStore{db: db}
}

// CreateTable creates the audit_events table and its indexes if absent.
func (s *DuckDBStore) CreateTable(ctx context.Context) error {
	schema := `
		CREATE TABLE IF NOT EXISTS audit_events (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMPTZ NOT NULL,

			actor_id TEXT NOT NULL,
			actor_name TEXT,
			actor_email TEXT,
			actor_role TEXT,

			action TEXT NOT NULL,
			resource TEXT NOT NULL,
			resource_id TEXT,
			source_address TEXT NOT NULL,
			client_info TEXT,

			outcome TEXT NOT NULL,
			risk_level TEXT NOT NULL,
			details JSON,

			correlation_id TEXT,
			duration_ms BIGINT,
			response_code INTEGER
		);

		CREATE INDEX IF NOT EXISTS idx_audit_timestamp ON audit_events(timestamp DESC);
		CREATE INDEX IF NOT EXISTS idx_audit_actor_id ON audit_events(actor_id);
		CREATE INDEX IF NOT EXISTS idx_audit_action ON audit_events(action);
		CREATE INDEX IF NOT EXISTS idx_audit_outcome ON audit_events(outcome);
		CREATE INDEX IF NOT EXISTS idx_audit_risk_level ON audit_events(risk_level);
	`

	for _, stmt := range strings.Split(schema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: execute schema statement: %w", err)
		}
	}

	logging.Info().Msg("audit events table created/verified")
	return nil
}

// Insert persists events. Each event is validated against the fixed
// vocabularies first; the batch fails whole on the first bad event.
func (s *DuckDBStore) Insert(ctx context.Context, events []models.AuditEvent) error {
	for i := range events {
		if err := validateEvent(&events[i]); err != nil {
			return fmt.Errorf("store: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO audit_events (
			id, timestamp,
			actor_id, actor_name, actor_email, actor_role,
			action, resource, resource_id, source_address, client_info,
			outcome, risk_level, details,
			correlation_id, duration_ms, response_code
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i := range events {
		e := &events[i]
		if _, err := s.db.ExecContext(ctx, query,
			e.ID,
			e.Timestamp,
			e.Actor.ID,
			e.Actor.DisplayName,
			e.Actor.Email,
			e.Actor.Role,
			e.Action,
			e.Resource,
			e.ResourceID,
			e.SourceAddress,
			e.ClientInfo,
			string(e.Outcome),
			string(e.RiskLevel),
			marshalDetails(e.Details),
			e.Metadata.CorrelationID,
			e.Metadata.DurationMs,
			e.Metadata.ResponseCode,
		); err != nil {
			metrics.RecordStoreError("duckdb", "insert")
			return fmt.Errorf("store: insert event %s: %w", e.ID, err)
		}
	}
	return nil
}

// Snapshot implements EventSource. Events come back newest first.
func (s *DuckDBStore) Snapshot(ctx context.Context) ([]models.AuditEvent, error) {
	start := time.Now()

	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, selectColumns+" FROM audit_events ORDER BY timestamp DESC")
	if err != nil {
		metrics.RecordStoreError("duckdb", "snapshot")
		return nil, fmt.Errorf("store: query events: %w", err)
	}
	defer rows.Close()

	var events []models.AuditEvent
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			logging.Warn().Err(err).Msg("failed to scan audit event row")
			continue
		}
		events = append(events, event)
	}
	if err := rows.Err(); err != nil {
		metrics.RecordStoreError("duckdb", "snapshot")
		return nil, fmt.Errorf("store: iterate events: %w", err)
	}

	metrics.RecordStoreLoad("duckdb", time.Since(start), len(events))
	return events, nil
}

// Get implements EventSource.
func (s *DuckDBStore) Get(ctx context.Context, id string) (models.AuditEvent, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx, selectColumns+" FROM audit_events WHERE id = ?", id)
	event, err := scanEvent(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.AuditEvent{}, false, nil
		}
		metrics.RecordStoreError("duckdb", "get")
		return models.AuditEvent{}, false, fmt.Errorf("store: get event %s: %w", id, err)
	}
	return event, true, nil
}

// Count implements EventSource.
func (s *DuckDBStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_events").Scan(&count); err != nil {
		metrics.RecordStoreError("duckdb", "count")
		return 0, fmt.Errorf("store: count events: %w", err)
	}
	return count, nil
}

// Archive implements EventArchiver.
func (s *DuckDBStore) Archive(ctx context.Context, ids []string) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}
	query := fmt.Sprintf("DELETE FROM audit_events WHERE id IN (%s)", strings.Join(placeholders, ","))

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		metrics.RecordStoreError("duckdb", "archive")
		return 0, fmt.Errorf("store: archive events: %w", err)
	}
	removed, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("store: archived count: %w", err)
	}

	if removed > 0 {
		logging.Info().Int64("archived", removed).Msg("events archived")
	}
	return int(removed), nil
}

// selectColumns casts the JSON column to VARCHAR so it scans as a string.
const selectColumns = `
	SELECT
		id, timestamp,
		actor_id, actor_name, actor_email, actor_role,
		action, resource, resource_id, source_address, client_info,
		outcome, risk_level,
		CAST(details AS VARCHAR) AS details,
		correlation_id, duration_ms, response_code
`

// marshalDetails serializes the details map for the JSON column.
func marshalDetails(details map[string]string) *string {
	if len(details) == 0 {
		return nil
	}
	data, err := json.Marshal(details)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}

// rowScanner covers *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanEvent reads one audit_events row into a model.
func scanEvent(row rowScanner) (models.AuditEvent, error) {
	var (
		e            models.AuditEvent
		outcome      string
		riskLevel    string
		details      sql.NullString
		resourceID   sql.NullString
		clientInfo   sql.NullString
		actorName    sql.NullString
		actorEmail   sql.NullString
		actorRole    sql.NullString
		correlation  sql.NullString
		durationMs   sql.NullInt64
		responseCode sql.NullInt32
	)

	err := row.Scan(
		&e.ID,
		&e.Timestamp,
		&e.Actor.ID,
		&actorName,
		&actorEmail,
		&actorRole,
		&e.Action,
		&e.Resource,
		&resourceID,
		&e.SourceAddress,
		&clientInfo,
		&outcome,
		&riskLevel,
		&details,
		&correlation,
		&durationMs,
		&responseCode,
	)
	if err != nil {
		return models.AuditEvent{}, err
	}

	e.Actor.DisplayName = actorName.String
	e.Actor.Email = actorEmail.String
	e.Actor.Role = actorRole.String
	e.ResourceID = resourceID.String
	e.ClientInfo = clientInfo.String
	e.Outcome = models.Outcome(outcome)
	e.RiskLevel = models.RiskLevel(riskLevel)
	e.Metadata.CorrelationID = correlation.String
	e.Metadata.DurationMs = durationMs.Int64
	e.Metadata.ResponseCode = int(responseCode.Int32)

	if details.Valid && details.String != "" {
		if err := json.Unmarshal([]byte(details.String), &e.Details); err != nil {
			logging.Debug().Err(err).Str("details", details.String).Msg("failed to parse details JSON")
		}
	}
	return e, nil
}
