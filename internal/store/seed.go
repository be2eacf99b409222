// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package store

import (
	"fmt"
	"os"
	"time"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/auditorium/internal/logging"
	"github.com/tomtom215/auditorium/internal/metrics"
	"github.com/tomtom215/auditorium/internal/models"
)

// LoadSeedFile reads audit events from a JSON file. The file holds a JSON
// array of events in the wire schema. Every event is validated against the
// fixed vocabularies; a single bad event fails the whole load so a typo in
// a seed file surfaces at startup instead of as a silently missing row.
func LoadSeedFile(path string) ([]models.AuditEvent, error) {
	start := time.Now()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("store: read seed file: %w", err)
	}

	var events []models.AuditEvent
	if err := json.Unmarshal(data, &events); err != nil {
		return nil, fmt.Errorf("store: parse seed file %s: %w", path, err)
	}

	for i := range events {
		if err := validateEvent(&events[i]); err != nil {
			return nil, fmt.Errorf("store: seed file %s: %w", path, err)
		}
	}

	metrics.RecordStoreLoad("seed", time.Since(start), len(events))
	logging.Info().
		Str("path", path).
		Int("events", len(events)).
		Dur("elapsed", time.Since(start)).
		Msg("seed file loaded")
	return events, nil
}
