// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/tomtom215/auditorium/internal/models"
)

func seedEvents() []models.AuditEvent {
	base := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	return []models.AuditEvent{
		{
			ID:            "audit_001",
			Timestamp:     base.Add(10 * time.Minute),
			Actor:         models.Actor{ID: "user_001", DisplayName: "John Smith"},
			Action:        "USER_LOGIN",
			Resource:      "Authentication System",
			SourceAddress: "192.168.1.100",
			Outcome:       models.OutcomeSuccess,
			RiskLevel:     models.RiskLow,
		},
		{
			ID:            "audit_002",
			Timestamp:     base.Add(30 * time.Minute),
			Actor:         models.Actor{ID: "user_002", DisplayName: "Sarah Johnson"},
			Action:        "PERMISSION_CHANGE",
			Resource:      "User Management",
			SourceAddress: "192.168.1.105",
			Outcome:       models.OutcomeFailed,
			RiskLevel:     models.RiskHigh,
		},
		{
			ID:            "audit_003",
			Timestamp:     base.Add(20 * time.Minute),
			Actor:         models.Actor{ID: "user_001", DisplayName: "John Smith"},
			Action:        "DATA_EXPORT",
			Resource:      "Customer Database",
			SourceAddress: "192.168.1.100",
			Outcome:       models.OutcomePending,
			RiskLevel:     models.RiskMedium,
		},
	}
}

func TestMemoryStoreSnapshotNewestFirst(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(seedEvents())
	snap, err := s.Snapshot(context.Background())
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}

	want := []string{"audit_002", "audit_003", "audit_001"}
	if len(snap) != len(want) {
		t.Fatalf("snapshot length = %d, want %d", len(snap), len(want))
	}
	for i, id := range want {
		if snap[i].ID != id {
			t.Errorf("snapshot[%d] = %s, want %s", i, snap[i].ID, id)
		}
	}
}

func TestMemoryStoreSnapshotIsACopy(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(seedEvents())
	ctx := context.Background()

	snap, _ := s.Snapshot(ctx)
	snap[0].ID = "tampered"

	again, _ := s.Snapshot(ctx)
	if again[0].ID == "tampered" {
		t.Error("snapshot must not alias store state")
	}
}

func TestMemoryStoreGetAndCount(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(seedEvents())
	ctx := context.Background()

	e, ok, err := s.Get(ctx, "audit_003")
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v, %v", e, ok, err)
	}
	if e.Action != "DATA_EXPORT" {
		t.Errorf("Get returned wrong event: %+v", e)
	}

	if _, ok, _ := s.Get(ctx, "missing"); ok {
		t.Error("Get of unknown id reported found")
	}

	n, err := s.Count(ctx)
	if err != nil || n != 3 {
		t.Errorf("Count = %d, %v, want 3", n, err)
	}
}

func TestMemoryStoreArchive(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(seedEvents())
	ctx := context.Background()

	removed, err := s.Archive(ctx, []string{"audit_001", "audit_003", "missing"})
	if err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if removed != 2 {
		t.Errorf("Archive removed %d, want 2", removed)
	}

	snap, _ := s.Snapshot(ctx)
	if len(snap) != 1 || snap[0].ID != "audit_002" {
		t.Errorf("post-archive snapshot = %v", snap)
	}
	if _, ok, _ := s.Get(ctx, "audit_001"); ok {
		t.Error("archived event still retrievable")
	}
}

func TestMemoryStoreReplaceDropsDuplicateIDs(t *testing.T) {
	t.Parallel()

	events := seedEvents()
	events = append(events, events[0])
	s := NewMemoryStore(events)

	n, _ := s.Count(context.Background())
	if n != 3 {
		t.Errorf("Count = %d, want 3 after duplicate drop", n)
	}
}

func TestSelectByIDsKeepsStoredOrder(t *testing.T) {
	t.Parallel()

	s := NewMemoryStore(seedEvents())
	snap, _ := s.Snapshot(context.Background())

	got := SelectByIDs(snap, []string{"audit_001", "audit_002", "gone"})
	if len(got) != 2 || got[0].ID != "audit_002" || got[1].ID != "audit_001" {
		t.Errorf("SelectByIDs = %v", got)
	}
}

func TestLoadSeedFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.json")
	payload := `[
		{
			"id": "audit_001",
			"timestamp": "2024-01-15T10:30:00Z",
			"actor": {"id": "user_001", "displayName": "John Smith", "email": "john.smith@company.com", "role": "Administrator"},
			"action": "USER_LOGIN",
			"resource": "Authentication System",
			"sourceAddress": "192.168.1.100",
			"clientInfo": "Mozilla/5.0",
			"outcome": "SUCCESS",
			"riskLevel": "LOW",
			"details": {"mfa": "true"},
			"metadata": {"correlationId": "corr-1", "durationMs": 120, "responseCode": 200}
		}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	events, err := LoadSeedFile(path)
	if err != nil {
		t.Fatalf("LoadSeedFile: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("loaded %d events, want 1", len(events))
	}

	e := events[0]
	if e.Actor.DisplayName != "John Smith" || e.Outcome != models.OutcomeSuccess || e.RiskLevel != models.RiskLow {
		t.Errorf("decoded event = %+v", e)
	}
	if e.Details["mfa"] != "true" || e.Metadata.DurationMs != 120 {
		t.Errorf("nested fields = %+v %+v", e.Details, e.Metadata)
	}
}

func TestLoadSeedFileRejectsBadVocabulary(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "seed.json")
	payload := `[
		{
			"id": "audit_001",
			"timestamp": "2024-01-15T10:30:00Z",
			"actor": {"id": "user_001"},
			"action": "USER_LOGIN",
			"resource": "Authentication System",
			"sourceAddress": "192.168.1.100",
			"outcome": "MAYBE",
			"riskLevel": "LOW"
		}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write seed: %v", err)
	}

	if _, err := LoadSeedFile(path); err == nil {
		t.Error("unknown outcome must fail the load")
	}
}

func TestLoadSeedFileMissing(t *testing.T) {
	t.Parallel()

	if _, err := LoadSeedFile(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Error("missing file must error")
	}
}
