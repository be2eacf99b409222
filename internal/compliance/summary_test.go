// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package compliance

import (
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/auditorium/internal/models"
)

func eventsWithOutcomes(outcomes ...models.Outcome) []models.AuditEvent {
	base := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	out := make([]models.AuditEvent, len(outcomes))
	for i, o := range outcomes {
		out[i] = models.AuditEvent{
			ID:        "evt_" + string(rune('a'+i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Actor:     models.Actor{ID: "user_001", DisplayName: "Alice"},
			Action:    "USER_LOGIN",
			Outcome:   o,
			RiskLevel: models.RiskLow,
		}
	}
	return out
}

func TestSummarizeOutcomeCountsAndRate(t *testing.T) {
	t.Parallel()

	events := eventsWithOutcomes(
		models.OutcomeSuccess,
		models.OutcomeSuccess,
		models.OutcomeFailed,
		models.OutcomePending,
		models.OutcomeSuccess,
	)
	s := Summarize(events, time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))

	if s.Total != 5 {
		t.Errorf("Total = %d, want 5", s.Total)
	}
	wantOutcomes := map[models.Outcome]int{
		models.OutcomeSuccess: 3,
		models.OutcomeFailed:  1,
		models.OutcomePending: 1,
	}
	if !reflect.DeepEqual(s.OutcomeCounts, wantOutcomes) {
		t.Errorf("OutcomeCounts = %v, want %v", s.OutcomeCounts, wantOutcomes)
	}
	if s.SuccessRate != 0.6 {
		t.Errorf("SuccessRate = %v, want 0.6", s.SuccessRate)
	}
	if got := s.SuccessRatePercent(); got != 60 {
		t.Errorf("SuccessRatePercent = %d, want 60", got)
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	t.Parallel()

	s := Summarize(nil, time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC))

	if s.Total != 0 || s.SuccessRate != 0 || s.UniqueActorCount != 0 {
		t.Errorf("empty input should zero all scalars: %+v", s)
	}
	if len(s.DailyTimeline) != 7 {
		t.Fatalf("timeline must always have 7 buckets, got %d", len(s.DailyTimeline))
	}
	for _, b := range s.DailyTimeline {
		if b.Total != 0 || b.SuccessCount != 0 || b.FailedCount != 0 || b.HighRiskCount != 0 {
			t.Errorf("empty input should zero-fill bucket %s: %+v", b.Date, b)
		}
	}
	if len(s.TopActors) != 0 || len(s.RecentAnomalies) != 0 {
		t.Errorf("empty input should produce empty rankings: %+v", s)
	}
}

func TestSummarizeTopActors(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	var events []models.AuditEvent
	add := func(n int, id, name string) {
		for i := 0; i < n; i++ {
			events = append(events, models.AuditEvent{
				ID:        id + "_" + string(rune('0'+i)),
				Timestamp: base.Add(time.Duration(len(events)) * time.Minute),
				Actor:     models.Actor{ID: id, DisplayName: name},
				Action:    "FILE_ACCESS",
				Outcome:   models.OutcomeSuccess,
				RiskLevel: models.RiskLow,
			})
		}
	}
	add(3, "user_alice", "Alice")
	add(5, "user_bob", "Bob")
	add(1, "user_carol", "Carol")

	s := Summarize(events, base)

	if len(s.TopActors) != 3 {
		t.Fatalf("TopActors length = %d, want 3", len(s.TopActors))
	}
	if s.TopActors[0].ActorID != "user_bob" || s.TopActors[0].Count != 5 {
		t.Errorf("top actor = %+v, want bob with count 5", s.TopActors[0])
	}
	if s.TopActors[1].ActorID != "user_alice" || s.TopActors[2].ActorID != "user_carol" {
		t.Errorf("ranking tail = %+v", s.TopActors[1:])
	}
}

func TestSummarizeTopActorsCapAndTieBreak(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	var events []models.AuditEvent
	// Seven actors with one event each: all tied, so the cap keeps the five
	// lowest actor ids.
	for _, id := range []string{"u_g", "u_c", "u_a", "u_f", "u_b", "u_e", "u_d"} {
		events = append(events, models.AuditEvent{
			ID:        "evt_" + id,
			Timestamp: base,
			Actor:     models.Actor{ID: id},
			Action:    "USER_LOGIN",
			Outcome:   models.OutcomeSuccess,
			RiskLevel: models.RiskLow,
		})
	}

	s := Summarize(events, base)

	got := make([]string, len(s.TopActors))
	for i, a := range s.TopActors {
		got[i] = a.ActorID
	}
	want := []string{"u_a", "u_b", "u_c", "u_d", "u_e"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("tied ranking = %v, want %v", got, want)
	}
}

func TestSummarizeTimelineWindow(t *testing.T) {
	t.Parallel()

	ref := time.Date(2024, 2, 10, 23, 30, 0, 0, time.UTC)
	events := []models.AuditEvent{
		// On ref's day.
		{ID: "in_today", Timestamp: time.Date(2024, 2, 10, 1, 0, 0, 0, time.UTC), Actor: models.Actor{ID: "u1"}, Outcome: models.OutcomeFailed, RiskLevel: models.RiskHigh},
		// Oldest day still inside the window.
		{ID: "in_edge", Timestamp: time.Date(2024, 2, 4, 12, 0, 0, 0, time.UTC), Actor: models.Actor{ID: "u1"}, Outcome: models.OutcomeSuccess, RiskLevel: models.RiskLow},
		// One day before the window opens.
		{ID: "out_old", Timestamp: time.Date(2024, 2, 3, 12, 0, 0, 0, time.UTC), Actor: models.Actor{ID: "u1"}, Outcome: models.OutcomeSuccess, RiskLevel: models.RiskLow},
	}

	s := Summarize(events, ref)

	if len(s.DailyTimeline) != 7 {
		t.Fatalf("timeline length = %d, want 7", len(s.DailyTimeline))
	}
	if first := s.DailyTimeline[0]; first.Date != "2024-02-04" || first.Total != 1 || first.SuccessCount != 1 {
		t.Errorf("oldest bucket = %+v, want 2024-02-04 with one success", first)
	}
	if last := s.DailyTimeline[6]; last.Date != "2024-02-10" || last.Total != 1 || last.FailedCount != 1 || last.HighRiskCount != 1 {
		t.Errorf("newest bucket = %+v, want 2024-02-10 with one failed high-risk event", last)
	}

	total := 0
	for _, b := range s.DailyTimeline {
		total += b.Total
	}
	if total != 2 {
		t.Errorf("bucketed total = %d, want 2 (event outside the window must be dropped)", total)
	}
}

func TestSummarizeRecentAnomalies(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	events := []models.AuditEvent{
		{ID: "ok", Timestamp: base.Add(5 * time.Minute), Actor: models.Actor{ID: "u1"}, Outcome: models.OutcomeSuccess, RiskLevel: models.RiskLow},
		{ID: "high_old", Timestamp: base, Actor: models.Actor{ID: "u1"}, Outcome: models.OutcomeSuccess, RiskLevel: models.RiskHigh},
		{ID: "failed_new", Timestamp: base.Add(10 * time.Minute), Actor: models.Actor{ID: "u2"}, Outcome: models.OutcomeFailed, RiskLevel: models.RiskLow},
	}

	s := Summarize(events, base)

	got := make([]string, len(s.RecentAnomalies))
	for i, e := range s.RecentAnomalies {
		got[i] = e.ID
	}
	want := []string{"failed_new", "high_old"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("anomalies = %v, want %v (newest first, SUCCESS/non-HIGH excluded)", got, want)
	}
}

func TestSummarizeAnomalyCapIsFive(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	var events []models.AuditEvent
	for i := 0; i < 8; i++ {
		events = append(events, models.AuditEvent{
			ID:        "anomaly_" + string(rune('0'+i)),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			Actor:     models.Actor{ID: "u1"},
			Outcome:   models.OutcomeFailed,
			RiskLevel: models.RiskHigh,
		})
	}

	s := Summarize(events, base)

	if len(s.RecentAnomalies) != 5 {
		t.Fatalf("anomaly cap = %d, want 5", len(s.RecentAnomalies))
	}
	if s.RecentAnomalies[0].ID != "anomaly_7" {
		t.Errorf("newest anomaly = %s, want anomaly_7", s.RecentAnomalies[0].ID)
	}
}

func TestSummarizeIsDeterministic(t *testing.T) {
	t.Parallel()

	events := eventsWithOutcomes(
		models.OutcomeSuccess, models.OutcomeFailed, models.OutcomePending,
	)
	ref := time.Date(2024, 2, 10, 12, 0, 0, 0, time.UTC)

	a := Summarize(events, ref)
	b := Summarize(events, ref)

	if !reflect.DeepEqual(a, b) {
		t.Error("Summarize must be deterministic for identical input")
	}
}

func TestSummarizeActionCountsAreHumanized(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 2, 10, 9, 0, 0, 0, time.UTC)
	events := []models.AuditEvent{
		{ID: "a", Timestamp: base, Actor: models.Actor{ID: "u1"}, Action: "USER_LOGIN", Outcome: models.OutcomeSuccess, RiskLevel: models.RiskLow},
		{ID: "b", Timestamp: base, Actor: models.Actor{ID: "u1"}, Action: "USER_LOGIN", Outcome: models.OutcomeSuccess, RiskLevel: models.RiskLow},
		{ID: "c", Timestamp: base, Actor: models.Actor{ID: "u1"}, Action: "DATA_EXPORT", Outcome: models.OutcomeSuccess, RiskLevel: models.RiskLow},
	}

	s := Summarize(events, base)

	want := map[string]int{"USER LOGIN": 2, "DATA EXPORT": 1}
	if !reflect.DeepEqual(s.ActionCounts, want) {
		t.Errorf("ActionCounts = %v, want %v", s.ActionCounts, want)
	}
}
