// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

// Package compliance derives dashboard metrics from a filtered event
// sequence. Summarize is pure and deterministic: two calls over the same
// input produce byte-for-byte identical summaries, so no result may depend
// on map iteration order.
package compliance

import (
	"sort"
	"time"

	"github.com/tomtom215/auditorium/internal/models"
)

// timelineDays is the fixed trailing window of the activity timeline.
const timelineDays = 7

// maxTopActors caps the most-active-users ranking.
const maxTopActors = 5

// maxRecentAnomalies caps the recent security events list.
const maxRecentAnomalies = 5

// Summarize computes the ComplianceSummary for events. The ref instant
// anchors the trailing 7-day timeline: buckets are calendar days in ref's
// zone ending on ref's day. Summarize is defined for the empty sequence
// (all counts zero, rate 0, seven zero-filled buckets).
func Summarize(events []models.AuditEvent, ref time.Time) *models.ComplianceSummary {
	s := &models.ComplianceSummary{
		Total:         len(events),
		OutcomeCounts: make(map[models.Outcome]int),
		RiskCounts:    make(map[models.RiskLevel]int),
		ActionCounts:  make(map[string]int),
	}

	actorIDs := make(map[string]struct{})
	for i := range events {
		e := &events[i]
		s.OutcomeCounts[e.Outcome]++
		s.RiskCounts[e.RiskLevel]++
		s.ActionCounts[models.HumanizeAction(e.Action)]++
		actorIDs[e.Actor.ID] = struct{}{}
	}
	s.UniqueActorCount = len(actorIDs)

	if s.Total > 0 {
		s.SuccessRate = float64(s.OutcomeCounts[models.OutcomeSuccess]) / float64(s.Total)
	}

	s.DailyTimeline = dailyTimeline(events, ref)
	s.TopActors = topActors(events)
	s.RecentAnomalies = recentAnomalies(events)
	return s
}

// dailyTimeline buckets events into the trailing window, one bucket per
// calendar day in ref's zone, oldest first. Days without events produce a
// zero-filled bucket; the result always has exactly timelineDays entries.
func dailyTimeline(events []models.AuditEvent, ref time.Time) []models.TimelineBucket {
	loc := ref.Location()
	buckets := make([]models.TimelineBucket, timelineDays)
	index := make(map[string]*models.TimelineBucket, timelineDays)

	for i := 0; i < timelineDays; i++ {
		day := ref.In(loc).AddDate(0, 0, i-(timelineDays-1))
		date := day.Format("2006-01-02")
		buckets[i] = models.TimelineBucket{Date: date}
		index[date] = &buckets[i]
	}

	for i := range events {
		e := &events[i]
		bucket, ok := index[e.Timestamp.In(loc).Format("2006-01-02")]
		if !ok {
			continue
		}
		bucket.Total++
		switch e.Outcome {
		case models.OutcomeSuccess:
			bucket.SuccessCount++
		case models.OutcomeFailed:
			bucket.FailedCount++
		}
		if e.RiskLevel == models.RiskHigh {
			bucket.HighRiskCount++
		}
	}

	return buckets
}

// topActors ranks actors by event count descending, ties broken by
// ascending actor id so the ranking is deterministic, and returns at most
// maxTopActors entries.
func topActors(events []models.AuditEvent) []models.ActorActivity {
	byID := make(map[string]*models.ActorActivity)
	order := make([]string, 0)

	for i := range events {
		e := &events[i]
		a, ok := byID[e.Actor.ID]
		if !ok {
			a = &models.ActorActivity{
				ActorID: e.Actor.ID,
				Name:    e.Actor.DisplayName,
				Role:    e.Actor.Role,
			}
			byID[e.Actor.ID] = a
			order = append(order, e.Actor.ID)
		}
		a.Count++
		if e.RiskLevel == models.RiskHigh {
			a.HighRiskCount++
		}
	}

	ranked := make([]models.ActorActivity, 0, len(order))
	for _, id := range order {
		ranked = append(ranked, *byID[id])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		return ranked[i].ActorID < ranked[j].ActorID
	})

	if len(ranked) > maxTopActors {
		ranked = ranked[:maxTopActors]
	}
	return ranked
}

// recentAnomalies returns the HIGH-risk or FAILED events newest first,
// capped at maxRecentAnomalies. The sort is stable so equal timestamps keep
// input order.
func recentAnomalies(events []models.AuditEvent) []models.AuditEvent {
	anomalies := make([]models.AuditEvent, 0)
	for i := range events {
		if events[i].IsAnomaly() {
			anomalies = append(anomalies, events[i])
		}
	}

	sort.SliceStable(anomalies, func(i, j int) bool {
		return anomalies[i].Timestamp.After(anomalies[j].Timestamp)
	})

	if len(anomalies) > maxRecentAnomalies {
		anomalies = anomalies[:maxRecentAnomalies]
	}
	return anomalies
}
