// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package models

import "math"

// TimelineBucket holds one calendar day of the trailing activity window.
type TimelineBucket struct {
	Date          string `json:"date"`
	Total         int    `json:"total"`
	SuccessCount  int    `json:"successCount"`
	FailedCount   int    `json:"failedCount"`
	HighRiskCount int    `json:"highRiskCount"`
}

// ActorActivity ranks one actor's contribution to the filtered view.
type ActorActivity struct {
	ActorID       string `json:"actorId"`
	Name          string `json:"name"`
	Role          string `json:"role"`
	Count         int    `json:"count"`
	HighRiskCount int    `json:"highRiskCount"`
}

// ComplianceSummary is the dashboard view derived from a filtered event
// sequence. All fields are defined for the empty sequence: counts are zero,
// SuccessRate is 0 and the timeline is seven zero-filled buckets.
type ComplianceSummary struct {
	Total            int                 `json:"total"`
	OutcomeCounts    map[Outcome]int     `json:"outcomeCounts"`
	SuccessRate      float64             `json:"successRate"`
	RiskCounts       map[RiskLevel]int   `json:"riskCounts"`
	ActionCounts     map[string]int      `json:"actionCounts"`
	UniqueActorCount int                 `json:"uniqueActorCount"`
	DailyTimeline    []TimelineBucket    `json:"dailyTimeline"`
	TopActors        []ActorActivity     `json:"topActors"`
	RecentAnomalies  []AuditEvent        `json:"recentAnomalies"`
}

// SuccessRatePercent rounds the stored ratio to a whole percentage for
// display. The underlying SuccessRate stays unrounded.
func (s *ComplianceSummary) SuccessRatePercent() int {
	return int(math.Round(s.SuccessRate * 100))
}
