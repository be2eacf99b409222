// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package models

import (
	"strings"
	"time"
)

// Outcome indicates whether the audited action succeeded.
type Outcome string

const (
	OutcomeSuccess Outcome = "SUCCESS"
	OutcomeFailed  Outcome = "FAILED"
	OutcomePending Outcome = "PENDING"
)

// Outcomes lists every valid outcome in display order.
func Outcomes() []Outcome {
	return []Outcome{OutcomeSuccess, OutcomeFailed, OutcomePending}
}

// RiskLevel classifies the risk associated with an audit event.
type RiskLevel string

const (
	RiskLow    RiskLevel = "LOW"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// RiskLevels lists every valid risk level in ascending severity order.
func RiskLevels() []RiskLevel {
	return []RiskLevel{RiskLow, RiskMedium, RiskHigh}
}

// Actor identifies who performed an audited action.
type Actor struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Email       string `json:"email"`
	Role        string `json:"role"`
}

// Metadata carries technical facts about the request that produced an event.
type Metadata struct {
	CorrelationID string `json:"correlationId"`
	DurationMs    int64  `json:"durationMs"`
	ResponseCode  int    `json:"responseCode"`
}

// AuditEvent is a single immutable entry in the audit trail. Events are
// created only by the ingestion collaborator; the engine never mutates them.
type AuditEvent struct {
	ID            string            `json:"id"`
	Timestamp     time.Time         `json:"timestamp"`
	Actor         Actor             `json:"actor"`
	Action        string            `json:"action"`
	Resource      string            `json:"resource"`
	ResourceID    string            `json:"resourceId,omitempty"`
	SourceAddress string            `json:"sourceAddress"`
	ClientInfo    string            `json:"clientInfo"`
	Outcome       Outcome           `json:"outcome"`
	RiskLevel     RiskLevel         `json:"riskLevel"`
	Details       map[string]string `json:"details,omitempty"`
	Metadata      Metadata          `json:"metadata"`
}

// IsAnomaly reports whether the event belongs in the recent security events
// view: HIGH risk or FAILED outcome.
func (e *AuditEvent) IsAnomaly() bool {
	return e.RiskLevel == RiskHigh || e.Outcome == OutcomeFailed
}

// actionSeparators is the set of characters treated as word separators when
// rendering an action tag for display or search.
const actionSeparators = "_-.:"

// HumanizeAction converts an action tag such as "PERMISSION_CHANGE" into its
// display form "PERMISSION CHANGE". Separator characters become spaces.
func HumanizeAction(action string) string {
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(actionSeparators, r) {
			return ' '
		}
		return r
	}, action)
}
