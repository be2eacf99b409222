// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package models

import "time"

// APIResponse is the standardized envelope used by all HTTP endpoints.
//
// Status is "success" or "error". Data carries the payload on success;
// Error is populated only on failure.
//
// Example error response:
//
//	{
//	  "status": "error",
//	  "error": {
//	    "code": "VALIDATION_ERROR",
//	    "message": "fields must not be empty",
//	    "details": {"field": "fields"}
//	  },
//	  "metadata": {"timestamp": "2026-08-30T12:00:00Z"}
//	}
type APIResponse struct {
	Status   string       `json:"status"`
	Data     interface{}  `json:"data"`
	Metadata ResponseMeta `json:"metadata"`
	Error    *APIError    `json:"error,omitempty"`
}

// ResponseMeta carries per-response observability fields.
type ResponseMeta struct {
	Timestamp   time.Time `json:"timestamp"`
	QueryTimeMS int64     `json:"query_time_ms"`
}

// APIError describes a failed request in the response envelope.
type APIError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
