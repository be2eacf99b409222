// Auditorium - Audit Event Query, Compliance Analytics and Export Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/auditorium

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordExportSubmitted(t *testing.T) {
	before := testutil.ToFloat64(ExportsSubmitted.WithLabelValues("csv"))
	RecordExportSubmitted("csv")
	after := testutil.ToFloat64(ExportsSubmitted.WithLabelValues("csv"))

	if after != before+1 {
		t.Errorf("ExportsSubmitted went %v -> %v, want +1", before, after)
	}
}

func TestRecordExportFailureStages(t *testing.T) {
	before := testutil.ToFloat64(ExportFailures.WithLabelValues("pdf", "render"))
	RecordExportFailure("pdf", "render")
	after := testutil.ToFloat64(ExportFailures.WithLabelValues("pdf", "render"))

	if after != before+1 {
		t.Errorf("ExportFailures went %v -> %v, want +1", before, after)
	}
}

func TestRecordEmailSend(t *testing.T) {
	sentBefore := testutil.ToFloat64(EmailsSent)
	failedBefore := testutil.ToFloat64(EmailFailures)

	RecordEmailSend(nil)
	RecordEmailSend(errors.New("smtp timeout"))

	if got := testutil.ToFloat64(EmailsSent); got != sentBefore+1 {
		t.Errorf("EmailsSent went %v -> %v, want +1", sentBefore, got)
	}
	if got := testutil.ToFloat64(EmailFailures); got != failedBefore+1 {
		t.Errorf("EmailFailures went %v -> %v, want +1", failedBefore, got)
	}
}

func TestRecordScheduledRun(t *testing.T) {
	okBefore := testutil.ToFloat64(ScheduledRuns.WithLabelValues("daily", "success"))
	failBefore := testutil.ToFloat64(ScheduledRuns.WithLabelValues("daily", "failure"))

	RecordScheduledRun("daily", nil)
	RecordScheduledRun("daily", errors.New("render failed"))

	if got := testutil.ToFloat64(ScheduledRuns.WithLabelValues("daily", "success")); got != okBefore+1 {
		t.Errorf("success runs went %v -> %v, want +1", okBefore, got)
	}
	if got := testutil.ToFloat64(ScheduledRuns.WithLabelValues("daily", "failure")); got != failBefore+1 {
		t.Errorf("failure runs went %v -> %v, want +1", failBefore, got)
	}
}

func TestRecordStoreLoadSetsGauge(t *testing.T) {
	RecordStoreLoad("seed", 50*time.Millisecond, 42)
	if got := testutil.ToFloat64(StoreEvents); got != 42 {
		t.Errorf("StoreEvents = %v, want 42", got)
	}
}
