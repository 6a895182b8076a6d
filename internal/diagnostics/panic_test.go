// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diagnostics

import (
	"strings"
	"testing"
)

func panicking(tracker *Tracker, progress *Progress) (report CrashReport, recovered bool) {
	defer func() {
		report, recovered = Recover("test-version", tracker, progress)
	}()
	panic("boom")
}

func TestRecover_BuildsReportWithCurrentFrame(t *testing.T) {
	tr := NewTracker()
	release := tr.Push(Frame{Phase: "PurityAnalyzing", File: "a.go", Function: "DoStuff"})
	defer release()

	p := NewProgress(10)
	p.Inc()
	p.Inc()

	report, recovered := panicking(tr, p)
	if !recovered {
		t.Fatal("expected Recover to report a panic in flight")
	}
	if report.Phase != "PurityAnalyzing" || report.File != "a.go" || report.Function != "DoStuff" {
		t.Errorf("expected the report to carry the current frame, got %+v", report)
	}
	if report.PanicMessage != "boom" {
		t.Errorf("expected the panic message to be captured, got %q", report.PanicMessage)
	}
	if report.ProgressFraction != 0.2 {
		t.Errorf("expected 0.2 progress fraction, got %v", report.ProgressFraction)
	}
	if report.Backtrace == "" {
		t.Error("expected a non-empty backtrace")
	}
	if !strings.Contains(report.Platform, "/") {
		t.Errorf("expected platform to be goos/goarch, got %q", report.Platform)
	}
}

func TestRecover_UsesPlaceholdersWhenContextUnavailable(t *testing.T) {
	report, recovered := panicking(nil, nil)
	if !recovered {
		t.Fatal("expected Recover to report a panic in flight")
	}
	if report.Phase != placeholderUnknown || report.File != placeholderUnknown || report.Function != placeholderUnknown {
		t.Errorf("expected placeholders when tracker is nil, got %+v", report)
	}
	if report.ProgressFraction != 0 {
		t.Errorf("expected 0 progress fraction when progress is nil, got %v", report.ProgressFraction)
	}
}

func TestRecover_NoPanicReturnsFalse(t *testing.T) {
	func() {
		defer func() {
			_, recovered := Recover("v", nil, nil)
			if recovered {
				t.Error("expected recovered=false when there was no panic")
			}
		}()
	}()
}

func TestCrashReport_StringIncludesPhaseAndMessage(t *testing.T) {
	r := CrashReport{Version: "v1", Phase: "ScoringInProgress", File: "f.go", Function: "Fn", PanicMessage: "boom", SourceLocation: "f.go:10"}
	s := r.String()
	if !strings.Contains(s, "ScoringInProgress") || !strings.Contains(s, "boom") {
		t.Errorf("expected the rendered report to mention phase and panic message, got %q", s)
	}
}
