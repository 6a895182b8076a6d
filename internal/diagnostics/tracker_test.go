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

import "testing"

func TestTracker_PushThenReleaseRestoresPrevious(t *testing.T) {
	tr := NewTracker()
	releaseOuter := tr.Push(Frame{Phase: "PurityAnalyzing", File: "a.go", Function: "Outer"})
	if got := tr.Current(); got.Function != "Outer" {
		t.Fatalf("expected current frame Outer, got %+v", got)
	}

	releaseInner := tr.Push(Frame{Phase: "PurityAnalyzing", File: "a.go", Function: "Inner"})
	if got := tr.Current(); got.Function != "Inner" {
		t.Fatalf("expected current frame Inner, got %+v", got)
	}
	releaseInner()

	if got := tr.Current(); got.Function != "Outer" {
		t.Fatalf("expected release to restore Outer, got %+v", got)
	}
	releaseOuter()

	if got := tr.Current(); got != (Frame{}) {
		t.Fatalf("expected an empty tracker after releasing everything, got %+v", got)
	}
}

func TestTracker_ReleaseOnPanicPathRestoresPrevious(t *testing.T) {
	tr := NewTracker()
	releaseOuter := tr.Push(Frame{Function: "Outer"})
	defer releaseOuter()

	func() {
		defer func() {
			_ = recover()
		}()
		release := tr.Push(Frame{Function: "Inner"})
		defer release()
		panic("boom")
	}()

	if got := tr.Current(); got.Function != "Outer" {
		t.Fatalf("expected the inner frame's deferred release to run even on panic, got %+v", got)
	}
}

func TestTracker_CurrentOnEmptyIsZeroValue(t *testing.T) {
	tr := NewTracker()
	if got := tr.Current(); got != (Frame{}) {
		t.Fatalf("expected zero-value frame on an empty tracker, got %+v", got)
	}
}
