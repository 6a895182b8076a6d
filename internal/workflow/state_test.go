// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workflow

import (
	"testing"

	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/config"
)

func TestNewState_InitializesEmptyMaps(t *testing.T) {
	parsed := []astmodel.FileParse{{Path: "a.go"}}
	s := NewState("run-1", config.Default(), parsed)

	if s.Phase != Initialized {
		t.Fatalf("expected Initialized phase, got %s", s.Phase)
	}
	if s.RunID != "run-1" {
		t.Fatalf("expected RunID to be preserved, got %q", s.RunID)
	}
	if s.Results.Purity == nil {
		t.Fatal("expected Results.Purity to be a non-nil empty map")
	}
	if s.Results.Context == nil {
		t.Fatal("expected Results.Context to be a non-nil empty map")
	}
	if len(s.Parsed) != 1 {
		t.Fatalf("expected Parsed to carry through, got %d entries", len(s.Parsed))
	}
}

func TestPhase_String(t *testing.T) {
	cases := []struct {
		phase Phase
		want  string
	}{
		{Initialized, "Initialized"},
		{CallGraphComplete, "CallGraphComplete"},
		{Complete, "Complete"},
		{Phase(999), "Phase(999)"},
	}
	for _, tc := range cases {
		if got := tc.phase.String(); got != tc.want {
			t.Errorf("Phase(%d).String() = %q, want %q", tc.phase, got, tc.want)
		}
	}
}
