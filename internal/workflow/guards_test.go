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

func newTestState(phase Phase, parsed int, coverageFile string, contextEnabled bool) *AnalysisState {
	var files []astmodel.FileParse
	for i := 0; i < parsed; i++ {
		files = append(files, astmodel.FileParse{Path: "f.go"})
	}
	cfg := config.Default()
	cfg.CoverageFile = coverageFile
	cfg.ContextEnabled = contextEnabled
	s := NewState("run", cfg, files)
	s.Phase = phase
	return s
}

func TestGuards_ExactlyOneHoldsPerPhase(t *testing.T) {
	table := transitionTable()

	phases := []struct {
		phase          Phase
		parsed         int
		coverageFile   string
		contextEnabled bool
	}{
		{Initialized, 1, "", false},
		{CallGraphComplete, 1, "cover.lcov", false},
		{CallGraphComplete, 1, "", false},
		{CoverageComplete, 1, "", false},
		{PurityComplete, 1, "", true},
		{PurityComplete, 1, "", false},
		{ContextComplete, 1, "", false},
		{ScoringComplete, 1, "", false},
	}

	for _, tc := range phases {
		s := newTestState(tc.phase, tc.parsed, tc.coverageFile, tc.contextEnabled)
		matches := 0
		for _, st := range table {
			if st.guard(s) {
				matches++
			}
		}
		if matches != 1 {
			t.Errorf("phase=%s coverageFile=%q contextEnabled=%v: expected exactly 1 guard to hold, got %d",
				tc.phase, tc.coverageFile, tc.contextEnabled, matches)
		}
	}
}

func TestGuardBuildCallGraph_RequiresParsedFiles(t *testing.T) {
	s := newTestState(Initialized, 0, "", false)
	if guardBuildCallGraph(s) {
		t.Fatal("expected guardBuildCallGraph to be false with zero parsed files")
	}
}

func TestGuardLoadCoverage_vs_SkipCoverage_AreMutuallyExclusive(t *testing.T) {
	withFile := newTestState(CallGraphComplete, 1, "cover.lcov", false)
	if !guardLoadCoverage(withFile) || guardSkipCoverage(withFile) {
		t.Fatal("expected guardLoadCoverage true and guardSkipCoverage false when CoverageFile is set")
	}

	withoutFile := newTestState(CallGraphComplete, 1, "", false)
	if guardLoadCoverage(withoutFile) || !guardSkipCoverage(withoutFile) {
		t.Fatal("expected guardSkipCoverage true and guardLoadCoverage false when CoverageFile is empty")
	}
}
