// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package coverage

import "testing"

func TestNormalizePath_LowercasesWindowsDriveLetterOnly(t *testing.T) {
	got := NormalizePath(`C:\Src\Foo.go`)
	want := "c:/Src/Foo.go"
	if got != want {
		t.Errorf("NormalizePath = %q, want %q", got, want)
	}
}

func TestNormalizePath_PosixPathUnchangedCase(t *testing.T) {
	got := NormalizePath("/src/Foo.go")
	if got != "/src/Foo.go" {
		t.Errorf("expected POSIX path case to be preserved, got %q", got)
	}
}

func TestFunctionCoveragePct_MissingFileIsZero(t *testing.T) {
	m := CoverageMap{PerFile: map[string]FileCoverage{}}
	pct, ok := FunctionCoveragePct(m, "src/missing.go", "DoThing", 10, 5)
	if !ok {
		t.Fatal("expected ok=true for a missing file (treated as 0%% coverage)")
	}
	if pct != 0 {
		t.Errorf("expected 0%% coverage for a missing file, got %v", pct)
	}
}

func TestFunctionCoveragePct_FunctionLevelTakesPrecedence(t *testing.T) {
	m := CoverageMap{PerFile: map[string]FileCoverage{
		"src/foo.go": {
			LineHits:            map[int]int{10: 0, 11: 0, 12: 0},
			FunctionPercentages: map[string]float64{"DoThing": 87.5},
		},
	}}
	pct, ok := FunctionCoveragePct(m, "src/foo.go", "DoThing", 10, 3)
	if !ok || pct != 87.5 {
		t.Fatalf("expected the function-level percentage to win over the zeroed line average, got %v (ok=%v)", pct, ok)
	}
}

func TestFunctionCoveragePct_LineAverageFallback(t *testing.T) {
	m := CoverageMap{PerFile: map[string]FileCoverage{
		"src/foo.go": {
			LineHits:            map[int]int{10: 1, 11: 0, 12: 1, 13: 0},
			FunctionPercentages: map[string]float64{},
		},
	}}
	pct, ok := FunctionCoveragePct(m, "src/foo.go", "DoThing", 10, 3)
	if !ok {
		t.Fatal("expected ok=true")
	}
	if pct != 50.0 {
		t.Errorf("expected a 50%% line average (2 of 4 lines hit), got %v", pct)
	}
}

func TestFunctionCoveragePct_SuffixFallbackMatchesAbsoluteVsRelative(t *testing.T) {
	m := CoverageMap{PerFile: map[string]FileCoverage{
		"src/foo.go": {LineHits: map[int]int{1: 1}, FunctionPercentages: map[string]float64{}},
	}}
	pct, ok := FunctionCoveragePct(m, "/home/user/project/src/foo.go", "DoThing", 1, 1)
	if !ok {
		t.Fatal("expected a suffix match between an absolute path and a workspace-relative coverage key")
	}
	if pct != 100.0 {
		t.Errorf("expected 100%% from the matched record, got %v", pct)
	}
}

func TestGap_ClampsToRange(t *testing.T) {
	if got := Gap(-10); got != 100 {
		t.Errorf("Gap(-10) = %v, want 100", got)
	}
	if got := Gap(150); got != 0 {
		t.Errorf("Gap(150) = %v, want 0", got)
	}
	if got := Gap(30); got != 70 {
		t.Errorf("Gap(30) = %v, want 70", got)
	}
}
