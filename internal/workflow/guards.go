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

// guard is a pure, deterministic predicate over AnalysisState. Guards
// never mutate state and never perform I/O.
type guard func(*AnalysisState) bool

func guardBuildCallGraph(s *AnalysisState) bool {
	return s.Phase == Initialized && len(s.Parsed) > 0
}

func guardLoadCoverage(s *AnalysisState) bool {
	return s.Phase == CallGraphComplete && s.Config.CoverageFile != ""
}

func guardSkipCoverage(s *AnalysisState) bool {
	return s.Phase == CallGraphComplete && s.Config.CoverageFile == ""
}

func guardAnalyzePurity(s *AnalysisState) bool {
	return s.Phase == CoverageComplete
}

func guardLoadContext(s *AnalysisState) bool {
	return s.Phase == PurityComplete && s.Config.ContextEnabled
}

func guardSkipContext(s *AnalysisState) bool {
	return s.Phase == PurityComplete && !s.Config.ContextEnabled
}

func guardScore(s *AnalysisState) bool {
	return s.Phase == ContextComplete
}

func guardFilter(s *AnalysisState) bool {
	return s.Phase == ScoringComplete
}
