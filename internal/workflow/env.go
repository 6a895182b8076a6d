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
	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/classifier"
	"github.com/debtmap/debtmap/internal/coverage"
	"github.com/debtmap/debtmap/internal/diagnostics"
	"github.com/debtmap/debtmap/internal/purity"
)

// FileSystem is the capability an action needs to read surrounding source
// for context snippets. Narrow on purpose: actions never write files.
type FileSystem interface {
	ReadFile(path string) ([]byte, error)
}

// Env bundles the capabilities and per-language collaborators an action
// needs beyond AnalysisState itself: progress/tracker diagnostics, file
// access, and the external analyzers the core has no language-specific
// knowledge of.
type Env struct {
	FS FileSystem

	Progress *diagnostics.Progress
	Tracker  *diagnostics.Tracker

	CoverageLoader coverage.CoverageLoader
	LocalAnalyzer  purity.LocalAnalyzer
	Projector      astmodel.Projector
	Predicate      classifier.Predicate // optional; nil falls back to built-in heuristics
}

// trackPhase pushes a Frame for the given phase/function and returns a
// release func; callers `defer` it so the previous frame is restored on
// every exit path, including a panic propagating through a deferred
// recover in diagnostics.Recover.
func (e *Env) trackPhase(phase, file, function string) func() {
	if e == nil || e.Tracker == nil {
		return func() {}
	}
	return e.Tracker.Push(diagnostics.Frame{Phase: phase, File: file, Function: function})
}

func (e *Env) incProgress() {
	if e != nil && e.Progress != nil {
		e.Progress.Inc()
	}
}
