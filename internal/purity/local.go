// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package purity

import "github.com/debtmap/debtmap/internal/astmodel"

// LocalObservation is everything a LocalAnalyzer can determine about a
// function's body without consulting the call graph: its own violations,
// and whether it touches state outside its own locals/receiver.
type LocalObservation struct {
	Violations []Violation

	// ReadsExternalState is true when the body reads a global, a package
	// variable, or a receiver field it does not also write.
	ReadsExternalState bool

	// WritesExternalState is true when the body writes a global, a package
	// variable, or a receiver field — or performs I/O — directly.
	WritesExternalState bool
}

// LocalAnalyzer is the per-language collaborator that inspects one
// function's body and reports its local purity signals, the way a
// language-specific ClassifierPredicate or PatternDetector supplies the
// signals the generic classifier and pattern packages can't derive
// themselves.
type LocalAnalyzer interface {
	AnalyzeLocal(fm astmodel.FunctionMetrics, ast astmodel.ItemAst) LocalObservation
}

// localLevel classifies a function using only its own observation, before
// any call-graph propagation is applied.
func localLevel(obs LocalObservation) Level {
	switch {
	case len(obs.Violations) == 0 && !obs.ReadsExternalState && !obs.WritesExternalState:
		return LevelStrictlyPure
	case obs.WritesExternalState || hasKind(obs.Violations, ViolationIoOperation, ViolationNonDeterministic):
		return LevelImpure
	case obs.ReadsExternalState:
		return LevelReadOnly
	default:
		return LevelLocallyPure
	}
}

func hasKind(violations []Violation, kinds ...ViolationKind) bool {
	for _, v := range violations {
		for _, k := range kinds {
			if v.Kind == k {
				return true
			}
		}
	}
	return false
}
