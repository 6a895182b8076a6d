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

import (
	"strings"

	"github.com/debtmap/debtmap/internal/astmodel"
)

// ExternalCalleeChecker reports whether a function calls only unresolved
// (external/dynamic) targets — the call graph's own verdict on a leaf that
// has no resolved callees to propagate through.
type ExternalCalleeChecker interface {
	HasOnlyExternalCallees(id astmodel.FunctionId) bool
}

// Propagator computes the final Analysis for every function in a call
// graph, starting from each function's local observation and propagating
// the worst level along call edges. Propagation runs over the graph's
// strongly connected components in reverse topological order so a cycle's
// members are resolved together, in one pass, with no revisiting.
type Propagator struct {
	graph    CallGraph
	external ExternalCalleeChecker
	analyzer LocalAnalyzer

	// AssumeExternalImpure controls whether a function whose callees are all
	// unresolved (HasOnlyExternalCallees) is forced to Impure (true, the
	// conservative default) or is left at its propagated level (false,
	// useful when a caller supplies an explicit allowlist of known-pure
	// externals via a future extension). A function with at least one
	// resolved callee is not penalized for its unresolved ones either way.
	AssumeExternalImpure bool
}

// NewPropagator builds a Propagator with AssumeExternalImpure defaulted to
// true: a function that calls only code this pipeline cannot see is
// treated as having a potential side effect until proven otherwise.
func NewPropagator(graph CallGraph, external ExternalCalleeChecker, analyzer LocalAnalyzer) *Propagator {
	return &Propagator{graph: graph, external: external, analyzer: analyzer, AssumeExternalImpure: true}
}

// Propagate returns the final Analysis for every function fm in fns, whose
// FunctionId keys match nodes in the call graph the Propagator was built
// with.
func (p *Propagator) Propagate(fns map[astmodel.FunctionId]astmodel.FunctionMetrics, asts map[astmodel.FunctionId]astmodel.ItemAst) map[astmodel.FunctionId]Analysis {
	local := make(map[astmodel.FunctionId]LocalObservation, len(fns))
	for id, fm := range fns {
		if p.analyzer == nil {
			local[id] = LocalObservation{}
			continue
		}
		local[id] = p.analyzer.AnalyzeLocal(fm, asts[id])
	}

	final := make(map[astmodel.FunctionId]Level, len(fns))
	components := findSCCs(p.graph)
	for _, component := range components {
		level := p.componentLocalLevel(component, local)
		level = p.componentPropagatedLevel(component, level, final)
		for _, id := range component {
			final[id] = level
		}
	}

	out := make(map[astmodel.FunctionId]Analysis, len(fns))
	for id, obs := range local {
		level := final[id]
		out[id] = Analysis{
			Level:           level,
			Violations:      obs.Violations,
			IsDeterministic: !hasKind(obs.Violations, ViolationNonDeterministic),
			CanBePure:       level != LevelStrictlyPure && len(obs.Violations) > 0 && len(obs.Violations) <= 2,
			Confidence:      purityConfidence(obs.Violations),
		}
	}
	return out
}

// purityConfidence scores how directly a function's violations were
// observed rather than inferred through propagation: a violation
// transitively attributed via ViolationImpureCall is less certain than one
// this function's own body triggered, and carrying more than one violation
// of any kind compounds that uncertainty.
func purityConfidence(violations []Violation) float64 {
	confidence := 1.0
	for _, v := range violations {
		if v.Kind == ViolationImpureCall {
			confidence -= 0.25
		}
	}
	if len(violations) >= 2 {
		confidence -= 0.1
	}
	if confidence < 0 {
		confidence = 0
	}
	return confidence
}

// componentLocalLevel is the worst local level among the component's own
// members, before any callee propagation.
func (p *Propagator) componentLocalLevel(component []astmodel.FunctionId, local map[astmodel.FunctionId]LocalObservation) Level {
	level := LevelStrictlyPure
	for _, id := range component {
		level = level.Worse(localLevel(local[id]))
	}
	return level
}

// componentPropagatedLevel folds in every already-resolved callee's level
// (components are visited in reverse topological order, so a callee
// outside this component has always already been finalized) plus the
// conservative penalty for a function whose callees are all unresolved
// externals.
func (p *Propagator) componentPropagatedLevel(component []astmodel.FunctionId, level Level, final map[astmodel.FunctionId]Level) Level {
	inComponent := make(map[astmodel.FunctionId]bool, len(component))
	for _, id := range component {
		inComponent[id] = true
	}

	for _, id := range component {
		for _, callee := range p.graph.Callees(id) {
			if inComponent[callee] {
				continue // already folded into this component's own local level
			}
			if calleeLevel, ok := final[callee]; ok {
				level = level.Worse(calleeLevel)
			}
		}
		if p.AssumeExternalImpure && p.external != nil && p.external.HasOnlyExternalCallees(id) {
			level = level.Worse(LevelImpure)
		}
	}
	return level
}

// AlmostPureStrategyFor picks a refactor strategy from a function's
// violations, preferring the first violation's kind since an almost-pure
// function by definition has only one or two.
func AlmostPureStrategyFor(violations []Violation) AlmostPureStrategy {
	for _, v := range violations {
		switch v.Kind {
		case ViolationIoOperation:
			if isLoggingRelated(v.Description) {
				return StrategyExtractLogging
			}
			return StrategySeparateIoFromLogic
		case ViolationNonDeterministic:
			if isTimeRelated(v.Description) {
				return StrategyParameterizeTime
			}
			return StrategyInjectRandomSeed
		case ViolationStateMutation:
			return StrategyIsolateSingleViolation
		}
	}
	return StrategySeparateIoFromLogic
}

func isLoggingRelated(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range []string{"log", "print", "write"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func isTimeRelated(description string) bool {
	lower := strings.ToLower(description)
	for _, kw := range []string{"time", "clock", "now"} {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
