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
	"testing"

	"github.com/debtmap/debtmap/internal/astmodel"
)

// fakeGraph is a tiny adjacency-list CallGraph for propagation tests.
type fakeGraph struct {
	callees  map[astmodel.FunctionId][]astmodel.FunctionId
	external map[astmodel.FunctionId]bool
}

func (f fakeGraph) Nodes() []astmodel.FunctionId {
	var out []astmodel.FunctionId
	for id := range f.callees {
		out = append(out, id)
	}
	return out
}

func (f fakeGraph) Callees(id astmodel.FunctionId) []astmodel.FunctionId { return f.callees[id] }

func (f fakeGraph) HasOnlyExternalCallees(id astmodel.FunctionId) bool { return f.external[id] }

// fakeAnalyzer maps each function directly to a canned LocalObservation.
type fakeAnalyzer struct {
	obs map[astmodel.FunctionId]LocalObservation
}

func (a fakeAnalyzer) AnalyzeLocal(fm astmodel.FunctionMetrics, _ astmodel.ItemAst) LocalObservation {
	return a.obs[fm.ID]
}

func id(name string) astmodel.FunctionId { return astmodel.NewFunctionId("f.go", name, 1) }

func TestPropagate_PureLeafStaysPure(t *testing.T) {
	a, b := id("a"), id("b")
	g := fakeGraph{callees: map[astmodel.FunctionId][]astmodel.FunctionId{a: {b}, b: nil}}
	fns := map[astmodel.FunctionId]astmodel.FunctionMetrics{
		a: {ID: a}, b: {ID: b},
	}
	analyzer := fakeAnalyzer{obs: map[astmodel.FunctionId]LocalObservation{
		a: {}, b: {},
	}}

	p := NewPropagator(g, g, analyzer)
	result := p.Propagate(fns, nil)

	if result[a].Level != LevelStrictlyPure {
		t.Fatalf("expected a pure, got %v", result[a].Level)
	}
	if result[b].Level != LevelStrictlyPure {
		t.Fatalf("expected b pure, got %v", result[b].Level)
	}
}

func TestPropagate_ImpureCalleeInfectsCaller(t *testing.T) {
	a, b := id("a"), id("b")
	g := fakeGraph{callees: map[astmodel.FunctionId][]astmodel.FunctionId{a: {b}, b: nil}}
	fns := map[astmodel.FunctionId]astmodel.FunctionMetrics{a: {ID: a}, b: {ID: b}}
	analyzer := fakeAnalyzer{obs: map[astmodel.FunctionId]LocalObservation{
		a: {},
		b: {Violations: []Violation{{Kind: ViolationIoOperation, Description: "writes file"}}, WritesExternalState: true},
	}}

	p := NewPropagator(g, g, analyzer)
	result := p.Propagate(fns, nil)

	if result[b].Level != LevelImpure {
		t.Fatalf("expected b impure, got %v", result[b].Level)
	}
	if result[a].Level != LevelImpure {
		t.Fatalf("expected impurity to propagate to a, got %v", result[a].Level)
	}
}

func TestPropagate_CycleSharesWorstLevel(t *testing.T) {
	a, b := id("a"), id("b")
	g := fakeGraph{callees: map[astmodel.FunctionId][]astmodel.FunctionId{a: {b}, b: {a}}}
	fns := map[astmodel.FunctionId]astmodel.FunctionMetrics{a: {ID: a}, b: {ID: b}}
	analyzer := fakeAnalyzer{obs: map[astmodel.FunctionId]LocalObservation{
		a: {},
		b: {Violations: []Violation{{Kind: ViolationStateMutation}}, WritesExternalState: true},
	}}

	p := NewPropagator(g, g, analyzer)
	result := p.Propagate(fns, nil)

	if result[a].Level != LevelImpure || result[b].Level != LevelImpure {
		t.Fatalf("expected both cycle members impure, got a=%v b=%v", result[a].Level, result[b].Level)
	}
}

func TestPropagate_UnresolvedExternalCalleeIsConservativelyImpure(t *testing.T) {
	a := id("a")
	g := fakeGraph{
		callees:  map[astmodel.FunctionId][]astmodel.FunctionId{a: nil},
		external: map[astmodel.FunctionId]bool{a: true},
	}
	fns := map[astmodel.FunctionId]astmodel.FunctionMetrics{a: {ID: a}}
	analyzer := fakeAnalyzer{obs: map[astmodel.FunctionId]LocalObservation{a: {}}}

	p := NewPropagator(g, g, analyzer)
	result := p.Propagate(fns, nil)

	if result[a].Level != LevelImpure {
		t.Fatalf("expected a forced impure by an unresolved external callee, got %v", result[a].Level)
	}
}

func TestAlmostPureStrategyFor(t *testing.T) {
	cases := []struct {
		name       string
		violations []Violation
		want       AlmostPureStrategy
	}{
		{"io_unrelated_to_logging", []Violation{{Kind: ViolationIoOperation, Description: "calls os.ReadFile"}}, StrategySeparateIoFromLogic},
		{"io_logging_println_macro", []Violation{{Kind: ViolationIoOperation, Description: "println! macro"}}, StrategyExtractLogging},
		{"io_logging_log_call", []Violation{{Kind: ViolationIoOperation, Description: "calls log.Printf"}}, StrategyExtractLogging},
		{"io_logging_write_call", []Violation{{Kind: ViolationIoOperation, Description: "calls w.Write"}}, StrategyExtractLogging},
		{"time", []Violation{{Kind: ViolationNonDeterministic, Description: "calls time.Now"}}, StrategyParameterizeTime},
		{"random", []Violation{{Kind: ViolationNonDeterministic, Description: "calls rand.Int"}}, StrategyInjectRandomSeed},
		{"state", []Violation{{Kind: ViolationStateMutation}}, StrategyIsolateSingleViolation},
		{"none", nil, StrategySeparateIoFromLogic},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := AlmostPureStrategyFor(tc.violations); got != tc.want {
				t.Errorf("AlmostPureStrategyFor(%v) = %v, want %v", tc.violations, got, tc.want)
			}
		})
	}
}

func TestPropagate_ConfidenceDiscountsInferredAndMultipleViolations(t *testing.T) {
	solo, multi, inferred := id("solo"), id("multi"), id("inferred")
	g := fakeGraph{callees: map[astmodel.FunctionId][]astmodel.FunctionId{solo: nil, multi: nil, inferred: nil}}
	fns := map[astmodel.FunctionId]astmodel.FunctionMetrics{
		solo: {ID: solo}, multi: {ID: multi}, inferred: {ID: inferred},
	}
	analyzer := fakeAnalyzer{obs: map[astmodel.FunctionId]LocalObservation{
		solo:     {Violations: []Violation{{Kind: ViolationIoOperation, Description: "println! macro"}}},
		multi:    {Violations: []Violation{{Kind: ViolationIoOperation}, {Kind: ViolationStateMutation}}},
		inferred: {Violations: []Violation{{Kind: ViolationImpureCall}}},
	}}

	p := NewPropagator(g, g, analyzer)
	result := p.Propagate(fns, nil)

	if result[solo].Confidence != 1.0 {
		t.Errorf("expected a single directly-observed violation to have full confidence, got %v", result[solo].Confidence)
	}
	if result[solo].Confidence <= 0.8 {
		t.Errorf("expected Scenario C's single println! violation to clear the 0.8 confidence gate, got %v", result[solo].Confidence)
	}
	if result[multi].Confidence >= result[solo].Confidence {
		t.Errorf("expected a second violation to discount confidence below the single-violation case")
	}
	if result[inferred].Confidence >= 0.8 {
		t.Errorf("expected a transitively-inferred violation to fall below the 0.8 confidence gate, got %v", result[inferred].Confidence)
	}
}

func TestLevelWorse(t *testing.T) {
	if LevelStrictlyPure.Worse(LevelImpure) != LevelImpure {
		t.Fatalf("expected Impure to dominate StrictlyPure")
	}
	if LevelReadOnly.Worse(LevelLocallyPure) != LevelReadOnly {
		t.Fatalf("expected ReadOnly to dominate LocallyPure")
	}
}
