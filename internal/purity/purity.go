// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package purity classifies each function's side-effect profile and
// propagates that classification along the call graph. Cycles are handled
// by collapsing each strongly connected component to a single unit via
// Tarjan's algorithm (scc.go, in the traversal idiom of the wider corpus's
// graph libraries — see katalvlaran/lvlath's dfs.TopologicalSort for the
// white/gray/black state-machine this package's SCC walk is grounded on)
// and assigning the worst purity among members to every member.
package purity

import "fmt"

// Level is a four-valued classification of a function's side-effect
// profile. The iota order below is declaration order only, not a purity
// ordering; use Worse to combine two levels.
type Level int

const (
	LevelStrictlyPure Level = iota
	LevelLocallyPure
	LevelReadOnly
	LevelImpure
)

func (l Level) String() string {
	switch l {
	case LevelStrictlyPure:
		return "StrictlyPure"
	case LevelLocallyPure:
		return "LocallyPure"
	case LevelReadOnly:
		return "ReadOnly"
	case LevelImpure:
		return "Impure"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// rank orders levels from best (0) to worst (3) so Worse() can pick the
// more pessimistic of two levels during SCC/propagation merges.
func (l Level) rank() int {
	switch l {
	case LevelStrictlyPure:
		return 0
	case LevelLocallyPure:
		return 1
	case LevelReadOnly:
		return 2
	default:
		return 3
	}
}

// Worse returns the more pessimistic (less pure) of l and other.
func (l Level) Worse(other Level) Level {
	if other.rank() > l.rank() {
		return other
	}
	return l
}

// Multiplier is the purity scoring multiplier applied after the role
// multiplier: the purer a function, the less urgently its raw
// complexity needs surfacing, because it is cheap to test and reason
// about in isolation.
func (l Level) Multiplier() float64 {
	switch l {
	case LevelStrictlyPure:
		return 0.3
	case LevelLocallyPure:
		return 0.5
	case LevelReadOnly:
		return 0.7
	default:
		return 1.0
	}
}

// ViolationKind tags why a function is not strictly pure.
type ViolationKind int

const (
	ViolationIoOperation ViolationKind = iota
	ViolationStateMutation
	ViolationNonDeterministic
	ViolationImpureCall
)

func (k ViolationKind) String() string {
	switch k {
	case ViolationIoOperation:
		return "IoOperation"
	case ViolationStateMutation:
		return "StateMutation"
	case ViolationNonDeterministic:
		return "NonDeterministic"
	case ViolationImpureCall:
		return "ImpureCall"
	default:
		return fmt.Sprintf("ViolationKind(%d)", int(k))
	}
}

// Violation is one concrete reason a function failed to be strictly pure.
type Violation struct {
	Kind        ViolationKind
	Description string
	Line        int // 0 when unknown
}

// Analysis is the purity verdict for one function.
//
// Invariant: Level == LevelStrictlyPure implies Violations is empty, the
// function reads and writes no external state, AND every callee also
// propagates as pure (enforced by Propagate, never by the local analyzer
// alone).
type Analysis struct {
	Level           Level
	Violations      []Violation
	IsDeterministic bool
	CanBePure       bool

	// Confidence is how sure the propagator is that CanBePure's suggested
	// refactor would actually reach strict purity, in [0, 1]. It starts at
	// 1.0 and is discounted for each violation inferred transitively
	// through ViolationImpureCall (never directly observed in the
	// function's own body) and for carrying more than one violation at
	// all. Callers should gate an almost-pure tag on Confidence clearing
	// their configured threshold, not on CanBePure alone.
	Confidence float64
}

// AlmostPureStrategy is a suggested single-step refactor toward purity.
type AlmostPureStrategy int

const (
	StrategyExtractLogging AlmostPureStrategy = iota
	StrategyParameterizeTime
	StrategyInjectRandomSeed
	StrategyIsolateSingleViolation
	StrategySeparateIoFromLogic
)

func (s AlmostPureStrategy) String() string {
	switch s {
	case StrategyExtractLogging:
		return "ExtractLogging"
	case StrategyParameterizeTime:
		return "ParameterizeTime"
	case StrategyInjectRandomSeed:
		return "InjectRandomSeed"
	case StrategyIsolateSingleViolation:
		return "IsolateSingleViolation"
	case StrategySeparateIoFromLogic:
		return "SeparateIoFromLogic"
	default:
		return fmt.Sprintf("AlmostPureStrategy(%d)", int(s))
	}
}

// AlmostPurePotentialMultiplier is the purity multiplier a function would
// earn after the suggested refactor removes its violations.
const AlmostPurePotentialMultiplier = 0.3

// AlmostPure describes a function that is one simple refactor away from
// strict purity.
type AlmostPure struct {
	Strategy            AlmostPureStrategy
	CurrentMultiplier   float64
	PotentialMultiplier float64
}
