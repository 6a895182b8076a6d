// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package pattern classifies a function's structural shape into exactly
// one ComplexityPattern, combining raw complexity metrics with the
// language-neutral AstProjection a parser collaborator supplies — the
// same shape of priority-ordered, first-match-wins rule chain
// internal/classifier applies to function roles.
package pattern

import (
	"fmt"
	"math"
)

// Kind tags a function's detected structural shape.
type Kind int

const (
	KindRepetitiveValidation Kind = iota
	KindStateMachine
	KindCoordinator
	KindDispatcher
	KindChaoticStructure
	KindHighNesting
	KindHighBranching
	KindMixedComplexity
	KindModerateComplexity
)

func (k Kind) String() string {
	switch k {
	case KindRepetitiveValidation:
		return "RepetitiveValidation"
	case KindStateMachine:
		return "StateMachine"
	case KindCoordinator:
		return "Coordinator"
	case KindDispatcher:
		return "Dispatcher"
	case KindChaoticStructure:
		return "ChaoticStructure"
	case KindHighNesting:
		return "HighNesting"
	case KindHighBranching:
		return "HighBranching"
	case KindMixedComplexity:
		return "MixedComplexity"
	case KindModerateComplexity:
		return "ModerateComplexity"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Pattern is the detector's verdict for one function: its Kind plus the
// kind-specific fields that justified it.
type Pattern struct {
	Kind Kind

	// RepetitiveValidation fields.
	Checks  int
	Entropy float64
	RawCC   int
	AdjCC   float64

	// Dispatcher fields.
	Branches            int
	Ratio               float64
	InlineLogicBranches int
}

// EntropyDampening maps a token-level entropy reading to the complexity
// dampening factor applied to raw cyclomatic complexity: the more
// repetitive a body reads (low entropy), the less its raw branch count
// should weigh, since most of those branches are copies of the same
// validation shape rather than distinct logic.
func EntropyDampening(entropy float64) float64 {
	switch {
	case entropy < 0.25:
		return 0.4
	case entropy < 0.30:
		return 0.5
	case entropy < 0.35:
		return 0.6
	default:
		return 1.0
	}
}

// AdjustedComplexity is the primary complexity value scoring consumes:
// raw cyclomatic complexity dampened by entropy. A function without
// entropy data is never dampened (dampening 1.0).
func AdjustedComplexity(rawCC int, entropy float64, hasEntropy bool) float64 {
	if !hasEntropy {
		return float64(rawCC)
	}
	return float64(rawCC) * EntropyDampening(entropy)
}

// Input is the small set of signals Detect needs: raw metrics plus the
// language-neutral AST projection.
type Input struct {
	Cyclomatic int
	Cognitive  int
	MaxNesting int
	Entropy    *float64
	Checks     int // number of independent validation-style branches, when known
	Projection Projection
}

// Projection mirrors the fields of astmodel.AstProjection this package
// needs; kept as a local, narrow type so pattern does not import astmodel
// just for a handful of booleans.
type Projection struct {
	HasStateSignal             bool
	HasCoordinatorSignal       bool
	EarlyReturnFraction        float64
	BranchStructuralSimilarity float64
}

func entropyOrDefault(entropy *float64) (float64, bool) {
	if entropy == nil {
		return 1.0, false
	}
	return *entropy, true
}

// Detect assigns exactly one Pattern to in, applying the nine rules below
// in strict priority order; the first match wins.
func Detect(in Input) Pattern {
	entropy, hasEntropy := entropyOrDefault(in.Entropy)
	adjCC := AdjustedComplexity(in.Cyclomatic, entropy, hasEntropy)

	if p, ok := tryRepetitiveValidation(in, entropy, hasEntropy, adjCC); ok {
		return p
	}
	if in.Projection.HasStateSignal {
		return Pattern{Kind: KindStateMachine, RawCC: in.Cyclomatic, Entropy: entropy, AdjCC: adjCC}
	}
	if in.Projection.HasCoordinatorSignal {
		return Pattern{Kind: KindCoordinator, RawCC: in.Cyclomatic, Entropy: entropy, AdjCC: adjCC}
	}
	if p, ok := tryDispatcher(in, entropy, adjCC); ok {
		return p
	}
	if hasEntropy && entropy >= 0.45 && in.Cyclomatic >= 10 {
		return Pattern{Kind: KindChaoticStructure, RawCC: in.Cyclomatic, Entropy: entropy, AdjCC: adjCC}
	}

	ratio := cognitiveRatio(in.Cognitive, in.Cyclomatic)
	if in.MaxNesting >= 4 && ratio > 3.0 {
		return Pattern{Kind: KindHighNesting, RawCC: in.Cyclomatic, Entropy: entropy, AdjCC: adjCC, Ratio: ratio}
	}
	if in.Cyclomatic >= 15 && ratio < 2.5 && in.MaxNesting >= 2 {
		return Pattern{Kind: KindHighBranching, RawCC: in.Cyclomatic, Entropy: entropy, AdjCC: adjCC, Ratio: ratio}
	}
	if in.MaxNesting >= 3 && in.Cyclomatic >= 8 {
		return Pattern{Kind: KindMixedComplexity, RawCC: in.Cyclomatic, Entropy: entropy, AdjCC: adjCC, Ratio: ratio}
	}
	return Pattern{Kind: KindModerateComplexity, RawCC: in.Cyclomatic, Entropy: entropy, AdjCC: adjCC, Ratio: ratio}
}

func tryRepetitiveValidation(in Input, entropy float64, hasEntropy bool, adjCC float64) (Pattern, bool) {
	if !hasEntropy || entropy >= 0.35 || in.Cyclomatic < 10 {
		return Pattern{}, false
	}
	hasValidationSignals := in.Projection.EarlyReturnFraction > 0 || in.Projection.BranchStructuralSimilarity > 0
	if hasValidationSignals {
		if in.Projection.EarlyReturnFraction < 0.6 || in.Projection.BranchStructuralSimilarity < 0.7 {
			return Pattern{}, false
		}
	}
	return Pattern{
		Kind: KindRepetitiveValidation, Checks: in.Checks, Entropy: entropy, RawCC: in.Cyclomatic, AdjCC: adjCC,
	}, true
}

func tryDispatcher(in Input, entropy float64, adjCC float64) (Pattern, bool) {
	ratio := cognitiveRatio(in.Cognitive, in.Cyclomatic)
	if in.Cyclomatic < 10 || in.MaxNesting > 2 || ratio >= 2.0 || in.Projection.HasCoordinatorSignal {
		return Pattern{}, false
	}
	inlineLogicBranches := int(math.Ceil((float64(in.Cognitive) - 1.5*float64(in.Cyclomatic)) / 4))
	if inlineLogicBranches < 0 {
		inlineLogicBranches = 0
	}
	return Pattern{
		Kind: KindDispatcher, RawCC: in.Cyclomatic, Entropy: entropy, AdjCC: adjCC,
		Branches: in.Cyclomatic, Ratio: ratio, InlineLogicBranches: inlineLogicBranches,
	}, true
}

func cognitiveRatio(cognitive, cyclomatic int) float64 {
	if cyclomatic == 0 {
		return 0
	}
	return float64(cognitive) / float64(cyclomatic)
}
