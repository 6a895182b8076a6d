// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package score computes the unified debt score for one function from its
// complexity, coverage, dependency, role, and purity signals.
package score

import (
	"fmt"
	"math"
)

// Severity buckets the final score for display and filtering.
type Severity int

const (
	SeverityLow Severity = iota
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityLow:
		return "Low"
	case SeverityMedium:
		return "Medium"
	case SeverityHigh:
		return "High"
	case SeverityCritical:
		return "Critical"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// Weights are the base scoring weights, summing to 1.0 before any
// complexity-based coverage scaling is applied.
type Weights struct {
	Coverage   float64
	Complexity float64
	Dependency float64
}

// DefaultWeights matches the configuration surface's documented defaults.
func DefaultWeights() Weights {
	return Weights{Coverage: 0.40, Complexity: 0.40, Dependency: 0.20}
}

// Thresholds are the severity-bucket cutoffs.
type Thresholds struct {
	Critical float64
	High     float64
	Medium   float64
}

// DefaultThresholds matches the configuration surface's documented
// defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{Critical: 15, High: 8, Medium: 3}
}

func (t Thresholds) Bucket(finalScore float64) Severity {
	switch {
	case finalScore >= t.Critical:
		return SeverityCritical
	case finalScore >= t.High:
		return SeverityHigh
	case finalScore >= t.Medium:
		return SeverityMedium
	default:
		return SeverityLow
	}
}

// CoverageScalingTable maps adjusted-cyclomatic-complexity brackets to a
// multiplier on the coverage weight: a trivial function cannot dominate
// the ranking on missing coverage alone, however uncovered it is.
type CoverageScalingTable struct {
	Enabled       bool
	Adjusted01    float64
	Adjusted2     float64
	Adjusted34    float64
	Adjusted57    float64
	Adjusted8Plus float64
}

// DefaultCoverageScalingTable matches the configuration surface's
// documented defaults.
func DefaultCoverageScalingTable() CoverageScalingTable {
	return CoverageScalingTable{
		Enabled: true, Adjusted01: 0.05, Adjusted2: 0.20, Adjusted34: 0.50, Adjusted57: 0.75, Adjusted8Plus: 1.00,
	}
}

func (c CoverageScalingTable) scaleFor(adjustedCC float64) float64 {
	if !c.Enabled {
		return 1.0
	}
	switch {
	case adjustedCC <= 1:
		return c.Adjusted01
	case adjustedCC <= 2:
		return c.Adjusted2
	case adjustedCC <= 4:
		return c.Adjusted34
	case adjustedCC <= 7:
		return c.Adjusted57
	default:
		return c.Adjusted8Plus
	}
}

// ScoreBreakdown is the final score plus every intermediate factor, so
// callers (output writers, recommendation text) can explain it.
type ScoreBreakdown struct {
	CoverageScore   float64
	ComplexityScore float64
	DependencyScore float64

	CoverageWeight   float64
	ComplexityWeight float64
	DependencyWeight float64
	ComplexityScale  float64

	RoleMultiplier   float64
	PurityMultiplier float64

	Final    float64
	Severity Severity
}

// Input is everything the scorer needs about one function.
type Input struct {
	// CoveragePct is nil when coverage data is unavailable for this
	// function.
	CoveragePct *float64

	AdjustedComplexity float64
	Cognitive          int
	MaxNesting         int

	// UpstreamCallerCount is the number of resolved callers (dependency
	// factor input).
	UpstreamCallerCount int

	RoleMultiplier   float64
	PurityMultiplier float64
}

// Score computes the final debt score and its severity bucket for in,
// using w/scaling/thresholds (all default to their documented values via
// DefaultWeights/DefaultCoverageScalingTable/DefaultThresholds).
func Score(in Input, w Weights, scaling CoverageScalingTable, thresholds Thresholds) ScoreBreakdown {
	coverageWeight, complexityWeight, dependencyWeight := w.Coverage, w.Complexity, w.Dependency
	coverageKnown := in.CoveragePct != nil

	if !coverageKnown {
		// Redistribute coverage's weight proportionally to the other two.
		remaining := complexityWeight + dependencyWeight
		if remaining > 0 {
			complexityWeight += coverageWeight * (complexityWeight / remaining)
			dependencyWeight += coverageWeight * (dependencyWeight / remaining)
		}
		coverageWeight = 0
	}

	complexityScale := scaling.scaleFor(in.AdjustedComplexity)
	effectiveCoverageWeight := coverageWeight * complexityScale

	coverageScore := neutralCoverageScore(in.AdjustedComplexity)
	if coverageKnown {
		coverageScore = coverageGapScore(*in.CoveragePct)
	}
	complexityScore := complexityFactor(in.AdjustedComplexity, in.Cognitive, in.MaxNesting)
	dependencyScore := dependencyFactor(in.UpstreamCallerCount)

	roleMult := in.RoleMultiplier
	if roleMult == 0 {
		roleMult = 1.0
	}
	purityMult := in.PurityMultiplier
	if purityMult == 0 {
		purityMult = 1.0
	}

	final := (coverageScore*effectiveCoverageWeight + complexityScore*complexityWeight + dependencyScore*dependencyWeight) * roleMult * purityMult

	return ScoreBreakdown{
		CoverageScore: coverageScore, ComplexityScore: complexityScore, DependencyScore: dependencyScore,
		CoverageWeight: effectiveCoverageWeight, ComplexityWeight: complexityWeight, DependencyWeight: dependencyWeight,
		ComplexityScale: complexityScale, RoleMultiplier: roleMult, PurityMultiplier: purityMult,
		Final: final, Severity: thresholds.Bucket(final),
	}
}

// coverageGapScore maps a coverage percentage to a [0,10]-ish gap score:
// 100% coverage scores 0, 0% coverage scores 10.
func coverageGapScore(coveragePct float64) float64 {
	gap := 100 - coveragePct
	if gap < 0 {
		gap = 0
	}
	return gap / 10
}

// neutralCoverageScore is used only for display purposes when coverage is
// unknown and its weight has already been redistributed to zero; the
// return value does not affect Final since effectiveCoverageWeight is 0.
func neutralCoverageScore(adjustedCC float64) float64 {
	return 5.0
}

// complexityFactor combines adjusted cyclomatic complexity, cognitive
// complexity, and nesting depth into a single monotone [0,10]-ish factor.
func complexityFactor(adjustedCC float64, cognitive, maxNesting int) float64 {
	raw := adjustedCC*0.5 + float64(cognitive)*0.3 + float64(maxNesting)*0.5
	return math.Min(raw, 10.0)
}

// dependencyFactor is a saturating function of upstream caller count: more
// callers means more blast radius if this function is buggy, but the
// marginal signal flattens out quickly.
func dependencyFactor(upstreamCallerCount int) float64 {
	if upstreamCallerCount <= 0 {
		return 0
	}
	return 10.0 * (1.0 - math.Exp(-float64(upstreamCallerCount)/5.0))
}
