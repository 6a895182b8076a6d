// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package godobject

import "math"

// Thresholds configures the dominance classification gates, sourced from
// the [thresholds] configuration surface.
type Thresholds struct {
	GodClassMinMethods int
	GodClassMinFields  int
	GodFileMinFuncs    int
}

// DefaultThresholds matches the documented defaults.
func DefaultThresholds() Thresholds {
	return Thresholds{GodClassMinMethods: 20, GodClassMinFields: 5, GodFileMinFuncs: 50}
}

// methodRatio is the fraction of a file's callable units that are struct
// methods rather than standalone functions.
func methodRatio(m FileMetrics) float64 {
	total := m.StructMethodCount + m.StandaloneFunctionCount
	if total == 0 {
		return 0
	}
	return float64(m.StructMethodCount) / float64(total)
}

// complexityFactor combines the average, maximum, total, and variance of a
// file's per-method cyclomatic complexity into a single multiplier in
// [0.5, 3.0] applied to the dominance score: a file with 30 trivial
// one-line methods is a smaller problem than one with 30 methods
// averaging a cyclomatic complexity of 15. Weights (average 0.4, max 0.3,
// total 0.2, variance 0.1) are the documented defaults, not empirically
// validated beyond a small corpus.
func complexityFactor(c ComplexityMetrics) float64 {
	normalizedAvg := math.Min(c.Average/10.0, 1.0)
	normalizedMax := math.Min(float64(c.Max)/30.0, 1.0)
	normalizedTotal := math.Min(float64(c.Total)/200.0, 1.0)
	normalizedVariance := math.Min(c.Variance/50.0, 1.0)
	raw := 0.5 + 0.25*(4*normalizedAvg+3*normalizedMax+2*normalizedTotal+normalizedVariance)
	return math.Max(0.5, math.Min(raw, 3.0))
}

// Detect classifies a file's dominance shape and computes its score. It
// does not populate RecommendedSplits; call Split separately once a file's
// score clears whatever minimum the caller configures for surfacing
// splits.
func Detect(m FileMetrics, t Thresholds) Analysis {
	ratio := methodRatio(m)
	cf := complexityFactor(m.Complexity)

	var detectionType DetectionType
	switch {
	case m.StructMethodCount >= t.GodClassMinMethods && ratio > 0.5 && m.FieldCount > t.GodClassMinFields:
		detectionType = DetectionGodClass
	case m.StandaloneFunctionCount >= t.GodFileMinFuncs && ratio < 0.3:
		detectionType = DetectionGodFile
	default:
		detectionType = hybridDetectionType(m, ratio)
	}

	score := dominanceScore(m, ratio, cf)

	return Analysis{
		MethodCount: m.StructMethodCount, FieldCount: m.FieldCount,
		StandaloneFunctionCount: m.StandaloneFunctionCount, ResponsibilityCount: m.ResponsibilityCount,
		LinesOfCode: m.LinesOfCode, Complexity: m.Complexity,
		DetectionType: detectionType, Score: score,
	}
}

// hybridDetectionType picks a type for a file that clears neither strong
// gate outright, weighting method ratio and field count toward GodClass
// and the complement toward GodModule/GodFile.
func hybridDetectionType(m FileMetrics, ratio float64) DetectionType {
	classWeight := ratio*0.6 + weightFromFieldCount(m.FieldCount)*0.4
	if classWeight >= 0.5 {
		return DetectionGodClass
	}
	if m.StandaloneFunctionCount > m.StructMethodCount {
		return DetectionGodModule
	}
	return DetectionGodFile
}

func weightFromFieldCount(fieldCount int) float64 {
	return math.Min(float64(fieldCount)/20.0, 1.0)
}

// dominanceScore is the base factor product (method count, field count,
// responsibility count, LOC) scaled by complexityFactor, clamped so a
// threshold-violations count never drives the score below the minimum
// severity tier its detection type implies.
func dominanceScore(m FileMetrics, ratio float64, cf float64) float64 {
	base := float64(m.StructMethodCount+m.StandaloneFunctionCount)*0.3 +
		float64(m.FieldCount)*0.2 +
		float64(m.ResponsibilityCount)*1.5 +
		float64(m.LinesOfCode)/100.0
	score := base * cf
	minFloor := minSeverityFloor(m, ratio)
	return math.Max(score, minFloor)
}

// minSeverityFloor enforces that a file crossing a strong dominance gate
// is never scored below the tier that gate implies, regardless of how low
// its complexity factor happens to be.
func minSeverityFloor(m FileMetrics, ratio float64) float64 {
	if m.StructMethodCount >= 20 && ratio > 0.5 && m.FieldCount > 5 {
		return 8.0
	}
	if m.StandaloneFunctionCount >= 50 && ratio < 0.3 {
		return 8.0
	}
	return 0
}
