// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package workflow orchestrates analysis as an explicit phase machine:
// pure guards decide which action runs next, actions mutate exactly one
// field group of AnalysisState and advance its phase, and the driver
// repeatedly picks the first action whose guard holds. Two guards holding
// at once is a programming error (ErrWorkflowGuardViolation), not a
// recoverable condition.
package workflow

import (
	"fmt"

	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/callgraph"
	"github.com/debtmap/debtmap/internal/classifier"
	"github.com/debtmap/debtmap/internal/config"
	"github.com/debtmap/debtmap/internal/coverage"
	"github.com/debtmap/debtmap/internal/godobject"
	"github.com/debtmap/debtmap/internal/pattern"
	"github.com/debtmap/debtmap/internal/purity"
	"github.com/debtmap/debtmap/internal/recommend"
	"github.com/debtmap/debtmap/internal/score"
)

// Phase is one step of the analysis pipeline. The enum is total:
// every AnalysisState's Phase is always one of these values, never a
// zero value representing "unset" (Initialized fills that role).
type Phase int

const (
	Initialized Phase = iota
	CallGraphBuilding
	CallGraphComplete
	CoverageLoading
	CoverageComplete
	PurityAnalyzing
	PurityComplete
	ContextLoading
	ContextComplete
	ScoringInProgress
	ScoringComplete
	FilteringInProgress
	Complete
)

func (p Phase) String() string {
	switch p {
	case Initialized:
		return "Initialized"
	case CallGraphBuilding:
		return "CallGraphBuilding"
	case CallGraphComplete:
		return "CallGraphComplete"
	case CoverageLoading:
		return "CoverageLoading"
	case CoverageComplete:
		return "CoverageComplete"
	case PurityAnalyzing:
		return "PurityAnalyzing"
	case PurityComplete:
		return "PurityComplete"
	case ContextLoading:
		return "ContextLoading"
	case ContextComplete:
		return "ContextComplete"
	case ScoringInProgress:
		return "ScoringInProgress"
	case ScoringComplete:
		return "ScoringComplete"
	case FilteringInProgress:
		return "FilteringInProgress"
	case Complete:
		return "Complete"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// DebtItem is the final, frozen output of one function's analysis: its
// identity, its score and severity, the structural pattern and role that
// shaped the score, its purity verdict, and the recommendation text.
// Created only in the scoring phase, never mutated afterward.
type DebtItem struct {
	Location       astmodel.FunctionId
	Score          float64
	Severity       score.Severity
	Factors        score.ScoreBreakdown
	Role           classifier.Role
	RoleConfidence float64
	Pattern        pattern.Pattern
	Purity         purity.Analysis
	Recommendation *recommend.Recommendation
}

// GodObjectItem pairs a file-level god-object verdict with the path it
// was computed for.
type GodObjectItem struct {
	Path     string
	Analysis godobject.Analysis
}

// Results accumulates everything each phase produces. Every field here is
// written by exactly one phase's action and is read-only to every later
// phase — the call graph, purity map, and function metrics are treated as
// immutable the moment their producing phase completes.
type Results struct {
	Graph *callgraph.Graph

	Coverage    coverage.CoverageMap
	HasCoverage bool

	Purity map[astmodel.FunctionId]purity.Analysis

	Context map[astmodel.FunctionId]string

	DebtItems  []DebtItem
	GodObjects []GodObjectItem

	// SkippedFiles records files dropped with a per-file error and why,
	// so the run's output meta never silently loses data.
	SkippedFiles []SkippedFile
}

// SkippedFile is one file that could not be analyzed, recovered locally
// rather than aborting the whole run.
type SkippedFile struct {
	Path   string
	Reason string
}

// AnalysisState is the single mutable record the driver threads through
// every phase. Owned exclusively by the driver and passed by pointer to
// actions; guards only ever read it.
type AnalysisState struct {
	Phase   Phase
	Config  config.AnalysisConfig
	Results Results

	// Parsed is the immutable parser output the run was constructed with.
	// Produced once, before the workflow starts (parsing itself is not a
	// workflow phase), and never mutated.
	Parsed []astmodel.FileParse

	// RunID identifies this run for checkpoint storage.
	RunID string
}

// NewState builds the Initialized state for one run. parsed must already
// hold every file's FunctionMetrics and ItemAsts; the workflow never
// parses source itself.
func NewState(runID string, cfg config.AnalysisConfig, parsed []astmodel.FileParse) *AnalysisState {
	return &AnalysisState{
		Phase:  Initialized,
		Config: cfg,
		Parsed: parsed,
		RunID:  runID,
		Results: Results{
			Purity:  make(map[astmodel.FunctionId]purity.Analysis),
			Context: make(map[astmodel.FunctionId]string),
		},
	}
}
