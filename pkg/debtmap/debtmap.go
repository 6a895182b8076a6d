// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package debtmap is the public entry point: Run (and Resume) drive the
// internal workflow state machine to completion and translate its Results
// into the stable UnifiedAnalysis shape external callers consume. No
// internal package outside main wiring is exported; the Env type bundles
// every external collaborator a caller supplies.
package debtmap

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"

	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/classifier"
	"github.com/debtmap/debtmap/internal/config"
	"github.com/debtmap/debtmap/internal/coverage"
	"github.com/debtmap/debtmap/internal/diagnostics"
	"github.com/debtmap/debtmap/internal/purity"
	"github.com/debtmap/debtmap/internal/workflow"
)

// Parser is the external, language-specific front end a caller supplies:
// given root paths, it returns one FileParse per analyzed source file.
type Parser = astmodel.Parser

// CoverageLoader is the external collaborator that turns a path (e.g. to
// an LCOV file) into a CoverageMap.
type CoverageLoader = coverage.CoverageLoader

// CoverageMode describes whether a run had coverage data available.
type CoverageMode int

const (
	CoverageModeNone CoverageMode = iota
	CoverageModeEnabled
)

func (m CoverageMode) String() string {
	if m == CoverageModeEnabled {
		return "Enabled"
	}
	return "None"
}

// Meta summarizes a run: whether coverage was available, how many
// functions were analyzed, how long it took, and which files were
// skipped and why.
type Meta struct {
	CoverageMode       CoverageMode
	OverallCoveragePct float64
	TotalFunctions     int
	AnalysisDuration   time.Duration
	SkippedFiles       []workflow.SkippedFile
}

// UnifiedAnalysis is the stable output shape every writer (JSON, Markdown,
// HTML, interactive) renders from. Items are already sorted in descending
// score order and deduplicated by the workflow's filtering phase.
type UnifiedAnalysis struct {
	Items     []workflow.DebtItem
	FileItems []workflow.GodObjectItem
	Meta      Meta
}

// Env bundles every external collaborator a run needs beyond the parsed
// input itself: the language-specific predicates, file access for context
// snippets, progress/crash diagnostics, and optional checkpoint storage.
// Every field but FS is optional; a nil Predicate/Projector/LocalAnalyzer
// falls back to the core's built-in heuristics or a no-op, matching each
// collaborator interface's documented zero-value behavior.
type Env struct {
	FS            workflow.FileSystem
	Predicate     classifier.Predicate
	Projector     astmodel.Projector
	LocalAnalyzer purity.LocalAnalyzer

	Progress *diagnostics.Progress
	Tracker  *diagnostics.Tracker

	// CheckpointDB, when non-nil, causes Run to save a checkpoint after
	// every phase transition, keyed by RunID, so a crashed or cancelled
	// run can later be continued with Resume.
	CheckpointDB *badger.DB
	RunID        string
}

func (e Env) toWorkflowEnv(loader CoverageLoader) *workflow.Env {
	return &workflow.Env{
		FS:             e.FS,
		Progress:       e.Progress,
		Tracker:        e.Tracker,
		CoverageLoader: loader,
		LocalAnalyzer:  e.LocalAnalyzer,
		Projector:      e.Projector,
		Predicate:      e.Predicate,
	}
}

// Run parses nothing itself: parsed must already hold every analyzed
// file's FunctionMetrics, ItemAsts, and raw call references, produced by
// calling the caller-supplied Parser over their own root paths (parsing
// is not a workflow phase; see internal/workflow's package doc). Run
// drives the workflow from Initialized to Complete and translates the
// resulting AnalysisState into a UnifiedAnalysis.
func Run(ctx context.Context, cfg config.AnalysisConfig, parsed []astmodel.FileParse, loader CoverageLoader, env Env) (*UnifiedAnalysis, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}

	runID := env.RunID
	if runID == "" {
		runID = uuid.NewString()
	}
	state := workflow.NewState(runID, cfg, parsed)

	start := time.Now()
	if err := runWithCheckpoints(ctx, state, env, loader); err != nil {
		return nil, err
	}
	return buildResult(state, time.Since(start)), nil
}

// Resume loads a previously saved checkpoint from db and continues the
// workflow to completion, using the same Env a fresh Run would use (the
// checkpoint's own Config/Results/Parsed already carry everything else).
func Resume(ctx context.Context, db *badger.DB, runID string, loader CoverageLoader, env Env) (*UnifiedAnalysis, error) {
	state, err := workflow.LoadCheckpoint(db, runID)
	if err != nil {
		return nil, err
	}
	env.CheckpointDB = db
	env.RunID = runID

	start := time.Now()
	if err := runWithCheckpoints(ctx, state, env, loader); err != nil {
		return nil, err
	}
	return buildResult(state, time.Since(start)), nil
}

// runWithCheckpoints drives the workflow, saving a checkpoint after every
// completed phase when env.CheckpointDB is configured, so a cancelled or
// crashed run can resume from the last completed phase rather than from
// scratch, matching the checkpoint contract that cancellation "records
// the last completed phase" and never emits partial output otherwise.
func runWithCheckpoints(ctx context.Context, state *workflow.AnalysisState, env Env, loader CoverageLoader) error {
	wenv := env.toWorkflowEnv(loader)
	if env.CheckpointDB == nil {
		return workflow.Run(ctx, state, wenv)
	}

	for state.Phase != workflow.Complete {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("debtmap: run cancelled: %w", err)
		}
		before := state.Phase
		if err := workflow.RunOnePhase(ctx, state, wenv); err != nil {
			return err
		}
		if state.Phase == before {
			break
		}
		if err := workflow.SaveCheckpoint(env.CheckpointDB, state); err != nil {
			return fmt.Errorf("debtmap: saving checkpoint after phase %s: %w", before, err)
		}
	}
	return nil
}

func buildResult(state *workflow.AnalysisState, duration time.Duration) *UnifiedAnalysis {
	mode := CoverageModeNone
	var overallPct float64
	if state.Results.HasCoverage {
		mode = CoverageModeEnabled
		overallPct = overallCoveragePct(state.Results.Coverage)
	}

	return &UnifiedAnalysis{
		Items:     state.Results.DebtItems,
		FileItems: state.Results.GodObjects,
		Meta: Meta{
			CoverageMode:       mode,
			OverallCoveragePct: overallPct,
			TotalFunctions:     countFunctions(state.Parsed),
			AnalysisDuration:   duration,
			SkippedFiles:       state.Results.SkippedFiles,
		},
	}
}

func countFunctions(parsed []astmodel.FileParse) int {
	n := 0
	for _, f := range parsed {
		n += len(f.Functions)
	}
	return n
}

func overallCoveragePct(cm coverage.CoverageMap) float64 {
	var hit, total int
	for _, fc := range cm.PerFile {
		for _, n := range fc.LineHits {
			total++
			if n > 0 {
				hit++
			}
		}
	}
	if total == 0 {
		return 0
	}
	return float64(hit) / float64(total) * 100
}
