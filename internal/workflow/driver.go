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
	"context"
	"errors"
	"fmt"

	"github.com/debtmap/debtmap/internal/debterr"
)

// step pairs one guard with the action it gates.
type step struct {
	name  string
	guard guard
	act   action
}

// transitionTable is the fixed sequence of guard/action pairs. Order only
// matters for diagnosing ambiguity (the first match is reported), since
// by construction at most one guard ever holds for a given phase.
func transitionTable() []step {
	return []step{
		{"BuildCallGraph", guardBuildCallGraph, actionBuildCallGraph},
		{"LoadCoverage", guardLoadCoverage, actionLoadCoverage},
		{"SkipCoverage", guardSkipCoverage, actionSkipCoverage},
		{"AnalyzePurity", guardAnalyzePurity, actionAnalyzePurity},
		{"LoadContext", guardLoadContext, actionLoadContext},
		{"SkipContext", guardSkipContext, actionSkipContext},
		{"Score", guardScore, actionScore},
		{"Filter", guardFilter, actionFilter},
	}
}

// Run drives s from its current phase to Complete, selecting the first
// action whose guard holds at each iteration. Two guards holding
// simultaneously is a programming error, not a recoverable condition: it
// means the transition table was built incorrectly, and Run returns
// ErrWorkflowGuardViolation rather than silently picking one.
//
// Any action error aborts the run; the returned error carries the phase
// the failing action was in, matching the "Failed during X: ..." format
// debterr.CoreError renders.
func Run(ctx context.Context, s *AnalysisState, env *Env) error {
	for s.Phase != Complete {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := RunOnePhase(ctx, s, env); err != nil {
			return err
		}
	}
	return nil
}

// RunOnePhase selects the single action whose guard holds at s's current
// phase, runs it, and returns. Exported so a caller that wants to
// checkpoint between every phase (see pkg/debtmap.Run) can drive the same
// ambiguity/advancement checks Run uses, one phase at a time, rather than
// to Complete in one call. s.Phase == Complete is a no-op.
func RunOnePhase(ctx context.Context, s *AnalysisState, env *Env) error {
	if s.Phase == Complete {
		return nil
	}
	table := transitionTable()

	matched := -1
	for i, st := range table {
		if st.guard(s) {
			if matched != -1 {
				return debterr.New(debterr.KindWorkflowGuardViolation,
					fmt.Errorf("%w: %q and %q both hold at phase %s", debterr.ErrWorkflowGuardViolation, table[matched].name, st.name, s.Phase),
					s.Phase.String(), "", progressFractionOf(env))
			}
			matched = i
		}
	}
	if matched == -1 {
		return debterr.New(debterr.KindWorkflowGuardViolation,
			fmt.Errorf("%w: no guard holds at phase %s", debterr.ErrWorkflowGuardViolation, s.Phase),
			s.Phase.String(), "", progressFractionOf(env))
	}

	before := s.Phase
	if err := table[matched].act(ctx, s, env); err != nil {
		return debterr.New(phaseFailureKind(err), err, before.String(), "", progressFractionOf(env))
	}
	if s.Phase == before {
		return debterr.New(debterr.KindWorkflowGuardViolation,
			fmt.Errorf("%w: action %q did not advance the phase", debterr.ErrWorkflowGuardViolation, table[matched].name),
			before.String(), "", progressFractionOf(env))
	}
	return nil
}

// phaseFailureKind maps an action error to the debterr.Kind it should be
// reported under, preserving the specific kind an action already
// identified (coverage-missing, checkpoint-corrupt) and falling back to
// the generic analysis-failure kind otherwise.
func phaseFailureKind(err error) debterr.Kind {
	switch {
	case errors.Is(err, debterr.ErrCoverageMissing):
		return debterr.KindCoverageMissing
	case errors.Is(err, debterr.ErrCheckpointCorrupt):
		return debterr.KindCheckpointCorrupt
	default:
		return debterr.KindAnalysisFailure
	}
}

func progressFractionOf(env *Env) float64 {
	if env == nil || env.Progress == nil {
		return -1
	}
	return env.Progress.Fraction()
}
