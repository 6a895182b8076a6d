// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package debterr defines the error taxonomy for the debtmap core pipeline.
package debterr

import (
	"errors"
	"fmt"
)

// Kind classifies a core error by what phase of the pipeline produced it.
type Kind string

const (
	// KindConfigInvalid marks configuration that failed validation before
	// any analysis phase started.
	KindConfigInvalid Kind = "config_invalid"

	// KindCoverageMissing marks a configured but unreadable/malformed
	// coverage file.
	KindCoverageMissing Kind = "coverage_missing"

	// KindCheckpointCorrupt marks a resume request whose saved state fails
	// an invariant check.
	KindCheckpointCorrupt Kind = "checkpoint_corrupt"

	// KindParserFailure marks a bubble-through from an external parser.
	// Per-file; analysis continues for the rest of the run.
	KindParserFailure Kind = "parser_failure"

	// KindAnalysisFailure marks a phase action failing for a reason that
	// is none of the other named kinds (e.g. call-graph construction or
	// scoring itself erroring out). Always fatal: it aborts the workflow.
	KindAnalysisFailure Kind = "analysis_failure"

	// KindWorkflowGuardViolation marks two workflow guards holding at once.
	// Programmer error: asserted in debug, fatal in release.
	KindWorkflowGuardViolation Kind = "workflow_guard_violation"

	// KindPanic marks a recovered panic, after the diagnostics panic hook
	// has produced a structured crash report.
	KindPanic Kind = "panic"
)

// Sentinel errors, wrapped with fmt.Errorf("%w: ...", ...) at the call
// site so errors.Is/errors.As keep working through CoreError.Unwrap.
var (
	ErrConfigInvalid          = errors.New("debtmap: configuration invalid")
	ErrCoverageMissing        = errors.New("debtmap: coverage file missing or malformed")
	ErrCheckpointCorrupt      = errors.New("debtmap: checkpoint failed invariant check")
	ErrParserFailure          = errors.New("debtmap: parser failed for file")
	ErrAnalysisFailure        = errors.New("debtmap: analysis phase failed")
	ErrWorkflowGuardViolation = errors.New("debtmap: ambiguous workflow guard")
	ErrPanic                  = errors.New("debtmap: recovered panic")
)

// CoreError is the single concrete error type the core returns. It carries
// enough context (phase, file, progress) that a user-visible message reads
// like "Failed during CoverageLoading: cannot parse /path/to/file.lcov
// (processed 0/4231 files)."
type CoreError struct {
	Kind     Kind
	Phase    string
	File     string
	Progress float64 // fraction in [0,1], -1 if unknown
	Cause    error
}

// Error implements the error interface.
func (e *CoreError) Error() string {
	msg := fmt.Sprintf("failed during %s", e.Phase)
	if e.File != "" {
		msg += fmt.Sprintf(": %s", e.File)
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(": %v", e.Cause)
	}
	if e.Progress >= 0 {
		msg += fmt.Sprintf(" (progress %.1f%%)", e.Progress*100)
	}
	return msg
}

// Unwrap exposes the wrapped cause so errors.Is(err, debterr.ErrXxx) works.
func (e *CoreError) Unwrap() error {
	return e.Cause
}

// New builds a CoreError for the given kind, phase, file, and progress
// fraction. progress may be negative to mean "unknown".
func New(kind Kind, cause error, phase, file string, progress float64) *CoreError {
	return &CoreError{Kind: kind, Phase: phase, File: file, Progress: progress, Cause: cause}
}

// IsFatalPhase reports whether an error of this kind aborts the whole
// workflow (true) or is recovered per-file (false).
func IsFatalPhase(kind Kind) bool {
	switch kind {
	case KindParserFailure:
		return false
	default:
		return true
	}
}
