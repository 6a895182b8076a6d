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
	"testing"

	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/config"
	"github.com/debtmap/debtmap/internal/coverage"
	"github.com/debtmap/debtmap/internal/debterr"
	"github.com/debtmap/debtmap/internal/purity"
)

type fakeCoverageLoader struct {
	cm  coverage.CoverageMap
	err error
}

func (f fakeCoverageLoader) Load(path string) (coverage.CoverageMap, error) {
	return f.cm, f.err
}

type fakeLocalAnalyzer struct{}

func (fakeLocalAnalyzer) AnalyzeLocal(fm astmodel.FunctionMetrics, ast astmodel.ItemAst) purity.LocalObservation {
	return purity.LocalObservation{}
}

type fakeFileSystem struct{}

func (fakeFileSystem) ReadFile(path string) ([]byte, error) {
	return []byte("package fake\n"), nil
}

func newTestEnv() *Env {
	return &Env{
		FS:             fakeFileSystem{},
		CoverageLoader: fakeCoverageLoader{cm: coverage.CoverageMap{}},
		LocalAnalyzer:  fakeLocalAnalyzer{},
	}
}

func samplePlainFile() astmodel.FileParse {
	return astmodel.FileParse{
		Path:    "a.go",
		Package: "pkg/a",
		Functions: []astmodel.FunctionMetrics{
			{ID: astmodel.NewFunctionId("a.go", "doWork", 1), Cyclomatic: 2, Cognitive: 1},
		},
		ItemAsts: map[astmodel.FunctionId]astmodel.ItemAst{},
	}
}

func TestRun_DrivesStateToComplete(t *testing.T) {
	s := NewState("run-1", config.Default(), []astmodel.FileParse{samplePlainFile()})
	err := Run(context.Background(), s, newTestEnv())
	if err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if s.Phase != Complete {
		t.Fatalf("expected phase Complete, got %s", s.Phase)
	}
	if len(s.Results.DebtItems) != 1 {
		t.Fatalf("expected 1 debt item, got %d", len(s.Results.DebtItems))
	}
}

func TestRun_HonorsCancellationWithoutCheckpointing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewState("run-cancel", config.Default(), []astmodel.FileParse{samplePlainFile()})
	err := Run(ctx, s, newTestEnv())
	if err == nil {
		t.Fatal("expected Run to return an error for an already-cancelled context")
	}
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected the error to wrap context.Canceled, got %v", err)
	}
	if s.Phase == Complete {
		t.Fatal("expected a cancelled run to stop before reaching Complete")
	}
}

func TestRun_SkipsCoverageAndContextWhenUnconfigured(t *testing.T) {
	cfg := config.Default()
	cfg.CoverageFile = ""
	cfg.ContextEnabled = false
	s := NewState("run-2", cfg, []astmodel.FileParse{samplePlainFile()})

	if err := Run(context.Background(), s, newTestEnv()); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if s.Results.HasCoverage {
		t.Fatal("expected HasCoverage to be false when no coverage file is configured")
	}
	if len(s.Results.Context) != 0 {
		t.Fatal("expected Context to stay empty when context loading is disabled")
	}
}

func TestRun_LoadsCoverageWhenConfigured(t *testing.T) {
	cfg := config.Default()
	cfg.CoverageFile = "cover.lcov"
	s := NewState("run-3", cfg, []astmodel.FileParse{samplePlainFile()})

	env := newTestEnv()
	if err := Run(context.Background(), s, env); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if !s.Results.HasCoverage {
		t.Fatal("expected HasCoverage to be true when a coverage file is configured")
	}
}

func TestRun_CoverageLoadFailureIsFatalAndTagged(t *testing.T) {
	cfg := config.Default()
	cfg.CoverageFile = "cover.lcov"
	s := NewState("run-4", cfg, []astmodel.FileParse{samplePlainFile()})

	env := newTestEnv()
	env.CoverageLoader = fakeCoverageLoader{err: errors.New("malformed lcov")}

	err := Run(context.Background(), s, env)
	if err == nil {
		t.Fatal("expected Run to return an error when coverage loading fails")
	}
	if !errors.Is(err, debterr.ErrCoverageMissing) {
		t.Fatalf("expected error to wrap ErrCoverageMissing, got %v", err)
	}
	var coreErr *debterr.CoreError
	if !errors.As(err, &coreErr) {
		t.Fatalf("expected error to be a *debterr.CoreError, got %T", err)
	}
	if coreErr.Kind != debterr.KindCoverageMissing {
		t.Fatalf("expected KindCoverageMissing, got %s", coreErr.Kind)
	}
}

func TestTransitionTable_DuplicatedGuardIsAmbiguous(t *testing.T) {
	s := NewState("run-5", config.Default(), []astmodel.FileParse{samplePlainFile()})
	table := transitionTable()
	table = append(table, step{
		name:  "DuplicateInitial",
		guard: func(s *AnalysisState) bool { return s.Phase == Initialized },
		act:   func(context.Context, *AnalysisState, *Env) error { return nil },
	})

	matched := -1
	ambiguous := false
	for i, st := range table {
		if st.guard(s) {
			if matched != -1 {
				ambiguous = true
			}
			matched = i
		}
	}
	if !ambiguous {
		t.Fatal("expected the duplicated guard to be detected as ambiguous")
	}
}

func TestStubAction_DoesNotAdvancePhase(t *testing.T) {
	s := NewState("run-6", config.Default(), []astmodel.FileParse{samplePlainFile()})
	s.Phase = Initialized

	badTable := []step{
		{"StuckBuildCallGraph", guardBuildCallGraph, func(context.Context, *AnalysisState, *Env) error { return nil }},
	}
	matched := -1
	for i, st := range badTable {
		if st.guard(s) {
			matched = i
		}
	}
	if matched == -1 {
		t.Fatal("expected guardBuildCallGraph to hold for an Initialized state with parsed files")
	}
	before := s.Phase
	if err := badTable[matched].act(context.Background(), s, newTestEnv()); err != nil {
		t.Fatalf("stub action returned error: %v", err)
	}
	if s.Phase != before {
		t.Fatal("expected the stub action to leave the phase unchanged, matching the bug Run's advancement check catches")
	}
}
