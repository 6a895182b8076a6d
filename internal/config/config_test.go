// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package config

import (
	"errors"
	"testing"

	"github.com/debtmap/debtmap/internal/debterr"
)

func TestLoadDefault_EmbeddedConfigIsValid(t *testing.T) {
	cfg, err := LoadDefault()
	if err != nil {
		t.Fatalf("expected the embedded default config to load cleanly, got %v", err)
	}
	sum := cfg.Scoring.Coverage + cfg.Scoring.Complexity + cfg.Scoring.Dependency
	if diff := sum - 1.0; diff > weightSumTolerance || diff < -weightSumTolerance {
		t.Errorf("expected default scoring weights to sum to 1.0, got %v", sum)
	}
}

func TestLoadDefault_AppliesOptions(t *testing.T) {
	cfg, err := LoadDefault(WithCoverageFile("cov.lcov"), WithClusteringStrategy("type-based"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CoverageFile != "cov.lcov" {
		t.Errorf("expected coverage file override to apply, got %q", cfg.CoverageFile)
	}
	if cfg.GodObjectAnalysis.ClusteringStrategy != "type-based" {
		t.Errorf("expected clustering strategy override to apply, got %q", cfg.GodObjectAnalysis.ClusteringStrategy)
	}
}

func TestLoad_RejectsWeightsNotSummingToOne(t *testing.T) {
	yaml := []byte(`
scoring:
  coverage: 0.5
  complexity: 0.5
  dependency: 0.5
`)
	_, err := Load(yaml)
	if !errors.Is(err, debterr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for weights summing to 1.5, got %v", err)
	}
}

func TestLoad_RejectsUnknownKey(t *testing.T) {
	yaml := []byte(`
scoring:
  coverage: 0.4
  complexity: 0.4
  dependency: 0.2
typo_field: true
`)
	_, err := Load(yaml)
	if !errors.Is(err, debterr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for an unknown top-level key, got %v", err)
	}
}

func TestLoad_RejectsNonMonotoneComplexityScaling(t *testing.T) {
	yaml := []byte(`
scoring:
  coverage: 0.4
  complexity: 0.4
  dependency: 0.2
complexity_scaling:
  enabled: true
  adjusted_0_1: 0.5
  adjusted_2: 0.1
  adjusted_3_4: 0.6
  adjusted_5_7: 0.8
  adjusted_8_plus: 1.0
`)
	_, err := Load(yaml)
	if !errors.Is(err, debterr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for a decreasing scaling threshold, got %v", err)
	}
}

func TestLoad_RejectsOutOfRangeWeight(t *testing.T) {
	yaml := []byte(`
scoring:
  coverage: 1.5
  complexity: -0.3
  dependency: -0.2
`)
	_, err := Load(yaml)
	if !errors.Is(err, debterr.ErrConfigInvalid) {
		t.Fatalf("expected ErrConfigInvalid for an out-of-range weight, got %v", err)
	}
}

func TestLoad_PartialOverrideKeepsDefaultsForUnsetFields(t *testing.T) {
	yaml := []byte(`
scoring:
  coverage: 0.40
  complexity: 0.40
  dependency: 0.20
god_object_analysis:
  clustering_strategy: behavioral
`)
	cfg, err := Load(yaml)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.GodObjectAnalysis.ClusteringStrategy != "behavioral" {
		t.Errorf("expected overridden clustering strategy, got %q", cfg.GodObjectAnalysis.ClusteringStrategy)
	}
	if cfg.GodObjectThresholds.GodClassMinMethods != 20 {
		t.Errorf("expected untouched god-object thresholds to keep their default, got %d", cfg.GodObjectThresholds.GodClassMinMethods)
	}
}
