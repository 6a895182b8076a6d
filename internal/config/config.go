// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package config loads and validates AnalysisConfig, the tunable surface
// every phase of the pipeline reads from: scoring weights, complexity
// scaling thresholds, role multipliers, god-object thresholds, pattern
// detection knobs, and split-naming rules.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/debtmap/debtmap/internal/debterr"
	"github.com/debtmap/debtmap/internal/godobject"
	"github.com/debtmap/debtmap/internal/score"
)

//go:embed default.yaml
var defaultYAML []byte

// ScoringWeights are the three base factor weights, sourced from
// `[scoring]`. Must sum to 1.0.
type ScoringWeights struct {
	Coverage   float64 `yaml:"coverage" validate:"gte=0,lte=1"`
	Complexity float64 `yaml:"complexity" validate:"gte=0,lte=1"`
	Dependency float64 `yaml:"dependency" validate:"gte=0,lte=1"`
}

// ComplexityScaling is `[scoring.complexity_scaling]`.
type ComplexityScaling struct {
	Enabled       bool    `yaml:"enabled"`
	Adjusted01    float64 `yaml:"adjusted_0_1" validate:"gte=0,lte=1"`
	Adjusted2     float64 `yaml:"adjusted_2" validate:"gte=0,lte=1"`
	Adjusted34    float64 `yaml:"adjusted_3_4" validate:"gte=0,lte=1"`
	Adjusted57    float64 `yaml:"adjusted_5_7" validate:"gte=0,lte=1"`
	Adjusted8Plus float64 `yaml:"adjusted_8_plus" validate:"gte=0,lte=1"`
}

// RoleMultipliers is `[scoring.roles]`.
type RoleMultipliers struct {
	EntryPoint   float64 `yaml:"entry_point" validate:"gte=0"`
	PureLogic    float64 `yaml:"pure_logic" validate:"gte=0"`
	Orchestrator float64 `yaml:"orchestrator" validate:"gte=0"`
	PatternMatch float64 `yaml:"pattern_match" validate:"gte=0"`
	IOWrapper    float64 `yaml:"io_wrapper" validate:"gte=0"`
}

// ScoringThresholds is `[thresholds]`'s severity-bucket portion.
type ScoringThresholds struct {
	Critical float64 `yaml:"critical" validate:"gtefield=High"`
	High     float64 `yaml:"high" validate:"gtefield=Medium"`
	Medium   float64 `yaml:"medium" validate:"gte=0"`
}

// GodObjectThresholds is `[thresholds]`'s god-object portion.
type GodObjectThresholds struct {
	GodClassMinMethods int `yaml:"god_class_min_methods" validate:"gt=0"`
	GodClassMinFields  int `yaml:"god_class_min_fields" validate:"gt=0"`
	GodFileMinFuncs    int `yaml:"god_file_min_funcs" validate:"gt=0"`
}

// RepetitiveValidationConfig is `[patterns.repetitive_validation]`.
type RepetitiveValidationConfig struct {
	Enabled                 bool    `yaml:"enabled"`
	MaxEntropy              float64 `yaml:"max_entropy" validate:"gte=0,lte=1"`
	MinChecks               int     `yaml:"min_checks" validate:"gt=0"`
	MinEarlyReturnRatio     float64 `yaml:"min_early_return_ratio" validate:"gte=0,lte=1"`
	MinStructuralSimilarity float64 `yaml:"min_structural_similarity" validate:"gte=0,lte=1"`
	DampeningFactor         float64 `yaml:"dampening_factor" validate:"gt=0,lte=1"`
}

// SplitNamingConfig is `[split_naming]`.
type SplitNamingConfig struct {
	RejectPatterns      []string `yaml:"reject_patterns"`
	MinNameLength       int      `yaml:"min_name_length" validate:"gt=0"`
	TypeBasedThreshold  float64  `yaml:"type_based_threshold" validate:"gte=0,lte=1"`
	BehavioralThreshold float64  `yaml:"behavioral_threshold" validate:"gte=0,lte=1"`
}

// GodObjectAnalysisConfig is `[analysis.god_object]`.
type GodObjectAnalysisConfig struct {
	ClusteringStrategy string `yaml:"clustering_strategy" validate:"oneof=behavioral type-based both auto"`
}

// AlmostPureConfig is `[analysis.almost_pure]`.
type AlmostPureConfig struct {
	Enabled             bool    `yaml:"enabled"`
	MinPurityConfidence float64 `yaml:"min_purity_confidence" validate:"gte=0,lte=1"`
}

// AnalysisConfig is the complete validated tunable surface for one run.
type AnalysisConfig struct {
	Scoring              ScoringWeights             `yaml:"scoring" validate:"required"`
	ComplexityScaling    ComplexityScaling          `yaml:"complexity_scaling"`
	Roles                RoleMultipliers            `yaml:"roles"`
	ScoringThresholds    ScoringThresholds          `yaml:"scoring_thresholds"`
	GodObjectThresholds  GodObjectThresholds        `yaml:"god_object_thresholds"`
	RepetitiveValidation RepetitiveValidationConfig `yaml:"repetitive_validation"`
	SplitNaming          SplitNamingConfig          `yaml:"split_naming"`
	GodObjectAnalysis    GodObjectAnalysisConfig    `yaml:"god_object_analysis"`
	AlmostPure           AlmostPureConfig           `yaml:"almost_pure"`

	CoverageFile   string `yaml:"coverage_file"`
	ContextEnabled bool   `yaml:"context_enabled"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

const weightSumTolerance = 1e-6

// Load parses YAML bytes into an AnalysisConfig and validates it,
// returning debterr.ErrConfigInvalid-wrapped errors so callers can
// errors.Is against it regardless of which check failed. Unrecognized
// keys are rejected rather than silently ignored, since a typo'd field
// name (e.g. "compexity") should fail loudly instead of silently
// reverting to its zero value.
func Load(data []byte) (AnalysisConfig, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return AnalysisConfig{}, fmt.Errorf("%w: parsing yaml: %v", debterr.ErrConfigInvalid, err)
	}
	if err := Validate(cfg); err != nil {
		return AnalysisConfig{}, err
	}
	slog.Info("analysis config loaded",
		slog.Float64("coverage_weight", cfg.Scoring.Coverage),
		slog.Float64("complexity_weight", cfg.Scoring.Complexity),
		slog.Float64("dependency_weight", cfg.Scoring.Dependency),
		slog.Bool("complexity_scaling_enabled", cfg.ComplexityScaling.Enabled),
	)
	return cfg, nil
}

// Validate runs struct-tag validation plus the cross-field checks struct
// tags alone can't express: the scoring weights summing to 1.0, and the
// complexity-scaling thresholds sitting in non-decreasing order (the
// scaling factor must be monotone in adjusted_cc).
func Validate(cfg AnalysisConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("%w: %v", debterr.ErrConfigInvalid, err)
	}

	sum := cfg.Scoring.Coverage + cfg.Scoring.Complexity + cfg.Scoring.Dependency
	if diff := sum - 1.0; diff > weightSumTolerance || diff < -weightSumTolerance {
		return fmt.Errorf("%w: scoring weights must sum to 1.0, got %.4f", debterr.ErrConfigInvalid, sum)
	}

	if cfg.ComplexityScaling.Enabled {
		scale := cfg.ComplexityScaling
		if !(scale.Adjusted01 <= scale.Adjusted2 &&
			scale.Adjusted2 <= scale.Adjusted34 &&
			scale.Adjusted34 <= scale.Adjusted57 &&
			scale.Adjusted57 <= scale.Adjusted8Plus) {
			return fmt.Errorf("%w: complexity scaling thresholds must be non-decreasing", debterr.ErrConfigInvalid)
		}
	}

	return nil
}

// LoadDefault returns the embedded default AnalysisConfig, applying any
// overrides. It never fails on parsing since the embedded YAML is
// fixed at build time; validation failures there indicate a bug in
// default.yaml itself.
func LoadDefault(opts ...Option) (AnalysisConfig, error) {
	cfg, err := Load(defaultYAML)
	if err != nil {
		return AnalysisConfig{}, fmt.Errorf("embedded default config is invalid: %w", err)
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if err := Validate(cfg); err != nil {
		return AnalysisConfig{}, err
	}
	return cfg, nil
}

// Option mutates an AnalysisConfig after it has been loaded, the way
// command-line flags or per-run tuning override file-sourced defaults.
type Option func(*AnalysisConfig)

// WithCoverageFile points the analysis at an LCOV file to merge into scoring.
func WithCoverageFile(path string) Option {
	return func(c *AnalysisConfig) {
		c.CoverageFile = path
	}
}

// WithContextEnabled toggles surrounding-context loading for recommendations.
func WithContextEnabled(enabled bool) Option {
	return func(c *AnalysisConfig) {
		c.ContextEnabled = enabled
	}
}

// WithClusteringStrategy overrides the god-object clustering strategy.
func WithClusteringStrategy(strategy string) Option {
	return func(c *AnalysisConfig) {
		c.GodObjectAnalysis.ClusteringStrategy = strategy
	}
}

// WithScoringWeights overrides the three base factor weights.
func WithScoringWeights(weights ScoringWeights) Option {
	return func(c *AnalysisConfig) {
		c.Scoring = weights
	}
}

// ScoreWeights projects the scoring section into score.Weights. Kept as
// a same-shape conversion (rather than a shared type) so internal/score
// has no dependency on internal/config and stays usable standalone.
func (c AnalysisConfig) ScoreWeights() score.Weights {
	return score.Weights{Coverage: c.Scoring.Coverage, Complexity: c.Scoring.Complexity, Dependency: c.Scoring.Dependency}
}

// ScoreThresholds projects the severity-bucket section into score.Thresholds.
func (c AnalysisConfig) ScoreThresholds() score.Thresholds {
	return score.Thresholds{Critical: c.ScoringThresholds.Critical, High: c.ScoringThresholds.High, Medium: c.ScoringThresholds.Medium}
}

// ScoreScalingTable projects the complexity-scaling section into
// score.CoverageScalingTable.
func (c AnalysisConfig) ScoreScalingTable() score.CoverageScalingTable {
	s := c.ComplexityScaling
	return score.CoverageScalingTable{
		Enabled: s.Enabled, Adjusted01: s.Adjusted01, Adjusted2: s.Adjusted2,
		Adjusted34: s.Adjusted34, Adjusted57: s.Adjusted57, Adjusted8Plus: s.Adjusted8Plus,
	}
}

// GodObjectDetectThresholds projects the god-object section into godobject.Thresholds.
func (c AnalysisConfig) GodObjectDetectThresholds() godobject.Thresholds {
	return godobject.Thresholds{
		GodClassMinMethods: c.GodObjectThresholds.GodClassMinMethods,
		GodClassMinFields:  c.GodObjectThresholds.GodClassMinFields,
		GodFileMinFuncs:    c.GodObjectThresholds.GodFileMinFuncs,
	}
}

// SplitNamingOpts projects the split-naming section into
// godobject.SplitNamingOptions.
func (c AnalysisConfig) SplitNamingOpts() godobject.SplitNamingOptions {
	return godobject.SplitNamingOptions{
		RejectPatterns:      c.SplitNaming.RejectPatterns,
		MinNameLength:       c.SplitNaming.MinNameLength,
		TypeBasedThreshold:  c.SplitNaming.TypeBasedThreshold,
		BehavioralThreshold: c.SplitNaming.BehavioralThreshold,
	}
}

// Default returns the documented default AnalysisConfig.
func Default() AnalysisConfig {
	return AnalysisConfig{
		Scoring: ScoringWeights{Coverage: 0.40, Complexity: 0.40, Dependency: 0.20},
		ComplexityScaling: ComplexityScaling{
			Enabled: true, Adjusted01: 0.05, Adjusted2: 0.20, Adjusted34: 0.50, Adjusted57: 0.75, Adjusted8Plus: 1.00,
		},
		Roles:               RoleMultipliers{EntryPoint: 1.0, PureLogic: 1.0, Orchestrator: 0.9, PatternMatch: 0.8, IOWrapper: 0.7},
		ScoringThresholds:   ScoringThresholds{Critical: 15, High: 8, Medium: 3},
		GodObjectThresholds: GodObjectThresholds{GodClassMinMethods: 20, GodClassMinFields: 5, GodFileMinFuncs: 50},
		RepetitiveValidation: RepetitiveValidationConfig{
			Enabled: true, MaxEntropy: 0.35, MinChecks: 10, MinEarlyReturnRatio: 0.6, MinStructuralSimilarity: 0.7, DampeningFactor: 0.5,
		},
		SplitNaming: SplitNamingConfig{
			RejectPatterns:      []string{"unknown", "self", "transformations", "computation", "formatting", "utils", "helpers"},
			MinNameLength:       5,
			TypeBasedThreshold:  0.75,
			BehavioralThreshold: 0.5,
		},
		GodObjectAnalysis: GodObjectAnalysisConfig{ClusteringStrategy: "auto"},
		AlmostPure:        AlmostPureConfig{Enabled: true, MinPurityConfidence: 0.8},
	}
}
