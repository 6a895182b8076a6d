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
	"fmt"
	"sort"

	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/callgraph"
	"github.com/debtmap/debtmap/internal/classifier"
	"github.com/debtmap/debtmap/internal/coverage"
	"github.com/debtmap/debtmap/internal/debterr"
	"github.com/debtmap/debtmap/internal/godobject"
	"github.com/debtmap/debtmap/internal/pattern"
	"github.com/debtmap/debtmap/internal/purity"
	"github.com/debtmap/debtmap/internal/recommend"
	"github.com/debtmap/debtmap/internal/score"
)

// action takes &mut AnalysisState and the environment's capabilities,
// mutates exactly one field group, and advances the phase. An error
// aborts the whole workflow; the driver wraps it with the phase the
// action was running in.
type action func(ctx context.Context, s *AnalysisState, env *Env) error

func actionBuildCallGraph(ctx context.Context, s *AnalysisState, env *Env) error {
	release := env.trackPhase("CallGraphBuilding", "", "")
	defer release()
	s.Phase = CallGraphBuilding

	builder := callgraph.NewBuilder()
	graph, err := builder.Build(ctx, s.Parsed)
	if err != nil {
		return fmt.Errorf("building call graph: %w", err)
	}
	s.Results.Graph = graph
	s.Phase = CallGraphComplete
	return nil
}

func actionLoadCoverage(ctx context.Context, s *AnalysisState, env *Env) error {
	release := env.trackPhase("CoverageLoading", s.Config.CoverageFile, "")
	defer release()
	s.Phase = CoverageLoading

	cm, err := env.CoverageLoader.Load(s.Config.CoverageFile)
	if err != nil {
		return fmt.Errorf("%w: %v", debterr.ErrCoverageMissing, err)
	}
	s.Results.Coverage = cm
	s.Results.HasCoverage = true
	s.Phase = CoverageComplete
	return nil
}

func actionSkipCoverage(_ context.Context, s *AnalysisState, _ *Env) error {
	s.Results.HasCoverage = false
	s.Phase = CoverageComplete
	return nil
}

func actionAnalyzePurity(_ context.Context, s *AnalysisState, env *Env) error {
	release := env.trackPhase("PurityAnalyzing", "", "")
	defer release()
	s.Phase = PurityAnalyzing

	fns := make(map[astmodel.FunctionId]astmodel.FunctionMetrics)
	asts := make(map[astmodel.FunctionId]astmodel.ItemAst)
	for _, f := range s.Parsed {
		for _, fm := range f.Functions {
			fns[fm.ID] = fm
		}
		for id, a := range f.ItemAsts {
			asts[id] = a
		}
	}

	propagator := purity.NewPropagator(s.Results.Graph, s.Results.Graph, env.LocalAnalyzer)
	s.Results.Purity = propagator.Propagate(fns, asts)
	s.Phase = PurityComplete
	return nil
}

func actionLoadContext(ctx context.Context, s *AnalysisState, env *Env) error {
	release := env.trackPhase("ContextLoading", "", "")
	defer release()
	s.Phase = ContextLoading

	for _, f := range s.Parsed {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := env.FS.ReadFile(f.Path)
		if err != nil {
			s.Results.SkippedFiles = append(s.Results.SkippedFiles, SkippedFile{Path: f.Path, Reason: err.Error()})
			env.incProgress()
			continue
		}
		snippet := string(data)
		for _, fm := range f.Functions {
			s.Results.Context[fm.ID] = snippet
		}
		env.incProgress()
	}
	s.Phase = ContextComplete
	return nil
}

func actionSkipContext(_ context.Context, s *AnalysisState, _ *Env) error {
	s.Phase = ContextComplete
	return nil
}

func actionScore(ctx context.Context, s *AnalysisState, env *Env) error {
	release := env.trackPhase("ScoringInProgress", "", "")
	defer release()
	s.Phase = ScoringInProgress

	cl := classifier.New(classifier.WithConfidenceThreshold(classifier.DefaultConfidenceThreshold), classifier.WithPredicate(env.Predicate))
	weights := s.Config.ScoreWeights()
	scaling := s.Config.ScoreScalingTable()
	thresholds := s.Config.ScoreThresholds()

	var items []DebtItem
	for _, f := range s.Parsed {
		if err := ctx.Err(); err != nil {
			return err
		}
		for _, fm := range f.Functions {
			proj := astmodel.AstProjection{}
			var ast astmodel.ItemAst
			if a, ok := f.ItemAsts[fm.ID]; ok {
				ast = a
			}
			if env.Projector != nil {
				proj = env.Projector.Project(fm, ast)
			}

			classification := cl.Classify(fm, ast, proj, s.Results.Graph)

			var entropy *float64
			if fm.HasEntropy() {
				v := fm.EntropyOrDefault()
				entropy = &v
			}
			detected := pattern.Detect(pattern.Input{
				Cyclomatic: fm.Cyclomatic,
				Cognitive:  fm.Cognitive,
				MaxNesting: fm.MaxNesting,
				Entropy:    entropy,
				Projection: pattern.Projection{
					HasStateSignal:             proj.HasStateSignal,
					HasCoordinatorSignal:       proj.HasCoordinatorSignal,
					EarlyReturnFraction:        proj.EarlyReturnFraction,
					BranchStructuralSimilarity: proj.BranchStructuralSimilarity,
				},
			})

			purityAnalysis := s.Results.Purity[fm.ID]

			var coveragePct *float64
			if s.Results.HasCoverage {
				if pct, ok := coverage.FunctionCoveragePct(s.Results.Coverage, fm.ID.Path, fm.ID.Name, fm.ID.Line, fm.Length); ok {
					coveragePct = &pct
				}
			}

			in := score.Input{
				CoveragePct:         coveragePct,
				AdjustedComplexity:  detected.AdjCC,
				Cognitive:           fm.Cognitive,
				MaxNesting:          fm.MaxNesting,
				UpstreamCallerCount: len(s.Results.Graph.Callers(fm.ID)),
				RoleMultiplier:      classification.Role.Multiplier(),
				PurityMultiplier:    purityAnalysis.Level.Multiplier(),
			}
			breakdown := score.Score(in, weights, scaling, thresholds)

			var almost *purity.AlmostPure
			if purityAnalysis.CanBePure && len(purityAnalysis.Violations) > 0 &&
				purityAnalysis.Confidence > s.Config.AlmostPure.MinPurityConfidence {
				almost = &purity.AlmostPure{
					Strategy:            purity.AlmostPureStrategyFor(purityAnalysis.Violations),
					CurrentMultiplier:   purityAnalysis.Level.Multiplier(),
					PotentialMultiplier: purity.AlmostPurePotentialMultiplier,
				}
			}
			rec := recommend.Generate(detected, fm.MaxNesting, almost)

			items = append(items, DebtItem{
				Location:       fm.ID,
				Score:          breakdown.Final,
				Severity:       breakdown.Severity,
				Factors:        breakdown,
				Role:           classification.Role,
				RoleConfidence: classification.Confidence,
				Pattern:        detected,
				Purity:         purityAnalysis,
				Recommendation: rec,
			})
		}
		env.incProgress()
	}

	s.Results.DebtItems = items
	s.Phase = ScoringComplete
	return nil
}

func actionFilter(_ context.Context, s *AnalysisState, env *Env) error {
	release := env.trackPhase("FilteringInProgress", "", "")
	defer release()
	s.Phase = FilteringInProgress

	items := s.Results.DebtItems
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].Location.Less(items[j].Location)
	})
	s.Results.DebtItems = dedupeDebtItems(items)

	godThresholds := s.Config.GodObjectDetectThresholds()
	namingOpts := s.Config.SplitNamingOpts()
	fileMetrics := aggregateFileMetrics(s.Parsed)
	var godObjects []GodObjectItem
	for path, m := range fileMetrics {
		analysis := godobject.Detect(m, godThresholds)
		analysis.RecommendedSplits = godobject.Split(m, namingOpts, s.Config.GodObjectAnalysis.ClusteringStrategy)
		godObjects = append(godObjects, GodObjectItem{Path: path, Analysis: analysis})
	}
	sort.Slice(godObjects, func(i, j int) bool { return godObjects[i].Path < godObjects[j].Path })
	s.Results.GodObjects = godObjects

	s.Phase = Complete
	return nil
}

func dedupeDebtItems(items []DebtItem) []DebtItem {
	seen := make(map[astmodel.FunctionId]bool, len(items))
	out := make([]DebtItem, 0, len(items))
	for _, it := range items {
		if seen[it.Location] {
			continue
		}
		seen[it.Location] = true
		out = append(out, it)
	}
	return out
}

// aggregateFileMetrics folds per-function metrics into the per-file
// aggregates godobject.Detect needs: method and standalone-function
// counts, lines of code and the per-method cyclomatic complexity profile.
// FieldCount is not populated and stays 0.
func aggregateFileMetrics(files []astmodel.FileParse) map[string]godobject.FileMetrics {
	out := make(map[string]godobject.FileMetrics, len(files))
	for _, f := range files {
		m := godobject.FileMetrics{Path: f.Path}
		var ccs []int
		for _, fm := range f.Functions {
			ccs = append(ccs, fm.Cyclomatic)
			m.LinesOfCode += fm.Length
			if fm.IsTraitMethod {
				m.StructMethodCount++
			} else {
				m.StandaloneFunctionCount++
			}
			m.Methods = append(m.Methods, godobject.Method{
				Name:       fm.ID.Name,
				Cyclomatic: fm.Cyclomatic,
				Trait:      godobject.InferTrait(fm.ID.Name, nil, ""),
			})
		}
		m.Complexity = complexityMetricsFor(ccs)
		out[f.Path] = m
	}
	return out
}

func complexityMetricsFor(ccs []int) godobject.ComplexityMetrics {
	if len(ccs) == 0 {
		return godobject.ComplexityMetrics{}
	}
	total := 0
	max := ccs[0]
	for _, c := range ccs {
		total += c
		if c > max {
			max = c
		}
	}
	avg := float64(total) / float64(len(ccs))
	var variance float64
	for _, c := range ccs {
		d := float64(c) - avg
		variance += d * d
	}
	variance /= float64(len(ccs))
	return godobject.ComplexityMetrics{Average: avg, Max: max, Total: total, Variance: variance}
}
