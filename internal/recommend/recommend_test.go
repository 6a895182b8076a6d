// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package recommend

import (
	"strings"
	"testing"

	"github.com/debtmap/debtmap/internal/godobject"
	"github.com/debtmap/debtmap/internal/pattern"
	"github.com/debtmap/debtmap/internal/purity"
)

func TestGenerate_CleanDispatcherYieldsNoRecommendation(t *testing.T) {
	p := pattern.Pattern{Kind: pattern.KindDispatcher, InlineLogicBranches: 0, Branches: 26}
	got := Generate(p, 1, nil)
	if got != nil {
		t.Fatalf("expected no recommendation for a clean dispatcher, got %+v", got)
	}
}

func TestGenerate_DispatcherWithInlineLogicGetsRecommendation(t *testing.T) {
	p := pattern.Pattern{Kind: pattern.KindDispatcher, InlineLogicBranches: 3, Branches: 10}
	got := Generate(p, 1, nil)
	if got == nil {
		t.Fatal("expected a recommendation when a dispatcher carries inline logic")
	}
}

func TestGenerate_RepetitiveValidationMentionsDeclarativeValidationNotSplit(t *testing.T) {
	p := pattern.Pattern{Kind: pattern.KindRepetitiveValidation, Checks: 20, RawCC: 20, AdjCC: 8}
	got := Generate(p, 1, nil)
	if got == nil {
		t.Fatal("expected a recommendation")
	}
	joined := strings.ToLower(got.Summary + " " + strings.Join(got.Steps, " "))
	if !strings.Contains(joined, "declarative validation") {
		t.Errorf("expected the recommendation to mention declarative validation, got %q", joined)
	}
	if strings.Contains(joined, "split into") {
		t.Errorf("expected no generic 'split into N functions' suggestion for repetitive validation, got %q", joined)
	}
}

func TestGenerate_AlmostPureMergesLoggingStrategyAndLowersEffort(t *testing.T) {
	p := pattern.Pattern{Kind: pattern.KindModerateComplexity, AdjCC: 2}
	almost := &purity.AlmostPure{
		Strategy:            purity.StrategyExtractLogging,
		CurrentMultiplier:   1.0,
		PotentialMultiplier: purity.AlmostPurePotentialMultiplier,
	}
	got := Generate(p, 1, almost)
	if got == nil {
		t.Fatal("expected a recommendation")
	}
	if got.Effort != EffortLow {
		t.Errorf("expected almost-pure recommendations to report Low effort, got %v", got.Effort)
	}
	if !strings.Contains(got.QuantifiedImpact, "1.0") || !strings.Contains(got.QuantifiedImpact, "0.3") {
		t.Errorf("expected the quantified impact to show the 1.0 -> 0.3 multiplier shift, got %q", got.QuantifiedImpact)
	}
	if !strings.Contains(strings.ToLower(got.Steps[0]), "log") {
		t.Errorf("expected the first step to address the logging violation, got %q", got.Steps[0])
	}
}

func TestGenerateSplits_OneRecommendationPerSplit(t *testing.T) {
	a := godobject.Analysis{
		DetectionType: godobject.DetectionGodFile,
		RecommendedSplits: []godobject.ModuleSplit{
			{SuggestedName: "priority_item", Responsibility: "Load, Save", MethodsToMove: []string{"Load", "Save"}, EstimatedLines: 80, Priority: godobject.PriorityHigh, NamingConfidence: 0.9},
		},
	}
	got := GenerateSplits(a)
	if len(got) != 1 {
		t.Fatalf("expected one recommendation per split, got %d", len(got))
	}
	if got[0].Effort != EffortHigh {
		t.Errorf("expected High priority to map to High effort, got %v", got[0].Effort)
	}
	if !strings.Contains(got[0].Summary, "priority_item") {
		t.Errorf("expected the summary to name the suggested split, got %q", got[0].Summary)
	}
}
