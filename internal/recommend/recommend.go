// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package recommend turns a function's detected pattern, purity analysis,
// and (for files) god-object split suggestions into concise, actionable
// refactoring recommendations — the way internal/classifier and
// internal/pattern turn raw signals into a classification, this package
// is the last priority-ordered rule chain in the pipeline, turning a
// classification into prose.
package recommend

import (
	"fmt"

	"github.com/debtmap/debtmap/internal/godobject"
	"github.com/debtmap/debtmap/internal/pattern"
	"github.com/debtmap/debtmap/internal/purity"
)

// Effort is a coarse estimate of how much work a recommendation implies.
type Effort int

const (
	EffortLow Effort = iota
	EffortMedium
	EffortHigh
)

func (e Effort) String() string {
	switch e {
	case EffortLow:
		return "Low"
	case EffortMedium:
		return "Medium"
	case EffortHigh:
		return "High"
	default:
		return fmt.Sprintf("Effort(%d)", int(e))
	}
}

// Recommendation is one actionable suggestion attached to a DebtItem.
type Recommendation struct {
	Summary          string
	Steps            []string
	Effort           Effort
	QuantifiedImpact string
}

// Generate produces a function-level recommendation from its detected
// pattern and (if present) almost-pure refactor suggestion, or nil when
// no refactor is warranted — a clean dispatcher (no inline logic
// branches, nesting <= 2) is not a debt item the generator needs to act
// on.
func Generate(p pattern.Pattern, maxNesting int, almost *purity.AlmostPure) *Recommendation {
	if p.Kind == pattern.KindDispatcher && p.InlineLogicBranches == 0 && maxNesting <= 2 {
		return nil
	}

	rec := patternRecommendation(p)
	if almost != nil {
		rec = mergeAlmostPure(rec, *almost)
	}
	return &rec
}

func patternRecommendation(p pattern.Pattern) Recommendation {
	switch p.Kind {
	case pattern.KindRepetitiveValidation:
		return Recommendation{
			Summary: fmt.Sprintf("Repetitive validation logic (%d checks) — convert to declarative validation", p.Checks),
			Steps: []string{
				"Extract the repeated check/early-return shape into a table of (field, rule) pairs",
				"Replace the sequential branches with a loop over a declarative validation schema",
				"Keep error messages attached to each rule entry rather than inline per branch",
				"Add one test per rule entry instead of one test per branch",
			},
			Effort:           EffortMedium,
			QuantifiedImpact: fmt.Sprintf("cyclomatic complexity %d -> estimated %.0f after declarative validation", p.RawCC, p.AdjCC),
		}
	case pattern.KindStateMachine:
		return Recommendation{
			Summary: "Implicit state machine — make states and transitions explicit",
			Steps: []string{
				"Enumerate the distinct states the function dispatches on",
				"Extract a state type and one handler function per state",
				"Replace the dispatch body with a single lookup/switch over the state type",
				"Add a test asserting every declared transition is reachable",
			},
			Effort:           EffortMedium,
			QuantifiedImpact: fmt.Sprintf("adjusted complexity %.1f distributed across one handler per state", p.AdjCC),
		}
	case pattern.KindCoordinator:
		return Recommendation{
			Summary: "Coordinator function — extract the orchestrated sequence into a pipeline",
			Steps: []string{
				"List the sequenced calls this function coordinates, in order",
				"Extract them into a small pipeline type with one stage per call",
				"Keep this function as a thin entry point that runs the pipeline",
			},
			Effort:           EffortLow,
			QuantifiedImpact: fmt.Sprintf("%d branches moved out of the coordinating function", p.Branches),
		}
	case pattern.KindDispatcher:
		return Recommendation{
			Summary: fmt.Sprintf("Dispatcher with %d inline logic branches mixed into the match", p.InlineLogicBranches),
			Steps: []string{
				"Separate the match arms that only delegate from the arms that carry inline logic",
				"Extract each inline-logic arm into its own named function",
				"Leave the dispatcher itself as a pure delegation table",
			},
			Effort:           EffortMedium,
			QuantifiedImpact: fmt.Sprintf("%d of %d arms carry inline logic that can move out", p.InlineLogicBranches, p.Branches),
		}
	case pattern.KindChaoticStructure:
		return Recommendation{
			Summary: "Chaotic structure — no single dominant shape, split by responsibility",
			Steps: []string{
				"Identify the 2-3 distinct responsibilities mixed into this function",
				"Extract one function per responsibility, named for what it does",
				"Replace the body with calls to the extracted functions in sequence",
				"Add a test per extracted function covering its responsibility in isolation",
			},
			Effort:           EffortHigh,
			QuantifiedImpact: fmt.Sprintf("raw cyclomatic complexity %d distributed across smaller functions", p.RawCC),
		}
	case pattern.KindHighNesting:
		return Recommendation{
			Summary: "Deeply nested control flow — flatten with guard clauses",
			Steps: []string{
				"Invert the outermost conditions into early returns/guard clauses",
				"Repeat for each remaining level of nesting",
				"Verify no behavior changed by keeping one test per original branch",
			},
			Effort:           EffortMedium,
			QuantifiedImpact: fmt.Sprintf("nesting reduced toward 1-2 levels from the current depth (cyclomatic %d)", p.RawCC),
		}
	case pattern.KindHighBranching:
		return Recommendation{
			Summary: "High branching factor — extract conditional logic into predicates",
			Steps: []string{
				"Name the conditions driving the branches as small predicate functions",
				"Replace inline boolean expressions with calls to the named predicates",
				"Consider a lookup table if the branches map inputs to outputs directly",
			},
			Effort:           EffortMedium,
			QuantifiedImpact: fmt.Sprintf("cyclomatic complexity %d across %d branches", p.RawCC, p.Branches),
		}
	case pattern.KindMixedComplexity:
		return Recommendation{
			Summary: "Mixed nesting and branching — simplify the dominant shape first",
			Steps: []string{
				"Flatten the deepest nested block with a guard clause",
				"Extract the largest branch group into a named helper",
				"Re-measure before extracting further — often one extraction resolves both signals",
			},
			Effort:           EffortMedium,
			QuantifiedImpact: fmt.Sprintf("adjusted complexity %.1f", p.AdjCC),
		}
	default: // KindModerateComplexity
		return Recommendation{
			Summary: "Moderately elevated complexity — consider a targeted simplification",
			Steps: []string{
				"Identify the single largest branch or nested block",
				"Extract it into a named helper function",
			},
			Effort:           EffortLow,
			QuantifiedImpact: fmt.Sprintf("adjusted complexity %.1f, close to baseline", p.AdjCC),
		}
	}
}

// mergeAlmostPure prepends an almost-pure-specific step and lowers the
// reported effort to Low: an almost-pure function is, by construction, one
// or two violations away from StrictlyPure, the cheapest fix this
// generator ever proposes.
func mergeAlmostPure(rec Recommendation, almost purity.AlmostPure) Recommendation {
	rec.Steps = append([]string{almostPureStep(almost.Strategy)}, rec.Steps...)
	rec.Effort = EffortLow
	rec.QuantifiedImpact = fmt.Sprintf("purity multiplier %.1f -> %.1f (%s)", almost.CurrentMultiplier, almost.PotentialMultiplier, almost.Strategy)
	return rec
}

func almostPureStep(s purity.AlmostPureStrategy) string {
	switch s {
	case purity.StrategyExtractLogging:
		return "Move the logging/println call to the function's boundary and pass the formatted message in, or log at the call site instead"
	case purity.StrategyParameterizeTime:
		return "Replace the direct clock read with a time source passed in as a parameter"
	case purity.StrategyInjectRandomSeed:
		return "Replace the direct RNG call with a seeded generator passed in as a parameter"
	case purity.StrategyIsolateSingleViolation:
		return "Extract the single impure statement into its own small function, leaving the rest pure"
	case purity.StrategySeparateIoFromLogic:
		return "Split the function into a pure computation and a thin I/O wrapper that calls it"
	default:
		return "Isolate the remaining violation so the rest of the function is pure"
	}
}

// GenerateSplits turns a file's god-object split suggestions into
// recommendations, one per suggested module, ordered as godobject.Split
// produced them (Split does not rank its clusters by signal).
func GenerateSplits(a godobject.Analysis) []Recommendation {
	recs := make([]Recommendation, 0, len(a.RecommendedSplits))
	for _, s := range a.RecommendedSplits {
		recs = append(recs, Recommendation{
			Summary: fmt.Sprintf("Extract %s (%s): %d method(s)", s.SuggestedName, a.DetectionType, len(s.MethodsToMove)),
			Steps: []string{
				fmt.Sprintf("Create a new file/module named %s", s.SuggestedName),
				fmt.Sprintf("Move: %s", s.Responsibility),
				"Update call sites to the new location",
				"Re-run god-object detection on the original file to confirm its score dropped",
			},
			Effort:           effortFromPriority(s.Priority),
			QuantifiedImpact: fmt.Sprintf("~%d lines moved, naming confidence %.2f", s.EstimatedLines, s.NamingConfidence),
		})
	}
	return recs
}

func effortFromPriority(p godobject.Priority) Effort {
	switch p {
	case godobject.PriorityHigh:
		return EffortHigh
	case godobject.PriorityLow:
		return EffortLow
	default:
		return EffortMedium
	}
}
