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
	"testing"

	"github.com/debtmap/debtmap/internal/astmodel"
)

func TestDedupeDebtItems_KeepsFirstOccurrence(t *testing.T) {
	id := astmodel.NewFunctionId("a.go", "f", 1)
	items := []DebtItem{
		{Location: id, Score: 10},
		{Location: id, Score: 1},
		{Location: astmodel.NewFunctionId("b.go", "g", 2), Score: 5},
	}

	out := dedupeDebtItems(items)
	if len(out) != 2 {
		t.Fatalf("expected 2 deduped items, got %d", len(out))
	}
	if out[0].Location != id || out[0].Score != 10 {
		t.Fatalf("expected the first occurrence of a duplicate id to survive, got %+v", out[0])
	}
}

func TestAggregateFileMetrics_CountsMethodsAndFunctionsSeparately(t *testing.T) {
	files := []astmodel.FileParse{
		{
			Path: "x.go",
			Functions: []astmodel.FunctionMetrics{
				{ID: astmodel.NewFunctionId("x.go", "Method", 1), Cyclomatic: 3, IsTraitMethod: true, Length: 10},
				{ID: astmodel.NewFunctionId("x.go", "Helper", 10), Cyclomatic: 5, IsTraitMethod: false, Length: 20},
			},
		},
	}

	agg := aggregateFileMetrics(files)
	m, ok := agg["x.go"]
	if !ok {
		t.Fatal("expected an entry for x.go")
	}
	if m.StructMethodCount != 1 {
		t.Fatalf("expected 1 struct method, got %d", m.StructMethodCount)
	}
	if m.StandaloneFunctionCount != 1 {
		t.Fatalf("expected 1 standalone function, got %d", m.StandaloneFunctionCount)
	}
	if m.LinesOfCode != 30 {
		t.Fatalf("expected 30 lines of code, got %d", m.LinesOfCode)
	}
	if m.Complexity.Max != 5 {
		t.Fatalf("expected max complexity 5, got %d", m.Complexity.Max)
	}
	if m.Complexity.Total != 8 {
		t.Fatalf("expected total complexity 8, got %d", m.Complexity.Total)
	}
}

func TestComplexityMetricsFor_EmptyInput(t *testing.T) {
	m := complexityMetricsFor(nil)
	if m.Max != 0 || m.Total != 0 || m.Average != 0 || m.Variance != 0 {
		t.Fatalf("expected zero-value metrics for empty input, got %+v", m)
	}
}
