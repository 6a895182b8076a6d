// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package purity

import (
	"testing"

	"github.com/debtmap/debtmap/internal/astmodel"
)

func TestFindSCCs_ChainHasOneNodePerComponent(t *testing.T) {
	a, b, c := id("a"), id("b"), id("c")
	g := fakeGraph{callees: map[astmodel.FunctionId][]astmodel.FunctionId{
		a: {b}, b: {c}, c: nil,
	}}

	components := findSCCs(g)
	if len(components) != 3 {
		t.Fatalf("expected 3 singleton components in a chain, got %d", len(components))
	}

	// c's component (a leaf, nothing to reach) must close before a's.
	cIndex, aIndex := -1, -1
	for i, comp := range components {
		for _, n := range comp {
			if n == c {
				cIndex = i
			}
			if n == a {
				aIndex = i
			}
		}
	}
	if cIndex >= aIndex {
		t.Fatalf("expected c's component before a's in reverse topological order")
	}
}

func TestFindSCCs_CycleCollapsesToOneComponent(t *testing.T) {
	a, b := id("a"), id("b")
	g := fakeGraph{callees: map[astmodel.FunctionId][]astmodel.FunctionId{a: {b}, b: {a}}}

	components := findSCCs(g)
	if len(components) != 1 || len(components[0]) != 2 {
		t.Fatalf("expected one 2-member component, got %v", components)
	}
}
