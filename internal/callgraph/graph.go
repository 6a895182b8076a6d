// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package callgraph builds the inter-procedural call graph from per-file
// parser output and resolves cross-module references, the way the teacher's
// services/trace/graph.Builder builds a richer multi-edge-type code graph:
// a two-pass (collect symbols, then resolve references) construction with
// a read-only graph as the result.
package callgraph

import (
	"fmt"
	"sort"
	"sync"

	"github.com/debtmap/debtmap/internal/astmodel"
)

// ExternalTarget is a synthetic node representing a call that could not be
// resolved to a definition inside the analyzed codebase: an external
// crate/package, dynamic dispatch, or an ambiguous short name.
type ExternalTarget struct {
	// Name is the textual reference as written.
	Name string

	// Reason explains why resolution failed, for diagnostics.
	Reason string

	// CandidateCount is how many same-named candidates existed, when the
	// reason is ambiguity (0 when the reason is "unresolved").
	CandidateCount int
}

// edgeKey identifies one directed call edge; a graph is a multigraph so
// (from, to) may carry more than one call site, but callers()/callees()
// only need the distinct target set.
type edgeKey struct {
	from FunctionId
	to   FunctionId
}

// FunctionId re-exports astmodel.FunctionId so callers of this package
// don't need to import astmodel just to hold an ID.
type FunctionId = astmodel.FunctionId

// Graph is the read-only, directed multigraph of static calls between
// FunctionIds. Built once by Builder.Build and immutable thereafter.
type Graph struct {
	nodes map[FunctionId]struct{}

	// callees/callers are adjacency lists keyed by FunctionId, deduplicated
	// per distinct target, sorted for deterministic iteration.
	callees map[FunctionId][]FunctionId
	callers map[FunctionId][]FunctionId

	// external maps a FunctionId to the list of unresolved call targets
	// made from within it.
	external map[FunctionId][]ExternalTarget

	mu sync.RWMutex
}

func newGraph() *Graph {
	return &Graph{
		nodes:    make(map[FunctionId]struct{}),
		callees:  make(map[FunctionId][]FunctionId),
		callers:  make(map[FunctionId][]FunctionId),
		external: make(map[FunctionId][]ExternalTarget),
	}
}

// Nodes returns every FunctionId known to the graph, sorted by FunctionId's
// natural order for deterministic iteration.
func (g *Graph) Nodes() []FunctionId {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]FunctionId, 0, len(g.nodes))
	for id := range g.nodes {
		out = append(out, id)
	}
	sortFunctionIds(out)
	return out
}

// Callers returns the FunctionIds that call id, sorted deterministically.
func (g *Graph) Callers(id FunctionId) []FunctionId {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]FunctionId(nil), g.callers[id]...)
}

// Callees returns the FunctionIds that id calls, sorted deterministically.
func (g *Graph) Callees(id FunctionId) []FunctionId {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]FunctionId(nil), g.callees[id]...)
}

// ExternalCallees returns the unresolved call targets made from within id.
func (g *Graph) ExternalCallees(id FunctionId) []ExternalTarget {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]ExternalTarget(nil), g.external[id]...)
}

// HasOnlyExternalCallees reports whether id has zero resolved callees and
// at least one external callee.
func (g *Graph) HasOnlyExternalCallees(id FunctionId) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.callees[id]) == 0 && len(g.external[id]) > 0
}

// HasPath reports whether there is a directed path from a to b.
func (g *Graph) HasPath(a, b FunctionId) bool {
	if a == b {
		return true
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	visited := map[FunctionId]bool{a: true}
	queue := []FunctionId{a}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range g.callees[cur] {
			if next == b {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// addNode registers a FunctionId as a graph node (a no-op if already
// present).
func (g *Graph) addNode(id FunctionId) {
	g.nodes[id] = struct{}{}
}

// addEdge records a directed call from `from` to `to`, deduplicating
// against an existing edge between the same pair.
func (g *Graph) addEdge(from, to FunctionId) {
	if !containsID(g.callees[from], to) {
		g.callees[from] = append(g.callees[from], to)
		sortFunctionIds(g.callees[from])
	}
	if !containsID(g.callers[to], from) {
		g.callers[to] = append(g.callers[to], from)
		sortFunctionIds(g.callers[to])
	}
}

// addExternal records an unresolved call made from `from`.
func (g *Graph) addExternal(from FunctionId, target ExternalTarget) {
	g.external[from] = append(g.external[from], target)
}

func containsID(haystack []FunctionId, needle FunctionId) bool {
	for _, id := range haystack {
		if id == needle {
			return true
		}
	}
	return false
}

func sortFunctionIds(ids []FunctionId) {
	sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })
}

// String renders a compact human-readable summary, useful in diagnostics
// and test failure messages.
func (g *Graph) String() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return fmt.Sprintf("Graph{nodes=%d}", len(g.nodes))
}
