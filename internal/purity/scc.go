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
	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/callgraph"
)

// CallGraph is the subset of callgraph.Graph the propagator needs: every
// node, and a node's resolved callees.
type CallGraph interface {
	Nodes() []astmodel.FunctionId
	Callees(id astmodel.FunctionId) []astmodel.FunctionId
}

var (
	_ CallGraph             = (*callgraph.Graph)(nil)
	_ ExternalCalleeChecker = (*callgraph.Graph)(nil)
)

// sccFinder computes the strongly connected components of a CallGraph via
// Tarjan's algorithm, using the same White/Gray/Black-flavored state
// bookkeeping as a plain DFS topological sort, extended with the
// index/lowlink bookkeeping an SCC pass needs to collapse cycles. Mutual
// recursion is never guaranteed acyclic here the way a build dependency
// graph is, so a plain topological sort alone can't drive purity
// propagation; this finder stands in for it.
type sccFinder struct {
	graph   CallGraph
	index   map[astmodel.FunctionId]int
	lowlink map[astmodel.FunctionId]int
	onStack map[astmodel.FunctionId]bool
	stack   []astmodel.FunctionId
	counter int

	// components accumulates finished SCCs in the order they are closed,
	// which is reverse topological order: a component is only closed once
	// every component it can reach has already been closed.
	components [][]astmodel.FunctionId
}

// findSCCs partitions every node in g into strongly connected components,
// returned in reverse topological order (a component's callees' components
// always precede it).
func findSCCs(g CallGraph) [][]astmodel.FunctionId {
	nodes := g.Nodes()
	f := &sccFinder{
		graph:   g,
		index:   make(map[astmodel.FunctionId]int, len(nodes)),
		lowlink: make(map[astmodel.FunctionId]int, len(nodes)),
		onStack: make(map[astmodel.FunctionId]bool, len(nodes)),
	}
	for _, n := range nodes {
		if _, seen := f.index[n]; !seen {
			f.strongConnect(n)
		}
	}
	return f.components
}

// strongConnect runs one DFS branch of Tarjan's algorithm from v.
func (f *sccFinder) strongConnect(v astmodel.FunctionId) {
	// 1. Assign v the next unused index and push it onto the active stack.
	f.index[v] = f.counter
	f.lowlink[v] = f.counter
	f.counter++
	f.stack = append(f.stack, v)
	f.onStack[v] = true

	// 2. Explore every resolved callee.
	for _, w := range f.graph.Callees(v) {
		if _, seen := f.index[w]; !seen {
			// 2a. w not yet visited: recurse, then adopt its lowlink.
			f.strongConnect(w)
			if f.lowlink[w] < f.lowlink[v] {
				f.lowlink[v] = f.lowlink[w]
			}
		} else if f.onStack[w] {
			// 2b. w is on the active stack: it's part of the current
			// component; adopt its index (not lowlink) as a back-edge.
			if f.index[w] < f.lowlink[v] {
				f.lowlink[v] = f.index[w]
			}
		}
	}

	// 3. v is a component root if its lowlink never escaped its own index:
	// pop the stack down to and including v to close the component.
	if f.lowlink[v] == f.index[v] {
		var component []astmodel.FunctionId
		for {
			n := len(f.stack) - 1
			w := f.stack[n]
			f.stack = f.stack[:n]
			f.onStack[w] = false
			component = append(component, w)
			if w == v {
				break
			}
		}
		f.components = append(f.components, component)
	}
}
