// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package callgraph

import "sort"

// ExternalSummary aggregates how often a given unresolved name was
// referenced and why, across the whole graph — the call-graph analog of
// the teacher's ClassifyExternalNodes/ExternalDependency aggregation in
// services/trace/graph/external.go.
type ExternalSummary struct {
	Name           string
	Reason         string
	ReferenceCount int
}

// SummarizeExternals aggregates every unresolved reference in the graph by
// name, most-referenced first. Useful for a "top unresolved symbols"
// diagnostic and for surfacing ambiguous short names a user may want to
// disambiguate via config.
func (g *Graph) SummarizeExternals() []ExternalSummary {
	g.mu.RLock()
	defer g.mu.RUnlock()

	byName := make(map[string]*ExternalSummary)
	for _, targets := range g.external {
		for _, t := range targets {
			s, ok := byName[t.Name]
			if !ok {
				s = &ExternalSummary{Name: t.Name, Reason: t.Reason}
				byName[t.Name] = s
			}
			s.ReferenceCount++
		}
	}

	out := make([]ExternalSummary, 0, len(byName))
	for _, s := range byName {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ReferenceCount != out[j].ReferenceCount {
			return out[i].ReferenceCount > out[j].ReferenceCount
		}
		return out[i].Name < out[j].Name
	})
	return out
}
