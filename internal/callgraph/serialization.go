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

import (
	"encoding/json"
	"fmt"
)

// GraphSchemaVersion is the version of Graph's JSON serialization format.
// Bump it when the format changes in a way old checkpoints can't decode.
const GraphSchemaVersion = "1.0"

// SerializableGraph is the JSON-serializable projection of a Graph: Graph
// itself carries only unexported maps (so a resumed run can't reach in and
// mutate it outside addNode/addEdge), so checkpointing goes through this
// type rather than through Graph's fields directly.
type SerializableGraph struct {
	SchemaVersion string             `json:"schema_version"`
	Nodes         []FunctionId       `json:"nodes"`
	Edges         []SerializableEdge `json:"edges"`
	External      []SerializableExt  `json:"external"`
}

// SerializableEdge is one directed call edge, from -> to.
type SerializableEdge struct {
	From FunctionId `json:"from"`
	To   FunctionId `json:"to"`
}

// SerializableExt is one unresolved call recorded against its caller.
type SerializableExt struct {
	From   FunctionId     `json:"from"`
	Target ExternalTarget `json:"target"`
}

// ToSerializable converts g to its JSON-serializable projection. Nodes and
// edges are already held in sorted order, so output is deterministic.
func (g *Graph) ToSerializable() *SerializableGraph {
	if g == nil {
		return &SerializableGraph{SchemaVersion: GraphSchemaVersion}
	}
	g.mu.RLock()
	defer g.mu.RUnlock()

	nodes := make([]FunctionId, 0, len(g.nodes))
	for id := range g.nodes {
		nodes = append(nodes, id)
	}
	sortFunctionIds(nodes)

	var edges []SerializableEdge
	for _, from := range nodes {
		for _, to := range g.callees[from] {
			edges = append(edges, SerializableEdge{From: from, To: to})
		}
	}

	var external []SerializableExt
	for _, from := range nodes {
		for _, target := range g.external[from] {
			external = append(external, SerializableExt{From: from, Target: target})
		}
	}

	return &SerializableGraph{
		SchemaVersion: GraphSchemaVersion,
		Nodes:         nodes,
		Edges:         edges,
		External:      external,
	}
}

// FromSerializable reconstructs a Graph from its JSON-serializable
// projection, replaying addNode/addEdge/addExternal so the rebuilt graph's
// adjacency lists are sorted the same way a freshly built one would be.
func FromSerializable(sg *SerializableGraph) (*Graph, error) {
	if sg == nil {
		return nil, fmt.Errorf("callgraph: serializable graph must not be nil")
	}
	if sg.SchemaVersion != GraphSchemaVersion {
		return nil, fmt.Errorf("callgraph: unsupported schema version %q (expected %q)", sg.SchemaVersion, GraphSchemaVersion)
	}

	g := newGraph()
	for _, id := range sg.Nodes {
		g.addNode(id)
	}
	for _, e := range sg.Edges {
		g.addEdge(e.From, e.To)
	}
	for _, x := range sg.External {
		g.addExternal(x.From, x.Target)
	}
	return g, nil
}

// MarshalJSON makes *Graph itself round-trip through encoding/json (used by
// the workflow package's checkpointing), routing through SerializableGraph
// rather than Graph's unexported fields.
func (g *Graph) MarshalJSON() ([]byte, error) {
	return json.Marshal(g.ToSerializable())
}

// UnmarshalJSON is MarshalJSON's inverse. g must be a non-nil *Graph (e.g.
// the zero value obtained via new(Graph)); its maps are populated in place.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var sg SerializableGraph
	if err := json.Unmarshal(data, &sg); err != nil {
		return err
	}
	rebuilt, err := FromSerializable(&sg)
	if err != nil {
		return err
	}
	g.nodes = rebuilt.nodes
	g.callees = rebuilt.callees
	g.callers = rebuilt.callers
	g.external = rebuilt.external
	return nil
}
