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
	"testing"

	"github.com/debtmap/debtmap/internal/astmodel"
)

func buildSampleGraph() *Graph {
	g := newGraph()
	caller := astmodel.NewFunctionId("a.go", "Caller", 1)
	callee := astmodel.NewFunctionId("b.go", "Callee", 10)
	g.addNode(caller)
	g.addNode(callee)
	g.addEdge(caller, callee)
	g.addExternal(caller, ExternalTarget{Name: "fmt::Println", Reason: "unresolved"})
	return g
}

func TestGraph_JSONRoundTrip(t *testing.T) {
	g := buildSampleGraph()

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}

	var restored Graph
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}

	caller := astmodel.NewFunctionId("a.go", "Caller", 1)
	callee := astmodel.NewFunctionId("b.go", "Callee", 10)

	if got := restored.Callees(caller); len(got) != 1 || got[0] != callee {
		t.Fatalf("expected Caller to call Callee after round-trip, got %v", got)
	}
	if got := restored.Callers(callee); len(got) != 1 || got[0] != caller {
		t.Fatalf("expected Callee to be called by Caller after round-trip, got %v", got)
	}
	if got := restored.ExternalCallees(caller); len(got) != 1 || got[0].Name != "fmt::Println" {
		t.Fatalf("expected external callee to survive round-trip, got %v", got)
	}
	if len(restored.Nodes()) != 2 {
		t.Fatalf("expected 2 nodes after round-trip, got %d", len(restored.Nodes()))
	}
}

func TestGraph_MarshalJSON_NilGraph(t *testing.T) {
	var g *Graph
	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(data) != "null" {
		t.Fatalf("expected nil *Graph to marshal as null, got %s", data)
	}
}

func TestFromSerializable_RejectsWrongSchemaVersion(t *testing.T) {
	sg := &SerializableGraph{SchemaVersion: "99.0"}
	if _, err := FromSerializable(sg); err == nil {
		t.Fatal("expected an error for an unsupported schema version")
	}
}

func TestFromSerializable_RejectsNil(t *testing.T) {
	if _, err := FromSerializable(nil); err == nil {
		t.Fatal("expected an error for a nil serializable graph")
	}
}

func TestToSerializable_Deterministic(t *testing.T) {
	a := buildSampleGraph().ToSerializable()
	b := buildSampleGraph().ToSerializable()

	da, err := json.Marshal(a)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	db, err := json.Marshal(b)
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(da) != string(db) {
		t.Fatalf("expected two builds of the same graph to serialize identically")
	}
}
