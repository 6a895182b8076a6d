// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package godobject

import (
	"sort"
	"strings"
)

// SplitNamingOptions configures split-name generation, sourced from the
// [split_naming] configuration surface.
type SplitNamingOptions struct {
	RejectPatterns      []string
	MinNameLength       int
	TypeBasedThreshold  float64
	BehavioralThreshold float64
}

// DefaultSplitNamingOptions matches the documented defaults.
func DefaultSplitNamingOptions() SplitNamingOptions {
	return SplitNamingOptions{
		RejectPatterns: []string{
			"unknown", "self", "transformations", "computation", "formatting", "utils", "helpers",
		},
		MinNameLength:       5,
		TypeBasedThreshold:  0.75,
		BehavioralThreshold: 0.5,
	}
}

var primitiveTypes = map[string]bool{
	"string": true, "usize": true, "int": true, "int64": true, "float64": true,
	"bool": true, "vec": true, "option": true, "result": true, "[]byte": true,
	"error": true,
}

// typeAffinity scores how related two methods are by their signatures:
// shared parameter types, pipeline connections (a's return feeds b's
// parameter), and a shared self type.
func typeAffinity(a, b Method) float64 {
	score := 0.0
	for _, pa := range a.Params {
		for _, pb := range b.Params {
			if pa == pb {
				score += 0.6
				if !primitiveTypes[strings.ToLower(pa)] {
					score += 0.3
				}
			}
		}
	}
	if a.ReturnType != "" {
		for _, pb := range b.Params {
			if a.ReturnType == pb {
				score += 1.2
			}
		}
	}
	if a.SelfType != "" && a.SelfType == b.SelfType {
		score += 0.4
	}
	return score
}

// cluster groups methods using affinity-weighted community detection: a
// simple greedy agglomeration that repeatedly merges the pair of clusters
// with the highest inter-cluster affinity until no pair exceeds the
// minimum merge threshold.
func cluster(methods []Method) [][]Method {
	clusters := make([][]Method, len(methods))
	for i, m := range methods {
		clusters[i] = []Method{m}
	}

	const mergeThreshold = 0.6
	for {
		bestI, bestJ, bestScore := -1, -1, 0.0
		for i := 0; i < len(clusters); i++ {
			for j := i + 1; j < len(clusters); j++ {
				s := clusterAffinity(clusters[i], clusters[j])
				if s > bestScore {
					bestI, bestJ, bestScore = i, j, s
				}
			}
		}
		if bestScore <= mergeThreshold || bestI < 0 {
			break
		}
		clusters[bestI] = append(clusters[bestI], clusters[bestJ]...)
		clusters = append(clusters[:bestJ], clusters[bestJ+1:]...)
	}
	return clusters
}

func clusterAffinity(a, b []Method) float64 {
	total, n := 0.0, 0
	for _, ma := range a {
		for _, mb := range b {
			total += typeAffinity(ma, mb)
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

// wellKnownTraits matches a method's name/params/return shape against a
// handful of common interfaces, the way a Rust `impl Trait for T` block
// names its trait explicitly. Checked in order; the first match wins.
var wellKnownTraits = []struct {
	name       string
	trait      string
	params     int
	returnType string
}{
	{"String", "Stringer", 0, "string"},
	{"Error", "error", 0, "string"},
	{"Read", "Reader", 1, "(int, error)"},
	{"Write", "Writer", 1, "(int, error)"},
	{"Less", "sort.Interface", 2, "bool"},
	{"Len", "sort.Interface", 0, "int"},
	{"Swap", "sort.Interface", 2, ""},
}

// InferTrait guesses the interface a method implements from its name,
// parameter count, and return type, matching it against a fixed table of
// well-known stdlib interfaces. Returns "" when nothing matches, which
// excludes the method from behavioral clustering.
func InferTrait(name string, params []string, returnType string) string {
	for _, wk := range wellKnownTraits {
		if wk.name != name || len(params) != wk.params {
			continue
		}
		if wk.returnType != "" && wk.returnType != returnType {
			continue
		}
		return wk.trait
	}
	return ""
}

// behavioralCluster groups methods that share a detected Trait, the way
// step 6 of the split algorithm clusters per trait implementation rather
// than by type affinity. Methods with no detected trait never form or
// join a behavioral cluster.
func behavioralCluster(methods []Method) [][]Method {
	byTrait := make(map[string][]Method)
	var order []string
	for _, m := range methods {
		if m.Trait == "" {
			continue
		}
		if _, ok := byTrait[m.Trait]; !ok {
			order = append(order, m.Trait)
		}
		byTrait[m.Trait] = append(byTrait[m.Trait], m)
	}
	sort.Strings(order)
	clusters := make([][]Method, 0, len(order))
	for _, trait := range order {
		clusters = append(clusters, byTrait[trait])
	}
	return clusters
}

// paramGroupKey canonicalizes a parameter list's non-primitive types into
// a stable group key plus a human-readable label, e.g.
// ["Priority", "Deadline"] -> key "Deadline,Priority", label
// "DeadlinePriority". Fewer than two domain-typed params isn't
// distinctive enough to suggest extracting a struct.
func paramGroupKey(params []string) (key, label string) {
	var domain []string
	for _, p := range params {
		if t := unwrap(p); t != "" && !primitiveTypes[strings.ToLower(t)] {
			domain = append(domain, t)
		}
	}
	if len(domain) < 2 {
		return "", ""
	}
	sort.Strings(domain)
	return strings.Join(domain, ","), strings.Join(domain, "")
}

// detectImplicitType implements step 5 of the split algorithm: a
// parameter group recurring across at least 3 of the cluster's methods
// is itself a suggested struct extraction, distinct from the cluster's
// own primary type.
func detectImplicitType(methods []Method) *string {
	counts := make(map[string]int)
	labels := make(map[string]string)
	for _, m := range methods {
		key, label := paramGroupKey(m.Params)
		if key == "" {
			continue
		}
		counts[key]++
		labels[key] = label
	}

	bestKey, bestCount := "", 0
	for k, c := range counts {
		if c > bestCount || (c == bestCount && k < bestKey) {
			bestKey, bestCount = k, c
		}
	}
	if bestCount < 3 {
		return nil
	}
	label := labels[bestKey]
	return &label
}

// primaryType identifies the type a cluster is organized around: the most
// frequent non-primitive parameter/return/self type, preferring domain
// types, then return-position types, then longer names. Wraps of
// Option<T>/Vec<T>/Result<T,E> are unwrapped to their base type first.
func primaryType(methods []Method) (string, bool) {
	counts := make(map[string]int)
	returnTypes := make(map[string]bool)
	for _, m := range methods {
		if t := unwrap(m.ReturnType); t != "" && !primitiveTypes[strings.ToLower(t)] {
			counts[t]++
			returnTypes[t] = true
		}
		for _, p := range m.Params {
			if t := unwrap(p); t != "" && !primitiveTypes[strings.ToLower(t)] {
				counts[t]++
			}
		}
		if m.SelfType != "" && !primitiveTypes[strings.ToLower(m.SelfType)] {
			counts[m.SelfType]++
		}
	}
	if len(counts) == 0 {
		return "", false
	}

	type candidate struct {
		name     string
		count    int
		isReturn bool
	}
	var candidates []candidate
	for name, count := range counts {
		candidates = append(candidates, candidate{name, count, returnTypes[name]})
	}
	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].count != candidates[j].count {
			return candidates[i].count > candidates[j].count
		}
		if candidates[i].isReturn != candidates[j].isReturn {
			return candidates[i].isReturn
		}
		return len(candidates[i].name) > len(candidates[j].name)
	})
	return candidates[0].name, true
}

func unwrap(t string) string {
	for _, wrapper := range []string{"Option<", "Vec<", "Result<"} {
		if strings.HasPrefix(t, wrapper) && strings.HasSuffix(t, ">") {
			inner := t[len(wrapper) : len(t)-1]
			if idx := strings.Index(inner, ","); idx >= 0 {
				inner = inner[:idx]
			}
			return unwrap(strings.TrimSpace(inner))
		}
	}
	return t
}

// splitName derives a suggested file name from a cluster's primary type,
// e.g. "priority_item" from "PriorityItem", and reports the naming
// confidence: 1.0 for a clean type-based name, 0.5 for the verb-based
// fallback when no primary type was found, and 0.4 for the verb-based
// fallback when the type-based name was rejected.
func splitName(methods []Method, opts SplitNamingOptions) (name string, confidence float64) {
	t, ok := primaryType(methods)
	if !ok {
		return verbBasedName(methods, opts), 0.5
	}
	name = toSnakeCase(t)
	if isRejected(name, opts) {
		return verbBasedName(methods, opts), 0.4
	}
	return name, 1.0
}

func isRejected(name string, opts SplitNamingOptions) bool {
	if len(name) < opts.MinNameLength {
		return true
	}
	lower := strings.ToLower(name)
	for _, reject := range opts.RejectPatterns {
		if lower == reject {
			return true
		}
	}
	return false
}

// verbBasedName falls back to the dominant verb across method names when
// type-based naming fails or yields a generic result, used only when verb
// coverage across the cluster exceeds 30%.
func verbBasedName(methods []Method, opts SplitNamingOptions) string {
	verbCounts := make(map[string]int)
	for _, m := range methods {
		if v := leadingVerb(m.Name); v != "" {
			verbCounts[v]++
		}
	}
	best, bestCount := "", 0
	for v, c := range verbCounts {
		if c > bestCount {
			best, bestCount = v, c
		}
	}
	if best == "" || len(methods) == 0 || float64(bestCount)/float64(len(methods)) <= 0.30 {
		return "extracted_logic"
	}
	return best
}

func leadingVerb(name string) string {
	lower := strings.ToLower(name)
	for _, v := range []string{"get", "set", "build", "parse", "validate", "compute", "render", "load", "save"} {
		if strings.HasPrefix(lower, v) {
			return v
		}
	}
	return ""
}

func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(r - 'A' + 'a')
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Split generates ModuleSplit recommendations for a file's methods,
// rejecting any cluster whose naming confidence falls below
// opts.TypeBasedThreshold (type-based clusters) or opts.BehavioralThreshold
// (behavioral clusters). strategy selects the clustering approach, sourced
// from [analysis.god_object].clustering_strategy: "type-based" clusters by
// signature affinity only; "behavioral" clusters by shared trait only;
// "both" runs both and reports everything each accepts; "auto" (and any
// unrecognized value) prefers type-based, falling back to behavioral only
// when type-based accepts nothing.
func Split(m FileMetrics, opts SplitNamingOptions, strategy string) []ModuleSplit {
	var splits []ModuleSplit

	runTypeBased := func() []ModuleSplit {
		return splitClusters(cluster(m.Methods), opts, "type-based", opts.TypeBasedThreshold)
	}
	runBehavioral := func() []ModuleSplit {
		return splitClusters(behavioralCluster(m.Methods), opts, "behavioral", opts.BehavioralThreshold)
	}

	switch strategy {
	case "behavioral":
		splits = runBehavioral()
	case "both":
		splits = append(runTypeBased(), runBehavioral()...)
	case "type-based":
		splits = runTypeBased()
	default: // "auto"
		splits = runTypeBased()
		if len(splits) == 0 {
			splits = runBehavioral()
		}
	}
	return splits
}

func splitClusters(clusters [][]Method, opts SplitNamingOptions, dataFlow string, minConfidence float64) []ModuleSplit {
	var splits []ModuleSplit
	for _, c := range clusters {
		if len(c) < 2 {
			continue
		}
		name, confidence := splitName(c, opts)
		if confidence < minConfidence {
			continue
		}

		var methodNames []string
		estimatedLines := 0
		for _, meth := range c {
			methodNames = append(methodNames, meth.Name)
			estimatedLines += meth.Cyclomatic * 8
		}

		priority := PriorityMedium
		if len(c) >= 6 {
			priority = PriorityHigh
		} else if len(c) <= 2 {
			priority = PriorityLow
		}

		var coreType *string
		if t, ok := primaryType(c); ok {
			coreType = &t
		}

		splits = append(splits, ModuleSplit{
			SuggestedName:    name,
			Responsibility:   strings.Join(methodNames, ", "),
			MethodsToMove:    methodNames,
			EstimatedLines:   estimatedLines,
			Priority:         priority,
			CoreType:         coreType,
			DataFlow:         dataFlow,
			ImplicitType:     detectImplicitType(c),
			NamingConfidence: confidence,
		})
	}
	return splits
}
