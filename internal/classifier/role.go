// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package classifier assigns each function a FunctionRole using name
// heuristics, a language-neutral AST projection, and call-graph
// neighborhood signals — the same three-capability shape the teacher's
// file_classification.go combines (name/path heuristics, symbol-kind
// predicates, and graph-based in/out ratios) to classify files, here
// applied per function instead of per file.
package classifier

import "fmt"

// Role is a functional classification of a function, used to adjust its
// score weight.
type Role int

const (
	RoleEntryPoint Role = iota
	RoleConstructor
	RoleEnumConverter
	RolePatternMatch
	RoleIOWrapper
	RoleOrchestrator
	RolePureLogic
)

// String renders the role name for logs and output.
func (r Role) String() string {
	switch r {
	case RoleEntryPoint:
		return "EntryPoint"
	case RoleConstructor:
		return "Constructor"
	case RoleEnumConverter:
		return "EnumConverter"
	case RolePatternMatch:
		return "PatternMatch"
	case RoleIOWrapper:
		return "IOWrapper"
	case RoleOrchestrator:
		return "Orchestrator"
	case RolePureLogic:
		return "PureLogic"
	default:
		return fmt.Sprintf("Role(%d)", int(r))
	}
}

// Multiplier returns the role's scoring multiplier: EntryPoint
// and PureLogic are neutral, Orchestrator/PatternMatch/IOWrapper taper the
// score down because their debt signal is less actionable per unit of
// complexity. Constructor and EnumConverter fold into IOWrapper's
// multiplier for scoring purposes.
func (r Role) Multiplier() float64 {
	switch r {
	case RoleEntryPoint:
		return 1.0
	case RolePureLogic:
		return 1.0
	case RoleOrchestrator:
		return 0.9
	case RolePatternMatch:
		return 0.8
	case RoleIOWrapper, RoleConstructor, RoleEnumConverter:
		return 0.7
	default:
		return 1.0
	}
}

// DefaultConfidenceThreshold is the role-confidence floor below which a
// classification is downgraded to PureLogic to avoid false positives
//.
const DefaultConfidenceThreshold = 0.6

// Classification is the classifier's verdict for one function.
type Classification struct {
	Role       Role
	Confidence float64
}
