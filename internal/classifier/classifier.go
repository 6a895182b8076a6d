// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package classifier

import (
	"regexp"
	"strings"

	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/callgraph"
)

// GraphNeighborhood is the subset of callgraph.Graph the classifier needs:
// who calls a function, and whether its callees are entirely external.
// Accepting this narrow interface (rather than *callgraph.Graph directly)
// keeps the classifier polymorphic over the capability set a rule needs:
// a name check, an AST predicate check, or a graph neighborhood check.
type GraphNeighborhood interface {
	Callers(id astmodel.FunctionId) []astmodel.FunctionId
	HasOnlyExternalCallees(id astmodel.FunctionId) bool
}

var _ GraphNeighborhood = (*callgraph.Graph)(nil)

// Predicate is the per-language plugin the classifier consumes for
// anything beyond name/graph heuristics. A language parser implementing this can override or refine
// a rule's verdict (e.g. recognizing a Go `pub extern "C"` equivalent); the
// zero-value Classifier works with nil and falls back to the built-in
// name/AST/graph heuristics alone.
type Predicate interface {
	// IsEntryPointByConvention reports whether the language considers this
	// function an entry point by a convention the generic name-pattern
	// list below cannot express (e.g. a framework route annotation).
	IsEntryPointByConvention(fm astmodel.FunctionMetrics, ast astmodel.ItemAst) bool
}

// Classifier assigns a Role to each function, applying a fixed set of
// priority-ordered rules.
type Classifier struct {
	ConfidenceThreshold float64
	Predicate           Predicate
}

// New creates a Classifier with the default confidence threshold (0.6).
func New(opts ...Option) *Classifier {
	c := &Classifier{ConfidenceThreshold: DefaultConfidenceThreshold}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Option is a functional option for Classifier.
type Option func(*Classifier)

// WithConfidenceThreshold overrides the default 0.6 downgrade threshold.
func WithConfidenceThreshold(t float64) Option {
	return func(c *Classifier) { c.ConfidenceThreshold = t }
}

// WithPredicate installs a language-specific Predicate.
func WithPredicate(p Predicate) Option {
	return func(c *Classifier) { c.Predicate = p }
}

var (
	entryPointNames  = regexp.MustCompile(`(?i)^(main|test[_a-z0-9]*|handle[_a-z0-9]*|[a-z0-9_]*handler|serve[_a-z0-9]*)$`)
	constructorNames = regexp.MustCompile(`(?i)^(new|with_[a-z0-9_]+|from_[a-z0-9_]+|build)$`)
	ioNames          = regexp.MustCompile(`(?i)(read|write|save|load|fetch|send|print|log|query|request|open|close|flush|emit)`)
)

// Classify assigns a (Role, confidence) to fm, applying the rules below
// in strict priority order; the first matching rule wins. A match whose
// confidence falls below c.ConfidenceThreshold is downgraded to
// RolePureLogic.
func (c *Classifier) Classify(fm astmodel.FunctionMetrics, ast astmodel.ItemAst, proj astmodel.AstProjection, g GraphNeighborhood) Classification {
	if role, conf, ok := c.tryEntryPoint(fm, ast, g); ok {
		return c.finalize(role, conf)
	}
	if role, conf, ok := c.tryConstructor(fm, proj); ok {
		return c.finalize(role, conf)
	}
	if role, conf, ok := c.tryEnumConverter(fm, proj); ok {
		return c.finalize(role, conf)
	}
	if role, conf, ok := c.tryPatternMatch(proj); ok {
		return c.finalize(role, conf)
	}
	if role, conf, ok := c.tryIOWrapper(fm); ok {
		return c.finalize(role, conf)
	}
	if role, conf, ok := c.tryOrchestrator(fm, proj); ok {
		return c.finalize(role, conf)
	}
	return Classification{Role: RolePureLogic, Confidence: 1.0}
}

func (c *Classifier) finalize(role Role, confidence float64) Classification {
	if confidence < c.ConfidenceThreshold {
		return Classification{Role: RolePureLogic, Confidence: confidence}
	}
	return Classification{Role: role, Confidence: confidence}
}

// tryEntryPoint recognizes a known entry point, combined
// from call-graph shape (no callers, or only test callers) and naming
// convention.
func (c *Classifier) tryEntryPoint(fm astmodel.FunctionMetrics, ast astmodel.ItemAst, g GraphNeighborhood) (Role, float64, bool) {
	if c.Predicate != nil && c.Predicate.IsEntryPointByConvention(fm, ast) {
		return RoleEntryPoint, 0.95, true
	}

	nameMatches := entryPointNames.MatchString(fm.ID.Name)
	noCallers := true
	onlyTestCallers := true
	if g != nil {
		callers := g.Callers(fm.ID)
		noCallers = len(callers) == 0
		for range callers {
			// Caller test-status isn't visible through GraphNeighborhood;
			// conservatively treat any non-empty caller set as "not test
			// only" unless the function's own metrics mark it a test.
			onlyTestCallers = false
		}
	}
	if fm.IsTest {
		onlyTestCallers = true
	}

	switch {
	case nameMatches && (noCallers || onlyTestCallers):
		return RoleEntryPoint, 0.9, true
	case noCallers && strings.EqualFold(fm.ID.Name, "main"):
		return RoleEntryPoint, 0.99, true
	default:
		return RoleEntryPoint, 0, false
	}
}

// tryConstructor recognizes a constructor-shaped name AND
// a short body dominated by field initialization.
func (c *Classifier) tryConstructor(fm astmodel.FunctionMetrics, proj astmodel.AstProjection) (Role, float64, bool) {
	if !constructorNames.MatchString(fm.ID.Name) {
		return RoleConstructor, 0, false
	}
	if proj.BodyStatementCount == 0 {
		return RoleConstructor, 0, false
	}
	fieldInitRatio := float64(proj.FieldInitCount) / float64(proj.BodyStatementCount)
	if proj.BodyStatementCount <= 10 && fieldInitRatio >= 0.5 {
		confidence := 0.6 + 0.4*fieldInitRatio
		if confidence > 1.0 {
			confidence = 1.0
		}
		return RoleConstructor, confidence, true
	}
	return RoleConstructor, 0, false
}

// tryEnumConverter recognizes a single exhaustive match
// on self/sole parameter where every arm returns a literal, no guards, no
// nested control flow, cognitive complexity <= 3.
func (c *Classifier) tryEnumConverter(fm astmodel.FunctionMetrics, proj astmodel.AstProjection) (Role, float64, bool) {
	if proj.MatchOnSelf && proj.LiteralReturn && fm.Cognitive <= 3 {
		return RoleEnumConverter, 0.9, true
	}
	return RoleEnumConverter, 0, false
}

// tryPatternMatch recognizes logic dominated by pattern
// matching without the stricter literal-only constraint.
func (c *Classifier) tryPatternMatch(proj astmodel.AstProjection) (Role, float64, bool) {
	if proj.MatchOnSelf {
		return RolePatternMatch, 0.75, true
	}
	return RolePatternMatch, 0, false
}

// tryIOWrapper recognizes a primary effect of I/O or
// delegation, by name convention (the purity analyzer supplies the
// authoritative I/O violation signal in a later phase; this rule is a
// cheap upfront heuristic only).
func (c *Classifier) tryIOWrapper(fm astmodel.FunctionMetrics) (Role, float64, bool) {
	if ioNames.MatchString(fm.ID.Name) {
		return RoleIOWrapper, 0.7, true
	}
	return RoleIOWrapper, 0, false
}

// tryOrchestrator recognizes cognitive complexity
// dominated by dispatch to other functions rather than the function's own
// logic.
func (c *Classifier) tryOrchestrator(fm astmodel.FunctionMetrics, proj astmodel.AstProjection) (Role, float64, bool) {
	if proj.HasCoordinatorSignal {
		return RoleOrchestrator, 0.8, true
	}
	if proj.MethodCount >= 3 && fm.Cognitive > 0 {
		ownLogicRatio := float64(fm.Cognitive) / float64(proj.MethodCount*2)
		if ownLogicRatio < 0.5 {
			return RoleOrchestrator, 0.65, true
		}
	}
	return RoleOrchestrator, 0, false
}
