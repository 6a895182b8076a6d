// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package astmodel holds the data the core pipeline consumes from external,
// language-specific parsers: FunctionMetrics, the opaque ItemAst handle, and
// the FileParse/ParseResult shapes a parser collaborator must produce. The
// core never inspects an AST directly — it only reads FunctionMetrics and
// the small language-neutral AstProjection alongside the opaque handle.
package astmodel

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// FunctionId uniquely identifies a function: normalized file path, name,
// and start line. Two FunctionMetrics with the same (path, name, line) are
// the same function across repeated runs.
type FunctionId struct {
	Path string
	Name string
	Line int
}

// NewFunctionId builds a FunctionId with its path normalized to forward
// slashes; the case of the path is left unchanged (see
// coverage.NormalizePath for the coverage-side counterpart, which also
// lower-cases a Windows drive letter).
func NewFunctionId(path, name string, line int) FunctionId {
	return FunctionId{Path: NormalizePath(path), Name: name, Line: line}
}

// NormalizePath converts a path to forward slashes so FunctionIds and
// coverage records agree regardless of the OS that produced them.
func NormalizePath(path string) string {
	return filepath.ToSlash(path)
}

// String renders a stable, sortable identity string.
func (f FunctionId) String() string {
	return fmt.Sprintf("%s:%s:%d", f.Path, f.Name, f.Line)
}

// Less gives FunctionId a deterministic total order, used to break score
// ties and to merge per-worker buckets in a fixed order.
func (f FunctionId) Less(other FunctionId) bool {
	if f.Path != other.Path {
		return f.Path < other.Path
	}
	if f.Name != other.Name {
		return f.Name < other.Name
	}
	return f.Line < other.Line
}

// functionIDFieldSep separates FunctionId's fields in its text encoding.
// Not ":" (String()'s separator) since a Windows-style path can itself
// contain a colon after the drive letter.
const functionIDFieldSep = "\x1f"

// MarshalText lets FunctionId serialize as a plain string map key, which
// encoding/json requires for any non-string/int map key type — needed
// since checkpoints store purity/context results keyed by FunctionId.
func (f FunctionId) MarshalText() ([]byte, error) {
	return []byte(f.Path + functionIDFieldSep + f.Name + functionIDFieldSep + strconv.Itoa(f.Line)), nil
}

// UnmarshalText is MarshalText's inverse.
func (f *FunctionId) UnmarshalText(data []byte) error {
	parts := strings.Split(string(data), functionIDFieldSep)
	if len(parts) != 3 {
		return fmt.Errorf("astmodel: malformed FunctionId text %q", data)
	}
	line, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("astmodel: malformed FunctionId line %q: %w", parts[2], err)
	}
	f.Path, f.Name, f.Line = parts[0], parts[1], line
	return nil
}

// Visibility is a function's declared access level.
type Visibility int

const (
	VisibilityPrivate Visibility = iota
	VisibilityPackage
	VisibilityPublic
)

// FunctionMetrics is the read-only identity and raw-complexity record a
// parser collaborator produces for one function. Created once per run and
// immutable thereafter.
type FunctionMetrics struct {
	ID FunctionId

	Visibility Visibility

	// Raw complexity, as reported by the parser.
	Cyclomatic int
	Cognitive  int
	MaxNesting int
	Length     int // statement/line count of the function body

	// Entropy is in [0.0, 1.0] when the parser supplies token-level
	// entropy data; nil when unavailable.
	Entropy *float64

	IsTest        bool
	InTestModule  bool
	IsTraitMethod bool
}

// HasEntropy reports whether the parser supplied entropy data for this
// function.
func (f FunctionMetrics) HasEntropy() bool {
	return f.Entropy != nil
}

// EntropyOrDefault returns the entropy value, or 1.0 (no dampening) when
// the parser did not supply one.
func (f FunctionMetrics) EntropyOrDefault() float64 {
	if f.Entropy == nil {
		return 1.0
	}
	return *f.Entropy
}

// ItemAst is an opaque, per-language AST handle. The core never inspects
// it; it is passed through to language-specific ClassifierPredicate,
// PurityLocalAnalyzer, and PatternDetector implementations alongside an
// AstProjection.
type ItemAst interface{}

// AstProjection is the small language-neutral view of a function body that
// every language's predicates must be able to produce, so core predicates
// never need language-specific AST knowledge.
type AstProjection struct {
	// MethodCount is the number of distinct methods called from the body
	// (used by orchestrator/dispatcher detection).
	MethodCount int

	// LiteralReturn is true when every control-flow arm in the body
	// returns a literal (string/number/bool/no-call path), used by
	// EnumConverter detection.
	LiteralReturn bool

	// MatchOnSelf is true when the body is dominated by a single match/
	// switch on `self`/the receiver or its sole parameter.
	MatchOnSelf bool

	// BodyStatementCount is the number of top-level statements in the
	// function body, used by the Constructor "short body" predicate.
	BodyStatementCount int

	// FieldInitCount is the number of field-assignment statements in the
	// body, used by the Constructor predicate.
	FieldInitCount int

	// HasStateSignal is true when the parser detected an explicit state
	// machine signal (e.g. a dispatch on an enum-typed "state" field).
	HasStateSignal bool

	// HasCoordinatorSignal is true when the parser detected a coordinator
	// signal (a function whose body is mostly sequenced calls to other
	// functions with little inline branching of its own).
	HasCoordinatorSignal bool

	// EarlyReturnFraction is the fraction of branches that are early
	// returns/guard clauses, used by RepetitiveValidation detection.
	EarlyReturnFraction float64

	// BranchStructuralSimilarity in [0,1] measures how similar the
	// shape of the function's branches are to one another, used by
	// RepetitiveValidation detection.
	BranchStructuralSimilarity float64
}

// CallSite is a single textual call reference found inside a function
// body, before cross-module resolution.
type CallSite struct {
	// Target is the textual reference as written, e.g. "foo::bar::baz",
	// "self.validate", or "helper".
	Target string
	Line   int
}

// Import is a single import/use declaration in a file, used by the call
// graph's import-aware resolution pass.
type Import struct {
	// LocalName is the name the importing file uses to refer to the
	// import (after any "as" aliasing).
	LocalName string
	// ModulePath is the fully-qualified module/package path being
	// imported.
	ModulePath string
	// OriginalName is the name inside ModulePath, when the import
	// selects a single symbol (e.g. "from pkg import foo as bar").
	OriginalName string
}

// RawCallRef pairs a CallSite with the FunctionId of the function it was
// found inside, matching the parser interface's raw_call_refs.
type RawCallRef struct {
	Caller FunctionId
	Call   CallSite
}

// FileParse is one file's worth of parser output. The core consumes a
// stream of these to build FunctionMetrics, the ItemAst map, and the
// pre-resolution call graph.
type FileParse struct {
	Path     string
	Language string
	Package  string // fully-qualified module/package path for this file

	Functions []FunctionMetrics
	ItemAsts  map[FunctionId]ItemAst
	Imports   []Import
	CallRefs  []RawCallRef
}

// Parser is the external, language-specific collaborator the workflow's
// call-graph phase consumes: given a set of root paths, it walks them and
// returns one FileParse per source file. The core never parses source
// itself — this is the seam every language front end plugs into.
type Parser interface {
	Parse(ctx context.Context, roots []string) ([]FileParse, error)
}

// Projector is the external collaborator the scoring phase consumes to
// obtain the language-neutral AstProjection for one function — the same
// per-language boundary Parser crosses for FileParse, narrowed to the
// handful of booleans pattern/classifier detection needs.
type Projector interface {
	Project(fm FunctionMetrics, ast ItemAst) AstProjection
}

// ShortName returns the last path segment of a fully-qualified reference,
// e.g. "pkg::sub::Foo" -> "Foo", "pkg.sub.Foo" -> "Foo".
func ShortName(qualified string) string {
	qualified = strings.TrimSuffix(qualified, "()")
	for _, sep := range []string{"::", ".", "/"} {
		if idx := strings.LastIndex(qualified, sep); idx >= 0 {
			return qualified[idx+len(sep):]
		}
	}
	return qualified
}
