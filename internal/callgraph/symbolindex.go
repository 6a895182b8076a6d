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
	"github.com/debtmap/debtmap/internal/astmodel"
)

// symbolIndex provides the O(1)/O(k) lookups the resolution pass needs:
// by fully-qualified name, by short name (fan-out to every candidate with
// that name), and by file (for module-relative resolution). Built once
// during the single-threaded collection pass and read-only afterward,
// mirroring the teacher's index.SymbolIndex (byID/byName/byFile maps built
// up front, queried concurrently later).
type symbolIndex struct {
	byQualified map[string]astmodel.FunctionId   // "pkg::sub::Name" -> id
	byShort     map[string][]astmodel.FunctionId // "Name" -> candidates
	byFile      map[string][]astmodel.FunctionId
	packageOf   map[string]string // normalized file path -> package/module path
	metrics     map[astmodel.FunctionId]astmodel.FunctionMetrics
}

func newSymbolIndex() *symbolIndex {
	return &symbolIndex{
		byQualified: make(map[string]astmodel.FunctionId),
		byShort:     make(map[string][]astmodel.FunctionId),
		byFile:      make(map[string][]astmodel.FunctionId),
		packageOf:   make(map[string]string),
		metrics:     make(map[astmodel.FunctionId]astmodel.FunctionMetrics),
	}
}

// add indexes one function under its file, short name, and (if the file
// declares a package) its fully-qualified name.
func (s *symbolIndex) add(pkg string, fm astmodel.FunctionMetrics) {
	id := fm.ID
	s.metrics[id] = fm
	s.byFile[id.Path] = append(s.byFile[id.Path], id)
	s.byShort[id.Name] = append(s.byShort[id.Name], id)
	if pkg != "" {
		qualified := pkg + "::" + id.Name
		// First definition under a qualified name wins; a genuine
		// redefinition is a parser bug upstream, not something the core
		// should silently overwrite.
		if _, exists := s.byQualified[qualified]; !exists {
			s.byQualified[qualified] = id
		}
	}
	s.packageOf[id.Path] = pkg
}

// lookupQualified resolves a fully-qualified reference exactly.
func (s *symbolIndex) lookupQualified(name string) (astmodel.FunctionId, bool) {
	id, ok := s.byQualified[name]
	return id, ok
}

// lookupShort returns every candidate with the given short name.
func (s *symbolIndex) lookupShort(name string) []astmodel.FunctionId {
	return s.byShort[astmodel.ShortName(name)]
}

// lookupInFile restricts candidates to ones declared in the same file,
// used for module-relative resolution of an unqualified call.
func (s *symbolIndex) lookupInFile(name, file string) []astmodel.FunctionId {
	var out []astmodel.FunctionId
	for _, id := range s.byFile[astmodel.NormalizePath(file)] {
		if id.Name == astmodel.ShortName(name) {
			out = append(out, id)
		}
	}
	return out
}

// lookupInPackage restricts candidates to functions declared in the same
// package/module as callerFile (a module-relative match).
func (s *symbolIndex) lookupInPackage(name, callerFile string) []astmodel.FunctionId {
	pkg := s.packageOf[astmodel.NormalizePath(callerFile)]
	if pkg == "" {
		return nil
	}
	var out []astmodel.FunctionId
	short := astmodel.ShortName(name)
	for _, id := range s.byShort[short] {
		if s.packageOf[id.Path] == pkg {
			out = append(out, id)
		}
	}
	return out
}
