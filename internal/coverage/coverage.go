// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package coverage maps external test-coverage records onto functions.
// The LCOV parser itself is an external collaborator per the core's
// interface boundary (the core only consumes a CoverageMap); lcov.go
// carries a minimal, tolerant reference implementation so the pipeline is
// runnable end to end without a separate coverage-tooling dependency.
package coverage

import (
	"strings"
)

// BranchRecord is one branch-coverage observation at a line.
type BranchRecord struct {
	Line  int
	Taken int
}

// FileCoverage is one file's coverage record: per-line hit counts, any
// function-level percentages the source supplied directly, and branch
// records. Function-level percentages, when present, take precedence over
// the line-average computation in FunctionCoveragePct.
type FileCoverage struct {
	LineHits            map[int]int
	FunctionPercentages map[string]float64
	BranchRecords       []BranchRecord
}

// CoverageMap is the full coverage record for a run, keyed by normalized
// file path.
type CoverageMap struct {
	PerFile map[string]FileCoverage
}

// CoverageLoader is the external collaborator that produces a CoverageMap,
// e.g. by parsing an LCOV file. The core depends only on this interface.
type CoverageLoader interface {
	Load(path string) (CoverageMap, error)
}

// NormalizePath converts a path to forward slashes and lower-cases a
// leading Windows drive letter only, so a coverage record produced on
// Windows ("C:\src\foo.go") and a FunctionId built on POSIX
// ("c:/src/foo.go") compare equal, while the rest of the path stays
// case-sensitive as POSIX filesystems require. Mirrors
// astmodel.NormalizePath, which every FunctionId.Path already runs
// through.
func NormalizePath(path string) string {
	p := strings.ReplaceAll(path, `\`, "/")
	if len(p) >= 2 && p[1] == ':' {
		p = strings.ToLower(p[:1]) + p[1:]
	}
	return p
}

// lookupFile finds a file's coverage record by normalized path, falling
// back to a workspace-relative suffix match when no exact match exists —
// coverage tools and parsers frequently disagree on absolute vs.
// repository-relative paths for the same file.
func (m CoverageMap) lookupFile(path string) (FileCoverage, bool) {
	norm := NormalizePath(path)
	if fc, ok := m.PerFile[norm]; ok {
		return fc, true
	}
	for candidate, fc := range m.PerFile {
		if strings.HasSuffix(norm, "/"+candidate) || strings.HasSuffix(candidate, "/"+norm) {
			return fc, true
		}
	}
	return FileCoverage{}, false
}

// FunctionCoveragePct computes one function's coverage percentage. A
// file present in FunctionMetrics but absent from the coverage map is
// treated as 0% coverage (ok=true); a function-level percentage, when
// the source supplied one, takes precedence over the per-line average
// over [startLine, startLine+length].
func FunctionCoveragePct(m CoverageMap, path, name string, startLine, length int) (pct float64, ok bool) {
	fc, found := m.lookupFile(path)
	if !found {
		return 0, true
	}
	if p, ok := fc.FunctionPercentages[name]; ok {
		return p, true
	}
	return lineAverage(fc, startLine, length), true
}

func lineAverage(fc FileCoverage, startLine, length int) float64 {
	if length <= 0 {
		length = 1
	}
	end := startLine + length
	hit, total := 0, 0
	for line := startLine; line <= end; line++ {
		count, present := fc.LineHits[line]
		if !present {
			continue
		}
		total++
		if count > 0 {
			hit++
		}
	}
	if total == 0 {
		return 0
	}
	return 100.0 * float64(hit) / float64(total)
}

// Gap converts a coverage percentage into the coverage-gap base factor
// the scorer consumes: functions with less coverage contribute a larger
// gap.
func Gap(pct float64) float64 {
	gap := 100.0 - pct
	if gap < 0 {
		return 0
	}
	if gap > 100 {
		return 100
	}
	return gap
}
