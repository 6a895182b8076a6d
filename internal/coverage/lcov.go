// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package coverage

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/debtmap/debtmap/internal/debterr"
)

// LcovLoader is a minimal, tolerant LCOV reference parser: a record per
// file between "SF:" and "end_of_record", reading DA (line hits), FNDA
// (function hit counts, converted to a 0/100 presence percentage since
// LCOV's FNDA line only reports a hit count, not a percentage), and BRDA
// (branch records). Malformed lines are skipped rather than aborting the
// whole file, matching the "tolerant to malformed lines" external
// collaborator contract.
type LcovLoader struct{}

var _ CoverageLoader = LcovLoader{}

// Load reads an LCOV tracefile from path and builds a CoverageMap.
func (LcovLoader) Load(path string) (CoverageMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return CoverageMap{}, fmt.Errorf("%w: opening %s: %v", debterr.ErrCoverageMissing, path, err)
	}
	defer f.Close()
	return parseLcov(f)
}

func parseLcov(r io.Reader) (CoverageMap, error) {
	m := CoverageMap{PerFile: make(map[string]FileCoverage)}

	var currentPath string
	var current FileCoverage

	flush := func() {
		if currentPath != "" {
			m.PerFile[currentPath] = current
		}
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		switch {
		case strings.HasPrefix(line, "SF:"):
			currentPath = NormalizePath(strings.TrimPrefix(line, "SF:"))
			current = FileCoverage{
				LineHits:            make(map[int]int),
				FunctionPercentages: make(map[string]float64),
			}
		case currentPath == "":
			// A data line outside any SF record: skipped.
		case strings.HasPrefix(line, "DA:"):
			parseDA(current, strings.TrimPrefix(line, "DA:"))
		case strings.HasPrefix(line, "FNDA:"):
			parseFNDA(current, strings.TrimPrefix(line, "FNDA:"))
		case strings.HasPrefix(line, "BRDA:"):
			if br, ok := parseBRDA(strings.TrimPrefix(line, "BRDA:")); ok {
				current.BranchRecords = append(current.BranchRecords, br)
			}
		case line == "end_of_record":
			flush()
			currentPath = ""
		}
	}
	if err := scanner.Err(); err != nil {
		return CoverageMap{}, fmt.Errorf("%w: reading lcov stream: %v", debterr.ErrCoverageMissing, err)
	}
	flush()
	return m, nil
}

func parseDA(fc FileCoverage, rest string) {
	parts := strings.SplitN(rest, ",", 2)
	if len(parts) < 2 {
		return
	}
	line, err1 := strconv.Atoi(parts[0])
	hits, err2 := strconv.Atoi(strings.TrimSpace(strings.SplitN(parts[1], ",", 2)[0]))
	if err1 != nil || err2 != nil {
		return
	}
	fc.LineHits[line] = hits
}

func parseFNDA(fc FileCoverage, rest string) {
	parts := strings.SplitN(rest, ",", 2)
	if len(parts) < 2 {
		return
	}
	hits, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return
	}
	name := strings.TrimSpace(parts[1])
	if name == "" {
		return
	}
	if hits > 0 {
		fc.FunctionPercentages[name] = 100.0
	} else {
		fc.FunctionPercentages[name] = 0.0
	}
}

func parseBRDA(rest string) (BranchRecord, bool) {
	parts := strings.Split(rest, ",")
	if len(parts) != 4 {
		return BranchRecord{}, false
	}
	line, err := strconv.Atoi(parts[0])
	if err != nil {
		return BranchRecord{}, false
	}
	taken := 0
	if n, err := strconv.Atoi(parts[3]); err == nil {
		taken = n
	}
	return BranchRecord{Line: line, Taken: taken}, true
}
