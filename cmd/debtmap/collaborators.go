// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package main

import (
	"go/ast"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/purity"
)

// discoverGoFiles walks root collecting every non-vendor *.go file.
func discoverGoFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "vendor" || d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".go") {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// osFileSystem adapts the standard library to workflow.FileSystem.
type osFileSystem struct{}

func (osFileSystem) ReadFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// ioCallSubstrings is the set of "pkg.Func" call-target prefixes the
// reference local analyzer treats as external-state I/O.
var ioCallSubstrings = []string{"os.", "fmt.Print", "fmt.Fprint", "io.", "log.", "slog."}

// goLocalAnalyzer is the reference purity.LocalAnalyzer: it inspects the
// *ast.FuncDecl handle goParser attaches as ItemAst and flags a function
// as writing external state when its body calls anything matching
// ioCallSubstrings. It does not detect reads of external state:
// ReadsExternalState is never set.
type goLocalAnalyzer struct{}

func (goLocalAnalyzer) AnalyzeLocal(fm astmodel.FunctionMetrics, item astmodel.ItemAst) purity.LocalObservation {
	fn, ok := item.(*ast.FuncDecl)
	if !ok || fn.Body == nil {
		return purity.LocalObservation{}
	}

	var obs purity.LocalObservation
	ast.Inspect(fn.Body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		sel, ok := call.Fun.(*ast.SelectorExpr)
		if !ok {
			return true
		}
		ident, ok := sel.X.(*ast.Ident)
		if !ok {
			return true
		}
		target := ident.Name + "." + sel.Sel.Name
		for _, sub := range ioCallSubstrings {
			if strings.HasPrefix(target, sub) {
				obs.WritesExternalState = true
				obs.Violations = append(obs.Violations, purity.Violation{Kind: purity.ViolationIoOperation, Description: "calls " + target})
				return true
			}
		}
		return true
	})
	return obs
}
