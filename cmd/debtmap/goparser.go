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
	"context"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"path/filepath"
	"strings"

	"github.com/debtmap/debtmap/internal/astmodel"
)

// goParser is the reference astmodel.Parser implementation: it walks *.go
// files under the given roots with go/parser and produces one FileParse
// per file, using decision-point counting for cyclomatic/cognitive
// complexity. It exists so the CLI is runnable end to end against a real
// Go tree (starting with this repository's own source) without requiring
// a caller to supply their own language front end.
type goParser struct{}

func (goParser) Parse(ctx context.Context, roots []string) ([]astmodel.FileParse, error) {
	var out []astmodel.FileParse
	fset := token.NewFileSet()

	for _, root := range roots {
		files, err := discoverGoFiles(root)
		if err != nil {
			return nil, fmt.Errorf("discovering go files under %s: %w", root, err)
		}
		for _, path := range files {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			fp, err := parseGoFile(fset, path)
			if err != nil {
				continue // per-file parse errors are the caller's ParserFailure concern, not fatal here
			}
			out = append(out, fp)
		}
	}
	return out, nil
}

func parseGoFile(fset *token.FileSet, path string) (astmodel.FileParse, error) {
	astFile, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
	if err != nil {
		return astmodel.FileParse{}, err
	}

	fp := astmodel.FileParse{
		Path:     filepath.ToSlash(path),
		Language: "go",
		Package:  astFile.Name.Name,
		ItemAsts: make(map[astmodel.FunctionId]astmodel.ItemAst),
	}

	ast.Inspect(astFile, func(n ast.Node) bool {
		fn, ok := n.(*ast.FuncDecl)
		if !ok || fn.Body == nil {
			return true
		}
		line := fset.Position(fn.Pos()).Line
		endLine := fset.Position(fn.End()).Line
		id := astmodel.NewFunctionId(fp.Path, funcDisplayName(fn), line)

		cyclomatic := 1 + countDecisionPoints(fn.Body)
		fp.Functions = append(fp.Functions, astmodel.FunctionMetrics{
			ID:         id,
			Visibility: visibilityOf(fn.Name.Name),
			Cyclomatic: cyclomatic,
			Cognitive:  cyclomatic, // approximated from the same decision-point count
			MaxNesting: maxNestingOf(fn.Body, 0),
			Length:     endLine - line + 1,
			IsTest:     strings.HasPrefix(filepath.Base(fp.Path), "") && strings.HasSuffix(fp.Path, "_test.go"),
		})
		fp.ItemAsts[id] = fn
		for _, ref := range callRefsIn(fn.Body, id) {
			fp.CallRefs = append(fp.CallRefs, ref)
		}
		return true
	})

	for _, imp := range astFile.Imports {
		path := strings.Trim(imp.Path.Value, `"`)
		local := path
		if idx := strings.LastIndex(path, "/"); idx >= 0 {
			local = path[idx+1:]
		}
		if imp.Name != nil {
			local = imp.Name.Name
		}
		fp.Imports = append(fp.Imports, astmodel.Import{LocalName: local, ModulePath: path, OriginalName: local})
	}

	return fp, nil
}

func funcDisplayName(fn *ast.FuncDecl) string {
	if fn.Recv == nil || len(fn.Recv.List) == 0 {
		return fn.Name.Name
	}
	recv := fn.Recv.List[0].Type
	if star, ok := recv.(*ast.StarExpr); ok {
		recv = star.X
	}
	if ident, ok := recv.(*ast.Ident); ok {
		return ident.Name + "." + fn.Name.Name
	}
	return fn.Name.Name
}

func visibilityOf(name string) astmodel.Visibility {
	if len(name) == 0 {
		return astmodel.VisibilityPrivate
	}
	if name[0] >= 'A' && name[0] <= 'Z' {
		return astmodel.VisibilityPublic
	}
	return astmodel.VisibilityPrivate
}

func countDecisionPoints(n ast.Node) int {
	count := 0
	ast.Inspect(n, func(node ast.Node) bool {
		switch node.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.CaseClause, *ast.CommClause, *ast.BinaryExpr:
			count++
		}
		return true
	})
	return count
}

func maxNestingOf(n ast.Node, depth int) int {
	max := depth
	ast.Inspect(n, func(node ast.Node) bool {
		switch node.(type) {
		case *ast.IfStmt, *ast.ForStmt, *ast.RangeStmt, *ast.SwitchStmt, *ast.TypeSwitchStmt:
			if d := depth + 1; d > max {
				max = d
			}
		}
		return true
	})
	return max
}

func callRefsIn(body *ast.BlockStmt, caller astmodel.FunctionId) []astmodel.RawCallRef {
	var refs []astmodel.RawCallRef
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		target := callTargetName(call.Fun)
		if target == "" {
			return true
		}
		refs = append(refs, astmodel.RawCallRef{Caller: caller, Call: astmodel.CallSite{Target: target}})
		return true
	})
	return refs
}

func callTargetName(fun ast.Expr) string {
	switch e := fun.(type) {
	case *ast.Ident:
		return e.Name
	case *ast.SelectorExpr:
		if ident, ok := e.X.(*ast.Ident); ok {
			return ident.Name + "." + e.Sel.Name
		}
		return e.Sel.Name
	default:
		return ""
	}
}
