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
	"context"
	"fmt"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/debtmap/debtmap/internal/astmodel"
)

var builderTracer = otel.Tracer("debtmap.callgraph")

// BuilderOptions configures Builder. Defaults follow the teacher's
// functional-option idiom (graph.BuilderOptions/WithWorkerCount).
type BuilderOptions struct {
	// WorkerCount bounds how many files are resolved concurrently in the
	// reference-resolution pass. Symbol indexing itself always runs
	// single-threaded.
	WorkerCount int
}

// DefaultBuilderOptions returns sensible defaults.
func DefaultBuilderOptions() BuilderOptions {
	return BuilderOptions{WorkerCount: 8}
}

// BuilderOption is a functional option for Builder.
type BuilderOption func(*BuilderOptions)

// WithWorkerCount overrides the resolution-pass concurrency.
func WithWorkerCount(n int) BuilderOption {
	return func(o *BuilderOptions) { o.WorkerCount = n }
}

// Builder constructs a Graph from parsed file output. Builder is stateless
// and safe to reuse across builds; each Build call owns its own state.
type Builder struct {
	options BuilderOptions
}

// NewBuilder creates a Builder with the given options applied over the
// defaults.
func NewBuilder(opts ...BuilderOption) *Builder {
	o := DefaultBuilderOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.WorkerCount <= 0 {
		o.WorkerCount = 1
	}
	return &Builder{options: o}
}

// resolution is one file's worth of resolved edges, produced independently
// by a worker and merged into the shared Graph in file-path order so the
// result is deterministic regardless of goroutine scheduling.
type resolution struct {
	file  string
	edges []resolvedEdge
}

type resolvedEdge struct {
	from     astmodel.FunctionId
	to       astmodel.FunctionId
	external *ExternalTarget
	extFrom  astmodel.FunctionId
}

// Build runs construction in two passes: symbol indexing (single-threaded,
// builds the shared index), then reference resolution (forked across
// files, merged deterministically).
func (b *Builder) Build(ctx context.Context, files []astmodel.FileParse) (*Graph, error) {
	ctx, span := builderTracer.Start(ctx, "Builder.Build", trace.WithAttributes(
		attribute.Int("debtmap.files", len(files)),
	))
	defer span.End()

	idx := newSymbolIndex()
	g := newGraph()

	// Pass 1: symbol indexing. Single-threaded: it builds the shared index
	// every worker in pass 2 reads from.
	for _, f := range files {
		for _, fm := range f.Functions {
			idx.add(f.Package, fm)
			g.addNode(fm.ID)
		}
	}

	// Pass 2: reference resolution, forked across files. The index is
	// read-only from here on, so no locking is needed in the worker path.
	results := make([]resolution, len(files))
	grp, gctx := errgroup.WithContext(ctx)
	grp.SetLimit(b.options.WorkerCount)
	for i, f := range files {
		i, f := i, f
		grp.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = resolution{file: f.Path, edges: b.resolveFile(idx, f)}
			return nil
		})
	}
	if err := grp.Wait(); err != nil {
		return nil, fmt.Errorf("callgraph: resolve references: %w", err)
	}

	// Merge in file-path order, then edge order within a file, for a
	// deterministic final graph.
	sort.Slice(results, func(i, j int) bool { return results[i].file < results[j].file })
	for _, r := range results {
		for _, e := range r.edges {
			if e.external != nil {
				g.addExternal(e.extFrom, *e.external)
				continue
			}
			g.addEdge(e.from, e.to)
		}
	}

	span.SetAttributes(attribute.Int("debtmap.nodes", len(g.nodes)))
	return g, nil
}

// resolveFile resolves every call reference made from functions declared
// in f, trying in priority order: fully-qualified match, module-relative
// match, single-global-candidate match, else external.
func (b *Builder) resolveFile(idx *symbolIndex, f astmodel.FileParse) []resolvedEdge {
	var out []resolvedEdge
	for _, ref := range f.CallRefs {
		target, ext := b.resolveOne(idx, ref.Call.Target, f.Path)
		if ext != nil {
			out = append(out, resolvedEdge{extFrom: ref.Caller, external: ext})
			continue
		}
		out = append(out, resolvedEdge{from: ref.Caller, to: target})
	}
	return out
}

func (b *Builder) resolveOne(idx *symbolIndex, target, callerFile string) (astmodel.FunctionId, *ExternalTarget) {
	// Step 1: fully-qualified match.
	if id, ok := idx.lookupQualified(target); ok {
		return id, nil
	}

	// Step 2: module-relative match using the caller's module/package path.
	if candidates := idx.lookupInPackage(target, callerFile); len(candidates) == 1 {
		return candidates[0], nil
	} else if len(candidates) > 1 {
		return astmodel.FunctionId{}, &ExternalTarget{
			Name:           target,
			Reason:         "ambiguous within package",
			CandidateCount: len(candidates),
		}
	}

	// Step 2b: same-file match (tightest module-relative scope).
	if candidates := idx.lookupInFile(target, callerFile); len(candidates) == 1 {
		return candidates[0], nil
	}

	// Step 3: exactly one global candidate with a matching short name.
	candidates := idx.lookupShort(target)
	if len(candidates) == 1 {
		return candidates[0], nil
	}
	if len(candidates) > 1 {
		// Ambiguous short-name references must not resolve to a random
		// candidate: record as external with a diagnostic.
		return astmodel.FunctionId{}, &ExternalTarget{
			Name:           target,
			Reason:         "ambiguous short name",
			CandidateCount: len(candidates),
		}
	}

	return astmodel.FunctionId{}, &ExternalTarget{
		Name:           target,
		Reason:         "unresolved (external or dynamic dispatch)",
		CandidateCount: 0,
	}
}
