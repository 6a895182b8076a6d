// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Command debtmap is the CLI front end: it wires the reference Go-source
// Parser and local purity analyzer into pkg/debtmap, the way the
// teacher's cmd/aleutian wires its orchestrator client into a cobra
// command tree.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// debtmapVersion is stamped into crash reports; it is not tied to a
// release process yet, so it stays a fixed placeholder.
const debtmapVersion = "0.1.0-dev"

func main() {
	slog.SetDefault(newLogger())

	tp := sdktrace.NewTracerProvider()
	otel.SetTracerProvider(tp)
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			slog.Warn("shutting down tracer provider", "error", err)
		}
	}()

	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "debtmap",
		Short: "Analyze a codebase and rank functions by technical debt",
	}
	root.AddCommand(newAnalyzeCommand())
	root.AddCommand(newResumeCommand())
	return root
}

// interactiveMode reports whether stdout is a terminal, the way the CLI
// decides between a decorated progress display and plain line output.
func interactiveMode() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if !interactiveMode() {
		level = slog.LevelWarn // piped output stays quiet unless something goes wrong
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
