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
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"

	"github.com/debtmap/debtmap/internal/config"
	"github.com/debtmap/debtmap/internal/coverage"
	"github.com/debtmap/debtmap/internal/diagnostics"
	"github.com/debtmap/debtmap/pkg/debtmap"
)

func newAnalyzeCommand() *cobra.Command {
	var (
		configPath   string
		coverageFile string
		contextOn    bool
		checkpointDB string
		runID        string
	)

	cmd := &cobra.Command{
		Use:   "analyze [roots...]",
		Short: "Run a full analysis over one or more source roots and print the result as JSON",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			roots := args
			if len(roots) == 0 {
				roots = []string{"."}
			}

			progress := diagnostics.NewProgress(0)
			tracker := diagnostics.NewTracker()
			var crashDB *badger.DB
			defer func() {
				report, crashed := diagnostics.Recover(debtmapVersion, tracker, progress)
				if !crashed {
					return
				}
				slog.Error("recovered from panic", slog.String("report", report.String()))
				if crashDB != nil {
					if saveErr := diagnostics.SaveCrashReport(crashDB, report); saveErr != nil {
						slog.Error("failed to persist crash report", slog.String("error", saveErr.Error()))
					}
				}
				err = fmt.Errorf("panicked during %s: %s", report.Phase, report.PanicMessage)
			}()

			cfg, err := loadConfig(configPath, coverageFile, contextOn)
			if err != nil {
				return err
			}

			parsed, err := goParser{}.Parse(cmd.Context(), roots)
			if err != nil {
				return fmt.Errorf("parsing source roots: %w", err)
			}
			progress.SetTotal(len(parsed))

			env := debtmap.Env{
				FS:            osFileSystem{},
				LocalAnalyzer: goLocalAnalyzer{},
				Progress:      progress,
				Tracker:       tracker,
			}

			if checkpointDB != "" {
				db, err := badger.Open(badger.DefaultOptions(checkpointDB).WithLogger(nil))
				if err != nil {
					return fmt.Errorf("opening checkpoint db: %w", err)
				}
				defer db.Close()
				crashDB = db
				env.CheckpointDB = db
				env.RunID = runID
				if env.RunID == "" {
					env.RunID = "debtmap-cli-run"
				}
			}

			result, err := debtmap.Run(cmd.Context(), cfg, parsed, coverage.LcovLoader{}, env)
			if err != nil {
				return err
			}
			return writeJSON(os.Stdout, result)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to a YAML config overlay (defaults to the built-in config)")
	cmd.Flags().StringVar(&coverageFile, "coverage", "", "path to an LCOV coverage file")
	cmd.Flags().BoolVar(&contextOn, "context", false, "load surrounding source snippets for each finding")
	cmd.Flags().StringVar(&checkpointDB, "checkpoint-db", "", "directory for a Badger checkpoint database; enables resumable runs")
	cmd.Flags().StringVar(&runID, "run-id", "", "checkpoint run identifier (defaults to \"debtmap-cli-run\")")
	return cmd
}

func loadConfig(configPath, coverageFile string, contextOn bool) (config.AnalysisConfig, error) {
	opts := []config.Option{}
	if coverageFile != "" {
		opts = append(opts, config.WithCoverageFile(coverageFile))
	}
	if contextOn {
		opts = append(opts, config.WithContextEnabled(true))
	}

	if configPath == "" {
		return config.LoadDefault(opts...)
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return config.AnalysisConfig{}, fmt.Errorf("reading config file %s: %w", configPath, err)
	}
	cfg, err := config.Load(data)
	if err != nil {
		return config.AnalysisConfig{}, err
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg, config.Validate(cfg)
}

func writeJSON(w *os.File, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
