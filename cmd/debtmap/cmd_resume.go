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
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"

	"github.com/debtmap/debtmap/internal/coverage"
	"github.com/debtmap/debtmap/internal/diagnostics"
	"github.com/debtmap/debtmap/pkg/debtmap"
)

func newResumeCommand() *cobra.Command {
	var checkpointDB string

	cmd := &cobra.Command{
		Use:   "resume <run-id>",
		Short: "Continue a previously checkpointed run to completion and print the result as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			if checkpointDB == "" {
				return fmt.Errorf("--checkpoint-db is required")
			}
			db, err := badger.Open(badger.DefaultOptions(checkpointDB).WithLogger(nil))
			if err != nil {
				return fmt.Errorf("opening checkpoint db: %w", err)
			}
			defer db.Close()

			progress := diagnostics.NewProgress(0)
			tracker := diagnostics.NewTracker()
			defer func() {
				report, crashed := diagnostics.Recover(debtmapVersion, tracker, progress)
				if !crashed {
					return
				}
				slog.Error("recovered from panic", slog.String("report", report.String()))
				if saveErr := diagnostics.SaveCrashReport(db, report); saveErr != nil {
					slog.Error("failed to persist crash report", slog.String("error", saveErr.Error()))
				}
				err = fmt.Errorf("panicked during %s: %s", report.Phase, report.PanicMessage)
			}()

			env := debtmap.Env{
				FS:            osFileSystem{},
				LocalAnalyzer: goLocalAnalyzer{},
				Progress:      progress,
				Tracker:       tracker,
			}

			result, err := debtmap.Resume(cmd.Context(), db, args[0], coverage.LcovLoader{}, env)
			if err != nil {
				return err
			}
			return writeJSON(os.Stdout, result)
		},
	}

	cmd.Flags().StringVar(&checkpointDB, "checkpoint-db", "", "directory of the Badger checkpoint database to resume from")
	return cmd
}
