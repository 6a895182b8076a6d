// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package workflow

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"

	"github.com/debtmap/debtmap/internal/astmodel"
	"github.com/debtmap/debtmap/internal/debterr"
)

const checkpointKeyPrefix = "debtmap:checkpoint:"

// checkpointDoc is the JSON-serialized shape of AnalysisState. Field
// names are stable; unknown fields are tolerated on decode (the zero
// value of a field the writer didn't know about yet) for forward
// compatibility, matching the documented checkpoint format.
type checkpointDoc struct {
	Phase   Phase           `json:"phase"`
	Config  json.RawMessage `json:"config"`
	Results json.RawMessage `json:"results"`
	Parsed  json.RawMessage `json:"parsed"`
}

// SaveCheckpoint persists the entire AnalysisState to db, keyed by the
// run's RunID, so a later process can Resume it.
func SaveCheckpoint(db *badger.DB, s *AnalysisState) error {
	cfgJSON, err := json.Marshal(s.Config)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	resultsJSON, err := json.Marshal(s.Results)
	if err != nil {
		return fmt.Errorf("marshaling results: %w", err)
	}
	parsedJSON, err := json.Marshal(s.Parsed)
	if err != nil {
		return fmt.Errorf("marshaling parsed input: %w", err)
	}

	doc := checkpointDoc{Phase: s.Phase, Config: cfgJSON, Results: resultsJSON, Parsed: parsedJSON}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshaling checkpoint: %w", err)
	}

	key := checkpointKeyPrefix + s.RunID
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("writing checkpoint to badger: %w", err)
	}
	slog.Info("checkpoint saved", slog.String("run_id", s.RunID), slog.String("phase", s.Phase.String()))
	return nil
}

// LoadCheckpoint reconstructs an AnalysisState from db for runID,
// validating the phase/results invariants documented on AnalysisState.
// An inconsistent checkpoint (wrong JSON shape, or a phase whose required
// results are missing) fails with debterr.ErrCheckpointCorrupt rather than
// resuming from a state the driver cannot trust.
func LoadCheckpoint(db *badger.DB, runID string) (*AnalysisState, error) {
	key := checkpointKeyPrefix + runID
	var raw []byte
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reading checkpoint %q: %v", debterr.ErrCheckpointCorrupt, runID, err)
	}

	var doc checkpointDoc
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing checkpoint %q: %v", debterr.ErrCheckpointCorrupt, runID, err)
	}

	s := &AnalysisState{Phase: doc.Phase, RunID: runID}
	if err := json.Unmarshal(doc.Config, &s.Config); err != nil {
		return nil, fmt.Errorf("%w: parsing checkpoint config: %v", debterr.ErrCheckpointCorrupt, err)
	}
	if err := json.Unmarshal(doc.Results, &s.Results); err != nil {
		return nil, fmt.Errorf("%w: parsing checkpoint results: %v", debterr.ErrCheckpointCorrupt, err)
	}
	if err := json.Unmarshal(doc.Parsed, &s.Parsed); err != nil {
		return nil, fmt.Errorf("%w: parsing checkpoint parsed input: %v", debterr.ErrCheckpointCorrupt, err)
	}

	if err := validateInvariants(s); err != nil {
		return nil, err
	}
	return s, nil
}

// validateInvariants checks that a resumed state's results are consistent
// with its phase: e.g. a state claiming PurityComplete must actually carry
// purity results, or every later-phase guard would silently operate on
// empty data.
func validateInvariants(s *AnalysisState) error {
	atOrPast := func(p Phase) bool { return s.Phase >= p }

	if atOrPast(CallGraphComplete) && (s.Results.Graph == nil || (len(s.Results.Graph.Nodes()) == 0 && hasAnyFunction(s.Parsed))) {
		return fmt.Errorf("%w: phase %s requires a built call graph", debterr.ErrCheckpointCorrupt, s.Phase)
	}
	if atOrPast(PurityComplete) && len(s.Results.Purity) == 0 && hasAnyFunction(s.Parsed) {
		return fmt.Errorf("%w: phase %s requires purity results", debterr.ErrCheckpointCorrupt, s.Phase)
	}
	if atOrPast(ScoringComplete) && s.Results.DebtItems == nil && hasAnyFunction(s.Parsed) {
		return fmt.Errorf("%w: phase %s requires scored debt items", debterr.ErrCheckpointCorrupt, s.Phase)
	}
	return nil
}

func hasAnyFunction(parsed []astmodel.FileParse) bool {
	for _, f := range parsed {
		if len(f.Functions) > 0 {
			return true
		}
	}
	return false
}
