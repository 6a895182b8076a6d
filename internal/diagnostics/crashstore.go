// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package diagnostics

import (
	"encoding/json"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const lastCrashKey = "debtmap:crash:last"

// SaveCrashReport persists r as the run's "last crash" record, overwriting
// whatever was there before: only the most recent panic matters for
// post-mortem debugging.
func SaveCrashReport(db *badger.DB, r CrashReport) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshaling crash report: %w", err)
	}
	err = db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(lastCrashKey), data)
	})
	if err != nil {
		return fmt.Errorf("writing crash report to badger: %w", err)
	}
	return nil
}

// LoadLastCrash returns the most recently persisted CrashReport, reporting
// false when no crash has ever been recorded in db.
func LoadLastCrash(db *badger.DB) (CrashReport, bool, error) {
	var report CrashReport
	found := false
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(lastCrashKey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &report)
		})
	})
	if err != nil {
		return CrashReport{}, false, fmt.Errorf("reading last crash report from badger: %w", err)
	}
	return report, found, nil
}
