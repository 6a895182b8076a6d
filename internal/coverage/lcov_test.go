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
	"strings"
	"testing"
)

const sampleLcov = `SF:src/foo.go
DA:10,1
DA:11,0
DA:12,1
FNDA:4,DoThing
BRDA:10,0,0,1
end_of_record
SF:src/bar.go
DA:1,0
end_of_record
`

func TestParseLcov_BasicRecord(t *testing.T) {
	m, err := parseLcov(strings.NewReader(sampleLcov))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	foo, ok := m.PerFile["src/foo.go"]
	if !ok {
		t.Fatal("expected src/foo.go to be present")
	}
	if foo.LineHits[10] != 1 || foo.LineHits[11] != 0 || foo.LineHits[12] != 1 {
		t.Errorf("unexpected line hits: %+v", foo.LineHits)
	}
	if pct := foo.FunctionPercentages["DoThing"]; pct != 100.0 {
		t.Errorf("expected DoThing at 100%%, got %v", pct)
	}
	if len(foo.BranchRecords) != 1 || foo.BranchRecords[0].Line != 10 {
		t.Errorf("unexpected branch records: %+v", foo.BranchRecords)
	}
	if _, ok := m.PerFile["src/bar.go"]; !ok {
		t.Error("expected src/bar.go to be present")
	}
}

func TestParseLcov_TolerantOfMalformedLines(t *testing.T) {
	malformed := "SF:src/foo.go\nDA:not-a-number\nFNDA:\nBRDA:garbage\nDA:5,2\nend_of_record\n"
	m, err := parseLcov(strings.NewReader(malformed))
	if err != nil {
		t.Fatalf("expected malformed lines to be skipped, not fatal: %v", err)
	}
	foo := m.PerFile["src/foo.go"]
	if foo.LineHits[5] != 2 {
		t.Errorf("expected the well-formed DA line to still be recorded, got %+v", foo.LineHits)
	}
}

func TestParseLcov_RecordWithoutEndOfRecordStillFlushed(t *testing.T) {
	m, err := parseLcov(strings.NewReader("SF:src/only.go\nDA:1,1\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := m.PerFile["src/only.go"]; !ok {
		t.Error("expected a trailing record with no end_of_record to still be flushed")
	}
}
