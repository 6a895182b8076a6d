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
	"fmt"
	"runtime"
	"strings"
	"time"
)

const placeholderUnknown = "unknown"

// CrashReport is the structured record the panic hook produces: enough
// to answer "what was the run doing when it crashed" without needing to
// reproduce it.
type CrashReport struct {
	Version          string
	Platform         string
	Timestamp        time.Time
	PanicMessage     string
	SourceLocation   string
	Phase            string
	File             string
	Function         string
	ProgressFraction float64
	Backtrace        string
}

// String renders a CrashReport as a single human-readable line, matching
// the "Failed during X: ..." register used by debterr.CoreError.
func (r CrashReport) String() string {
	return fmt.Sprintf(
		"debtmap %s panicked during %s (file=%s func=%s progress=%.1f%%): %s at %s",
		r.Version, r.Phase, r.File, r.Function, r.ProgressFraction*100, r.PanicMessage, r.SourceLocation,
	)
}

// Recover must be called directly inside a deferred function. It reports
// whether a panic was in flight: if so, it builds and returns a
// CrashReport describing it (recovering the panic so the goroutine does
// not crash the process); if not, it returns (CrashReport{}, false) and
// does nothing. tracker and progress may be nil — a crash report is
// produced using placeholders even when context is unavailable.
func Recover(version string, tracker *Tracker, progress *Progress) (CrashReport, bool) {
	r := recover()
	if r == nil {
		return CrashReport{}, false
	}

	frame := Frame{Phase: placeholderUnknown, File: placeholderUnknown, Function: placeholderUnknown}
	if tracker != nil {
		if f := tracker.Current(); f != (Frame{}) {
			frame = f
		}
	}

	fraction := 0.0
	if progress != nil {
		fraction = progress.Fraction()
	}

	buf := make([]byte, 16384)
	n := runtime.Stack(buf, false)

	return CrashReport{
		Version:          version,
		Platform:         fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Timestamp:        time.Now(),
		PanicMessage:     fmt.Sprint(r),
		SourceLocation:   callerLocation(),
		Phase:            frame.Phase,
		File:             frame.File,
		Function:         frame.Function,
		ProgressFraction: fraction,
		Backtrace:        string(buf[:n]),
	}, true
}

// callerLocation walks up the stack past Recover and the deferred
// function that called it to find the frame where the panic actually
// originated, falling back to the placeholder when it can't be
// determined.
func callerLocation() string {
	pcs := make([]uintptr, 32)
	n := runtime.Callers(2, pcs)
	if n == 0 {
		return placeholderUnknown
	}
	frames := runtime.CallersFrames(pcs[:n])
	pastPanic := false
	for {
		frame, more := frames.Next()
		if pastPanic && frame.File != "" && !strings.HasPrefix(frame.Function, "runtime.") {
			return fmt.Sprintf("%s:%d", frame.File, frame.Line)
		}
		if frame.Function == "runtime.gopanic" {
			pastPanic = true
		}
		if !more {
			break
		}
	}
	return placeholderUnknown
}
