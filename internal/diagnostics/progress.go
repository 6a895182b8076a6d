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
	"sync/atomic"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	filesProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "debtmap",
		Subsystem: "analysis",
		Name:      "files_processed_total",
		Help:      "Total files processed across all phases of the current run",
	})

	progressFraction = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "debtmap",
		Subsystem: "analysis",
		Name:      "progress_fraction",
		Help:      "Fraction of files processed in the current run, in [0,1]",
	})
)

// Progress is a process-wide, worker-pool-safe counter of files processed
// against a known total, shared by every worker goroutine in a fan-out
// phase via atomic increments — the one piece of state this package
// allows to be shared, per the "no shared mutable state beyond atomic
// counters" concurrency contract.
type Progress struct {
	processed atomic.Int64
	total     atomic.Int64
}

// NewProgress returns a Progress tracking against total files. total may
// be updated later via SetTotal if the file count isn't known up front.
func NewProgress(total int) *Progress {
	p := &Progress{}
	p.total.Store(int64(total))
	return p
}

// SetTotal updates the denominator, e.g. once file discovery completes.
func (p *Progress) SetTotal(total int) {
	p.total.Store(int64(total))
}

// Inc records one more file processed and updates the exported metrics.
func (p *Progress) Inc() {
	p.processed.Add(1)
	filesProcessedTotal.Inc()
	progressFraction.Set(p.Fraction())
}

// Processed returns the current processed count.
func (p *Progress) Processed() int64 {
	return p.processed.Load()
}

// Total returns the current denominator.
func (p *Progress) Total() int64 {
	return p.total.Load()
}

// Fraction returns processed/total in [0,1], or 0 when total is 0 or
// unset.
func (p *Progress) Fraction() float64 {
	total := p.total.Load()
	if total <= 0 {
		return 0
	}
	processed := p.processed.Load()
	if processed >= total {
		return 1
	}
	return float64(processed) / float64(total)
}
