/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"sync"

	"chainguard.dev/trialscreen/agents/agenttrace"
)

// DimensionStats accumulates per-rubric averages over successful judgements.
// Record has the agenttrace.TraceCallback shape so it can be passed to NewEval.
type DimensionStats struct {
	mu   sync.Mutex
	sums map[string]int
	n    int
}

// Record adds the scores of a completed judge trace.
func (d *DimensionStats) Record(trace *agenttrace.Trace[*Judgement]) {
	if trace.Error != nil || trace.Result == nil {
		return
	}
	scores := trace.Result.Scores()

	d.mu.Lock()
	defer d.mu.Unlock()
	if d.sums == nil {
		d.sums = make(map[string]int, len(Dimensions))
	}
	for name, v := range scores {
		d.sums[name] += v
	}
	d.n++
}

// Count returns the number of judgements recorded.
func (d *DimensionStats) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.n
}

// Averages returns the mean raw score per dimension, or nil before any
// judgement is recorded.
func (d *DimensionStats) Averages() map[string]float64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.n == 0 {
		return nil
	}
	out := make(map[string]float64, len(d.sums))
	for name, sum := range d.sums {
		out[name] = float64(sum) / float64(d.n)
	}
	return out
}
