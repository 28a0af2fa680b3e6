/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"chainguard.dev/trialscreen/agents/evals/report"
	"chainguard.dev/trialscreen/screening/criteria"
	"chainguard.dev/trialscreen/screening/matcher"
	"chainguard.dev/trialscreen/sink"
	"github.com/chainguard-dev/clog"
)

// tally counts batch outcomes for the run summary.
type tally struct {
	Decisions   map[criteria.Decision]int
	Conflicts   int
	Failed      int
	Undelivered int
}

func (t *tally) add(item matcher.BatchItem) {
	if item.Err != nil {
		t.Failed++
		return
	}
	if t.Decisions == nil {
		t.Decisions = map[criteria.Decision]int{}
	}
	t.Decisions[item.Result.FinalDecision]++
	if item.Result.Conflict {
		t.Conflicts++
	}
}

// deliver writes every successful result to s and tallies the batch. Sink
// failures are counted and logged; they do not stop delivery.
func deliver(ctx context.Context, s sink.Sink, items []matcher.BatchItem) tally {
	var t tally
	for _, item := range items {
		t.add(item)
		if item.Err != nil || s == nil {
			continue
		}
		if err := s.Write(ctx, item.Result); err != nil {
			t.Undelivered++
			clog.FromContext(ctx).With("patient_id", item.PatientID).Errorf("Failed to deliver result: %v", err)
		}
	}
	return t
}

func (t tally) render(w io.Writer, studyID string) error {
	rows := [][]string{}
	for _, d := range []criteria.Decision{criteria.Eligible, criteria.NotEligible, criteria.Uncertain} {
		rows = append(rows, []string{studyID, string(d), strconv.Itoa(t.Decisions[d])})
	}
	rows = append(rows,
		[]string{studyID, "conflicts", strconv.Itoa(t.Conflicts)},
		[]string{studyID, "failed", strconv.Itoa(t.Failed)})
	if t.Undelivered > 0 {
		rows = append(rows, []string{studyID, "undelivered", strconv.Itoa(t.Undelivered)})
	}
	return report.Markdown(w, []string{"Study", "Outcome", "Count"}, rows)
}

// err reports a batch that did not fully succeed.
func (t tally) err(total int) error {
	switch {
	case t.Failed > 0:
		return fmt.Errorf("%d of %d matches failed", t.Failed, total)
	case t.Undelivered > 0:
		return fmt.Errorf("%d of %d results were not delivered", t.Undelivered, total)
	}
	return nil
}
