/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package matcher

import (
	"context"

	"chainguard.dev/trialscreen/screening/criteria"
	"github.com/chainguard-dev/clog"
	"golang.org/x/sync/errgroup"
)

// BatchItem is the outcome of one patient in a batch. Exactly one of Result
// and Err is set.
type BatchItem struct {
	PatientID string
	Result    *MatchResult
	Err       error
}

// Batch screens every patient against the study using a bounded worker pool.
// Items are returned in input order. A failure affects only its own item;
// cancelling ctx fails the items that have not started yet.
func (m *Matcher) Batch(ctx context.Context, patients []criteria.Patient, sc *criteria.StudyCriteria) []BatchItem {
	items := make([]BatchItem, len(patients))

	var g errgroup.Group
	g.SetLimit(m.workers)
	for i, p := range patients {
		g.Go(func() error {
			items[i].PatientID = p.ID()
			if err := ctx.Err(); err != nil {
				items[i].Err = err
				return nil
			}
			items[i].Result, items[i].Err = m.Run(ctx, p, sc)
			if items[i].Err != nil {
				clog.FromContext(ctx).With("patient_id", items[i].PatientID).
					With("error", items[i].Err).
					Error("Match failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	return items
}
