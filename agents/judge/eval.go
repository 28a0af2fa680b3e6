/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package judge

import (
	"context"
	"fmt"
	"strings"

	"chainguard.dev/trialscreen/agents/agenttrace"
	"chainguard.dev/trialscreen/agents/evals"
	"chainguard.dev/trialscreen/screening/criteria"
	"chainguard.dev/trialscreen/screening/matcher"
)

// NewEval creates an evaluation that judges each completed screening run for
// sc. Patients are looked up by the result's patient id. Callbacks receive the
// judge's own traces; with none, judge traces are discarded. Judge calls run
// under ctx with its cancellation removed, so they keep its logger and values.
func NewEval(ctx context.Context, j Interface, sc *criteria.StudyCriteria, patients map[string]criteria.Patient, callbacks ...agenttrace.TraceCallback[*Judgement]) evals.ObservableTraceCallback[*matcher.MatchResult] {
	base := context.WithoutCancel(ctx)
	return func(o evals.Observer, trace *agenttrace.Trace[*matcher.MatchResult]) {
		// Failed runs are reported by NoErrors.
		if trace.Error != nil {
			return
		}
		if trace.Result == nil {
			o.Fail("trace has no result")
			return
		}
		patient, ok := patients[trace.Result.PatientID]
		if !ok {
			o.Fail(fmt.Sprintf("patient %s is not in the cohort", trace.Result.PatientID))
			return
		}

		// Judging outlives the screening run; keep the study for metric labels.
		ctx := agenttrace.WithTracer(base, agenttrace.ByCode(callbacks...))
		ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
			Agent:     "judge",
			StudyID:   trace.ExecContext.StudyID,
			PatientID: trace.ExecContext.PatientID,
		})
		resp, err := j.Judge(ctx, &Request{
			Patient:  patient,
			Criteria: sc,
			Result:   trace.Result,
		})
		if err != nil {
			o.Fail(fmt.Sprintf("Judge failed: %v", err))
			return
		}
		if resp == nil {
			o.Fail("Judge returned nil response")
			return
		}

		o.Grade(resp.Score(), strings.Join(resp.Notes, "; "))
		for _, n := range resp.Notes {
			o.Log("  Note: " + n)
		}
	}
}
