/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package agenttrace records single model interactions.

A Trace covers one structured-generation call: the rendered prompt, the raw
model text, the decoded result or error, and token usage. Each trace is also
an OpenTelemetry span named "agent.execution".

Callers attach screening context so traces and metrics can be sliced by study:

	ctx = agenttrace.WithExecutionContext(ctx, agenttrace.ExecutionContext{
		Agent:     "verifier",
		StudyID:   "DM2-CV-01",
		PatientID: "P001",
	})

Completed traces are handed to the Tracer found in the context. ByCode fans a
trace out to callbacks, which is how the evals package grades results:

	ctx = agenttrace.WithTracer(ctx, agenttrace.ByCode(func(t *agenttrace.Trace[*Verdict]) {
		log.Printf("trace %s took %v", t.ID, t.Duration())
	}))
*/
package agenttrace
