/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

/*
Package evals grades completed agent traces.

An evaluation is an ObservableTraceCallback: it inspects a trace and reports
to an Observer through Fail, Log and Grade. Observers are arranged in a
NamespacedObserver tree so results roll up by path, for example
/{model}/{study}/{eval}:

	obs := evals.NewNamespacedObserver(func(string) *evals.ResultCollector {
		return evals.NewResultCollector(evals.NewMetricsObserver[*matcher.MatchResult]("screen"))
	})
	tracer := evals.BuildTracer(obs.Child(model).Child(studyID), map[string]evals.ObservableTraceCallback[*matcher.MatchResult]{
		"no-errors": evals.NoErrors[*matcher.MatchResult](),
		"valid":     evals.ResultValidator((*matcher.MatchResult).Validate),
	})
	ctx = agenttrace.WithTracer(ctx, tracer)

The report package renders the collected tree.
*/
package evals
