/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

// Package judge grades screening results with a language model acting as a
// reviewer of the whole pipeline.
//
// A Judgement scores one match result on five 1 to 5 rubrics. Four of them
// are read as "higher is better"; hallucination_risk is read as "higher is
// worse" and is inverted by Score.
//
// # Usage
//
// The usual entry point is NewEval, which plugs the judge into the evals
// harness so that every screening run recorded by the matcher is graded:
//
//	j, err := judge.NewFromConfig(ctx, metaagent.Config{Model: model, Project: project, Region: region})
//	if err != nil {
//		return err
//	}
//	evalMap := map[string]evals.ObservableTraceCallback[*matcher.MatchResult]{
//		"judge":     judge.NewEval(ctx, j, study, patients),
//		"no-errors": evals.NoErrors[*matcher.MatchResult](),
//	}
//	ctx = agenttrace.WithTracer(ctx, evals.BuildTracer(obs, evalMap))
//
// Judges are stateless and safe for concurrent use.
package judge
