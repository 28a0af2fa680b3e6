/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"fmt"
	"io"

	"chainguard.dev/trialscreen/agents/agenttrace"
	"chainguard.dev/trialscreen/agents/evals"
	"chainguard.dev/trialscreen/agents/evals/report"
	"chainguard.dev/trialscreen/agents/judge"
	"chainguard.dev/trialscreen/screening/criteria"
	"chainguard.dev/trialscreen/screening/matcher"
	"github.com/spf13/cobra"
)

func newEvaluateCommand(cfg *config) *cobra.Command {
	var (
		patientsPath, criteriaPath string
		threshold                  float64
	)
	cmd := &cobra.Command{
		Use:   "evaluate",
		Short: "Screen a cohort and grade every result with an LLM judge",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if threshold < 0 || threshold > 1 {
				return fmt.Errorf("threshold must be in [0, 1], got %v", threshold)
			}
			ctx := cmd.Context()

			patients, sc, err := loadInputs(patientsPath, criteriaPath)
			if err != nil {
				return err
			}
			m, release, err := cfg.newMatcher(ctx, patients)
			if err != nil {
				return err
			}
			defer release()

			jcfg, err := cfg.agentConfig(ctx, cfg.judgeModel())
			if err != nil {
				return err
			}
			j, err := judge.NewFromConfig(ctx, jcfg)
			if err != nil {
				return err
			}

			obs := evals.NewNamespacedObserver(func(ns string) *evals.ResultCollector {
				return evals.NewResultCollector(evals.NewMetricsObserver[*matcher.MatchResult](ns))
			})
			var stats judge.DimensionStats
			ctx = agenttrace.WithTracer(ctx, evalTracer(ctx, obs.Child(cfg.Model).Child(sc.ID()), j, sc, patients, &stats))

			items := m.Batch(ctx, patients, sc)
			if failed := renderEvaluation(cmd.OutOrStdout(), obs, &stats, threshold); failed {
				return fmt.Errorf("evaluation of %d results fell below threshold %.2f", len(items), threshold)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&patientsPath, "patients", "", "patient CSV file")
	cmd.Flags().StringVar(&criteriaPath, "criteria", "", "study criteria YAML or JSON file")
	cmd.Flags().Float64Var(&threshold, "threshold", 0.7, "minimum pass rate and average grade")
	_ = cmd.MarkFlagRequired("patients")
	_ = cmd.MarkFlagRequired("criteria")
	return cmd
}

// evalTracer grades every screening run recorded under obs. Judge traces are
// checked by the judge evals one level further down and feed stats.
func evalTracer(ctx context.Context, obs *evals.NamespacedObserver[*evals.ResultCollector], j judge.Interface, sc *criteria.StudyCriteria, patients []criteria.Patient, stats *judge.DimensionStats) agenttrace.Tracer[*matcher.MatchResult] {
	byID := make(map[string]criteria.Patient, len(patients))
	for _, p := range patients {
		byID[p.ID()] = p
	}
	judgeCallbacks := append(evals.BuildCallbacks(obs.Child("judge"), judge.Evals()), stats.Record)

	return evals.BuildTracer(obs, map[string]evals.ObservableTraceCallback[*matcher.MatchResult]{
		"judge":        judge.NewEval(ctx, j, sc, byID, judgeCallbacks...),
		"no-errors":    evals.NoErrors[*matcher.MatchResult](),
		"valid-result": evals.ResultValidator((*matcher.MatchResult).Validate),
	})
}

func renderEvaluation(w io.Writer, obs *evals.NamespacedObserver[*evals.ResultCollector], stats *judge.DimensionStats, threshold float64) bool {
	summary, summaryFailed := report.Summary(obs, threshold)
	byEval, byEvalFailed := report.ByEval(obs, threshold)

	fmt.Fprintf(w, "## Summary\n\n%s\n## By eval\n\n%s\n", summary, byEval)
	if stats.Count() > 0 {
		fmt.Fprintf(w, "## Judge dimensions\n\n%s", report.Averages(stats.Averages(), judge.Dimensions, stats.Count()))
	}
	return summaryFailed || byEvalFailed
}
