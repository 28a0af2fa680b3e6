/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"

	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

func newScreenCommand(cfg *config) *cobra.Command {
	var patientsPath, criteriaPath, outPath string
	cmd := &cobra.Command{
		Use:   "screen",
		Short: "Screen a patient cohort against study criteria",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) (err error) {
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

			out, err := cfg.newSink(ctx, outPath)
			if err != nil {
				return err
			}
			defer func() { err = errors.Join(err, out.Close()) }()

			clog.FromContext(ctx).With("study_id", sc.ID()).With("patients", len(patients)).Info("Screening cohort")
			items := m.Batch(ctx, patients, sc)
			t := deliver(ctx, out, items)
			if err := t.render(cmd.OutOrStdout(), sc.ID()); err != nil {
				return err
			}
			return t.err(len(items))
		},
	}
	cmd.Flags().StringVar(&patientsPath, "patients", "", "patient CSV file")
	cmd.Flags().StringVar(&criteriaPath, "criteria", "", "study criteria YAML or JSON file")
	cmd.Flags().StringVar(&outPath, "out", "results.jsonl", "JSON-lines output file; empty disables it")
	_ = cmd.MarkFlagRequired("patients")
	_ = cmd.MarkFlagRequired("criteria")
	return cmd
}
