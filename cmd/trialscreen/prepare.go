/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"os"

	"chainguard.dev/trialscreen/ingest"
	"github.com/chainguard-dev/clog"
	"github.com/spf13/cobra"
)

func newPrepareCommand() *cobra.Command {
	var patientsPath, outPath string
	cmd := &cobra.Command{
		Use:   "prepare",
		Short: "Write a patient CSV with the derived columns and retrieval cards filled in",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			patients, err := ingest.ReadFile(patientsPath)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if outPath != "" {
				f, err := os.Create(outPath)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			if err := ingest.WritePatients(w, patients); err != nil {
				return err
			}
			clog.InfoContextf(cmd.Context(), "Prepared %d patients", len(patients))
			return nil
		},
	}
	cmd.Flags().StringVar(&patientsPath, "patients", "", "patient CSV file")
	cmd.Flags().StringVar(&outPath, "out", "", "output CSV file (default stdout)")
	_ = cmd.MarkFlagRequired("patients")
	return cmd
}
