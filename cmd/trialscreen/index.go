/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"errors"
	"fmt"

	"chainguard.dev/trialscreen/ingest"
	"chainguard.dev/trialscreen/retrieval"
	"github.com/spf13/cobra"
)

func newIndexCommand(cfg *config) *cobra.Command {
	var patientsPath string
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed a patient CSV into the vector store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cfg.DatabaseURL == "" {
				return errors.New("index requires DATABASE_URL; the in-memory store does not outlive a run")
			}
			ctx := cmd.Context()

			patients, err := ingest.ReadFile(patientsPath)
			if err != nil {
				return err
			}
			e, err := cfg.embedder(ctx)
			if err != nil {
				return err
			}
			store, _, release, err := cfg.openStore(ctx, e)
			if err != nil {
				return err
			}
			defer release()

			if err := retrieval.Upsert(ctx, store, patients); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d patients into %s\n", len(patients), cfg.Table)
			return nil
		},
	}
	cmd.Flags().StringVar(&patientsPath, "patients", "", "patient CSV file")
	_ = cmd.MarkFlagRequired("patients")
	return cmd
}
