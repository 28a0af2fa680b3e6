/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"fmt"
	"os"

	"chainguard.dev/trialscreen/screening/criteriaparser"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newParseCriteriaCommand(cfg *config) *cobra.Command {
	var textPath string
	cmd := &cobra.Command{
		Use:   "parse-criteria",
		Short: "Draft study criteria from free-text trial eligibility",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			text, err := os.ReadFile(textPath)
			if err != nil {
				return err
			}
			acfg, err := cfg.agentConfig(ctx, cfg.Model)
			if err != nil {
				return err
			}
			p, err := criteriaparser.NewFromConfig(ctx, acfg)
			if err != nil {
				return err
			}
			sc, err := p.Parse(ctx, string(text))
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(sc); err != nil {
				return fmt.Errorf("encoding criteria: %w", err)
			}
			return enc.Close()
		},
	}
	cmd.Flags().StringVar(&textPath, "text", "", "trial eligibility text file")
	_ = cmd.MarkFlagRequired("text")
	return cmd
}
