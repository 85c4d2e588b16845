// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"

	"ntd-scan/internal/core"

	"github.com/spf13/cobra"
)

func catalogCmd(opts *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Inspect pattern catalogs",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate [file]",
		Short: "Load a catalog and compile every pattern",
		Long: `Load a catalog and compile every pattern. Without a file argument the
configured catalog is validated. Categories that have no flag column and flag
columns no category feeds are reported, and fail validation with --strict-schema.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			path := env.settings.Catalog
			if len(args) == 1 {
				path = args[0]
			}

			check, err := core.ValidateCatalog(path, &env.cfg.Schema, env.settings.StrictSchema)
			if err != nil {
				return err
			}
			env.warnDivergence(check.Unflagged, check.Unfed)

			fmt.Fprintf(cmd.OutOrStdout(), "%s: %d categories, %d patterns OK\n",
				path, len(check.Catalog.Categories), check.Catalog.PatternCount())
			return nil
		},
	})

	return cmd
}
