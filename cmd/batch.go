// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"
	"os/signal"
	"syscall"

	"ntd-scan/internal/core"
	"ntd-scan/internal/summary"

	"github.com/spf13/cobra"
)

func batchCmd(opts *globalOptions) *cobra.Command {
	var (
		pattern string
		outDir  string
	)

	cmd := &cobra.Command{
		Use:     "batch",
		Short:   "Annotate every table matched by a glob",
		Example: `  ntd-scan batch --glob 'exports/**/*.csv' --out-dir annotated`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			items, err := core.Batch(ctx, core.BatchConfig{
				RunConfig: runConfig(env),
				Pattern:   pattern,
				OutDir:    outDir,
			})
			env.writeMetrics()
			if err != nil {
				return err
			}

			reports := make([]*summary.Report, 0, len(items))
			for _, item := range items {
				env.logger.Info("Annotated", "input", item.InputPath, "output", item.OutputPath)
				reports = append(reports, item.Result.Report)
			}
			env.warnDivergence(items[0].Result.Unflagged, items[0].Result.Unfed)

			return printReports(cmd, env, reports)
		},
	}

	cmd.Flags().StringVar(&pattern, "glob", "", "Glob of input tables, ** matches any directory depth")
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Directory for annotated tables")
	_ = cmd.MarkFlagRequired("glob")
	_ = cmd.MarkFlagRequired("out-dir")

	return cmd
}
