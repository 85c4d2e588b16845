// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"ntd-scan/internal/core"
	"ntd-scan/internal/formatters"
	"ntd-scan/internal/summary"
	"ntd-scan/internal/watch"

	"github.com/spf13/cobra"
)

func annotateCmd(opts *globalOptions) *cobra.Command {
	var (
		input     string
		output    string
		watchMode bool
	)

	cmd := &cobra.Command{
		Use:   "annotate",
		Short: "Annotate one requirement table and print its summary",
		Example: `  ntd-scan annotate -i requirements.csv -o annotated.csv
  ntd-scan annotate -i requirements.csv -o annotated.csv --catalog patterns.json --format json
  ntd-scan annotate -i requirements.csv -o annotated.csv --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := opts.resolve(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if !watchMode {
				return runAnnotate(ctx, cmd, env, input, output)
			}
			return watchAnnotate(ctx, cmd, env, input, output)
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Requirement table to annotate")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Path of the annotated table")
	cmd.Flags().BoolVar(&watchMode, "watch", false, "Re-run whenever the input or catalog changes")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runConfig(env *runEnv) core.RunConfig {
	rc := core.RunConfig{
		CatalogPath:  env.settings.Catalog,
		Schema:       &env.cfg.Schema,
		CSV:          env.settings.CSVOptions(),
		Workers:      env.settings.Workers,
		StrictSchema: env.settings.StrictSchema,
		MatchTimeout: env.settings.MatchTimeout,
		Observer:     env.observer,
		Metrics:      env.metrics,
	}
	if env.settings.Debug {
		rc.Progress = progressPrinter(os.Stderr)
	}
	return rc
}

func runAnnotate(ctx context.Context, cmd *cobra.Command, env *runEnv, input, output string) error {
	rc := runConfig(env)
	rc.InputPath = input
	rc.OutputPath = output

	result, err := core.Run(ctx, rc)
	env.writeMetrics()
	if err != nil {
		return err
	}
	env.warnDivergence(result.Unflagged, result.Unfed)

	return printReports(cmd, env, []*summary.Report{result.Report})
}

func watchAnnotate(ctx context.Context, cmd *cobra.Command, env *runEnv, input, output string) error {
	w, err := watch.New([]string{input, env.settings.Catalog}, 0, env.logger)
	if err != nil {
		return err
	}

	run := func(ctx context.Context) {
		if err := runAnnotate(ctx, cmd, env, input, output); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}

	run(ctx)
	env.logger.Info("Watching for changes", "input", input, "catalog", env.settings.Catalog)

	return w.Run(ctx, func(ctx context.Context, changed []string) {
		env.logger.Info("Change detected, re-running", "files", changed)
		run(ctx)
	})
}

func printReports(cmd *cobra.Command, env *runEnv, reports []*summary.Report) error {
	out, err := formatters.Export(env.settings.Format, reports, formatters.FormatterOptions{
		NoColor: env.settings.NoColor,
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)
	return nil
}
