// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

// Command ntd-scan annotates requirement tables exported from the NTD registry
// with category flags and explanatory comments driven by a pattern catalog.
package main

import (
	"fmt"
	"os"
	"runtime"

	"ntd-scan/internal/version"

	// Register report formatters via init()
	_ "ntd-scan/internal/formatters/csv"
	_ "ntd-scan/internal/formatters/json"
	_ "ntd-scan/internal/formatters/text"
	_ "ntd-scan/internal/formatters/yaml"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			buf := make([]byte, 4096)
			n := runtime.Stack(buf, false)
			_, _ = fmt.Fprintf(os.Stderr, "PANIC: %v\nStack trace:\n%s\n", r, string(buf[:n]))
			os.Exit(2)
		}
	}()

	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	opts := &globalOptions{}

	cmd := &cobra.Command{
		Use:   "ntd-scan",
		Short: "Annotate normative requirement tables",
		Long: `ntd-scan reads a delimited export of normative requirements, matches the
content of every row against an ordered catalog of category patterns, sets a
0/1 flag per recognized category, explains every match in a comment column and
prints a summary of the flagged rows.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	opts.bind(cmd)

	cmd.AddCommand(
		annotateCmd(opts),
		batchCmd(opts),
		catalogCmd(opts),
		versionCmd(),
	)
	return cmd
}

func versionCmd() *cobra.Command {
	var full bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			b := version.Get()
			if full {
				fmt.Fprintln(cmd.OutOrStdout(), b)
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), b.Version)
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "Include commit, build date and platform")
	return cmd
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
