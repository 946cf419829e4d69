package main

import (
	"os"

	"github.com/shadibahaa/galloc"
	"github.com/spf13/cobra"
)

var verbose bool

func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "galloc",
		Short: "Exercise and inspect the galloc heap allocator.",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				galloc.Log.SetOutput(os.Stderr)
			}
		},
	}
	cmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "log allocator warnings (shrink failures, mmap fallback) to stderr")
	cmd.AddCommand(newStatsCommand())
	cmd.AddCommand(newBenchCommand())
	cmd.AddCommand(newStressCommand())
	return cmd
}
