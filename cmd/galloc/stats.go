package main

import (
	"fmt"

	"github.com/shadibahaa/galloc"
	"github.com/spf13/cobra"
)

func newStatsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Print a snapshot of the default allocator's counters.",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Print(galloc.Stats())
			f := galloc.Fragmentation()
			fmt.Printf("Free bytes:   %v\n", f.FreeBytes)
			fmt.Printf("Indexed:      %v bytes across %v buckets\n", f.IndexedBytes, f.OccupiedBuckets)
			return nil
		},
	}
}
