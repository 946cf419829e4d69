package main

import (
	"fmt"
	"time"
	"unsafe"

	"github.com/shadibahaa/galloc"
	"github.com/spf13/cobra"
	pb "gopkg.in/cheggaaa/pb.v1"
)

func newBenchCommand() *cobra.Command {
	var count int
	var size int
	var keep int

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Allocate and release a sequence of fixed-size blocks, timing the run.",
		Long: `bench allocates <count> blocks of <size> bytes, keeping up to <keep>
live at a time before releasing the oldest, then frees everything that's
left. This is the spec's "allocate N blocks, then release all in order"
end-to-end scenario, driven manually.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBench(count, size, keep)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10000, "number of allocations to perform")
	cmd.Flags().IntVarP(&size, "size", "s", 1024, "size in bytes of each allocation")
	cmd.Flags().IntVarP(&keep, "keep", "k", 0, "number of blocks to keep live at once (0 = keep all until the end)")
	return cmd
}

func runBench(count, size, keep int) error {
	bar := pb.New(count).Prefix("allocating ")
	bar.ShowCounters = true
	bar.Start()
	defer bar.Finish()

	start := time.Now()
	var live []unsafe.Pointer
	for i := 0; i < count; i++ {
		p := galloc.Allocate(uintptr(size))
		if p == nil {
			return fmt.Errorf("allocation %d of %d failed: out of memory", i, count)
		}
		live = append(live, p)
		if keep > 0 && len(live) > keep {
			galloc.Release(live[0])
			live = live[1:]
		}
		bar.Increment()
	}
	for _, p := range live {
		galloc.Release(p)
	}
	elapsed := time.Since(start)

	fmt.Printf("\n%d allocations of %d bytes in %v (%.0f allocs/sec)\n", count, size, elapsed, float64(count)/elapsed.Seconds())
	fmt.Print(galloc.Stats())
	return nil
}
