package main

import (
	"context"
	"fmt"
	"math/rand"
	"time"
	"unsafe"

	"github.com/shadibahaa/galloc"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

func newStressCommand() *cobra.Command {
	var workers int
	var duration time.Duration

	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Hammer the default allocator with concurrent allocate/release/reallocate calls.",
		Long: `stress runs <workers> goroutines, each repeatedly allocating a random
size, sometimes reallocating it, and eventually releasing it, for <duration>.
Concurrency is bounded with a weighted semaphore and the first worker error
(there shouldn't be one - the allocator has no failure mode here beyond
running out of the reserved address space) is collected with errgroup,
the same shape chop.go in the teacher repo gets from a hand-rolled
WaitGroup and channel.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress(workers, duration)
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "n", 8, "number of concurrent workers")
	cmd.Flags().DurationVarP(&duration, "duration", "d", 5*time.Second, "how long to run")
	return cmd
}

func runStress(workers int, duration time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), duration)
	defer cancel()

	sem := semaphore.NewWeighted(int64(workers))
	g, ctx := errgroup.WithContext(ctx)

	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			if err := sem.Acquire(ctx, 1); err != nil {
				return nil // context done, not an error worth surfacing
			}
			defer sem.Release(1)
			return stressWorker(ctx, w)
		})
	}

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Print(galloc.Stats())
	return nil
}

func stressWorker(ctx context.Context, seed int) error {
	rng := rand.New(rand.NewSource(int64(seed) + time.Now().UnixNano()))
	var live []unsafe.Pointer
	defer func() {
		for _, p := range live {
			galloc.Release(p)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		switch rng.Intn(3) {
		case 0:
			size := uintptr(rng.Intn(4096) + 1)
			p := galloc.Allocate(size)
			if p == nil {
				return fmt.Errorf("worker %d: allocate(%d) returned nil", seed, size)
			}
			live = append(live, p)
		case 1:
			if len(live) == 0 {
				continue
			}
			i := rng.Intn(len(live))
			galloc.Release(live[i])
			live[i] = live[len(live)-1]
			live = live[:len(live)-1]
		case 2:
			if len(live) == 0 {
				continue
			}
			i := rng.Intn(len(live))
			size := uintptr(rng.Intn(4096) + 1)
			np := galloc.Reallocate(live[i], size)
			if np == nil {
				return fmt.Errorf("worker %d: reallocate returned nil", seed)
			}
			live[i] = np
		}
	}
}
