package galloc

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
)

// stats holds atomic counters updated on the allocation/release hot path.
// Kept separate from Allocator's mutex-guarded fields since these are
// read by Stats()/the SIGHUP dump without taking the allocator lock.
type stats struct {
	allocations  uint64
	releases     uint64
	grows        uint64
	shrinks      uint64
	bytesGrown   uint64
	bytesShrunk  uint64
	liveBytes    int64
	indexedBytes int64
}

func (s *stats) recordAllocate(n uintptr) {
	atomic.AddUint64(&s.allocations, 1)
	atomic.AddInt64(&s.liveBytes, int64(n))
}

func (s *stats) recordRelease(n uintptr) {
	atomic.AddUint64(&s.releases, 1)
	atomic.AddInt64(&s.liveBytes, -int64(n))
}

func (s *stats) recordGrow(n uintptr) {
	atomic.AddUint64(&s.grows, 1)
	atomic.AddUint64(&s.bytesGrown, uint64(n))
}

func (s *stats) recordShrink(n uintptr) {
	atomic.AddUint64(&s.shrinks, 1)
	atomic.AddUint64(&s.bytesShrunk, uint64(n))
}

func (s *stats) setIndexedBytes(n uintptr) {
	atomic.StoreInt64(&s.indexedBytes, int64(n))
}

// Stats is a point-in-time snapshot of the counters above, returned by
// Allocator.Stats().
type Stats struct {
	Allocations  uint64
	Releases     uint64
	Grows        uint64
	Shrinks      uint64
	BytesGrown   uint64
	BytesShrunk  uint64
	LiveBytes    int64
	IndexedBytes int64
}

func (s *stats) snapshot() Stats {
	return Stats{
		Allocations:  atomic.LoadUint64(&s.allocations),
		Releases:     atomic.LoadUint64(&s.releases),
		Grows:        atomic.LoadUint64(&s.grows),
		Shrinks:      atomic.LoadUint64(&s.shrinks),
		BytesGrown:   atomic.LoadUint64(&s.bytesGrown),
		BytesShrunk:  atomic.LoadUint64(&s.bytesShrunk),
		LiveBytes:    atomic.LoadInt64(&s.liveBytes),
		IndexedBytes: atomic.LoadInt64(&s.indexedBytes),
	}
}

func (s Stats) String() string {
	sb := new(strings.Builder)
	sb.WriteString(fmt.Sprintf("Allocations:  %v\n", s.Allocations))
	sb.WriteString(fmt.Sprintf("Releases:     %v\n", s.Releases))
	sb.WriteString(fmt.Sprintf("Grows:        %v (%v bytes)\n", s.Grows, s.BytesGrown))
	sb.WriteString(fmt.Sprintf("Shrinks:      %v (%v bytes)\n", s.Shrinks, s.BytesShrunk))
	sb.WriteString(fmt.Sprintf("Live bytes:   %v\n", s.LiveBytes))
	sb.WriteString(fmt.Sprintf("Indexed bytes:%v\n", s.IndexedBytes))
	return sb.String()
}

// Stats returns a snapshot of the default allocator's counters.
func Stats() Stats {
	return defaultAllocator().Stats()
}

// Stats returns a snapshot of a's counters. Safe to call concurrently with
// any other Allocator method.
func (a *Allocator) Stats() Stats {
	return a.stats.snapshot()
}

// Fragmentation returns a snapshot of the default allocator's free index
// shape: free byte count, occupied buckets, and indexed bytes.
func Fragmentation() Fragmentation {
	return defaultAllocator().Fragmentation()
}

// Fragmentation reports a's free index shape. Unlike Stats, this takes a's
// lock: the free index's fields aren't updated atomically, so a consistent
// snapshot requires it.
func (a *Allocator) Fragmentation() Fragmentation {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.index.fragmentation()
}

func init() {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGHUP)
	go func() {
		for range sigs {
			fmt.Fprint(os.Stderr, Stats())
		}
	}()
}
