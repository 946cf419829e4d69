package galloc

import (
	"sync"
	"unsafe"
)

// reservationSize bounds the address space the default allocator's
// BreakSource reserves up front. It is not a tunable the caller can exceed:
// CoarseBlock-sized grows simply fail once exhausted, which Allocate et al.
// surface as a nil return, same as genuine OS-out-of-memory.
const reservationSize = 1 << 34 // 16 GiB of address space, not committed memory

var (
	stdOnce sync.Once
	std     *Allocator
)

// defaultAllocator lazily constructs the process-wide singleton on first
// use (spec §9 "Process-wide state ... a single lazily-initialised
// singleton with an init-on-first-call lifecycle"). Teardown is never
// required; the segment is released when the process exits.
func defaultAllocator() *Allocator {
	stdOnce.Do(func() {
		seg, _ := newDefaultSegment(reservationSize)
		std = NewAllocator(seg)
	})
	return std
}

// Allocate is the package-level entry point matching the C allocator
// contract: allocate n bytes, returning nil on failure. n==0 yields a
// minimum-size, releasable pointer.
func Allocate(n uintptr) unsafe.Pointer {
	return defaultAllocator().Allocate(n)
}

// ZeroAllocate allocates room for k elements of s bytes each, zeroed.
// Returns nil, without allocating, if k*s would overflow.
func ZeroAllocate(k, s uintptr) unsafe.Pointer {
	return defaultAllocator().ZeroAllocate(k, s)
}

// Reallocate resizes the allocation at p to n bytes. A nil p behaves as
// Allocate(n); n==0 releases p and returns a minimum-size pointer; on
// failure p is left valid and untouched.
func Reallocate(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	return defaultAllocator().Reallocate(p, n)
}

// Release frees the allocation at p. A nil p, or a pointer already
// released, is a no-op.
func Release(p unsafe.Pointer) {
	defaultAllocator().Release(p)
}
