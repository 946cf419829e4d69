package galloc

import "testing"

// newTestAllocator returns an allocator backed by an in-process memSegment
// large enough for the scenarios in this test suite without ever hitting
// BreakSource failure.
func newTestAllocator(t *testing.T) *Allocator {
	t.Helper()
	seg, _ := newMemSegment(256 << 20) // 256 MiB
	return NewAllocator(seg)
}
