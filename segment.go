package galloc

import (
	"sync"

	"github.com/pkg/errors"
)

// BreakSource is the allocator's sole OS-facing dependency: a monotonic,
// signed-delta data-segment expansion primitive (spec §6). A positive delta
// grows the managed region by that many bytes and returns the old break
// address; (0, false) signals growth failure. A negative delta contracts the
// region and returns the new break address; contraction is assumed to always succeed once the delta has been
// validated against the current break (shrink failure is only meaningful
// for the mmap-backed implementation's madvise call, and is reported the
// same way).
type BreakSource interface {
	Sbrk(delta int64) (old uintptr, ok bool)
}

// memSegment is an in-process, slice-backed BreakSource used by tests and
// anywhere golang.org/x/sys/unix isn't available. It never fails to grow
// short of exhausting maxSize.
type memSegment struct {
	mu      sync.Mutex
	buf     []byte
	brk     uintptr
	maxSize uintptr
	base    uintptr
}

// newMemSegment reserves a maxSize-byte backing slice and returns a
// BreakSource plus the base address callers should treat as "head of the
// segment" for pointer arithmetic.
func newMemSegment(maxSize uintptr) (*memSegment, uintptr) {
	buf := make([]byte, maxSize)
	base := uintptr(0)
	if len(buf) > 0 {
		base = sliceAddr(buf)
	}
	return &memSegment{buf: buf, maxSize: maxSize, base: base}, base
}

func (s *memSegment) Sbrk(delta int64) (uintptr, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.base + s.brk
	if delta >= 0 {
		if s.brk+uintptr(delta) > s.maxSize {
			return 0, false
		}
		s.brk += uintptr(delta)
		return old, true
	}
	shrink := uintptr(-delta)
	if shrink > s.brk {
		Log.WithError(errSbrkOverflow).Debug("galloc: memSegment shrink rejected")
		return 0, false
	}
	s.brk -= shrink
	return s.base + s.brk, true
}

// errSbrkOverflow marks a shrink request larger than the live break.
var errSbrkOverflow = errors.New("galloc: shrink delta exceeds current break")
