// +build linux

package galloc

import (
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// mmapSegment is the production BreakSource. It reserves a single large,
// anonymous, zero-committed mapping once (Linux overcommit makes this
// cheap) and treats "growing the break" as advancing an offset into it;
// "shrinking" issues MADV_DONTNEED over the released tail so the kernel can
// reclaim the physical pages, then retreats the offset. This is the
// mmap-based analogue of sbrk(2): one reservation, a monotonically moving
// break within it, no remapping.
type mmapSegment struct {
	mu      sync.Mutex
	base    uintptr
	brk     uintptr
	maxSize uintptr
}

// newMmapSegment reserves maxSize bytes of address space and returns a
// BreakSource plus the base address of the reservation.
func newMmapSegment(maxSize uintptr) (*mmapSegment, uintptr, error) {
	b, err := unix.Mmap(-1, 0, int(maxSize), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, 0, errors.Wrap(err, "reserving segment address space")
	}
	base := sliceAddr(b)
	return &mmapSegment{base: base, maxSize: maxSize}, base, nil
}

func (s *mmapSegment) Sbrk(delta int64) (uintptr, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	old := s.base + s.brk
	if delta >= 0 {
		grow := uintptr(delta)
		if s.brk+grow > s.maxSize {
			return 0, false
		}
		s.brk += grow
		return old, true
	}
	shrink := uintptr(-delta)
	if shrink > s.brk {
		Log.WithError(errSbrkOverflow).Debug("galloc: mmapSegment shrink rejected")
		return 0, false
	}
	region := unsafeByteSliceAt(s.base+s.brk-shrink, int(shrink))
	if err := unix.Madvise(region, unix.MADV_DONTNEED); err != nil {
		Log.WithError(err).Warn("madvise(MADV_DONTNEED) failed during segment shrink")
		return 0, false
	}
	s.brk -= shrink
	return s.base + s.brk, true
}
