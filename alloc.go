package galloc

import (
	"sync"
	"unsafe"
)

// Allocator is the process-wide allocator core: a chunk heap, a free index,
// a segment manager, and the single mutex that serialises every public
// entry point (spec §5 "Concurrency shell"). All internal algorithms run to
// completion under the lock; there are no suspension points inside it
// beyond the mutex itself.
type Allocator struct {
	mu    sync.Mutex
	heap  chunkHeap
	index *freeIndex
	seg   BreakSource
	stats stats
}

// NewAllocator builds an allocator backed by the given BreakSource. Most
// callers want Allocate/ZeroAllocate/Reallocate/Release against the
// package-level default instead (public.go); NewAllocator exists so tests
// and cmd/galloc can run independent allocators against independent
// segments.
func NewAllocator(seg BreakSource) *Allocator {
	return &Allocator{
		heap:  chunkHeap{},
		index: newFreeIndex(FreeIndexCapacity),
		seg:   seg,
	}
}

// Allocate implements spec §4.3. n==0 is treated as one alignment unit.
// Returns nil on OS-out-of-memory.
func (a *Allocator) Allocate(n uintptr) unsafe.Pointer {
	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.allocateLocked(align(n))
	if c == nil {
		return nil
	}
	return unsafe.Pointer(c.payload())
}

// allocateLocked implements the fast path / slow scan / grow loop of spec
// §4.3 steps 3-6. size must already be aligned and non-zero.
func (a *Allocator) allocateLocked(size uintptr) *chunkHeader {
	for {
		if c := a.index.take(size); c != nil {
			c.free = false
			a.stats.setIndexedBytes(a.index.freeBytes)
			a.stats.recordAllocate(c.payloadSize)
			return c
		}

		for c := a.heap.tail; c != nil; c = c.prev {
			if c.free && c.payloadSize >= size {
				a.index.remove(c)
				if r := split(&a.heap, c, size); r != nil {
					a.index.insert(r)
				}
				c.free = false
				a.stats.setIndexedBytes(a.index.freeBytes)
				a.stats.recordAllocate(c.payloadSize)
				return c
			} else if c.free {
				wasIndexed := c.inIndex
				a.index.insert(c)
				if !wasIndexed && c.inIndex {
					Log.Debug("galloc: re-indexed free chunk found during heap scan")
				}
			}
		}

		if !a.grow(size) {
			return nil
		}
	}
}

// grow requests segment expansion sized to fit size plus headroom, per
// spec §4.3 step 5, then either extends a free tail in place or links a
// fresh free tail chunk over the new region (step 6). Returns false on
// BreakSource failure.
func (a *Allocator) grow(size uintptr) bool {
	raw := size + chunkHeaderSize + CoarseBlock
	growSize := ((raw + CoarseBlock - 1) / CoarseBlock) * CoarseBlock

	old, ok := a.seg.Sbrk(int64(growSize))
	if !ok {
		Log.WithError(ErrOutOfMemory).Debug("galloc: segment grow refused")
		return false
	}
	a.stats.recordGrow(growSize)

	if a.heap.tail != nil && a.heap.tail.free {
		a.index.remove(a.heap.tail)
		a.heap.tail.payloadSize += growSize
		return true
	}

	c := headerAt(old)
	*c = chunkHeader{
		free:        true,
		payloadSize: growSize - chunkHeaderSize,
	}
	a.heap.appendTail(c)
	a.index.insert(c)
	return true
}

// ZeroAllocate implements spec §4.5: k*s rounded up to alignment, zeroed in
// full (including any split remainder still attached to the chunk handed
// back). Returns nil, without touching the segment, on overflow.
func (a *Allocator) ZeroAllocate(k, s uintptr) unsafe.Pointer {
	if s > 0 && k > (^uintptr(0))/s {
		Log.WithError(ErrOverflow).Debug("galloc: ZeroAllocate element count * size overflow")
		return nil
	}
	size := k * s

	a.mu.Lock()
	defer a.mu.Unlock()
	c := a.allocateLocked(align(size))
	if c == nil {
		return nil
	}
	b := c.payloadBytes()
	for i := range b {
		b[i] = 0
	}
	return unsafe.Pointer(c.payload())
}

// Release implements spec §4.4. A nil p is a no-op; releasing an
// already-free payload is an idempotent no-op, not an error.
func (a *Allocator) Release(p unsafe.Pointer) {
	if p == nil {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.releaseLocked(chunkFromPayload(p))
}

func (a *Allocator) releaseLocked(c *chunkHeader) {
	if c.free {
		Log.Debug("galloc: release of already-free chunk ignored")
		return
	}
	a.stats.recordRelease(c.payloadSize)
	c.free = true

	var merged *chunkHeader
	switch {
	case c.prev != nil && c.prev.free:
		merged = coalesce(&a.heap, a.index, c.prev)
	case c.next != nil && c.next.free:
		merged = coalesce(&a.heap, a.index, c)
	default:
		merged = c
	}
	a.index.insert(merged)
	a.stats.setIndexedBytes(a.index.freeBytes)

	a.trimTail()
}

// trimTail implements spec §4.4 step 4. Collects a contiguous free run at
// the heap tail, removing each chunk from the index as it's gathered; if
// the run totals at least CoarseBlock bytes, shrinks the segment by that
// amount. On shrink failure, the collected chunks are re-inserted into the
// index rather than left dangling (spec §9 open question: this
// implementation takes the invariant-preserving alternative).
//
// There is deliberately no cheap early-exit on a.index.freeBytes here: that
// counter only tracks chunks small enough to fall inside FreeIndexCapacity
// (freeindex.go), so a fully coalesced tail run bigger than one bucket's
// range - the common case after releasing everything - carries a payload
// the index never counted. Gating on it would skip the walk, and the walk
// below is the only place the run's actual physical size is known.
func (a *Allocator) trimTail() {
	var run []*chunkHeader
	var size uintptr
	c := a.heap.tail
	for c != nil && c.free {
		run = append(run, c)
		size += chunkHeaderSize + c.payloadSize
		a.index.remove(c)
		c = c.prev
	}
	if len(run) == 0 {
		return
	}

	reinsert := func() {
		for _, r := range run {
			a.index.insert(r)
		}
		a.stats.setIndexedBytes(a.index.freeBytes)
	}

	if size < CoarseBlock {
		reinsert()
		return
	}

	if _, ok := a.seg.Sbrk(-int64(size)); !ok {
		Log.Warn("galloc: segment shrink failed during tail trim, re-indexing collected chunks")
		reinsert()
		return
	}

	a.stats.recordShrink(size)
	a.heap.setTail(c)
	a.stats.setIndexedBytes(a.index.freeBytes)
}

// Reallocate implements spec §4.6. The whole operation - free, allocate,
// copy - runs under one lock acquisition, consistent with §5's "every
// public entry point" being serialised as a single unit rather than a
// sequence of independently-locked calls.
func (a *Allocator) Reallocate(p unsafe.Pointer, n uintptr) unsafe.Pointer {
	if p == nil {
		return a.Allocate(n)
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	c := chunkFromPayload(p)

	if n == 0 {
		a.releaseLocked(c)
		nc := a.allocateLocked(AlignmentUnit)
		if nc == nil {
			return nil
		}
		return unsafe.Pointer(nc.payload())
	}

	size := align(n)
	if c.payloadSize == size {
		return p
	}

	nc := a.allocateLocked(size)
	if nc == nil {
		// p is left untouched on failure, per spec §4.6.
		return nil
	}

	dstLen := size
	if c.payloadSize < dstLen {
		dstLen = c.payloadSize
	}
	src := unsafe.Slice((*byte)(p), dstLen)
	dst := unsafe.Slice((*byte)(unsafe.Pointer(nc.payload())), dstLen)
	copy(dst, src)

	a.releaseLocked(c)
	return unsafe.Pointer(nc.payload())
}
