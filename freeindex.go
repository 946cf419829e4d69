package galloc

import (
	"github.com/boljen/go-bitmap"
	"github.com/pkg/errors"
)

// freeIndex is the size-indexed cache of free chunks (spec §3 "Free index",
// §4.1). Bucket i chains every currently-free chunk whose payload size is
// exactly (i+1)*AlignmentUnit; chains are unordered singly linked lists
// threaded through chunkHeader.nextInBucket.
//
// occupied mirrors, one bit per bucket, whether bucket[i] is non-nil. It's
// not required for correctness (a nil check would do). Fragmentation uses
// it to skip empty buckets and the test suite's invariant-3 checker
// cross-checks it against the chains; both still step through all
// FreeIndexCapacity bucket indices.
type freeIndex struct {
	buckets   []*chunkHeader
	occupied  bitmap.Bitmap
	freeBytes uintptr
}

func newFreeIndex(capacity int) *freeIndex {
	return &freeIndex{
		buckets:  make([]*chunkHeader, capacity),
		occupied: bitmap.New(capacity),
	}
}

// bucketIndex computes (size/AlignmentUnit)-1. Per spec §9, a size of zero
// would underflow this; callers must never pass zero.
func bucketIndex(size uintptr) int {
	if size == 0 {
		panic("galloc: freeIndex.bucketIndex called with zero payload size")
	}
	return int(size/AlignmentUnit) - 1
}

func (fi *freeIndex) inRange(i int) bool {
	return i >= 0 && i < len(fi.buckets)
}

// insert is a no-op if c is already indexed. Otherwise sets c's in-index
// flag, adds its payload to the free byte counter, and prepends it to its
// bucket. Chunks whose bucket falls outside FreeIndexCapacity are silently
// left un-indexed (spec §4.1): they remain reachable only via the heap
// scan.
func (fi *freeIndex) insert(c *chunkHeader) {
	if c.inIndex {
		return
	}
	i := bucketIndex(c.payloadSize)
	if !fi.inRange(i) {
		return
	}
	c.nextInBucket = fi.buckets[i]
	fi.buckets[i] = c
	c.inIndex = true
	fi.freeBytes += c.payloadSize
	fi.occupied.Set(i, true)
}

// remove is idempotent: a no-op if c isn't indexed or its bucket is out of
// range. Spec §9 flags the coalescer as calling this on a chunk that may
// not be indexed on the first iteration; that must be safe, which is why
// this checks c.inIndex up front rather than assuming the caller knows.
func (fi *freeIndex) remove(c *chunkHeader) {
	if !c.inIndex {
		return
	}
	i := bucketIndex(c.payloadSize)
	if !fi.inRange(i) {
		c.inIndex = false
		return
	}
	if fi.buckets[i] == c {
		fi.buckets[i] = c.nextInBucket
	} else {
		prev := fi.buckets[i]
		for prev != nil && prev.nextInBucket != c {
			prev = prev.nextInBucket
		}
		if prev != nil {
			prev.nextInBucket = c.nextInBucket
		}
	}
	c.nextInBucket = nil
	c.inIndex = false
	fi.freeBytes -= c.payloadSize
	if fi.buckets[i] == nil {
		fi.occupied.Set(i, false)
	}
}

// take returns and detaches the bucket head for an exact size match, or nil
// if the bucket is empty or out of range. It does not search larger
// buckets - the index is an exact-fit cache, not a best-fit structure
// (spec §4.1 rationale).
func (fi *freeIndex) take(size uintptr) *chunkHeader {
	i := bucketIndex(size)
	if !fi.inRange(i) {
		return nil
	}
	c := fi.buckets[i]
	if c == nil {
		return nil
	}
	fi.buckets[i] = c.nextInBucket
	c.nextInBucket = nil
	c.inIndex = false
	fi.freeBytes -= c.payloadSize
	if fi.buckets[i] == nil {
		fi.occupied.Set(i, false)
	}
	return c
}

// checkInvariant3 verifies, for every occupied bucket, that the bucket
// index matches the payload size of every chunk chained there and that
// each chunk's free flag is set. Used by tests; returns the first
// violation found.
func (fi *freeIndex) checkInvariant3() error {
	for i, c := range fi.buckets {
		for c != nil {
			if !c.inIndex || !c.free {
				return errors.Errorf("bucket %d holds a chunk with inIndex=%v free=%v", i, c.inIndex, c.free)
			}
			if bucketIndex(c.payloadSize) != i {
				return errors.Errorf("bucket %d holds a chunk of payload size %d (wants bucket %d)", i, c.payloadSize, bucketIndex(c.payloadSize))
			}
			if !fi.occupied.Get(i) {
				return errors.Errorf("bucket %d is non-empty but occupancy bit is clear", i)
			}
			c = c.nextInBucket
		}
	}
	return nil
}

// Fragmentation reports the free byte count, plus how many of the
// FreeIndexCapacity buckets currently have a free chunk and the total
// payload bytes they hold. fragmentation steps through every bucket index
// and walks the chains of those whose occupancy bit is set.
type Fragmentation struct {
	FreeBytes       uintptr
	OccupiedBuckets int
	IndexedBytes    uintptr
}

func (fi *freeIndex) fragmentation() Fragmentation {
	var f Fragmentation
	f.FreeBytes = fi.freeBytes
	for i, c := range fi.buckets {
		if !fi.occupied.Get(i) {
			continue
		}
		f.OccupiedBuckets++
		for cc := c; cc != nil; cc = cc.nextInBucket {
			f.IndexedBytes += cc.payloadSize
		}
	}
	return f
}
