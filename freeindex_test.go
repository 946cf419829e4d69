package galloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newRawChunk places a fresh chunkHeader at offset bytes into buf and
// returns it. buf must outlive the returned pointer's use.
func newRawChunk(buf []byte, offset, payloadSize uintptr, free bool) *chunkHeader {
	c := headerAt(sliceAddr(buf) + offset)
	*c = chunkHeader{free: free, payloadSize: payloadSize}
	return c
}

func TestFreeIndexInsertTakeRemove(t *testing.T) {
	buf := make([]byte, 4096)
	fi := newFreeIndex(FreeIndexCapacity)

	a := newRawChunk(buf, 0, 32, true)
	b := newRawChunk(buf, 64, 32, true)
	c := newRawChunk(buf, 128, 64, true)

	fi.insert(a)
	fi.insert(b)
	fi.insert(c)

	require.Equal(t, uintptr(32+32+64), fi.freeBytes)
	require.NoError(t, fi.checkInvariant3())

	// take(32) should return one of a/b (LIFO - whichever was most recently
	// prepended), not c.
	got := fi.take(32)
	require.NotNil(t, got)
	require.EqualValues(t, 32, got.payloadSize)
	require.False(t, got.inIndex)
	require.Equal(t, uintptr(32+64), fi.freeBytes)

	// take on an exhausted bucket returns nil and doesn't touch the counter.
	require.Nil(t, fi.take(9999))
	require.Equal(t, uintptr(32+64), fi.freeBytes)

	// remove is idempotent.
	fi.remove(got)
	fi.remove(got)
	require.False(t, got.inIndex)
}

func TestFreeIndexInsertNoop(t *testing.T) {
	buf := make([]byte, 256)
	fi := newFreeIndex(FreeIndexCapacity)
	c := newRawChunk(buf, 0, 16, true)

	fi.insert(c)
	before := fi.freeBytes
	fi.insert(c) // already indexed: no-op
	require.Equal(t, before, fi.freeBytes)
}

func TestFreeIndexOutOfRangeSilentlyIgnored(t *testing.T) {
	buf := make([]byte, 256)
	fi := newFreeIndex(4) // tiny capacity: buckets for sizes up to 4*AlignmentUnit
	c := newRawChunk(buf, 0, uintptr(100*AlignmentUnit), true)

	fi.insert(c)
	require.False(t, c.inIndex)
	require.Zero(t, fi.freeBytes)

	fi.remove(c) // must not panic on an out-of-range, non-indexed chunk
	require.Nil(t, fi.take(uintptr(100*AlignmentUnit)))
}

func TestFreeIndexFragmentation(t *testing.T) {
	buf := make([]byte, 4096)
	fi := newFreeIndex(FreeIndexCapacity)
	fi.insert(newRawChunk(buf, 0, 16, true))
	fi.insert(newRawChunk(buf, 64, 16, true))
	fi.insert(newRawChunk(buf, 128, 32, true))

	frag := fi.fragmentation()
	require.EqualValues(t, 64, frag.FreeBytes)
	require.Equal(t, 2, frag.OccupiedBuckets) // bucket for size 16, bucket for size 32
	require.EqualValues(t, 64, frag.IndexedBytes)
}

func TestBucketIndexZeroPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected bucketIndex(0) to panic")
		}
	}()
	bucketIndex(0)
}
