package galloc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitCarvesRemainder(t *testing.T) {
	buf := make([]byte, 4096)
	var h chunkHeap
	c := newRawChunk(buf, 0, 256, true)
	h.appendTail(c)

	r := split(&h, c, 64)
	require.NotNil(t, r)
	require.EqualValues(t, 64, c.payloadSize)
	require.EqualValues(t, 256-64-chunkHeaderSize, r.payloadSize)
	require.True(t, r.free)
	require.Equal(t, c, r.prev)
	require.Equal(t, r, h.tail)
	require.Equal(t, r.addr(), c.addr()+chunkHeaderSize+64)
}

func TestSplitLeavesIntactWhenTooSmall(t *testing.T) {
	buf := make([]byte, 4096)
	var h chunkHeap
	c := newRawChunk(buf, 0, 64+chunkHeaderSize-1, true)
	h.appendTail(c)

	r := split(&h, c, 64)
	require.Nil(t, r)
	require.EqualValues(t, 64+chunkHeaderSize-1, c.payloadSize)
	require.Equal(t, c, h.tail)
}

func TestCoalesceMergesContiguousFreeRun(t *testing.T) {
	buf := make([]byte, 4096)
	var h chunkHeap
	fi := newFreeIndex(FreeIndexCapacity)

	a := newRawChunk(buf, 0, 32, true)
	b := newRawChunk(buf, 32+chunkHeaderSize, 32, true)
	c := newRawChunk(buf, 2*(32+chunkHeaderSize), 32, false)
	h.appendTail(a)
	h.appendTail(b)
	h.appendTail(c)
	fi.insert(a)
	fi.insert(b)

	merged := coalesce(&h, fi, a)
	require.Equal(t, a, merged)
	require.EqualValues(t, 32+chunkHeaderSize+32, merged.payloadSize)
	require.Equal(t, c, merged.next)
	require.Equal(t, merged, c.prev)
	require.False(t, b.inIndex)
	require.Zero(t, fi.freeBytes) // both a and b removed; merged not yet re-inserted
}

func TestCoalesceStopsAtEndOfHeap(t *testing.T) {
	buf := make([]byte, 4096)
	var h chunkHeap
	fi := newFreeIndex(FreeIndexCapacity)

	a := newRawChunk(buf, 0, 32, true)
	b := newRawChunk(buf, 32+chunkHeaderSize, 32, true)
	h.appendTail(a)
	h.appendTail(b)
	fi.insert(a)
	fi.insert(b)

	merged := coalesce(&h, fi, a)
	require.Equal(t, a, merged)
	require.Nil(t, merged.next)
	require.Equal(t, merged, h.tail)
}

func TestCoalesceIdempotentOnUnindexedStart(t *testing.T) {
	buf := make([]byte, 4096)
	var h chunkHeap
	fi := newFreeIndex(FreeIndexCapacity)

	// start (a) is free but NOT indexed - mirrors spec §9's flagged
	// behaviour: the coalescer must tolerate this.
	a := newRawChunk(buf, 0, 32, true)
	b := newRawChunk(buf, 32+chunkHeaderSize, 32, true)
	h.appendTail(a)
	h.appendTail(b)
	fi.insert(b)

	require.NotPanics(t, func() {
		coalesce(&h, fi, a)
	})
	require.EqualValues(t, 32+chunkHeaderSize+32, a.payloadSize)
}
