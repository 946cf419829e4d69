package galloc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"
)

func TestAllocateZeroYieldsOneAlignmentUnit(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Allocate(0)
	require.NotNil(t, p)
	c := chunkFromPayload(p)
	require.EqualValues(t, AlignmentUnit, c.payloadSize)
	a.Release(p)
}

func TestAllocateReturnsAlignedPointers(t *testing.T) {
	a := newTestAllocator(t)
	for _, n := range []uintptr{1, 7, 8, 9, 100, 4096, 123456} {
		p := a.Allocate(n)
		require.Zero(t, uintptr(p)%AlignmentUnit)
		a.Release(p)
	}
}

func TestAllocateWriteThenRead(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Allocate(100)
	require.NotNil(t, p)
	b := unsafe.Slice((*byte)(p), 100)
	for i := range b {
		b[i] = byte(i)
	}
	for i := range b {
		require.Equal(t, byte(i), b[i])
	}
	a.Release(p)
}

func TestZeroAllocateZeroesPayload(t *testing.T) {
	a := newTestAllocator(t)
	p := a.ZeroAllocate(16, 4)
	require.NotNil(t, p)
	b := unsafe.Slice((*byte)(p), 64)
	for _, v := range b {
		require.Zero(t, v)
	}
	a.Release(p)
}

func TestZeroAllocateOverflowReturnsNilWithoutGrowing(t *testing.T) {
	a := newTestAllocator(t)
	before := a.Stats().Grows
	p := a.ZeroAllocate(^uintptr(0), 2)
	require.Nil(t, p)
	require.Equal(t, before, a.Stats().Grows)
}

func TestReleaseNilIsNoop(t *testing.T) {
	a := newTestAllocator(t)
	require.NotPanics(t, func() { a.Release(nil) })
}

func TestReleaseIsIdempotent(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Allocate(64)
	a.Release(p)
	require.NotPanics(t, func() { a.Release(p) })

	q := a.Allocate(64)
	require.Equal(t, p, q)
}

func TestExactFitReuseAfterRelease(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Allocate(16)
	a.Release(p)
	q := a.Allocate(16)
	require.Equal(t, p, q)
}

func TestReallocateNilBehavesAsAllocate(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Reallocate(nil, 32)
	require.NotNil(t, p)
	a.Release(p)
}

func TestReallocateZeroReleasesAndReturnsMinimum(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Allocate(64)
	q := a.Reallocate(p, 0)
	require.NotNil(t, q)
	c := chunkFromPayload(q)
	require.EqualValues(t, AlignmentUnit, c.payloadSize)
	a.Release(q)
}

func TestReallocateSameSizeReturnsSamePointer(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Allocate(32)
	q := a.Reallocate(p, 32)
	require.Equal(t, p, q)
	a.Release(q)
}

func TestReallocatePreservesLeadingBytes(t *testing.T) {
	a := newTestAllocator(t)
	p := a.Allocate(100)
	b := unsafe.Slice((*byte)(p), 100)
	for i := range b {
		b[i] = 'x'
	}
	q := a.Reallocate(p, 200)
	require.NotNil(t, q)
	out := unsafe.Slice((*byte)(q), 200)
	for i := 0; i < 100; i++ {
		require.Equal(t, byte('x'), out[i])
	}
	a.Release(q)
}

func TestCoalesceOnReleaseEnablesLargerReuse(t *testing.T) {
	a := newTestAllocator(t)

	x := a.Allocate(32)
	y := a.Allocate(32)
	a.Release(x)
	a.Release(y)

	before := a.Stats().Grows
	z := a.Allocate(64)
	require.NotNil(t, z)
	require.Equal(t, before, a.Stats().Grows) // reused coalesced region, no new growth
	a.Release(z)
}

func TestManySmallAllocationsReleaseBackToBaseline(t *testing.T) {
	a := newTestAllocator(t)

	const n = 10000
	const size = 1024
	ps := make([]unsafe.Pointer, n)
	for i := range ps {
		ps[i] = a.Allocate(size)
		require.NotNil(t, ps[i])
	}
	grownDuringFill := a.Stats().BytesGrown

	for i := range ps {
		a.Release(ps[i])
	}

	// After releasing everything in allocation order, at most one more
	// coarse block of growth should have occurred relative to the peak
	// footprint (the scenario in spec §8 #4), and the tail should have
	// trimmed back down: a non-trivial shrink must have happened, and the
	// break's net residue (bytes grown minus bytes shrunk) must land within
	// one coarse block of baseline rather than sitting at its peak.
	stats := a.Stats()
	require.LessOrEqual(t, stats.BytesGrown, grownDuringFill+CoarseBlock)
	require.Positive(t, stats.BytesShrunk)
	require.LessOrEqual(t, stats.BytesGrown-stats.BytesShrunk, uint64(CoarseBlock))
}
