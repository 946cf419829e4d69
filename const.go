package galloc

const (
	// AlignmentUnit is the fixed word multiple every payload size and every
	// header is rounded up to. Must be a power of two no smaller than the
	// pointer width.
	AlignmentUnit = 8

	// CoarseBlock is the unit by which the segment is grown, and the
	// threshold a free tail must reach before it is eligible to be trimmed
	// back to the OS.
	CoarseBlock = 8 << 20 // 8 MiB

	// FreeIndexCapacity bounds the free index: bucket i holds chunks of
	// payload size (i+1)*AlignmentUnit. Chunks whose bucket would fall
	// outside this range are never indexed; they're still reachable by the
	// heap scan.
	FreeIndexCapacity = CoarseBlock / AlignmentUnit

	// headerSize is the footprint of a chunk header, an alias of
	// chunkHeaderSize, which chunk.go computes from the actual struct
	// layout. splitter.go uses it in the split threshold and remainder size.
	headerSize = chunkHeaderSize
)
