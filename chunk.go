package galloc

import (
	"unsafe"
)

// chunkHeader sits immediately before every payload. Its size is the
// "header_size" referenced throughout spec §4; the splitter and segment
// growth write new headers in place rather than allocating them - every
// header lives inside the raw byte region owned by a segment, and is
// reached only through headerAt/chunkFromPayload below. This is the "small chunk
// view abstraction" spec §9 asks for: all unsafe arithmetic stays here.
type chunkHeader struct {
	inIndex      bool
	free         bool
	payloadSize  uintptr
	prev         *chunkHeader
	next         *chunkHeader
	nextInBucket *chunkHeader
}

const chunkHeaderSize = unsafe.Sizeof(chunkHeader{})

// align rounds n up to the next multiple of AlignmentUnit. n==0 rounds up
// to one alignment unit, per spec §4.3 step 1 and §4.5.
func align(n uintptr) uintptr {
	if n == 0 {
		return AlignmentUnit
	}
	return (n + AlignmentUnit - 1) &^ (AlignmentUnit - 1)
}

// headerAt interprets the word at addr as a *chunkHeader. addr must be the
// address of a live chunk header (never a payload address).
func headerAt(addr uintptr) *chunkHeader {
	return (*chunkHeader)(unsafe.Pointer(addr))
}

// addr returns the header's own address.
func (c *chunkHeader) addr() uintptr {
	return uintptr(unsafe.Pointer(c))
}

// payload returns the address of the first payload byte.
func (c *chunkHeader) payload() uintptr {
	return c.addr() + chunkHeaderSize
}

// payloadBytes returns a byte slice view over the chunk's current payload.
// The slice is only valid as long as the chunk isn't split, coalesced, or
// released; callers must not retain it past the allocator call that
// produced it.
func (c *chunkHeader) payloadBytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(c.payload())), int(c.payloadSize))
}

// end returns the address one past the chunk's last payload byte - where
// the next chunk, if any, begins.
func (c *chunkHeader) end() uintptr {
	return c.payload() + c.payloadSize
}

// chunkFromPayload recovers a chunk header from a payload pointer returned
// to a caller, per spec §4.4: "the chunk header address is payload address
// minus header size".
func chunkFromPayload(p unsafe.Pointer) *chunkHeader {
	return headerAt(uintptr(p) - chunkHeaderSize)
}

// sliceAddr returns the address of a byte slice's backing array. Used by
// the segment implementations to turn a reservation into a base address
// for header/payload arithmetic.
func sliceAddr(b []byte) uintptr {
	if len(b) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&b[0]))
}

// unsafeByteSliceAt builds a byte slice view over an arbitrary address
// range. Only used by the mmap-backed segment to hand madvise a []byte
// covering the region being released.
func unsafeByteSliceAt(addr uintptr, n int) []byte {
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), n)
}
