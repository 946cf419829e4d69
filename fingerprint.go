package galloc

import (
	"encoding/binary"

	"github.com/dchest/siphash"
)

// fingerprintKey0/1 key the digest below. Fixed so digests are reproducible
// across test runs; this is not a security boundary.
const (
	fingerprintKey0 uint64 = 0x67616c6c6f63636f
	fingerprintKey1 uint64 = 0x7265666e67727074
)

// fingerprint computes a keyed SipHash-2-4 digest over a canonical
// encoding of the heap's current shape: for every chunk, in address order,
// its payload size and free flag. This plays the role the teacher's
// SHA512/256 ChunkID plays for content-addressed chunks (digest.go), but
// here it digests structure, not bytes, and exists purely as test tooling
// for golden-digest property tests - never part of the public API, never
// touched by the allocation/release hot path.
func (a *Allocator) fingerprint() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()

	buf := make([]byte, 0, 9*countChunks(a.heap.head))
	var entry [9]byte
	for c := a.heap.head; c != nil; c = c.next {
		binary.LittleEndian.PutUint64(entry[:8], uint64(c.payloadSize))
		if c.free {
			entry[8] = 1
		} else {
			entry[8] = 0
		}
		buf = append(buf, entry[:]...)
	}
	return siphash.Hash(fingerprintKey0, fingerprintKey1, buf)
}

func countChunks(c *chunkHeader) int {
	n := 0
	for ; c != nil; c = c.next {
		n++
	}
	return n
}
