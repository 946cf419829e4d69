package galloc

// split carves an oversized free chunk c into a fitted piece of payload
// size requestedSize plus a remainder, per spec §4.2. c must be free and
// must NOT currently be in the free index. If the leftover is too small to
// hold a header plus at least one alignment unit, c is left intact
// (internal fragmentation up to headerSize+AlignmentUnit-1, as the spec
// allows).
//
// The remainder, if one was carved, is returned so the caller can index it;
// a nil return means c was left intact.
func split(h *chunkHeap, c *chunkHeader, requestedSize uintptr) (remainder *chunkHeader) {
	if c.payloadSize <= headerSize+requestedSize {
		return nil
	}
	rAddr := c.addr() + chunkHeaderSize + requestedSize
	r := headerAt(rAddr)
	*r = chunkHeader{
		free:        true,
		payloadSize: c.payloadSize - requestedSize - headerSize,
	}
	h.insertAfter(c, r)
	c.payloadSize = requestedSize
	return r
}

// coalesce walks forward from start, which must be free, accumulating the
// payload+header size of every contiguous free successor and removing each
// from the free index as it's absorbed (spec §4.4 step 3). start itself is
// also removed from the index - a no-op if it wasn't indexed, which
// freeIndex.remove guarantees (spec §9 open question 1).
//
// The walk stops at the first non-free chunk or at the end of the heap.
// start absorbs every accumulated byte; its next pointer is retargeted past
// the absorbed run, with prev-links and tail fixed up to match. The merged
// chunk (start) is returned for the caller to insert into the free index.
func coalesce(h *chunkHeap, fi *freeIndex, start *chunkHeader) *chunkHeader {
	fi.remove(start)
	cur := start.next
	for cur != nil && cur.free {
		fi.remove(cur)
		start.payloadSize += chunkHeaderSize + cur.payloadSize
		cur = cur.next
	}
	start.next = cur
	if cur != nil {
		cur.prev = start
	} else {
		h.tail = start
	}
	return start
}
