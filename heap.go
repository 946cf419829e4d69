package galloc

// chunkHeap is the address-ordered doubly linked list of every chunk the
// allocator has ever carved out of the segment, free or in-use. It owns the
// canonical layout of memory (spec §3 "Chunk heap").
type chunkHeap struct {
	head *chunkHeader
	tail *chunkHeader
}

// empty reports whether the heap currently holds no chunks (never grown, or
// trimmed back to nothing).
func (h *chunkHeap) empty() bool {
	return h.head == nil
}

// appendTail links c as the new tail of the heap. c must already describe a
// region immediately following the current tail (or be the first chunk).
func (h *chunkHeap) appendTail(c *chunkHeader) {
	c.prev = h.tail
	c.next = nil
	if h.tail != nil {
		h.tail.next = c
	} else {
		h.head = c
	}
	h.tail = c
}

// insertAfter links r immediately after c, adjusting tail if c was the
// previous tail. Used by the splitter to insert a remainder chunk.
func (h *chunkHeap) insertAfter(c, r *chunkHeader) {
	r.prev = c
	r.next = c.next
	if c.next != nil {
		c.next.prev = r
	} else {
		h.tail = r
	}
	c.next = r
}

// unlink removes c from the heap entirely, patching prev/next and head/tail
// as needed. coalesce (splitter.go) does not call it: it retargets the
// surviving chunk's links past the absorbed run directly.
func (h *chunkHeap) unlink(c *chunkHeader) {
	if c.prev != nil {
		c.prev.next = c.next
	} else {
		h.head = c.next
	}
	if c.next != nil {
		c.next.prev = c.prev
	} else {
		h.tail = c.prev
	}
	c.prev, c.next = nil, nil
}

// setTail retargets the heap's tail to c, used by tail trim once it knows
// which chunk survives the trim (tail becomes the last surviving chunk).
func (h *chunkHeap) setTail(c *chunkHeader) {
	h.tail = c
	if c != nil {
		c.next = nil
	} else {
		h.head = nil
	}
}
