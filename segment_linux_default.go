// +build linux

package galloc

// newDefaultSegment wires the mmap-backed BreakSource as the default for
// the init-on-first-call singleton in public.go. Falls back to the
// slice-backed memSegment if the reservation itself fails (e.g. under a
// restrictive seccomp filter), logging the reason.
func newDefaultSegment(maxSize uintptr) (BreakSource, uintptr) {
	s, base, err := newMmapSegment(maxSize)
	if err != nil {
		Log.WithError(err).Warn("falling back to in-process segment: mmap reservation failed")
		return newMemSegment(maxSize)
	}
	return s, base
}
