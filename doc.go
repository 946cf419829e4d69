/*
Package galloc implements the core of a general-purpose heap allocator:
an address-ordered chunk heap, a size-indexed free list, a segment manager
that grows and shrinks the backing data segment in coarse blocks, and the
splitting/coalescing rules that keep the two structures consistent under
concurrent callers.

The four public operations (Allocate, ZeroAllocate, Reallocate, Release)
mirror the classical C allocator interface so this package can back a
malloc-compatible symbol table. Read-only diagnostics (Stats,
Fragmentation) sit beside them in this package; the CLI, benchmarking and
stress drivers live in cmd/galloc and are collaborators of the core, not
part of it.
*/
package galloc
