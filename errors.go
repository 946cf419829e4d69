package galloc

import "github.com/pkg/errors"

// ErrOutOfMemory is logged (via Log.WithError) when the break primitive
// refuses to grow the segment; the allocating call then returns nil. Not
// retried - spec §7 treats OS-out-of-memory as terminal for the call that
// triggered it.
var ErrOutOfMemory = errors.New("galloc: out of memory")

// ErrOverflow is logged by ZeroAllocate, which then returns nil, when k*s
// would wrap a uintptr, before any OS contact (spec §4.5, §7).
var ErrOverflow = errors.New("galloc: element count * size overflows")

// ErrLockFailed is the equivalent-to-out-of-memory case spec §7 calls out:
// lock acquisition failure. sync.Mutex as used here cannot fail short of
// the allocator being used after teardown, which this package never does,
// so this exists for API completeness and for alternative BreakSource/lock
// implementations that can fail.
var ErrLockFailed = errors.New("galloc: lock acquisition failed")
