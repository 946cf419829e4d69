package galloc

import (
	"io/ioutil"

	"github.com/sirupsen/logrus"
)

// Log is used for the handful of declared non-errors the allocator still
// wants visible somewhere: idempotent double-frees, opportunistic
// re-indexing during the scan, and shrink-primitive failures during tail
// trim. Discarded by default; callers embedding this package wire their own
// output the same way they would for logrus anywhere else.
var Log = logrus.New()

func init() {
	Log.SetOutput(ioutil.Discard)
}
