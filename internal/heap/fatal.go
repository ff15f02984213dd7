package heap

import (
	"fmt"
	"os"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("maggie.heap")

// fatal reports an invariant violation or out-of-memory condition and
// terminates the process. Per spec, the collector never returns these
// as errors to the mutator: recovering from heap exhaustion mid
// generated-code would require reintroducing unwinding through
// generated frames, which this runtime forgoes for simplicity. Log and
// abort, never attempt to continue.
func fatal(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Errorf("%s", msg)
	fmt.Fprintln(os.Stderr, "maggie heap: fatal: "+msg)
	os.Exit(1)
}
