// heapgc-run exercises Maggie's native managed-heap runtime directly,
// independent of the compiler/codegen pipeline that will eventually
// drive it: it registers the builtin classes, allocates a String
// through a RootScope and prints it, and optionally writes a CBOR heap
// dump. Useful for manual inspection and as a smoke test of the
// allocator/marker/collector wiring described in SPEC_FULL.md.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chazu/maggie/internal/heap"

	_ "github.com/tliron/commonlog/simple"
)

func main() {
	variant := flag.String("variant", "marksweep", "gc variant: zero or marksweep")
	heapSize := flag.Uint("heap-size", 4096, "heap size in bytes")
	dumpPath := flag.String("dump", "", "write a CBOR heap dump to this path before exit")
	flag.Parse()

	cfg := heap.Config{Variant: heap.Variant(*variant), HeapSize: uint32(*heapSize)}
	gc, err := heap.Init(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "heapgc-run:", err)
		os.Exit(1)
	}
	defer gc.Close()

	if err := heap.RegisterBuiltins(gc); err != nil {
		fmt.Fprintln(os.Stderr, "heapgc-run:", err)
		os.Exit(1)
	}

	scope := heap.PushScope(gc)
	defer heap.PopScope(scope)

	s := heap.NewString(gc, "hello from the native heap")
	idx := heap.RegRoot(scope, s)
	fmt.Println(heap.StringValue(heap.RootAt(scope, idx)))

	if *dumpPath != "" {
		data, err := gc.Dump()
		if err != nil {
			fmt.Fprintln(os.Stderr, "heapgc-run:", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*dumpPath, data, 0o644); err != nil {
			fmt.Fprintln(os.Stderr, "heapgc-run:", err)
			os.Exit(1)
		}
	}
}
