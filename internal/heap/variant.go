package heap

// collectorImpl is the narrow trait every collector variant
// implements, per spec.md's design notes: "tagged variant (ZeroGC |
// MarkSweepGC | Copy) dispatched behind a narrow trait/interface of
// {allocate, collect, copy, read, write}; the choice is fixed at
// init." Copy is implemented once, independent of variant, in
// copy.go; read/write are the generic Object field accessors already
// common to every variant, so the trait that actually varies is just
// allocate/collect.
type collectorImpl interface {
	// allocateRaw returns a freshly allocated, header-initialised
	// object for desc/handle, or false if the request does not fit.
	// It never collects; GC calls collect() and then retries once.
	allocateRaw(desc ClassDescriptor, handle classHandle) (Object, bool)
	// collect runs one collection cycle. A no-op for ZeroGC.
	collect(roots RootEnumerator)
}
