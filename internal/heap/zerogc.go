package heap

// zeroImpl is the ZeroGC variant: collect() is a no-op, so the first
// allocation failure is immediately terminal. Useful as a baseline or
// for debugging generated code with no collection overhead.
type zeroImpl struct {
	alloc *allocator
}

func newZeroImpl(alloc *allocator) *zeroImpl {
	return &zeroImpl{alloc: alloc}
}

func (z *zeroImpl) allocateRaw(desc ClassDescriptor, handle classHandle) (Object, bool) {
	addr, ok := z.alloc.bumpAlloc(desc.InstanceSize)
	if !ok {
		return Object{}, false
	}
	return z.alloc.initHeader(addr, desc, handle), true
}

func (z *zeroImpl) collect(_ RootEnumerator) {
	// no-op: ZeroGC never reclaims.
}
