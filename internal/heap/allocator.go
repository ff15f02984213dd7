package heap

// allocator hands out zero-initialised object slots from a Heap's
// arena. Both ZeroGC and MarkSweepGC hold one; MarkSweepGC
// additionally consults a free list before falling back to the bump
// pointer (see marksweep.go).
type allocator struct {
	heap       *Heap
	needZero   bool
	collecting bool // true for the duration of an active GC cycle
}

func newAllocator(heap *Heap, needZero bool) *allocator {
	return &allocator{heap: heap, needZero: needZero}
}

// bumpAlloc advances heap_pos by size bytes and returns the address of
// the new object, or false if it would not fit before heap_end.
func (a *allocator) bumpAlloc(size uint32) (address, bool) {
	h := a.heap
	if h.pos+address(size) > h.end {
		return 0, false
	}
	addr := h.pos
	h.pos += address(size)
	return addr, true
}

// initHeader writes the fixed header for a freshly obtained slot and,
// if zeroing is enabled, null-fills the field region. Allocation
// during an active GC cycle is forbidden; violating it is fatal.
func (a *allocator) initHeader(addr address, desc ClassDescriptor, handle classHandle) Object {
	if a.collecting {
		fatal("heap: allocation attempted during an active GC cycle")
	}
	obj := Object{h: a.heap, addr: addr}
	obj.SetMark(false)
	obj.setSize(desc.InstanceSize)
	obj.setTag(desc.Tag)
	obj.setDispatch(handle)
	if a.needZero {
		obj.ZeroFields()
	}
	return obj
}
