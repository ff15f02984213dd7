package heap

// freeEntry is one reclaimed byte range, addressed and sized exactly
// like a live object so the allocator can carve a new header into it.
// The free list is a singly linked list kept sorted by ascending
// address; sweep walks the heap in address order already, so
// maintaining that order costs nothing extra and lets adjacent free
// entries be coalesced in the same pass (Open Question #2,
// SPEC_FULL.md §9: first-fit, sorted, coalescing).
type freeEntry struct {
	addr address
	size uint32
	next *freeEntry
}

type freeList struct {
	head *freeEntry
}

// findFit removes and returns the first entry at least size bytes
// long (first-fit), splitting off any remainder back into the list.
// When it splits, it writes a free-fragment header into the arena at
// the remainder's new start address: the caller is about to write a
// real object header over the front size bytes of the old span, and
// without a header of its own describing the leftover, Heap.Walk would
// read straight into whatever stale bytes used to sit in the middle of
// the coalesced span it came from (heap.go's Walk has no notion of the
// free list; it only trusts each header's own size field).
//
// A free-fragment header is itself HeaderSize bytes, so a split that
// would leave a nonzero remainder smaller than HeaderSize is not a
// usable fit: there is no way to describe that remainder with a
// header of its own, and donating it silently to the requested
// allocation would make that object's header lie about its class's
// size (breaking callers like String.Bytes that trust Size() exactly).
// Such entries are skipped in favor of the next candidate; the
// remainder stays in the list intact for a later, better-fitting
// request or for coalescing with an adjacent entry on the next sweep.
func (fl *freeList) findFit(h *Heap, size uint32) (address, bool) {
	var prev *freeEntry
	for e := fl.head; e != nil; prev, e = e, e.next {
		if e.size < size {
			continue
		}
		remainder := e.size - size
		if remainder != 0 && remainder < HeaderSize {
			continue
		}
		if remainder > 0 {
			allocAddr := e.addr
			e.addr += address(size)
			e.size = remainder
			writeFreeHeader(h, e.addr, e.size)
			return allocAddr, true
		}
		// exact fit: unlink e
		if prev == nil {
			fl.head = e.next
		} else {
			prev.next = e.next
		}
		return e.addr, true
	}
	return 0, false
}

// writeFreeHeader stamps a free fragment's header directly, bypassing
// initHeader's allocator bookkeeping (no class, no collecting-guard):
// it exists only so Walk can step over unconsumed free space exactly
// like any other object.
func writeFreeHeader(h *Heap, addr address, size uint32) {
	obj := Object{h: h, addr: addr}
	obj.SetMark(false)
	obj.setSize(size)
	obj.setTag(freeTag)
	obj.setDispatch(0)
}

// reset discards all entries; called at the start of sweep, which
// rebuilds the list from scratch as it walks the heap.
func (fl *freeList) reset() {
	fl.head = nil
}

// add appends a reclaimed range, coalescing it with the list's tail if
// the two are adjacent. Sweep always calls add in ascending address
// order, so the tail is always the most recently added entry and is
// the only candidate for coalescing.
func (fl *freeList) add(addr address, size uint32) {
	if fl.head == nil {
		fl.head = &freeEntry{addr: addr, size: size}
		return
	}
	tail := fl.head
	for tail.next != nil {
		tail = tail.next
	}
	if tail.addr+address(tail.size) == addr {
		tail.size += size
		return
	}
	tail.next = &freeEntry{addr: addr, size: size}
}

// markSweepImpl is the MarkSweepGC variant: on allocation failure it
// marks from roots, sweeps the heap linearly reclaiming unmarked
// objects into a free list, then retries allocation, consulting the
// free list before falling back to the bump pointer.
type markSweepImpl struct {
	alloc  *allocator
	heap   *Heap
	marker *Marker
	free   freeList
	stats  *Stats
}

func newMarkSweepImpl(alloc *allocator, heap *Heap, marker *Marker, stats *Stats) *markSweepImpl {
	return &markSweepImpl{alloc: alloc, heap: heap, marker: marker, stats: stats}
}

func (m *markSweepImpl) allocateRaw(desc ClassDescriptor, handle classHandle) (Object, bool) {
	if addr, ok := m.free.findFit(m.heap, desc.InstanceSize); ok {
		return m.alloc.initHeader(addr, desc, handle), true
	}
	addr, ok := m.alloc.bumpAlloc(desc.InstanceSize)
	if !ok {
		return Object{}, false
	}
	return m.alloc.initHeader(addr, desc, handle), true
}

// collect runs one mark-sweep cycle: mark_from_roots, then a single
// linear sweep that both clears surviving mark bits (Open Question #1,
// SPEC_FULL.md §9: cleared lazily here rather than eagerly at cycle
// start) and coalesces unmarked objects into the free list.
func (m *markSweepImpl) collect(roots RootEnumerator) {
	scope := StartScope(m.stats, FullGC)
	defer scope.Stop()

	m.alloc.collecting = true
	defer func() { m.alloc.collecting = false }()

	m.marker.MarkFromRoots(roots)
	m.sweep()
}

func (m *markSweepImpl) sweep() {
	m.free.reset()
	m.heap.Walk(func(obj Object) {
		if obj.Mark() {
			obj.SetMark(false)
			return
		}
		m.free.add(obj.addr, obj.Size())
	})
}
