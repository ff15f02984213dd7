package heap

// Heap is the single contiguous byte region [heap_start, heap_end)
// backing every managed object, owned by exactly one GC instance.
// heap_start is always address 1: address 0 (nullAddr) is reserved as
// the null sentinel, so a zeroed field slot is indistinguishable from
// "no object" without a separate validity bit.
type Heap struct {
	arena   []byte
	pos     address // heap_pos: next free byte
	end     address // heap_end
	classes *ClassTable
}

const heapStart address = 1

// newHeap allocates a zero-filled arena of size bytes, offset by one
// byte so that address 0 can serve as the null sentinel.
func newHeap(size uint32, classes *ClassTable) *Heap {
	return &Heap{
		arena:   make([]byte, size+uint32(heapStart)),
		pos:     heapStart,
		end:     address(size) + heapStart,
		classes: classes,
	}
}

// Start returns the first valid object address.
func (h *Heap) Start() uintptr { return uintptr(heapStart) }

// End returns the address one past the last usable byte.
func (h *Heap) End() uintptr { return uintptr(h.end) }

// Pos returns the current allocation pointer (heap_pos).
func (h *Heap) Pos() uintptr { return uintptr(h.pos) }

// inBounds reports whether addr names a valid, non-null heap address.
// Used as the marker's address-validity filter (spec.md §4.4): a slot
// value outside [heap_start, heap_end) is ignored rather than traced.
func (h *Heap) inBounds(addr address) bool {
	return addr >= heapStart && addr < h.end
}

func (h *Heap) bytes(addr address, n address) []byte {
	if addr < heapStart || addr+n > h.end {
		fatal("heap: access [%d,%d) out of bounds [%d,%d)", addr, addr+n, heapStart, h.end)
	}
	return h.arena[addr : addr+n]
}

// objectAt returns a typed view of the object at addr, or the null
// Object if addr is the null sentinel or out of bounds.
func (h *Heap) objectAt(addr address) Object {
	if addr == nullAddr || !h.inBounds(addr) {
		return Object{}
	}
	return Object{h: h, addr: addr}
}

// Walk invokes fn for every object header in [heap_start, heap_pos),
// in ascending address order, using each object's own Size as the
// authoritative stride. Used by the sweeper and by diagnostics.
func (h *Heap) Walk(fn func(Object)) {
	addr := heapStart
	for addr < h.pos {
		obj := Object{h: h, addr: addr}
		size := obj.Size()
		if size < HeaderSize || addr+address(size) > h.pos {
			fatal("heap: corrupt object at %d: size=%d", addr, size)
		}
		fn(obj)
		addr += address(size)
	}
}
