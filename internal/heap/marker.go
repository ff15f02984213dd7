package heap

// Marker performs worklist-based tracing: mark every object reachable
// from the root set. It is single-threaded, stop-the-world, and used
// identically by every collector variant that reclaims memory
// (currently only MarkSweepGC).
//
// The worklist is an explicit LIFO stack rather than recursion, both
// to bound stack depth regardless of heap shape (spec.md's design
// notes forbid recursion here unconditionally) and because a
// depth-first order keeps recently pushed, cache-warm objects at the
// top of the stack — the same rationale the original source cites
// from Jones, "The Garbage Collection Handbook" §2: a FIFO worklist
// would give breadth-first order and is equally correct, but LIFO is
// what this implementation commits to.
type Marker struct {
	heap     *Heap
	worklist []address
}

func newMarker(heap *Heap) *Marker {
	return &Marker{heap: heap}
}

// MarkFromRoots marks every object reachable from roots. The worklist
// must be empty on entry; it is always empty on exit.
func (m *Marker) MarkFromRoots(roots RootEnumerator) {
	if len(m.worklist) != 0 {
		fatal("heap: marker worklist not empty at start of cycle")
	}

	roots.EnumerateRoots(func(a address) {
		if !m.heap.inBounds(a) {
			return // defensive address-validity filter, spec.md §4.4
		}
		obj := Object{h: m.heap, addr: a}
		if !obj.Mark() {
			obj.SetMark(true)
			m.worklist = append(m.worklist, a)
		}
	})

	m.drain()
}

// drain pops objects off the worklist, pushing newly discovered,
// unmarked referents until the worklist is empty.
func (m *Marker) drain() {
	for len(m.worklist) > 0 {
		n := len(m.worklist) - 1
		a := m.worklist[n]
		m.worklist = m.worklist[:n]

		obj := Object{h: m.heap, addr: a}
		if obj.Class().IsSpecial {
			continue // fields are opaque bytes, not references
		}

		fields := obj.FieldCount()
		for i := 0; i < fields; i++ {
			child := obj.Field(i)
			if child.IsNull() {
				continue
			}
			if !m.heap.inBounds(child.addr) {
				continue
			}
			if !child.Mark() {
				child.SetMark(true)
				m.worklist = append(m.worklist, child.addr)
			}
		}
	}
}
