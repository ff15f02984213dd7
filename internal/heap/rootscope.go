package heap

// RootScope is a stack-discipline record of live references the
// mutator promises to keep visible to the collector across allocation
// points. Scopes form a singly linked stack via parent; constructing a
// scope installs it as the GC's active scope, and Pop restores the
// parent. Nested scopes extend, never replace, the root chain.
type RootScope struct {
	parent *RootScope
	roots  []address
	gc     *rootOwner
}

// rootOwner is the narrow slice of GC state a RootScope needs: which
// scope is currently active. GC embeds one, whichever variant it runs.
type rootOwner struct {
	current *RootScope
	heap    *Heap
}

// PushScope opens a new root scope nested under the GC's currently
// active scope (nil if none yet) and makes it active. Generated code
// calls this at the entry of any mutator region that may allocate.
func (o *rootOwner) PushScope() *RootScope {
	s := &RootScope{parent: o.current, gc: o}
	o.current = s
	return s
}

// Pop closes the scope, restoring the active scope to its parent.
// Safe to call on a scope that is not the innermost active one only if
// scopes are popped in strict LIFO order, matching generated code's
// function entry/exit discipline; popping out of order is a mutator
// bug and is not separately guarded against (the original source does
// not guard it either).
func (s *RootScope) Pop() {
	s.gc.current = s.parent
}

// RegRoot registers obj as live in this scope and returns the slot
// index subsequent Root(i) calls must use. The mutator must register
// any pointer held across a possible allocation point before that
// allocation, then read it back via Root(i) rather than the original
// variable.
func (s *RootScope) RegRoot(obj Object) int {
	s.roots = append(s.roots, obj.addr)
	return len(s.roots) - 1
}

// Root reads back the (possibly collector-updated) object registered
// at index i.
func (s *RootScope) Root(i int) Object {
	if i < 0 || i >= len(s.roots) {
		fatal("heap: root index %d out of range (scope has %d roots)", i, len(s.roots))
	}
	h := s.gc.heapOf()
	return h.objectAt(s.roots[i])
}

// Parent exposes the enclosing scope, nil at the bottom of the chain.
func (s *RootScope) Parent() *RootScope {
	return s.parent
}

// heapOf returns the heap GC.Init stored in rootOwner.heap, so
// RootScope.Root can resolve addresses without itself depending on a
// specific variant.
func (o *rootOwner) heapOf() *Heap {
	return o.heap
}

// Current returns the GC's currently active scope, or nil if none is
// open. This is the "active_scope" the marker walks from.
func (o *rootOwner) Current() *RootScope {
	return o.current
}

// RootEnumerator is the interface the marker drives to discover live
// references at a safepoint. RootScope is the only implementation that
// ships; the shadow-stack and stack-map alternatives documented in
// spec.md §6 could implement it without the marker changing (see
// SPEC_FULL.md §7).
type RootEnumerator interface {
	// EnumerateRoots walks every scope from the active one up through
	// each parent, invoking yield once per registered, non-null slot.
	EnumerateRoots(yield func(address))
}

// EnumerateRoots walks the scope chain starting at s (the active
// scope) through each parent, matching Marker.mark_from_roots's own
// walk in spec.md §4.4. Implements RootEnumerator for *RootScope when
// s is the active scope.
func (s *RootScope) EnumerateRoots(yield func(address)) {
	for scope := s; scope != nil; scope = scope.parent {
		for _, a := range scope.roots {
			if a != nullAddr {
				yield(a)
			}
		}
	}
}
