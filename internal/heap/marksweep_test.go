package heap

import "testing"

// TestOrphanReclaimed is end-to-end scenario 2 from spec.md §8: an
// unregistered object becomes collectible garbage, and filling the
// remaining capacity (which forces a collection) succeeds rather than
// aborting.
func TestOrphanReclaimed(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 512)
	registerCons(t, gc)

	scope := gc.PushScope()
	defer scope.Pop()

	newCons(gc, NewInt(gc, 0), Object{}) // orphan: never registered

	for i := 0; i < 200; i++ {
		NewInt(gc, int64(i))
	}
	// Reaching here without fatal() proves the orphan's space was
	// reclaimed and reused.
}

// TestUnreachabilityReclamation is property P2: an object allocated in
// a scope that is later popped without being otherwise retained no
// longer occupies space after a collection.
func TestUnreachabilityReclamation(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 2048)
	registerCons(t, gc)

	outer := gc.PushScope()
	defer outer.Pop()

	func() {
		inner := gc.PushScope()
		defer inner.Pop()
		inner.RegRoot(newCons(gc, NewInt(gc, 1), Object{}))
	}()

	before := countLive(gc)
	gc.impl.collect(gc.Current())
	after := countLive(gc)
	if after >= before {
		t.Fatalf("expected the popped scope's object to be reclaimed: before=%d after=%d", before, after)
	}
}

// countLive counts the objects Walk visits that do not lie inside a
// free-list span. Sweep leaves a reclaimed object's old header in the
// arena until the space is reused, so Walk alone still visits it.
func countLive(gc *GC) int {
	free := gc.impl.(*markSweepImpl).free
	n := 0
	gc.heap.Walk(func(o Object) {
		for e := free.head; e != nil; e = e.next {
			if o.addr >= e.addr && o.addr < e.addr+address(e.size) {
				return
			}
		}
		n++
	})
	return n
}

// TestReachabilitySoundness is property P1: an object registered
// before further allocation remains live and its header unmodified
// across subsequent allocations that force collection.
func TestReachabilitySoundness(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 1024)
	registerCons(t, gc)

	scope := gc.PushScope()
	defer scope.Pop()

	a := newCons(gc, NewInt(gc, 42), Object{})
	idx := scope.RegRoot(a)
	wantTag, wantSize := a.Tag(), a.Size()

	for i := 0; i < 100; i++ {
		NewInt(gc, int64(i))
	}

	a = scope.Root(idx)
	if a.Tag() != wantTag || a.Size() != wantSize {
		t.Fatalf("header mutated: tag=%v (want %v) size=%v (want %v)", a.Tag(), wantTag, a.Size(), wantSize)
	}
	if IntValue(a.Field(0)) != 42 {
		t.Fatalf("field contents mutated")
	}
	if a.Mark() {
		t.Fatalf("P3: mark bit must be clear outside an active collection")
	}
}

// TestLinearChainSurvives is end-to-end scenario 1 from spec.md §8.
func TestLinearChainSurvives(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 1024)
	registerCons(t, gc)

	scope := gc.PushScope()
	defer scope.Pop()

	c := newCons(gc, NewInt(gc, 30), Object{})
	b := newCons(gc, NewInt(gc, 20), c)
	a := newCons(gc, NewInt(gc, 10), b)
	idx := scope.RegRoot(a)

	for i := 0; i < 200; i++ {
		NewInt(gc, int64(i)) // eventually forces a collection
	}

	a = scope.Root(idx)
	tail1 := a.Field(1)
	tail2 := tail1.Field(1)
	if got := IntValue(tail2.Field(0)); got != 30 {
		t.Fatalf("a.tail.tail.head = %d, want 30", got)
	}
}

// TestNestedScopeCollection is end-to-end scenario 3.
func TestNestedScopeCollection(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 2048)
	registerCons(t, gc)

	s1 := gc.PushScope()
	defer s1.Pop()
	xIdx := s1.RegRoot(newCons(gc, NewInt(gc, 1), Object{}))

	s2 := gc.PushScope()
	yIdx := s2.RegRoot(newCons(gc, NewInt(gc, 2), Object{}))

	gc.impl.collect(gc.Current())
	if IntValue(s1.Root(xIdx).Field(0)) != 1 {
		t.Fatalf("x should survive while s2 is active")
	}
	if IntValue(s2.Root(yIdx).Field(0)) != 2 {
		t.Fatalf("y should survive while s2 is active")
	}

	s2.Pop()
	gc.impl.collect(gc.Current())
	if IntValue(s1.Root(xIdx).Field(0)) != 1 {
		t.Fatalf("x should survive after s2 is popped")
	}
}

func TestFreeListFirstFitAndCoalesce(t *testing.T) {
	var fl freeList
	fl.add(100, 16)
	fl.add(116, 16) // adjacent: should coalesce into one 32-byte entry
	fl.add(200, 8)

	if fl.head == nil || fl.head.size != 32 {
		t.Fatalf("expected coalesced 32-byte entry first, got %+v", fl.head)
	}
	if fl.head.next == nil || fl.head.next.addr != 200 || fl.head.next.size != 8 {
		t.Fatalf("expected a separate 8-byte entry at 200, got %+v", fl.head.next)
	}
}

// TestFreeListSkipsUnsplittableRemainder verifies that a candidate
// entry is passed over, not split, when carving size bytes off it
// would leave a remainder too small to host a header of its own
// (HeaderSize bytes): the search continues to the next entry, here an
// exact fit, rather than splitting the first one.
func TestFreeListSkipsUnsplittableRemainder(t *testing.T) {
	h := newHeap(512, NewClassTable())

	var fl freeList
	fl.add(100, 32) // an 8-byte request would leave a 24-byte remainder, < HeaderSize
	fl.add(200, 8)  // exact fit

	addr, ok := fl.findFit(h, 8)
	if !ok || addr != 200 {
		t.Fatalf("expected the too-small-remainder entry skipped in favor of the exact fit at 200, got addr=%d ok=%v", addr, ok)
	}
	if fl.head == nil || fl.head.addr != 100 || fl.head.size != 32 {
		t.Fatalf("expected the 32-byte entry left untouched, got %+v", fl.head)
	}
}

// TestFreeListSplitWritesFreeFragmentHeader verifies that splitting a
// block large enough to leave a proper remainder stamps a
// self-describing header into the arena at the remainder's address,
// so a later Heap.Walk can step over it safely.
func TestFreeListSplitWritesFreeFragmentHeader(t *testing.T) {
	h := newHeap(512, NewClassTable())

	var fl freeList
	fl.add(100, 80)

	addr, ok := fl.findFit(h, 40)
	if !ok || addr != 100 {
		t.Fatalf("expected first-fit to carve from the 80-byte entry at 100, got addr=%d ok=%v", addr, ok)
	}
	if fl.head == nil || fl.head.addr != 140 || fl.head.size != 40 {
		t.Fatalf("expected a 40-byte remainder at 140, got %+v", fl.head)
	}

	remainder := Object{h: h, addr: 140}
	if remainder.Size() != 40 {
		t.Fatalf("expected a free-fragment header of size 40 at 140, got size=%d", remainder.Size())
	}
	if remainder.Mark() {
		t.Fatalf("free-fragment header must be unmarked")
	}
	if remainder.Tag() != freeTag {
		t.Fatalf("expected free-fragment header tagged freeTag, got %v", remainder.Tag())
	}
}
