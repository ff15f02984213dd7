package heap

import "testing"

func newTestGC(t *testing.T, variant Variant, heapSize uint32) *GC {
	t.Helper()
	gc, err := Init(Config{Variant: variant, HeapSize: heapSize})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(gc.Close)
	if err := RegisterBuiltins(gc); err != nil {
		t.Fatalf("RegisterBuiltins: %v", err)
	}
	return gc
}

func TestRootScopeRegAndRead(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 4096)

	scope := gc.PushScope()
	defer scope.Pop()

	o := NewInt(gc, 99)
	idx := scope.RegRoot(o)
	if got := IntValue(scope.Root(idx)); got != 99 {
		t.Fatalf("Root(%d) = %d, want 99", idx, got)
	}
}

func TestRootScopeNestingExtendsChain(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 4096)

	s1 := gc.PushScope()
	x := NewInt(gc, 1)
	ix := s1.RegRoot(x)

	s2 := gc.PushScope()
	y := NewInt(gc, 2)
	iy := s2.RegRoot(y)

	if gc.Current() != s2 {
		t.Fatalf("active scope should be the innermost")
	}

	var visited []int64
	s2.EnumerateRoots(func(a address) {
		visited = append(visited, IntValue(Object{h: gc.heap, addr: a}))
	})
	if len(visited) != 2 {
		t.Fatalf("expected roots from both scopes, got %v", visited)
	}

	s2.Pop()
	if gc.Current() != s1 {
		t.Fatalf("popping s2 should restore s1 as active")
	}
	_ = ix
	_ = iy
	s1.Pop()
	if gc.Current() != nil {
		t.Fatalf("popping the last scope should leave no active scope")
	}
}

// TestRootScopeDisciplinePopsOnEarlyReturn verifies P5: popping a child
// scope restores the active scope to its parent regardless of how the
// mutator region exits, including a deferred pop that runs on an early
// return.
func TestRootScopeDisciplinePopsOnEarlyReturn(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 4096)

	outer := gc.PushScope()
	defer outer.Pop()

	func() {
		inner := gc.PushScope()
		defer inner.Pop()
		NewInt(gc, 1)
		if true {
			return // early exit; deferred Pop must still restore outer
		}
	}()

	if gc.Current() != outer {
		t.Fatalf("expected active scope restored to outer after early return")
	}
}
