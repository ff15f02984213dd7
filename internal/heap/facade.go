package heap

// This file is the thin façade spec.md §6 names as the compiler-facing
// surface. It adds no behavior of its own: every function forwards to
// the method that actually implements it, giving generated code a
// vocabulary that matches the spec 1:1 (gc_alloc, gc_alloc_by_class,
// push_scope/pop_scope, reg_root/root, gc_copy) without duplicating
// logic here.

// GCAlloc is gc_alloc(tag) from spec.md §6.
func GCAlloc(gc *GC, tag Tag) Object { return gc.Allocate(tag) }

// GCAllocByClass is gc_alloc_by_class(class_descriptor) from spec.md §6.
func GCAllocByClass(gc *GC, desc ClassDescriptor) Object { return gc.AllocateByClass(desc) }

// PushScope is push_scope() from spec.md §6.
func PushScope(gc *GC) *RootScope { return gc.PushScope() }

// PopScope is pop_scope() from spec.md §6.
func PopScope(s *RootScope) { s.Pop() }

// RegRoot is reg_root(obj) from spec.md §6.
func RegRoot(s *RootScope, obj Object) int { return s.RegRoot(obj) }

// RootAt is root(i) from spec.md §6 (named RootAt, not Root, to avoid
// colliding with the RootScope.Root method it forwards to).
func RootAt(s *RootScope, i int) Object { return s.Root(i) }

// GCCopy is gc_copy(obj) from spec.md §6.
func GCCopy(gc *GC, obj Object) Object { return Copy(gc, obj) }
