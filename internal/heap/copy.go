package heap

// Copy implements the language's Object.copy primitive (gc_copy in
// spec.md §6): it produces a byte-identical duplicate of obj in a
// fresh allocation, preserving class identity, independent of which
// collector variant is active.
//
// The original GC::copy guards the field-copy length with
// min(obj.size, new_obj.size) because the two allocations could in
// principle differ in size. Here dst is allocated with obj's own
// header size rather than the class descriptor's nominal InstanceSize,
// so variable-length special objects such as String are duplicated
// whole and src and dst always agree; the min is kept anyway as an
// explicit invariant check rather than silently assuming it
// (SPEC_FULL.md §7).
func Copy(gc *GC, obj Object) Object {
	desc := obj.Class()
	desc.InstanceSize = obj.Size()
	dst := gc.AllocateByClass(desc)

	n := obj.Size() - HeaderSize
	if dn := dst.Size() - HeaderSize; dn < n {
		n = dn
	}
	copy(dst.h.bytes(dst.fieldsBase(), address(n)), obj.h.bytes(obj.fieldsBase(), address(n)))
	return dst
}
