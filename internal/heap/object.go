// Package heap implements the managed object heap for Maggie's native
// code-generation backend: a bump-pointer allocator, a scoped root set,
// and a mark-sweep collector operating over a single owned arena of
// bytes. Generated code never holds a Go pointer into the arena;
// every reference is an address (a byte offset) resolved through the
// methods on Heap.
package heap

import "encoding/binary"

// WordSize is the machine word width this heap assumes. All object
// sizes are rounded up to a multiple of WordSize.
const WordSize = 8

// headerWords is the number of header words preceding every object's
// fields: mark, size, tag, dispatch.
const headerWords = 4

// HeaderSize is the byte size of the fixed object header.
const HeaderSize = headerWords * WordSize

// address is an offset into a Heap's backing arena. It is never a Go
// pointer: keeping every cross-object reference as an offset into one
// owned []byte is what lets the collector move or reclaim objects
// without chasing live Go pointers, and is the single place pointer
// arithmetic into the heap happens.
type address uint32

const nullAddr address = 0

// Tag identifies an object's class. The zero tag is never assigned to
// a registered class; the collector reserves it as freeTag below.
type Tag uint32

// Object is a typed view over one object's bytes inside a Heap. It
// does not copy the underlying storage; all reads and writes go
// through the owning Heap's arena.
type Object struct {
	h    *Heap
	addr address
}

func (o Object) valid() bool {
	return o.h != nil && o.addr != nullAddr
}

// Addr exposes the object's heap-relative address. Used by the root
// set and marker; not meant for arithmetic by mutator code.
func (o Object) Addr() address { return o.addr }

func (o Object) header() []byte {
	return o.h.bytes(o.addr, HeaderSize)
}

// Mark reports the object's mark bit.
func (o Object) Mark() bool {
	return o.header()[0] != 0
}

// SetMark sets the object's mark bit.
func (o Object) SetMark(v bool) {
	h := o.header()
	if v {
		h[0] = 1
	} else {
		h[0] = 0
	}
}

// Size returns the object's total byte size, header included.
func (o Object) Size() uint32 {
	return binary.LittleEndian.Uint32(o.header()[WordSize : 2*WordSize])
}

func (o Object) setSize(size uint32) {
	binary.LittleEndian.PutUint32(o.header()[WordSize:2*WordSize], size)
}

// Tag returns the object's class tag.
func (o Object) Tag() Tag {
	return Tag(binary.LittleEndian.Uint32(o.header()[2*WordSize : 3*WordSize]))
}

func (o Object) setTag(tag Tag) {
	binary.LittleEndian.PutUint32(o.header()[2*WordSize:3*WordSize], uint32(tag))
}

// dispatch returns the class-table handle describing this object's
// class. It stands in for the C++ original's raw pointer to a class
// descriptor: the descriptor itself never lives on the managed heap.
func (o Object) dispatch() classHandle {
	return classHandle(binary.LittleEndian.Uint32(o.header()[3*WordSize : 4*WordSize]))
}

func (o Object) setDispatch(h classHandle) {
	binary.LittleEndian.PutUint32(o.header()[3*WordSize:4*WordSize], uint32(h))
}

// freeTag marks an arena span as an unconsumed free-list fragment
// rather than a live object. Tag 0 is never handed out to a registered
// class (see Tag's doc comment), so it is free to double as this
// sentinel.
const freeTag Tag = 0

// freeClassDescriptor is the synthetic descriptor Class reports for a
// free fragment: special (no reference fields to trace) and otherwise
// inert. Its InstanceSize is meaningless; a fragment's real size lives
// in its own header, same as any other object.
var freeClassDescriptor = ClassDescriptor{Tag: freeTag, Name: "<free>", IsSpecial: true}

// Class returns the class descriptor governing this object's layout.
func (o Object) Class() ClassDescriptor {
	if o.Tag() == freeTag {
		return freeClassDescriptor
	}
	return o.h.classes.lookup(o.dispatch())
}

// FieldCount returns the number of reference-holding field slots, per
// the owning class descriptor. Special (leaf) types report zero.
func (o Object) FieldCount() int {
	if o.Class().IsSpecial {
		return 0
	}
	return o.Class().FieldCount
}

// fieldsBase returns the address of the first field slot, immediately
// following the header.
func (o Object) fieldsBase() address {
	return o.addr + HeaderSize
}

// Field reads reference field i as a heap address, or the zero Object
// if the slot holds the null sentinel.
func (o Object) Field(i int) Object {
	off := o.fieldsBase() + address(i*WordSize)
	raw := binary.LittleEndian.Uint32(o.h.bytes(off, WordSize))
	return o.h.objectAt(address(raw))
}

// SetField stores v (or the null sentinel, if v is the zero Object)
// into reference field i.
func (o Object) SetField(i int, v Object) {
	off := o.fieldsBase() + address(i*WordSize)
	var raw uint32
	if v.valid() {
		raw = uint32(v.addr)
	}
	binary.LittleEndian.PutUint32(o.h.bytes(off, WordSize), raw)
}

// Bytes returns the raw field payload of a special (leaf) object, e.g.
// a String or a raw byte array, whose fields are opaque bytes rather
// than references. Callers must not use this on a reference-holding
// object.
func (o Object) Bytes() []byte {
	n := o.Size() - HeaderSize
	return o.h.bytes(o.fieldsBase(), address(n))
}

// ZeroFields sets every field slot to the null sentinel (or, for a
// special object, zeroes its raw byte payload). Required whenever the
// allocator cannot already guarantee zero-filled memory.
func (o Object) ZeroFields() {
	n := o.Size() - HeaderSize
	clear(o.h.bytes(o.fieldsBase(), address(n)))
}

// IsNull reports whether this Object handle is the null reference.
func (o Object) IsNull() bool {
	return !o.valid()
}
