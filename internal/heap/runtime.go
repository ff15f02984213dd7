package heap

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
)

// Reserved tags for the handful of "special" (leaf) classes every
// compiled program gets for free, grounded in coolc's RuntimeLLVM.h
// declarations for Object/String/Int/Bool. A host registers these with
// RegisterBuiltins before running any mutator code; user classes start
// numbering at TagFirstUser.
const (
	TagObject Tag = iota + 1
	TagInt
	TagBool
	TagString
	TagFirstUser
)

const (
	intPayloadSize    = WordSize
	boolPayloadSize   = WordSize
	stringHeaderExtra = WordSize // one word recording the string's length
)

// RegisterBuiltins installs the Object/Int/Bool/String class
// descriptors. Int, Bool and String are special: their fields are raw
// bytes, not references, so the marker skips them (spec.md §4.4,
// exercised by end-to-end scenario 4: a String's bytes that happen to
// look like valid heap addresses must not be traced).
func RegisterBuiltins(gc *GC) error {
	for _, desc := range []ClassDescriptor{
		{Tag: TagObject, Name: "Object", InstanceSize: HeaderSize, IsSpecial: false, FieldCount: 0},
		{Tag: TagInt, Name: "Int", InstanceSize: HeaderSize + intPayloadSize, IsSpecial: true},
		{Tag: TagBool, Name: "Bool", InstanceSize: HeaderSize + boolPayloadSize, IsSpecial: true},
		{Tag: TagString, Name: "String", InstanceSize: HeaderSize + stringHeaderExtra, IsSpecial: true},
	} {
		if err := gc.RegisterClass(desc); err != nil {
			return err
		}
	}
	return nil
}

// NewInt allocates a boxed integer.
func NewInt(gc *GC, v int64) Object {
	o := gc.Allocate(TagInt)
	Write[uint64](o, HeaderSize, uint64(v))
	return o
}

// IntValue unboxes an Int object.
func IntValue(o Object) int64 {
	return int64(Read[uint64](o, HeaderSize))
}

// NewBool allocates a boxed boolean.
func NewBool(gc *GC, v bool) Object {
	o := gc.Allocate(TagBool)
	var raw uint64
	if v {
		raw = 1
	}
	Write[uint64](o, HeaderSize, raw)
	return o
}

// BoolValue unboxes a Bool object.
func BoolValue(o Object) bool {
	return Read[uint64](o, HeaderSize) != 0
}

// NewString allocates a String object holding s. Unlike Int/Bool,
// String objects are variable length: the allocator is asked for
// HeaderSize + stringHeaderExtra + len(s) bytes, rounded up to a
// multiple of WordSize, rather than the nominal size the String class
// descriptor was registered with, which records only the fixed prefix.
func NewString(gc *GC, s string) Object {
	total := HeaderSize + stringHeaderExtra + uint32(len(s))
	o := gc.allocateVariable(TagString, total)
	Write[uint32](o, HeaderSize, uint32(len(s)))
	copy(o.h.bytes(o.addr+HeaderSize+stringHeaderExtra, address(len(s))), s)
	return o
}

// StringValue reads a String object's payload back into a Go string.
func StringValue(o Object) string {
	n := Read[uint32](o, HeaderSize)
	return string(o.h.bytes(o.addr+HeaderSize+stringHeaderExtra, address(n)))
}

// allocateVariable is the variable-length counterpart to GC.Allocate,
// used only by special (byte-blob) classes whose per-object size is
// not fixed by their class descriptor. The header's own size field,
// not the descriptor's InstanceSize, remains the authoritative stride
// for heap-walking afterward (spec.md §3).
func (gc *GC) allocateVariable(tag Tag, totalSize uint32) Object {
	desc, handle, ok := gc.classes.Lookup(tag)
	if !ok {
		fatal("heap: allocate: unregistered class tag %d", tag)
	}
	desc.InstanceSize = alignUp(totalSize, WordSize)

	scope := StartScope(&gc.stats, Allocation)
	defer scope.Stop()

	if obj, ok := gc.impl.allocateRaw(desc, handle); ok {
		return obj
	}
	gc.impl.collect(gc.Current())
	if obj, ok := gc.impl.allocateRaw(desc, handle); ok {
		return obj
	}
	fatal("heap: out of memory allocating %d bytes for class %q", desc.InstanceSize, desc.Name)
	panic("unreachable")
}

// StringLength implements String.length.
func StringLength(o Object) int64 {
	return int64(Read[uint32](o, HeaderSize))
}

// StringConcat implements String.concat.
func StringConcat(gc *GC, a, b Object) Object {
	return NewString(gc, StringValue(a)+StringValue(b))
}

// StringSubstr implements String.substr(i, l); out-of-bounds indices
// are a mutator input error, surfaced as a Go error rather than a
// fatal collector abort (spec.md §7, error kind 3).
func StringSubstr(gc *GC, s Object, i, l int64) (Object, error) {
	str := StringValue(s)
	if i < 0 || l < 0 || i+l > int64(len(str)) {
		return Object{}, fmt.Errorf("String.substr: index out of bounds (len=%d, i=%d, l=%d)", len(str), i, l)
	}
	return NewString(gc, str[i:i+l]), nil
}

// Equals implements the language's equals(a, b): structural comparison
// for special types, identity otherwise.
func Equals(a, b Object) bool {
	if a.IsNull() || b.IsNull() {
		return a.IsNull() == b.IsNull()
	}
	if a.addr == b.addr {
		return true
	}
	if a.Tag() != b.Tag() {
		return false
	}
	switch a.Tag() {
	case TagInt:
		return IntValue(a) == IntValue(b)
	case TagBool:
		return BoolValue(a) == BoolValue(b)
	case TagString:
		return StringValue(a) == StringValue(b)
	default:
		return false // identity already checked above
	}
}

// TypeName implements Object.type_name.
func TypeName(o Object) string {
	return o.Class().Name
}

// Abort implements Object.abort: print a diagnostic and terminate,
// matching the language's runtime-error convention, not the
// collector's own fatal() path (this is a mutator-level abort, not an
// invariant violation).
func Abort(o Object, reason string) {
	fmt.Fprintf(os.Stderr, "%s: aborted: %s\n", TypeName(o), reason)
	os.Exit(1)
}

// OutString implements IO.out_string.
func OutString(w *bufio.Writer, s Object) {
	w.WriteString(StringValue(s))
	w.Flush()
}

// OutInt implements IO.out_int.
func OutInt(w *bufio.Writer, i Object) {
	w.WriteString(strconv.FormatInt(IntValue(i), 10))
	w.Flush()
}

// InString implements IO.in_string: reads one line from r.
func InString(gc *GC, r *bufio.Reader) Object {
	line, _ := r.ReadString('\n')
	return NewString(gc, trimNewline(line))
}

// InInt implements IO.in_int: reads one line and parses it, returning
// 0 on a parse failure (mirroring COOL's historical in_int behavior
// rather than raising — callers that need strict parsing should read
// via InString and parse themselves).
func InInt(gc *GC, r *bufio.Reader) Object {
	line, _ := r.ReadString('\n')
	v, _ := strconv.ParseInt(trimNewline(line), 10, 64)
	return NewInt(gc, v)
}

func trimNewline(s string) string {
	for len(s) > 0 && (s[len(s)-1] == '\n' || s[len(s)-1] == '\r') {
		s = s[:len(s)-1]
	}
	return s
}
