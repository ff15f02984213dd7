package heap

import "fmt"

// classHandle is a stable index into a ClassTable. It plays the role
// the original C++ runtime gives a raw `Klass*`: every object header
// carries one instead of a pointer, so class descriptors never need
// to live on the managed heap.
type classHandle uint32

// ClassDescriptor is immutable per-class metadata produced by the
// compiler (never allocated on the managed heap). IsSpecial marks a
// "special" leaf class (Int, Bool, String, raw byte arrays) whose
// fields are opaque bytes rather than heap references, short-circuiting
// the marker.
type ClassDescriptor struct {
	Tag          Tag
	Name         string
	InstanceSize uint32 // total bytes including the header, already word-aligned
	IsSpecial    bool
	FieldCount   int
}

// ClassTable is the registry of class descriptors a compiled program
// installs once, before any mutator code runs, analogous to coolc's
// code-generated class table.
type ClassTable struct {
	byHandle []ClassDescriptor
	byTag    map[Tag]classHandle
}

// NewClassTable returns an empty class table.
func NewClassTable() *ClassTable {
	return &ClassTable{byTag: make(map[Tag]classHandle)}
}

// Register adds a class descriptor, rounding InstanceSize up to a
// multiple of WordSize, and returns the handle object headers should
// carry. Tags must be unique, and tag 0 (freeTag) is rejected.
func (t *ClassTable) Register(desc ClassDescriptor) (classHandle, error) {
	if _, exists := t.byTag[desc.Tag]; exists {
		return 0, fmt.Errorf("heap: class tag %d already registered", desc.Tag)
	}
	if desc.Tag == freeTag {
		return 0, fmt.Errorf("heap: class tag %d is reserved", desc.Tag)
	}
	desc.InstanceSize = alignUp(desc.InstanceSize, WordSize)
	if desc.InstanceSize < HeaderSize {
		desc.InstanceSize = HeaderSize
	}
	h := classHandle(len(t.byHandle))
	t.byHandle = append(t.byHandle, desc)
	t.byTag[desc.Tag] = h
	return h, nil
}

// Lookup resolves a class descriptor by tag. Used by the allocator's
// public Allocate(tag) entry point.
func (t *ClassTable) Lookup(tag Tag) (ClassDescriptor, classHandle, bool) {
	h, ok := t.byTag[tag]
	if !ok {
		return ClassDescriptor{}, 0, false
	}
	return t.byHandle[h], h, true
}

func (t *ClassTable) lookup(h classHandle) ClassDescriptor {
	if int(h) >= len(t.byHandle) {
		fatal("heap: dispatch handle %d out of range", h)
	}
	return t.byHandle[h]
}

func alignUp(n uint32, align uint32) uint32 {
	return (n + align - 1) &^ (align - 1)
}
