package heap

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// word is the set of types read<T>/write<T> (spec.md §6) may operate
// on: every field load/store generated code performs is one of these
// widths.
type word interface {
	uint8 | uint16 | uint32 | uint64
}

// GC is the single process-wide managed heap. Exactly one is
// constructed per process via Init, before any mutator code runs, and
// released via Close at process exit — the process-global singleton
// the design notes call for, held behind this struct rather than a
// bare global so tests can run many independent instances.
type GC struct {
	rootOwner
	heap    *Heap
	classes *ClassTable
	variant Variant
	impl    collectorImpl
	stats   Stats
	exec    *StatScope
	runID   uuid.UUID
}

// Init constructs a GC instance of the requested variant. heap_size
// and variant are the only configuration inputs (spec.md §6).
func Init(cfg Config) (*GC, error) {
	cfg, err := cfg.normalize()
	if err != nil {
		return nil, err
	}

	classes := NewClassTable()
	h := newHeap(cfg.HeapSize, classes)

	gc := &GC{
		heap:    h,
		classes: classes,
		variant: cfg.Variant,
		runID:   uuid.New(),
	}
	gc.rootOwner.heap = h

	alloc := newAllocator(h, cfg.Variant == MarkSweepGCVariant)
	switch cfg.Variant {
	case ZeroGCVariant:
		gc.impl = newZeroImpl(alloc)
	case MarkSweepGCVariant:
		marker := newMarker(h)
		gc.impl = newMarkSweepImpl(alloc, h, marker, &gc.stats)
	default:
		return nil, fmt.Errorf("heap: unknown gc variant %q", cfg.Variant)
	}

	gc.exec = StartScope(&gc.stats, Execution)
	log.Infof("heap %s: initialized variant=%s heap_size=%d", gc.runID, cfg.Variant, cfg.HeapSize)
	return gc, nil
}

// RegisterClass installs a class descriptor; compiled programs do this
// once for every class before running mutator code.
func (gc *GC) RegisterClass(desc ClassDescriptor) error {
	_, err := gc.classes.Register(desc)
	return err
}

// Allocate returns a freshly allocated, header-initialised object of
// the named class, requesting a collection and retrying exactly once
// if the first attempt does not fit. A second failure is fatal
// out-of-memory.
func (gc *GC) Allocate(tag Tag) Object {
	desc, handle, ok := gc.classes.Lookup(tag)
	if !ok {
		fatal("heap: allocate: unregistered class tag %d", tag)
	}
	return gc.allocateByDescriptor(desc, handle)
}

// AllocateByClass is the same entry point addressed by descriptor
// rather than tag, for callers that already hold one (e.g. Copy).
func (gc *GC) AllocateByClass(desc ClassDescriptor) Object {
	_, handle, ok := gc.classes.Lookup(desc.Tag)
	if !ok {
		fatal("heap: allocate: unregistered class tag %d", desc.Tag)
	}
	return gc.allocateByDescriptor(desc, handle)
}

func (gc *GC) allocateByDescriptor(desc ClassDescriptor, handle classHandle) Object {
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

// Read loads a T-sized value from base+offset. All field loads go
// through the collector so that future write/read barriers have a
// single choke point, per spec.md §6.
func Read[T word](o Object, offset uintptr) T {
	raw := o.h.bytes(o.addr+address(offset), address(sizeOf[T]()))
	return decode[T](raw)
}

// Write stores a T-sized value at base+offset.
func Write[T word](o Object, offset uintptr, v T) {
	raw := o.h.bytes(o.addr+address(offset), address(sizeOf[T]()))
	encode(raw, v)
}

func sizeOf[T word]() int {
	var z T
	switch any(z).(type) {
	case uint8:
		return 1
	case uint16:
		return 2
	case uint32:
		return 4
	default:
		return 8
	}
}

func decode[T word](raw []byte) T {
	var z T
	switch any(z).(type) {
	case uint8:
		return T(raw[0])
	case uint16:
		return T(binary.LittleEndian.Uint16(raw))
	case uint32:
		return T(binary.LittleEndian.Uint32(raw))
	default:
		return T(binary.LittleEndian.Uint64(raw))
	}
}

func encode[T word](raw []byte, v T) {
	switch any(v).(type) {
	case uint8:
		raw[0] = uint8(v)
	case uint16:
		binary.LittleEndian.PutUint16(raw, uint16(v))
	case uint32:
		binary.LittleEndian.PutUint32(raw, uint32(v))
	default:
		binary.LittleEndian.PutUint64(raw, uint64(v))
	}
}

// Stats returns the collector's accumulated timing statistics.
func (gc *GC) Stats() Stats {
	return gc.stats
}

// Close flushes the execution timer and logs final statistics,
// mirroring the original GC::~GC() destructor.
func (gc *GC) Close() {
	gc.exec.Stop()
	log.Infof("heap %s: %s=%s %s=%s %s=%s", gc.runID,
		Allocation, gc.stats.Time(Allocation),
		FullGC, gc.stats.Time(FullGC),
		Execution, gc.stats.Time(Execution))
}

// RunID identifies this GC instance in logs and heap dumps.
func (gc *GC) RunID() uuid.UUID {
	return gc.runID
}
