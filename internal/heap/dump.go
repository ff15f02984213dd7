package heap

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
)

// DumpObject is one object's record in a point-in-time heap snapshot.
type DumpObject struct {
	Addr   uint32   `cbor:"addr"`
	Tag    uint32   `cbor:"tag"`
	Class  string   `cbor:"class"`
	Size   uint32   `cbor:"size"`
	Marked bool     `cbor:"marked"`
	Fields []uint32 `cbor:"fields,omitempty"` // reference slots; empty for special objects
}

// Dump is a full heap snapshot: every object in [heap_start, heap_pos)
// at the moment Dump was called, tagged with the owning GC's run ID so
// multiple dumps from one long-running process can be told apart.
type Dump struct {
	RunID   uuid.UUID    `cbor:"run_id"`
	HeapPos uint32       `cbor:"heap_pos"`
	Objects []DumpObject `cbor:"objects"`
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("heap: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Dump walks the live heap and returns a snapshot encoded as CBOR,
// for the heapgc-run -dump diagnostic flag. It does not pause or
// otherwise coordinate with allocation: callers must not allocate
// concurrently with a Dump (the runtime has no concurrency story to
// begin with, per spec.md §5).
func (gc *GC) Dump() ([]byte, error) {
	d := Dump{RunID: gc.runID, HeapPos: uint32(gc.heap.Pos())}
	gc.heap.Walk(func(obj Object) {
		rec := DumpObject{
			Addr:   uint32(obj.Addr()),
			Tag:    uint32(obj.Tag()),
			Class:  obj.Class().Name,
			Size:   obj.Size(),
			Marked: obj.Mark(),
		}
		if n := obj.FieldCount(); n > 0 {
			rec.Fields = make([]uint32, n)
			for i := 0; i < n; i++ {
				rec.Fields[i] = uint32(obj.Field(i).Addr())
			}
		}
		d.Objects = append(d.Objects, rec)
	})

	data, err := cborEncMode.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("heap: marshal dump: %w", err)
	}
	return data, nil
}
