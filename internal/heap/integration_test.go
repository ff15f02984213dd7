package heap

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestEqualsStructuralForSpecialIdentityOtherwise(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 4096)
	registerCons(t, gc)

	scope := gc.PushScope()
	defer scope.Pop()

	i1 := NewInt(gc, 5)
	i2 := NewInt(gc, 5)
	if !Equals(i1, i2) {
		t.Fatalf("equal Ints at different addresses should compare structurally equal")
	}

	s1 := NewString(gc, "x")
	s2 := NewString(gc, "x")
	if !Equals(s1, s2) {
		t.Fatalf("equal Strings should compare structurally equal")
	}

	c1 := newCons(gc, i1, Object{})
	c2 := newCons(gc, i1, Object{})
	if Equals(c1, c2) {
		t.Fatalf("non-special objects should compare by identity, not structurally")
	}
	if !Equals(c1, c1) {
		t.Fatalf("an object must equal itself")
	}
}

func TestStringSubstrOutOfBoundsIsAnError(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 4096)

	scope := gc.PushScope()
	defer scope.Pop()

	s := NewString(gc, "hello")
	scope.RegRoot(s)

	if _, err := StringSubstr(gc, s, 1, 3); err != nil {
		t.Fatalf("in-bounds substr should not error: %v", err)
	}
	if _, err := StringSubstr(gc, s, 3, 10); err == nil {
		t.Fatalf("out-of-bounds substr should return an error, not abort")
	}
}

func TestStringConcatAndLength(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 4096)
	scope := gc.PushScope()
	defer scope.Pop()

	a := NewString(gc, "foo")
	b := NewString(gc, "bar")
	scope.RegRoot(a)
	scope.RegRoot(b)

	c := StringConcat(gc, a, b)
	if StringValue(c) != "foobar" {
		t.Fatalf("concat mismatch: %q", StringValue(c))
	}
	if StringLength(c) != 6 {
		t.Fatalf("length mismatch: %d", StringLength(c))
	}
}

func TestLoadConfigFromManifestShapedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maggie.toml")
	contents := "[project]\nname = \"demo\"\n\n[heap]\nvariant = \"marksweep\"\nheap_size = 65536\n"
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Variant != MarkSweepGCVariant || cfg.HeapSize != 65536 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestLoadConfigRejectsUnknownVariant(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "maggie.toml")
	if err := os.WriteFile(path, []byte("[heap]\nvariant = \"bogus\"\nheap_size = 100\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected an error for an unknown variant")
	}
}

func TestDumpRoundTripsObjectCount(t *testing.T) {
	gc := newTestGC(t, MarkSweepGCVariant, 4096)
	registerCons(t, gc)

	scope := gc.PushScope()
	defer scope.Pop()

	scope.RegRoot(newCons(gc, NewInt(gc, 1), Object{}))
	NewInt(gc, 2)

	data, err := gc.Dump()
	if err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if len(data) == 0 {
		t.Fatalf("expected non-empty dump")
	}

	var decoded struct {
		Objects []DumpObject `cbor:"objects"`
	}
	if err := cbor.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode dump: %v", err)
	}
	// Int(1), the Cons holding it, and Int(2).
	if len(decoded.Objects) != 3 {
		t.Fatalf("expected 3 objects in the dump, got %d", len(decoded.Objects))
	}
}
