package heap

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Variant selects a collector implementation. It is the only axis of
// collector configuration: heap size and variant are the sole inputs
// spec.md's external interface names.
type Variant string

const (
	ZeroGCVariant      Variant = "zero"
	MarkSweepGCVariant Variant = "marksweep"
)

func (v Variant) valid() bool {
	return v == ZeroGCVariant || v == MarkSweepGCVariant
}

// Config holds the two inputs GC.Init needs.
type Config struct {
	Variant  Variant `toml:"variant"`
	HeapSize uint32  `toml:"heap_size"`
}

// tomlDoc is the shape of the `[heap]` table inside maggie.toml,
// mirroring how manifest.Manifest decodes `[project]`/`[source]`.
type tomlDoc struct {
	Heap Config `toml:"heap"`
}

// LoadConfig reads the `[heap]` table from a maggie.toml-shaped file at
// path, the same way manifest.Load reads `[project]`. It is a
// standalone loader so the heap runtime does not need to import the
// full manifest package just to recover two scalars.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("heap: read config %s: %w", path, err)
	}
	var doc tomlDoc
	if err := toml.Unmarshal(data, &doc); err != nil {
		return Config{}, fmt.Errorf("heap: parse config %s: %w", path, err)
	}
	return doc.Heap.normalize()
}

func (c Config) normalize() (Config, error) {
	if c.Variant == "" {
		c.Variant = MarkSweepGCVariant
	}
	if !c.Variant.valid() {
		return Config{}, fmt.Errorf("heap: unknown gc variant %q", c.Variant)
	}
	if c.HeapSize == 0 {
		return Config{}, fmt.Errorf("heap: heap_size must be > 0")
	}
	return c, nil
}
