package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

//go:embed data/catalog.yaml
var defaultCatalog []byte

// Default returns the catalog built into the binary.
func Default() (*Catalog, error) {
	c, err := Load(bytes.NewReader(defaultCatalog))
	if err != nil {
		return nil, fmt.Errorf("built-in catalog: %w", err)
	}
	return c, nil
}

// DefaultYAML returns the raw YAML of the built-in catalog.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultCatalog...)
}

// Load decodes and validates a YAML catalog.
func Load(r io.Reader) (*Catalog, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var c Catalog
	if err := dec.Decode(&c); err != nil {
		if err == io.EOF {
			return nil, ErrNoCategories
		}
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// LoadFile reads a catalog from path.
func LoadFile(path string) (*Catalog, error) {
	path = filepath.Clean(path)
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening catalog %q: %w", path, err)
	}
	defer f.Close()

	c, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("catalog %q: %w", path, err)
	}
	return c, nil
}
