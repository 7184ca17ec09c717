package schema

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Parse decodes a YAML definition and validates it. Unknown keys are an
// error.
func Parse(data []byte) (*Definition, error) {
	return parseNamed(data, "")
}

// LoadFile reads and parses a definition file. A definition without a name
// takes the file's base name.
func LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	d, err := parseNamed(data, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

func parseNamed(data []byte, fallback string) (*Definition, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var d Definition
	if err := dec.Decode(&d); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidDefinition, err)
	}
	if d.Name == "" {
		d.Name = fallback
	}

	if err := d.Validate(); err != nil {
		return nil, err
	}
	return &d, nil
}

// Catalog holds definitions by name. It is safe for concurrent use.
type Catalog struct {
	defs map[string]*Definition
	mu   sync.RWMutex
}

func NewCatalog() *Catalog {
	return &Catalog{defs: make(map[string]*Definition)}
}

// LoadDir loads every .yaml and .yml file in dir into a new catalog.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}

	c := NewCatalog()
	for _, e := range entries {
		ext := filepath.Ext(e.Name())
		if e.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		d, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		if err := c.Add(d); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Add registers a definition. Names must be unique within a catalog.
func (c *Catalog) Add(d *Definition) error {
	if err := d.Validate(); err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.defs[d.Name]; exists {
		return fmt.Errorf("%w: duplicate name %s", ErrInvalidDefinition, d.Name)
	}
	c.defs[d.Name] = d
	return nil
}

func (c *Catalog) Get(name string) (*Definition, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	d, ok := c.defs[name]
	return d, ok
}

// Names returns the definition names in sorted order.
func (c *Catalog) Names() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.defs))
	for name := range c.defs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
