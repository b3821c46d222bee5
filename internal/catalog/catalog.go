// Package catalog provides the vocabulary catalogs shown by miwok.
//
// A catalog is a named, ordered list of entries for one category. The four
// bundled catalogs are embedded in the binary; YAML files in the user
// catalog directory override them by name or add new categories.
package catalog

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/miwok/internal/model"
)

// Catalog errors.
var (
	ErrNoEntry        = errors.New("no entry at index")
	ErrUnknownCatalog = errors.New("unknown catalog")
	ErrEmptyCatalog   = errors.New("catalog has no entries")
	ErrMissingName    = errors.New("catalog name cannot be empty")
)

// Catalog is an ordered list of vocabulary entries for one category.
// It is built once when a screen opens and not modified afterwards.
type Catalog struct {
	Name    string        `yaml:"name" json:"name"`
	Title   string        `yaml:"title" json:"title"`
	Color   string        `yaml:"color" json:"color"`
	Entries []model.Entry `yaml:"entries" json:"entries"`

	// Source is the file the catalog was read from, empty for bundled catalogs.
	Source string `yaml:"-" json:"-"`
}

// Parse decodes and validates a YAML catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	if c.Title == "" {
		c.Title = c.Name
	}
	return &c, nil
}

// Validate checks the catalog and every entry in it.
func (c *Catalog) Validate() error {
	if c.Name == "" {
		return ErrMissingName
	}
	if len(c.Entries) == 0 {
		return fmt.Errorf("%s: %w", c.Name, ErrEmptyCatalog)
	}
	for i, e := range c.Entries {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("%s entry %d: %w", c.Name, i, err)
		}
	}
	return nil
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.Entries)
}

// Entry resolves a row index to its entry.
func (c *Catalog) Entry(i int) (model.Entry, error) {
	if i < 0 || i >= len(c.Entries) {
		return model.Entry{}, fmt.Errorf("%w %d in %s", ErrNoEntry, i, c.Name)
	}
	return c.Entries[i], nil
}

// Find returns the index of the first entry whose native or target label
// equals label.
func (c *Catalog) Find(label string) (int, bool) {
	for i, e := range c.Entries {
		if e.Native == label || e.Target == label {
			return i, true
		}
	}
	return -1, false
}

// Lookup resolves a command-line argument: a 1-based row number, or a label
// in either language, matched exactly first and then ignoring case.
func (c *Catalog) Lookup(arg string) (model.Entry, error) {
	if n, err := strconv.Atoi(arg); err == nil {
		return c.Entry(n - 1)
	}
	if i, ok := c.Find(arg); ok {
		return c.Entries[i], nil
	}
	for _, e := range c.Entries {
		if strings.EqualFold(e.Native, arg) || strings.EqualFold(e.Target, arg) {
			return e, nil
		}
	}
	return model.Entry{}, fmt.Errorf("%s: %q: %w", c.Name, arg, ErrNoEntry)
}

// clone returns a copy that shares nothing with c.
func (c *Catalog) clone() *Catalog {
	cp := *c
	cp.Entries = append([]model.Entry(nil), c.Entries...)
	return &cp
}
