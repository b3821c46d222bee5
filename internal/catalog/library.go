package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Library resolves catalog names to catalogs.
//
// Resolution order:
//  1. User catalog directory (<dir>/<name>.yaml)
//  2. Embedded catalogs
//
// A user catalog that fails to parse is logged and the bundled catalog of the
// same name is used instead.
type Library struct {
	mu     sync.RWMutex
	logger *slog.Logger
	dir    string
	cache  map[string]*Catalog
}

// NewLibrary creates a library reading user catalogs from dir.
// An empty dir disables user catalogs.
func NewLibrary(dir string, logger *slog.Logger) *Library {
	if logger == nil {
		logger = slog.Default()
	}
	return &Library{
		logger: logger,
		dir:    dir,
		cache:  make(map[string]*Catalog),
	}
}

// Dir returns the user catalog directory.
func (l *Library) Dir() string {
	return l.dir
}

// Open returns a fresh copy of the named catalog.
// Callers own the returned value.
func (l *Library) Open(name string) (*Catalog, error) {
	l.mu.RLock()
	c, ok := l.cache[name]
	l.mu.RUnlock()
	if ok {
		return c.clone(), nil
	}

	c, err := l.load(name)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.cache[name] = c
	l.mu.Unlock()
	return c.clone(), nil
}

func (l *Library) load(name string) (*Catalog, error) {
	if l.dir != "" {
		path := filepath.Join(l.dir, name+".yaml")
		if data, err := os.ReadFile(path); err == nil {
			c, err := Parse(data)
			switch {
			case err != nil:
				l.logger.Warn("failed to load user catalog, trying bundled", "catalog", name, "path", path, "error", err)
			case c.Name != name:
				l.logger.Warn("user catalog name does not match file name, trying bundled",
					"catalog", name, "declared", c.Name, "path", path)
			default:
				c.Source = path
				l.logger.Debug("loaded user catalog", "catalog", name, "path", path, "entries", c.Len())
				return c, nil
			}
		}
	}

	data, ok := getEmbedded(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCatalog, name)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("bundled catalog %s: %w", name, err)
	}
	l.logger.Debug("loaded bundled catalog", "catalog", name, "entries", c.Len())
	return c, nil
}

// Names returns every available catalog name: bundled catalogs in display
// order, then user-only catalogs sorted by name.
func (l *Library) Names() []string {
	names := slices.Clone(BundledCatalogs)
	for _, n := range listEmbedded() {
		if !slices.Contains(names, n) {
			names = append(names, n)
		}
	}

	var extra []string
	if l.dir != "" {
		entries, err := os.ReadDir(l.dir)
		if err != nil && !os.IsNotExist(err) {
			l.logger.Warn("failed to read catalog directory", "dir", l.dir, "error", err)
		}
		for _, entry := range entries {
			if entry.IsDir() || filepath.Ext(entry.Name()) != ".yaml" {
				continue
			}
			n := strings.TrimSuffix(entry.Name(), ".yaml")
			if !slices.Contains(names, n) {
				extra = append(extra, n)
			}
		}
	}
	slices.Sort(extra)
	return append(names, extra...)
}

// OpenAll opens every available catalog. Catalogs that fail to load are
// logged and skipped.
func (l *Library) OpenAll() []*Catalog {
	var out []*Catalog
	for _, name := range l.Names() {
		c, err := l.Open(name)
		if err != nil {
			l.logger.Warn("skipping catalog", "catalog", name, "error", err)
			continue
		}
		out = append(out, c)
	}
	return out
}

// Invalidate drops a cached catalog so the next Open reads it again.
// An empty name drops everything.
func (l *Library) Invalidate(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if name == "" {
		l.cache = make(map[string]*Catalog)
		return
	}
	delete(l.cache, name)
}
