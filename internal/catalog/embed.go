package catalog

import (
	"embed"
	"io/fs"
	"path/filepath"
	"strings"
)

//go:embed catalogs/*.yaml
var embeddedCatalogs embed.FS

// BundledCatalogs lists the embedded catalogs in display order.
var BundledCatalogs = []string{"numbers", "family", "colors", "phrases"}

// getEmbedded returns the raw document for a bundled catalog.
func getEmbedded(name string) ([]byte, bool) {
	data, err := embeddedCatalogs.ReadFile("catalogs/" + name + ".yaml")
	if err != nil {
		return nil, false
	}
	return data, true
}

// listEmbedded returns the names of all embedded catalog files.
func listEmbedded() []string {
	entries, err := fs.ReadDir(embeddedCatalogs, "catalogs")
	if err != nil {
		return BundledCatalogs
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if ext := filepath.Ext(entry.Name()); ext == ".yaml" {
			names = append(names, strings.TrimSuffix(entry.Name(), ext))
		}
	}
	return names
}

// IsBundled reports whether name is an embedded catalog.
func IsBundled(name string) bool {
	_, ok := getEmbedded(name)
	return ok
}
