// Package materials maps material names to the fallback model shown when no
// custom model case matches. The table is built from the pack's
// items_textures.json catalog.
package materials

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"evalgo.org/packsmith/internal/apperr"
	"evalgo.org/packsmith/internal/jsonstore"
)

// CatalogEntry is one element of items_textures.json.
type CatalogEntry struct {
	Name    string `json:"name"`
	Texture string `json:"texture"`
}

// Mapping is a read-only material -> fallback model table.
type Mapping struct {
	byMaterial map[string]string
}

// Load reads the catalog at path and classifies every entry.
func Load(path string) (*Mapping, error) {
	entries, err := jsonstore.Read[[]CatalogEntry](path)
	if err != nil {
		return nil, err
	}
	return FromEntries(entries), nil
}

// FromEntries classifies entries by texture prefix. item/ and items/ map to
// minecraft:item/<name>, block/ and blocks/ to minecraft:block/<name>, and
// everything else is dropped.
func FromEntries(entries []CatalogEntry) *Mapping {
	m := &Mapping{byMaterial: make(map[string]string, len(entries))}
	for _, e := range entries {
		if fallback, ok := classify(e); ok {
			m.byMaterial[e.Name] = fallback
		}
	}
	return m
}

func classify(e CatalogEntry) (string, bool) {
	texture := strings.TrimPrefix(e.Texture, "minecraft:")
	switch {
	case strings.HasPrefix(texture, "item/"), strings.HasPrefix(texture, "items/"):
		return "minecraft:item/" + e.Name, true
	case strings.HasPrefix(texture, "block/"), strings.HasPrefix(texture, "blocks/"):
		return "minecraft:block/" + e.Name, true
	default:
		return "", false
	}
}

func (m *Mapping) Contains(material string) bool {
	_, ok := m.byMaterial[material]
	return ok
}

// ResolveFallback returns the fallback model of material.
func (m *Mapping) ResolveFallback(material string) (string, error) {
	fallback, ok := m.byMaterial[material]
	if !ok {
		return "", apperr.NotFound(fmt.Sprintf("fallback model for material %q", material), material)
	}
	return fallback, nil
}

// Len is the number of mapped materials.
func (m *Mapping) Len() int {
	return len(m.byMaterial)
}

// Names returns mapped material names, sorted.
func (m *Mapping) Names() []string {
	names := make([]string, 0, len(m.byMaterial))
	for name := range m.byMaterial {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Loader yields a Mapping on first use.
type Loader func() (*Mapping, error)

// Lazy returns a Loader that reads path once, on the first call.
func Lazy(path string) Loader {
	var (
		once    sync.Once
		mapping *Mapping
		err     error
	)
	return func() (*Mapping, error) {
		once.Do(func() {
			mapping, err = Load(path)
		})
		return mapping, err
	}
}

// Static returns a Loader for an already built mapping.
func Static(m *Mapping) Loader {
	return func() (*Mapping, error) { return m, nil }
}
