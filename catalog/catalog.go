package catalog

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	assetengine "github.com/wippyai/asset-engine"
	"github.com/wippyai/asset-engine/errors"
)

// Catalog is an immutable set of asset specs published by a bundle.
type Catalog struct {
	specs map[string]assetengine.AssetSpecs
}

type catalogFile struct {
	Assets map[string]specEntry `yaml:"assets"`
}

type specEntry struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`
}

// Parse decodes a catalog from YAML.
func Parse(data []byte) (*Catalog, error) {
	var f catalogFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, errors.Wrap(errors.PhaseCatalog, errors.KindInvalidInput, err, "parse catalog")
	}

	specs := make(map[string]assetengine.AssetSpecs, len(f.Assets))
	for name, e := range f.Assets {
		if e.Width < 0 || e.Height < 0 {
			return nil, errors.InvalidInput(errors.PhaseCatalog,
				fmt.Sprintf("asset '%s' has negative dimensions %dx%d", name, e.Width, e.Height))
		}
		specs[name] = assetengine.AssetSpecs{Width: e.Width, Height: e.Height}
	}

	return &Catalog{specs: specs}, nil
}

// Load reads and parses a catalog file from disk.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseCatalog, errors.KindNotFound, err, "read catalog")
	}
	return Parse(data)
}

// SpecsForName returns the specs for a catalog entry.
func (c *Catalog) SpecsForName(name string) (assetengine.AssetSpecs, bool) {
	s, ok := c.specs[name]
	return s, ok
}

// Len returns the number of catalog entries.
func (c *Catalog) Len() int {
	return len(c.specs)
}

// Names returns all entry names in sorted order.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.specs))
	for name := range c.specs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
