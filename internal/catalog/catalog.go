// Package catalog holds the read-only registries of mesh assets and texture
// sets discovered on disk at startup.
package catalog

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Asset categories, each a sub-directory of the asset root.
const (
	Pallet   = "pallet"
	Rack     = "rack"
	Forklift = "forklift"
)

// Texture categories, each a sub-directory of the asset root.
const (
	Wood    = "wood"
	Metal   = "metal"
	Plastic = "plastic"
	Floor   = "floor"
)

// AssetCategories and TextureCategories are the static category layout.
var (
	AssetCategories   = []string{Pallet, Rack, Forklift}
	TextureCategories = []string{Wood, Metal, Plastic, Floor}
)

// ErrEmptyCategory is returned by Validate when a required category is empty.
var ErrEmptyCategory = errors.New("catalog: empty category")

// Catalog maps category names to what was discovered for them. It is never
// modified after Build returns.
type Catalog struct {
	Assets   map[string][]string
	Textures map[string][]TextureSet
}

// Build scans root/<category> for every asset and texture category.
func Build(logger *zap.SugaredLogger, root string) *Catalog {
	c := &Catalog{
		Assets:   make(map[string][]string, len(AssetCategories)),
		Textures: make(map[string][]TextureSet, len(TextureCategories)),
	}
	for _, name := range AssetCategories {
		c.Assets[name] = DiscoverAssets(logger, filepath.Join(root, name), AssetExtensions)
	}
	for _, name := range TextureCategories {
		c.Textures[name] = DiscoverTextures(logger, filepath.Join(root, name))
	}
	logger.Infow("catalog built",
		"root", root,
		"assets", lo.MapValues(c.Assets, func(v []string, _ string) int { return len(v) }),
		"textures", lo.MapValues(c.Textures, func(v []TextureSet, _ string) int { return len(v) }),
	)
	return c
}

// Pool concatenates the texture sets of the named categories in order.
func (c *Catalog) Pool(categories ...string) []TextureSet {
	return lo.Flatten(lo.Map(categories, func(name string, _ int) []TextureSet {
		return c.Textures[name]
	}))
}

// StructuralPool is the texture pool for the floor and walls.
func (c *Catalog) StructuralPool() []TextureSet {
	return c.Pool(Floor, Wood, Metal, Plastic)
}

// IndustrialPool is the texture pool for racks and forklifts.
func (c *Catalog) IndustrialPool() []TextureSet {
	return c.Pool(Metal, Plastic)
}

// WoodPool is the texture pool for pallets, the target included.
func (c *Catalog) WoodPool() []TextureSet {
	return c.Pool(Wood)
}

// Validate reports every asset category and texture pool a scene samples
// from that came up empty.
func (c *Catalog) Validate() error {
	var empty []string
	for _, name := range AssetCategories {
		if len(c.Assets[name]) == 0 {
			empty = append(empty, "assets/"+name)
		}
	}
	pools := []struct {
		name string
		sets []TextureSet
	}{
		{"textures/structural", c.StructuralPool()},
		{"textures/metal+plastic", c.IndustrialPool()},
		{"textures/wood", c.WoodPool()},
	}
	for _, p := range pools {
		if len(p.sets) == 0 {
			empty = append(empty, p.name)
		}
	}
	if len(empty) == 0 {
		return nil
	}
	sort.Strings(empty)
	return errors.Wrap(ErrEmptyCategory, strings.Join(empty, ", "))
}
