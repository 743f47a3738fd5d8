// Package scatter places the movable assets of a scene: racks, forklifts,
// pallets and the target pallet every camera is aimed at.
package scatter

import (
	"path/filepath"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
	"github.com/RunnersNum40/Kubric-Pallets/internal/sampling"
	"github.com/RunnersNum40/Kubric-Pallets/internal/warehouse"
)

// TargetPrefix marks the designated target in its entity name.
const TargetPrefix = "target_"

// ScatterExtent bounds scattered objects to [-ScatterExtent, ScatterExtent]²
// on the floor.
const ScatterExtent = 10.0

// Placement bounds.
var (
	ObjectScaleRange = [2]float64{0.8, 1.2}
	TargetScaleRange = [2]float64{0.9, 1.1}
	UVScaleRange     = [2]float64{0.5, 1.5}
)

// Range is an inclusive count range.
type Range struct {
	Min int `json:"min" yaml:"min"`
	Max int `json:"max" yaml:"max"`
}

// Ranges maps an asset category to how many of it a scene gets.
type Ranges map[string]Range

// DefaultRanges are the per-category object counts.
func DefaultRanges() Ranges {
	return Ranges{
		catalog.Rack:     {Min: 10, Max: 30},
		catalog.Forklift: {Min: 5, Max: 10},
		catalog.Pallet:   {Min: 1, Max: 5},
	}
}

// Order is the sequence categories are scattered in.
var Order = []string{catalog.Rack, catalog.Forklift, catalog.Pallet}

// Textures returns the pool objects of category are painted from.
func Textures(c *catalog.Catalog, category string) []catalog.TextureSet {
	switch category {
	case catalog.Rack:
		return c.Pool(catalog.Metal, catalog.Plastic)
	case catalog.Forklift:
		return c.Pool(catalog.Plastic, catalog.Metal)
	default:
		return c.WoodPool()
	}
}

// AddObjects adds count objects picked from assets, each isotropically
// scaled, dropped on the floor near the origin with a jiggled upright
// orientation and textured from textures.
func AddObjects(s *render.Scene, smp *sampling.Sampler, assets []string, count int, textures []catalog.TextureSet, mat render.MaterialApplier) ([]*render.Entity, error) {
	out := make([]*render.Entity, 0, count)
	for i := 0; i < count; i++ {
		asset, err := sampling.Choice(smp, assets)
		if err != nil {
			return out, errors.Wrap(err, "pick asset")
		}
		k := smp.Uniform(ObjectScaleRange[0], ObjectScaleRange[1])
		pos := r3.Vector{
			X: smp.Uniform(-ScatterExtent, ScatterExtent),
			Y: smp.Uniform(-ScatterExtent, ScatterExtent),
		}
		e := s.Add(render.NewMesh(filepath.Base(asset), asset, pos, mathutil.JiggleRotation(smp), r3.Vector{X: k, Y: k, Z: k}))
		if err := applyTexture(e, smp, textures, mat); err != nil {
			return out, err
		}
		out = append(out, e)
	}
	return out, nil
}

// PlaceTarget adds the target pallet somewhere inside the warehouse
// footprint, up to a meter off the floor.
func PlaceTarget(s *render.Scene, smp *sampling.Sampler, assets []string, d warehouse.Dimensions, textures []catalog.TextureSet, mat render.MaterialApplier) (*render.Entity, error) {
	asset, err := sampling.Choice(smp, assets)
	if err != nil {
		return nil, errors.Wrap(err, "pick target asset")
	}
	k := smp.Uniform(TargetScaleRange[0], TargetScaleRange[1])
	pos := r3.Vector{
		X: smp.Uniform(-d.Length, d.Length) / 2,
		Y: smp.Uniform(-d.Width, d.Width) / 2,
		Z: smp.Uniform(0, 1),
	}
	e := s.Add(render.NewMesh(TargetPrefix+filepath.Base(asset), asset, pos, mathutil.JiggleRotation(smp), r3.Vector{X: k, Y: k, Z: k}))
	if err := applyTexture(e, smp, textures, mat); err != nil {
		return nil, err
	}
	return e, nil
}

func applyTexture(e *render.Entity, smp *sampling.Sampler, textures []catalog.TextureSet, mat render.MaterialApplier) error {
	set, err := sampling.Choice(smp, textures)
	if err != nil {
		return errors.Wrapf(err, "texture for %s", e.Name)
	}
	mat.Apply(e, set, smp.Uniform(UVScaleRange[0], UVScaleRange[1]))
	return nil
}
