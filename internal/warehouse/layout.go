// Package warehouse builds the static part of a scene: floor, walls and
// the lighting rig.
package warehouse

import (
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
	"github.com/RunnersNum40/Kubric-Pallets/internal/sampling"
)

// WallThickness is the depth of every wall slab, in meters.
const WallThickness = 0.2

// Surfaces is the number of entities BuildLayout adds: the floor and four walls.
const Surfaces = 5

// Sampling bounds for the building, in meters.
var (
	LengthRange = [2]float64{30, 100}
	WidthRange  = [2]float64{20, 70}
	HeightRange = [2]float64{8, 20}
)

// UV tiling bounds for structural surfaces.
var (
	FloorUVRange = [2]float64{100, 300}
	WallUVRange  = [2]float64{50, 150}
)

// Dimensions is the footprint and height of one warehouse.
type Dimensions struct {
	Length float64 `json:"length"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// BuildLayout samples the warehouse dimensions and adds the floor slab and
// the four walls to s, each textured from pool.
func BuildLayout(s *render.Scene, smp *sampling.Sampler, pool []catalog.TextureSet, mat render.MaterialApplier) (Dimensions, error) {
	d := Dimensions{
		Length: smp.Uniform(LengthRange[0], LengthRange[1]),
		Width:  smp.Uniform(WidthRange[0], WidthRange[1]),
		Height: smp.Uniform(HeightRange[0], HeightRange[1]),
	}

	floor := s.Add(render.NewBox("floor", r3.Vector{Z: -0.1}, r3.Vector{X: d.Length, Y: d.Width, Z: 0.1}))
	if err := texture(floor, smp, pool, mat, FloorUVRange); err != nil {
		return d, err
	}

	walls := []struct {
		name string
		pos  r3.Vector
		size r3.Vector
	}{
		{"front_wall", r3.Vector{Y: -d.Width / 2, Z: d.Height / 2}, r3.Vector{X: d.Length, Y: WallThickness, Z: d.Height}},
		{"back_wall", r3.Vector{Y: d.Width / 2, Z: d.Height / 2}, r3.Vector{X: d.Length, Y: WallThickness, Z: d.Height}},
		{"left_wall", r3.Vector{X: -d.Length / 2, Z: d.Height / 2}, r3.Vector{X: WallThickness, Y: d.Width, Z: d.Height}},
		{"right_wall", r3.Vector{X: d.Length / 2, Z: d.Height / 2}, r3.Vector{X: WallThickness, Y: d.Width, Z: d.Height}},
	}
	for _, w := range walls {
		e := s.Add(render.NewBox(w.name, w.pos, w.size))
		if err := texture(e, smp, pool, mat, WallUVRange); err != nil {
			return d, err
		}
	}
	return d, nil
}

func texture(e *render.Entity, smp *sampling.Sampler, pool []catalog.TextureSet, mat render.MaterialApplier, uv [2]float64) error {
	set, err := sampling.Choice(smp, pool)
	if err != nil {
		return errors.Wrapf(err, "texture for %s", e.Name)
	}
	mat.Apply(e, set, smp.Uniform(uv[0], uv[1]))
	return nil
}
