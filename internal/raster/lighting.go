package raster

import (
	"math"

	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
)

type dirLight struct {
	toLight mathutil.Vec3 // unit vector pointing at the light
	color   mathutil.Vec3 // color × intensity
}

type pointLight struct {
	pos   mathutil.Vec3
	color mathutil.Vec3 // color × intensity
}

// Lighting holds the scene's lights in the form the shader consumes.
type Lighting struct {
	Ambient  mathutil.Vec3
	Dirs     []dirLight
	Points   []pointLight
	Direct   float64 // directional light scale
	Point    float64 // point light scale
	Falloff  float64 // point light quadratic attenuation
	SpecInt  float64
	SpecPow  float64
	Exposure float64
	InvGamma float64
}

// NewLighting collects the ambient term and every light entity of s.
func NewLighting(s *render.Scene) Lighting {
	lc := Lighting{
		Ambient:  mathutil.Vec3{s.Ambient[0], s.Ambient[1], s.Ambient[2]}.Scale(0.35),
		Direct:   0.12,
		Point:    0.45,
		Falloff:  0.015,
		SpecInt:  0.45,
		SpecPow:  12.0,
		Exposure: 1.05,
		InvGamma: 1.0 / 2.2,
	}
	for _, e := range s.Lights() {
		c := mathutil.Vec3(e.Color).Scale(e.Intensity)
		pos := mathutil.FromR3(e.Position)
		switch e.Kind {
		case render.KindDirectionalLight:
			d := pos.Sub(mathutil.FromR3(e.LookAt)).Normalize()
			lc.Dirs = append(lc.Dirs, dirLight{toLight: d, color: c})
		case render.KindPointLight:
			lc.Points = append(lc.Points, pointLight{pos: pos, color: c})
		}
	}
	return lc
}

// Shade returns the per-channel lighting multiplier for a face with the
// given world normal and centroid. Faces are lit from both sides.
// specScale in [0,1] weakens highlights on rough surfaces.
func (lc *Lighting) Shade(normal, at, eye mathutil.Vec3, specScale float64) mathutil.Vec3 {
	shade := lc.Ambient
	view := eye.Sub(at).Normalize()
	for _, d := range lc.Dirs {
		ndl := math.Abs(normal.Dot(d.toLight))
		half := d.toLight.Add(view).Normalize()
		ndh := math.Abs(normal.Dot(half))
		spec := math.Pow(ndh, lc.SpecPow) * lc.SpecInt * specScale
		shade = shade.Add(d.color.Scale(lc.Direct * (ndl + spec)))
	}
	for _, p := range lc.Points {
		toLight := p.pos.Sub(at)
		dist2 := toLight.Dot(toLight)
		ndl := math.Abs(normal.Dot(toLight.Normalize()))
		atten := 1.0 / (1.0 + lc.Falloff*dist2)
		shade = shade.Add(p.color.Scale(lc.Point * ndl * atten))
	}
	return shade
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
