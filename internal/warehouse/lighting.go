package warehouse

import (
	"github.com/golang/geo/r3"

	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
	"github.com/RunnersNum40/Kubric-Pallets/internal/sampling"
)

// Light rig bounds.
const (
	MinLights = 5
	MaxLights = 10
)

// Lighting summarises the light rig added to a scene.
type Lighting struct {
	Ambient   [3]float64
	NumLights int
}

// AddLighting sets the scene's ambient color and adds NumLights lights
// spread over the footprint just under the roof. Light 0 is directional and
// aimed at the origin; the rest are point lights.
func AddLighting(s *render.Scene, smp *sampling.Sampler, d Dimensions) Lighting {
	n := smp.IntRange(MinLights, MaxLights)
	s.Ambient = [3]float64{smp.Uniform(0.5, 1), smp.Uniform(0.5, 1), smp.Uniform(0.5, 1)}

	for i := 0; i < n; i++ {
		pos := r3.Vector{
			X: smp.Uniform(-d.Length/2, d.Length/2),
			Y: smp.Uniform(-d.Width/2, d.Width/2),
			Z: smp.Uniform(d.Height*0.8, d.Height*0.95),
		}
		color := [3]float64{smp.Uniform(0.5, 1), smp.Uniform(0.5, 1), smp.Uniform(0.5, 1)}
		intensity := smp.Uniform(1, 10)
		if i == 0 {
			s.Add(render.NewDirectionalLight(pos, r3.Vector{}, color, intensity))
		} else {
			s.Add(render.NewPointLight(pos, color, intensity))
		}
	}
	return Lighting{Ambient: s.Ambient, NumLights: len(s.Lights())}
}
