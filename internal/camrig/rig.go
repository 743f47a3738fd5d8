// Package camrig samples the ring of cameras built around a scene's target.
package camrig

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
	"github.com/RunnersNum40/Kubric-Pallets/internal/sampling"
)

// Rig constants.
const (
	FocalMean      = 5.0
	FocalStdDev    = 2.0
	MinFocalLength = 0.5 // draws below this are redrawn
	HeightJitter   = 0.2
	MinHeight      = 0.1
	Near           = 0.1
	Far            = 100.0
)

// Pose is one camera of the rig.
type Pose struct {
	Index       int
	Position    r3.Vector
	LookAt      r3.Vector
	FocalLength float64
	Near, Far   float64
	Angle       float64 // degrees around the target
	Distance    float64
}

// Entity declares the pose as a perspective camera.
func (p Pose) Entity() *render.Entity {
	return render.NewCamera(fmt.Sprintf("camera_%d", p.Index), p.Position, p.LookAt, p.FocalLength, p.Near, p.Far)
}

// Rig returns numAngles×len(distances) poses aimed at target, angle-major:
// pose i*len(distances)+j sits at angle i·360/numAngles and distance j.
func Rig(target r3.Vector, numAngles int, distances []float64, smp *sampling.Sampler) ([]Pose, error) {
	if numAngles <= 0 {
		return nil, errors.Errorf("camrig: num_angles must be positive, got %d", numAngles)
	}
	if len(distances) == 0 {
		return nil, errors.New("camrig: no distances")
	}
	step := 360 / float64(numAngles)
	poses := make([]Pose, 0, numAngles*len(distances))
	for i := 0; i < numAngles; i++ {
		angle := step * float64(i)
		rad := angle * math.Pi / 180
		for _, d := range distances {
			pos := r3.Vector{
				X: target.X + d*math.Cos(rad),
				Y: target.Y + d*math.Sin(rad),
				Z: math.Max(target.Z+smp.Uniform(-HeightJitter, HeightJitter), MinHeight),
			}
			poses = append(poses, Pose{
				Index:       len(poses),
				Position:    pos,
				LookAt:      target,
				FocalLength: focalLength(smp),
				Near:        Near,
				Far:         Far,
				Angle:       angle,
				Distance:    d,
			})
		}
	}
	return poses, nil
}

func focalLength(smp *sampling.Sampler) float64 {
	for {
		if f := smp.Gauss(FocalMean, FocalStdDev); f >= MinFocalLength {
			return f
		}
	}
}
