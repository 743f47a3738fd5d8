package raster

import (
	"github.com/pkg/errors"

	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
)

// view maps world points into camera space and onto the pixel grid.
type view struct {
	eye        mathutil.Vec3
	worldToCam mathutil.Mat3
	fx         float64 // focal length in pixels
	cx, cy     float64
	near, far  float64
}

func newView(cam *render.Entity, width, height int) (view, error) {
	if cam.FocalLength <= 0 {
		return view{}, errors.Errorf("raster: camera %q has non-positive focal length %g", cam.Name, cam.FocalLength)
	}
	sensor := cam.SensorWidth
	if sensor <= 0 {
		sensor = render.DefaultSensorWidth
	}
	near, far := cam.Near, cam.Far
	if near <= 0 {
		near = render.DefaultNear
	}
	if far <= near {
		far = render.DefaultFar
	}
	return view{
		eye:        mathutil.FromR3(cam.Position),
		worldToCam: mathutil.QuatToMat3(cam.Rotation).Transpose(),
		fx:         cam.FocalLength / sensor * float64(width),
		cx:         float64(width) / 2,
		cy:         float64(height) / 2,
		near:       near,
		far:        far,
	}, nil
}

// toCamera returns p in camera space; visible points have negative z.
func (v *view) toCamera(p mathutil.Vec3) mathutil.Vec3 {
	return v.worldToCam.MulVec3(p.Sub(v.eye))
}

// clipVertex is a camera-space vertex with its texcoord.
type clipVertex struct {
	pos mathutil.Vec3
	uv  [2]float64
}

func depthOf(c clipVertex) float64 { return -c.pos[2] }

// clipNear clips a convex polygon against the near plane, keeping the part
// at depth >= near.
func clipNear(poly []clipVertex, near float64) []clipVertex {
	var out []clipVertex
	for i := range poly {
		a := poly[i]
		b := poly[(i+1)%len(poly)]
		da, db := depthOf(a)-near, depthOf(b)-near
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, clipVertex{
				pos: a.pos.Add(b.pos.Sub(a.pos).Scale(t)),
				uv: [2]float64{
					a.uv[0] + (b.uv[0]-a.uv[0])*t,
					a.uv[1] + (b.uv[1]-a.uv[1])*t,
				},
			})
		}
	}
	return out
}

// project converts a clipped vertex to screen space with perspective-correct
// attributes.
func (v *view) project(c clipVertex) screenVertex {
	d := depthOf(c)
	invZ := 1 / d
	return screenVertex{
		x:    v.cx + v.fx*c.pos[0]*invZ,
		y:    v.cy - v.fx*c.pos[1]*invZ,
		invZ: invZ,
		uOZ:  c.uv[0] * invZ,
		vOZ:  c.uv[1] * invZ,
	}
}
