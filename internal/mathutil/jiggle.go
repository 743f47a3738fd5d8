package mathutil

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// JiggleRange bounds each per-axis perturbation, in radians.
const JiggleRange = 0.05

// Uniformer draws uniform floats in [lo, hi).
type Uniformer interface {
	Uniform(lo, hi float64) float64
}

// UprightToScene stands assets authored Y-up onto the Z-up floor: 90° about X.
var UprightToScene = AxisAngle(Vec3{1, 0, 0}, math.Pi/2)

// JiggleRotation returns UprightToScene·jx·jy·jz, where each factor is a
// uniform perturbation about the local X, Y and Z axes, drawn in that order.
func JiggleRotation(u Uniformer) quat.Number {
	jx := AxisAngle(Vec3{1, 0, 0}, u.Uniform(-JiggleRange, JiggleRange))
	jy := AxisAngle(Vec3{0, 1, 0}, u.Uniform(-JiggleRange, JiggleRange))
	jz := AxisAngle(Vec3{0, 0, 1}, u.Uniform(-JiggleRange, JiggleRange))
	return quat.Mul(quat.Mul(quat.Mul(UprightToScene, jx), jy), jz)
}
