package mathutil

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// QuatIdentity is the rotation that does nothing.
var QuatIdentity = quat.Number{Real: 1}

// AxisAngle returns the unit quaternion rotating by angle (radians) about axis.
func AxisAngle(axis Vec3, angle float64) quat.Number {
	a := axis.Normalize()
	s := math.Sin(angle / 2)
	return quat.Number{Real: math.Cos(angle / 2), Imag: a[0] * s, Jmag: a[1] * s, Kmag: a[2] * s}
}

// QuatToMat3 converts a unit quaternion to a 3×3 rotation matrix.
func QuatToMat3(q quat.Number) Mat3 {
	x, y, z, w := q.Imag, q.Jmag, q.Kmag, q.Real
	xx, yy, zz := x*x, y*y, z*z
	xy, xz, yz := x*y, x*z, y*z
	wx, wy, wz := w*x, w*y, w*z

	return Mat3{
		1 - 2*(yy+zz), 2 * (xy - wz), 2 * (xz + wy),
		2 * (xy + wz), 1 - 2*(xx+zz), 2 * (yz - wx),
		2 * (xz - wy), 2 * (yz + wx), 1 - 2*(xx+yy),
	}
}

// Mat3ToQuat converts a rotation matrix to a unit quaternion with a
// non-negative real part.
func Mat3ToQuat(m Mat3) quat.Number {
	var q quat.Number
	tr := m[0] + m[4] + m[8]
	switch {
	case tr > 0:
		s := math.Sqrt(tr+1) * 2
		q = quat.Number{Real: s / 4, Imag: (m[7] - m[5]) / s, Jmag: (m[2] - m[6]) / s, Kmag: (m[3] - m[1]) / s}
	case m[0] > m[4] && m[0] > m[8]:
		s := math.Sqrt(1+m[0]-m[4]-m[8]) * 2
		q = quat.Number{Real: (m[7] - m[5]) / s, Imag: s / 4, Jmag: (m[1] + m[3]) / s, Kmag: (m[2] + m[6]) / s}
	case m[4] > m[8]:
		s := math.Sqrt(1+m[4]-m[0]-m[8]) * 2
		q = quat.Number{Real: (m[2] - m[6]) / s, Imag: (m[1] + m[3]) / s, Jmag: s / 4, Kmag: (m[5] + m[7]) / s}
	default:
		s := math.Sqrt(1+m[8]-m[0]-m[4]) * 2
		q = quat.Number{Real: (m[3] - m[1]) / s, Imag: (m[2] + m[6]) / s, Jmag: (m[5] + m[7]) / s, Kmag: s / 4}
	}
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	return normalizeQuat(q)
}

// QuatToEulerDegrees converts a rotation to xyz Euler angles in degrees.
func QuatToEulerDegrees(q quat.Number) Vec3 {
	return EulerXYZDegrees(QuatToMat3(q))
}

// RelativeOrientation returns the rotation taking the from frame onto the to
// frame, inv(from)·to, as xyz Euler degrees.
func RelativeOrientation(from, to quat.Number) Vec3 {
	rel := quat.Mul(quat.Conj(normalizeQuat(from)), normalizeQuat(to))
	return QuatToEulerDegrees(rel)
}

func normalizeQuat(q quat.Number) quat.Number {
	n := quat.Abs(q)
	if n < 1e-12 {
		return QuatIdentity
	}
	return quat.Scale(1/n, q)
}
