package mathutil

import "math"

// RotX returns a 3×3 rotation matrix around the X axis. Angle in radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotY returns a 3×3 rotation matrix around the Y axis.
func RotY(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, 0, s,
		0, 1, 0,
		-s, 0, c,
	}
}

// RotZ returns a 3×3 rotation matrix around the Z axis.
func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// Rad2Deg converts radians to degrees.
func Rad2Deg(r float64) float64 {
	return r * 180 / math.Pi
}

// EulerMat3 composes xyz Euler angles (radians) as Rz(z) @ Ry(y) @ Rx(x).
// Every pose written to disk and every archived transform uses this order.
func EulerMat3(x, y, z float64) Mat3 {
	return Mat3Mul(Mat3Mul(RotZ(z), RotY(y)), RotX(x))
}

// EulerXYZ is the inverse of EulerMat3. Angles are in radians; y lies in
// [-π/2, π/2]. At gimbal lock z is pinned to 0.
func EulerXYZ(m Mat3) Vec3 {
	sy := -m[6]
	if sy > 1 {
		sy = 1
	} else if sy < -1 {
		sy = -1
	}
	y := math.Asin(sy)
	if math.Abs(math.Cos(y)) < 1e-9 {
		return Vec3{math.Atan2(-m[5], m[4]), y, 0}
	}
	return Vec3{math.Atan2(m[7], m[8]), y, math.Atan2(m[3], m[0])}
}

// EulerXYZDegrees is EulerXYZ in degrees.
func EulerXYZDegrees(m Mat3) Vec3 {
	e := EulerXYZ(m)
	return Vec3{Rad2Deg(e[0]), Rad2Deg(e[1]), Rad2Deg(e[2])}
}
