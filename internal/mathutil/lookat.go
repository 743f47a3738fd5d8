package mathutil

import "math"

// WorldUp is +Z, the warehouse vertical.
var WorldUp = Vec3{0, 0, 1}

// LookAt returns the camera-to-world rotation for a camera at eye aimed at
// target. Cameras look down their local -Z with local +Y up.
func LookAt(eye, target Vec3) Mat3 {
	forward := target.Sub(eye).Normalize()
	if forward.Len() == 0 {
		return Mat3Identity()
	}
	up := WorldUp
	if math.Abs(forward.Dot(up)) > 1-1e-9 {
		up = Vec3{0, 1, 0}
	}
	right := forward.Cross(up).Normalize()
	camUp := right.Cross(forward)
	return Mat3FromCols(right, camUp, forward.Scale(-1))
}
