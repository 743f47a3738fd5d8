package mathutil

// Mat4 is a 4×4 matrix stored row-major. Used for object and camera poses.
type Mat4 [16]float64

// FromMat3Translation builds a 4×4 affine matrix from a 3×3 rotation and translation.
func FromMat3Translation(r Mat3, t Vec3) Mat4 {
	return Mat4{
		r[0], r[1], r[2], t[0],
		r[3], r[4], r[5], t[1],
		r[6], r[7], r[8], t[2],
		0, 0, 0, 1,
	}
}

// Rotation returns the top-left 3×3 block.
func (m Mat4) Rotation() Mat3 {
	return Mat3{
		m[0], m[1], m[2],
		m[4], m[5], m[6],
		m[8], m[9], m[10],
	}
}

// Translation returns the top-right 3×1 block.
func (m Mat4) Translation() Vec3 {
	return Vec3{m[3], m[7], m[11]}
}

// Rows returns the matrix as nested rows, the layout written to archives.
func (m Mat4) Rows() [4][4]float64 {
	var out [4][4]float64
	for r := 0; r < 4; r++ {
		for c := 0; c < 4; c++ {
			out[r][c] = m[r*4+c]
		}
	}
	return out
}

// Transform builds the homogeneous pose for a position and xyz Euler angles
// in degrees, using the EulerMat3 convention.
func Transform(position Vec3, eulerDeg Vec3) Mat4 {
	r := EulerMat3(Deg2Rad(eulerDeg[0]), Deg2Rad(eulerDeg[1]), Deg2Rad(eulerDeg[2]))
	return FromMat3Translation(r, position)
}
