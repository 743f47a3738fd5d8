// Package mesh loads the geometry behind mesh-object entities.
package mesh

import (
	"math"

	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
)

// Triangle holds index triples into the vertex and texcoord arrays.
// A TI entry of -1 means the corner has no texcoord.
type Triangle struct {
	VI [3]int
	TI [3]int
}

// Mesh holds triangulated geometry in model space.
type Mesh struct {
	Verts []mathutil.Vec3
	UVs   [][2]float64
	Tris  []Triangle
}

// Bounds returns the axis-aligned bounding box of the vertices.
func (m *Mesh) Bounds() (lo, hi mathutil.Vec3) {
	lo = mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi = mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for _, v := range m.Verts {
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], v[k])
			hi[k] = math.Max(hi[k], v[k])
		}
	}
	return lo, hi
}

// Box returns a unit cube centred on the origin (extent ±0.5) with each
// face mapped to the full [0,1] UV square.
func Box() *Mesh {
	m := &Mesh{
		UVs: [][2]float64{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
	}
	faces := []struct{ normal, u, v mathutil.Vec3 }{
		{mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 1, 0}, mathutil.Vec3{0, 0, 1}},
		{mathutil.Vec3{-1, 0, 0}, mathutil.Vec3{0, -1, 0}, mathutil.Vec3{0, 0, 1}},
		{mathutil.Vec3{0, 1, 0}, mathutil.Vec3{-1, 0, 0}, mathutil.Vec3{0, 0, 1}},
		{mathutil.Vec3{0, -1, 0}, mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 0, 1}},
		{mathutil.Vec3{0, 0, 1}, mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, 1, 0}},
		{mathutil.Vec3{0, 0, -1}, mathutil.Vec3{1, 0, 0}, mathutil.Vec3{0, -1, 0}},
	}
	for _, f := range faces {
		c := f.normal.Scale(0.5)
		u, v := f.u.Scale(0.5), f.v.Scale(0.5)
		base := len(m.Verts)
		m.Verts = append(m.Verts,
			c.Sub(u).Sub(v),
			c.Add(u).Sub(v),
			c.Add(u).Add(v),
			c.Sub(u).Add(v),
		)
		m.Tris = append(m.Tris,
			Triangle{VI: [3]int{base, base + 1, base + 2}, TI: [3]int{0, 1, 2}},
			Triangle{VI: [3]int{base, base + 2, base + 3}, TI: [3]int{0, 2, 3}},
		)
	}
	return m
}

// FaceAreas sums triangle area by dominant normal direction, using the
// labels +X, -X, +Y, -Y, +Z and -Z.
func (m *Mesh) FaceAreas() map[string]float64 {
	areas := make(map[string]float64)
	for _, tri := range m.Tris {
		v0, v1, v2 := m.Verts[tri.VI[0]], m.Verts[tri.VI[1]], m.Verts[tri.VI[2]]
		n := v1.Sub(v0).Cross(v2.Sub(v0))
		area := 0.5 * n.Len()
		ax, ay, az := math.Abs(n[0]), math.Abs(n[1]), math.Abs(n[2])
		var dir string
		switch {
		case ax >= ay && ax >= az:
			dir = signed("X", n[0])
		case ay >= ax && ay >= az:
			dir = signed("Y", n[1])
		default:
			dir = signed("Z", n[2])
		}
		areas[dir] += area
	}
	return areas
}

func signed(axis string, v float64) string {
	if v > 0 {
		return "+" + axis
	}
	return "-" + axis
}
