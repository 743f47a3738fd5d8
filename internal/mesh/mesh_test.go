package mesh

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
)

const quadOBJ = `# a unit quad and a triangle
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
vt 0 0
vt 1 0
vt 1 1
vt 0 1
f 1/1 2/2 3/3 4/4
f -4 -3 -1
`

func TestLoadOBJ(t *testing.T) {
	path := filepath.Join(t.TempDir(), "quad.obj")
	require.NoError(t, os.WriteFile(path, []byte(quadOBJ), 0o644))

	m, err := LoadOBJ(path)
	require.NoError(t, err)
	assert.Len(t, m.Verts, 4)
	assert.Len(t, m.UVs, 4)
	require.Len(t, m.Tris, 3)
	assert.Equal(t, Triangle{VI: [3]int{0, 1, 2}, TI: [3]int{0, 1, 2}}, m.Tris[0])
	assert.Equal(t, Triangle{VI: [3]int{0, 2, 3}, TI: [3]int{0, 2, 3}}, m.Tris[1])
	assert.Equal(t, Triangle{VI: [3]int{0, 1, 3}, TI: [3]int{-1, -1, -1}}, m.Tris[2])

	lo, hi := m.Bounds()
	assert.Equal(t, mathutil.Vec3{0, 0, 0}, lo)
	assert.Equal(t, mathutil.Vec3{1, 1, 0}, hi)
}

func TestLoadOBJErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.obj")
	require.NoError(t, os.WriteFile(bad, []byte("v 0 0 0\nf 1 2 3\n"), 0o644))
	_, err := LoadOBJ(bad)
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.obj")
	require.NoError(t, os.WriteFile(empty, []byte("v 0 0 0\n"), 0o644))
	_, err = LoadOBJ(empty)
	assert.Error(t, err)
}

func TestBoxIsClosedUnitCube(t *testing.T) {
	b := Box()
	lo, hi := b.Bounds()
	assert.Equal(t, mathutil.Vec3{-0.5, -0.5, -0.5}, lo)
	assert.Equal(t, mathutil.Vec3{0.5, 0.5, 0.5}, hi)
	assert.Len(t, b.Tris, 12)

	areas := b.FaceAreas()
	for _, dir := range []string{"+X", "-X", "+Y", "-Y", "+Z", "-Z"} {
		assert.InDelta(t, 1.0, areas[dir], 1e-9, dir)
	}
}

func TestCacheFallsBackToBox(t *testing.T) {
	dir := t.TempDir()
	c := NewCache()

	m, proxy, err := c.Load(filepath.Join(dir, "forklift.glb"))
	require.NoError(t, err)
	assert.True(t, proxy)
	assert.Same(t, c.Box(), m)

	objPath := filepath.Join(dir, "quad.obj")
	require.NoError(t, os.WriteFile(objPath, []byte(quadOBJ), 0o644))
	m, proxy, err = c.Load(objPath)
	require.NoError(t, err)
	assert.False(t, proxy)
	again, _, _ := c.Load(objPath)
	assert.Same(t, m, again)

	m, proxy, err = c.Load(filepath.Join(dir, "missing.obj"))
	assert.Error(t, err)
	assert.True(t, proxy)
	assert.Same(t, c.Box(), m)
}
