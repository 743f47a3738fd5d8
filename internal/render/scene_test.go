package render

import (
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
)

func TestSceneBookkeeping(t *testing.T) {
	s := NewScene(64, 48, 0, 1)
	floor := s.Add(NewBox("floor", r3.Vector{Z: -0.1}, r3.Vector{X: 10, Y: 10, Z: 0.1}))
	s.Add(NewDirectionalLight(r3.Vector{Z: 5}, r3.Vector{}, [3]float64{1, 1, 1}, 3))
	s.Add(NewPointLight(r3.Vector{X: 1, Z: 5}, [3]float64{1, 1, 1}, 3))
	obj := s.Add(NewMesh("pallet.obj", "pallet.obj", r3.Vector{}, mathutil.QuatIdentity, r3.Vector{X: 1, Y: 1, Z: 1}))

	assert.Equal(t, 1, floor.ID)
	assert.Equal(t, 4, obj.ID)
	assert.Len(t, s.Lights(), 2)
	assert.Equal(t, []*Entity{obj}, s.Objects())

	stray := NewCamera("cam", r3.Vector{X: 2}, r3.Vector{}, 35, DefaultNear, DefaultFar)
	require.Error(t, s.SetCamera(stray))
	require.Error(t, s.SetCamera(obj))

	cam := s.Add(stray)
	require.NoError(t, s.SetCamera(cam))
	assert.Same(t, cam, s.Camera())
	assert.Len(t, s.Objects(), 1)
}

func TestCameraLooksAtTarget(t *testing.T) {
	cam := NewCamera("cam", r3.Vector{X: 3, Y: 3, Z: 1}, r3.Vector{Z: 1}, 35, DefaultNear, DefaultFar)
	fwd := mathutil.QuatToMat3(cam.Rotation).MulVec3(mathutil.Vec3{0, 0, -1})
	want := mathutil.Vec3{-3, -3, 0}.Normalize()
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want[i], fwd[i], 1e-9)
	}
	assert.Equal(t, DefaultSensorWidth, cam.SensorWidth)
}

func TestMaterialsApply(t *testing.T) {
	e := NewBox("wall", r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1})
	set := catalog.TextureSet{Name: "oak", Color: "oak_color.jpg"}
	Materials{}.Apply(e, set, 120)
	require.NotNil(t, e.Material)
	assert.Equal(t, set, e.Material.Textures)
	assert.Equal(t, 120.0, e.Material.UVScale)
}
