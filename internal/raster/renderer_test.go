package raster

import (
	"context"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
)

func boxScene(t *testing.T) (*render.Scene, *render.Entity) {
	t.Helper()
	s := render.NewScene(64, 48, 0, 1)
	s.Ambient = [3]float64{0.8, 0.8, 0.8}
	box := s.Add(render.NewBox("crate", r3.Vector{}, r3.Vector{X: 1, Y: 1, Z: 1}))
	s.Add(render.NewPointLight(r3.Vector{X: 4, Z: 3}, [3]float64{1, 1, 1}, 5))
	cam := s.Add(render.NewCamera("cam", r3.Vector{X: 5}, r3.Vector{}, 35, render.DefaultNear, render.DefaultFar))
	require.NoError(t, s.SetCamera(cam))
	return s, box
}

func TestRenderBoxInFrontOfCamera(t *testing.T) {
	for _, ss := range []int{1, 2} {
		s, box := boxScene(t)
		r := New(Options{Supersample: ss}, zaptest.NewLogger(t).Sugar())

		f, err := r.Render(context.Background(), s)
		require.NoError(t, err)
		require.Equal(t, 64, f.Width)
		require.Equal(t, 48, f.Height)
		require.Equal(t, 64*48, len(f.Depth))
		require.Equal(t, 64*48, len(f.Segmentation))
		assert.Equal(t, 64, f.RGBA.Bounds().Dx())

		centre := 24*64 + 32
		assert.Equal(t, uint16(box.ID), f.Segmentation[centre], "supersample %d", ss)
		assert.InDelta(t, 4.5, f.Depth[centre], 1e-3)
		assert.Equal(t, uint8(255), f.RGBA.Pix[centre*4+3])

		assert.Equal(t, uint16(0), f.Segmentation[0])
		assert.True(t, math.IsInf(float64(f.Depth[0]), 1))
		assert.Equal(t, uint8(0), f.RGBA.Pix[3])
	}
}

func TestRenderRotatedMeshUsesProxyBox(t *testing.T) {
	s := render.NewScene(32, 32, 0, 1)
	obj := s.Add(render.NewMesh("pallet", "missing/pallet.glb", r3.Vector{},
		mathutil.AxisAngle(mathutil.WorldUp, math.Pi/4), r3.Vector{X: 1, Y: 1, Z: 1}))
	cam := s.Add(render.NewCamera("cam", r3.Vector{X: 4}, r3.Vector{}, 35, render.DefaultNear, render.DefaultFar))
	require.NoError(t, s.SetCamera(cam))

	f, err := New(Options{}, zaptest.NewLogger(t).Sugar()).Render(context.Background(), s)
	require.NoError(t, err)
	centre := 16*32 + 16
	assert.Equal(t, uint16(obj.ID), f.Segmentation[centre])
	// The vertical edge of the rotated cube faces the camera.
	assert.InDelta(t, 4-math.Sqrt2/2, f.Depth[centre], 0.1)
}

func TestRenderErrors(t *testing.T) {
	r := New(Options{}, zaptest.NewLogger(t).Sugar())

	_, err := r.Render(context.Background(), render.NewScene(8, 8, 0, 1))
	require.Error(t, err)

	s, _ := boxScene(t)
	s.Camera().FocalLength = -1
	_, err = r.Render(context.Background(), s)
	require.Error(t, err)

	s, _ = boxScene(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Render(ctx, s)
	require.ErrorIs(t, err, context.Canceled)
}

func TestClipNear(t *testing.T) {
	poly := []clipVertex{
		{pos: mathutil.Vec3{0, 0, -2}, uv: [2]float64{0, 0}},
		{pos: mathutil.Vec3{1, 0, 0}, uv: [2]float64{1, 0}},
		{pos: mathutil.Vec3{0, 1, -2}, uv: [2]float64{0, 1}},
	}
	out := clipNear(poly, 1)
	require.Len(t, out, 4)
	for _, v := range out {
		assert.GreaterOrEqual(t, depthOf(v), 1-1e-9)
	}

	behind := []clipVertex{
		{pos: mathutil.Vec3{0, 0, 1}},
		{pos: mathutil.Vec3{1, 0, 1}},
		{pos: mathutil.Vec3{0, 1, 1}},
	}
	assert.Empty(t, clipNear(behind, 0.1))
}
