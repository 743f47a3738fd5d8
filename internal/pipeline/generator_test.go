package pipeline

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/RunnersNum40/Kubric-Pallets/internal/batch"
	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
	"github.com/RunnersNum40/Kubric-Pallets/internal/metadata"
	"github.com/RunnersNum40/Kubric-Pallets/internal/raster"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
	"github.com/RunnersNum40/Kubric-Pallets/internal/scatter"
)

type fakeRenderer struct {
	calls []string
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, s *render.Scene) (*render.Frame, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.calls = append(f.calls, s.Camera().Name)
	n := s.Width * s.Height
	depth := make([]float32, n)
	for i := range depth {
		depth[i] = float32(1 + i%7)
	}
	return &render.Frame{
		Width:        s.Width,
		Height:       s.Height,
		RGBA:         image.NewNRGBA(image.Rect(0, 0, s.Width, s.Height)),
		Depth:        depth,
		Segmentation: make([]uint16, n),
	}, nil
}

func testCatalog() *catalog.Catalog {
	return &catalog.Catalog{
		Assets: map[string][]string{
			catalog.Pallet:   {"assets/pallet/euro.obj", "assets/pallet/block.glb"},
			catalog.Rack:     {"assets/rack/rack.obj"},
			catalog.Forklift: {"assets/forklift/lift.fbx"},
		},
		Textures: map[string][]catalog.TextureSet{
			catalog.Wood:    {{Name: "oak", Color: "assets/wood/oak_color.jpg"}},
			catalog.Metal:   {{Name: "steel", Roughness: "assets/metal/steel_roughness.png"}},
			catalog.Plastic: {{Name: "hdpe", Normal: "assets/plastic/hdpe_normal.png"}},
			catalog.Floor:   {{Name: "concrete", Color: "assets/floor/concrete_color.jpg"}},
		},
	}
}

func testOptions(dir string) Options {
	return Options{
		OutputDir: dir,
		NumAngles: 4,
		Distances: []float64{0.8, 1.5},
		Width:     16,
		Height:    12,
		Seed:      99,
		Ranges: scatter.Ranges{
			catalog.Rack:     {Min: 2, Max: 4},
			catalog.Forklift: {Min: 1, Max: 2},
			catalog.Pallet:   {Min: 1, Max: 3},
		},
	}
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	r := &fakeRenderer{}
	g := NewGenerator(testCatalog(), r, testOptions(dir), zaptest.NewLogger(t).Sugar())
	require.NoError(t, g.Generate(context.Background(), 3))

	sceneDir := filepath.Join(dir, "scene_3")
	doc, err := metadata.ReadScene(filepath.Join(sceneDir, metadata.FileName))
	require.NoError(t, err)
	assert.Equal(t, 3, doc.SceneIndex)
	assert.GreaterOrEqual(t, doc.Lighting.NumLights, 5)
	assert.LessOrEqual(t, doc.Lighting.NumLights, 10)
	assert.GreaterOrEqual(t, len(doc.Objects), 2+1+1+1)
	assert.LessOrEqual(t, len(doc.Objects), 4+2+3+1)
	target := doc.Objects[len(doc.Objects)-1]
	assert.True(t, strings.HasPrefix(target.Name, scatter.TargetPrefix))
	for _, o := range doc.Objects {
		assert.NotContains(t, []string{"floor", "front_wall", "back_wall", "left_wall", "right_wall"}, o.Name)
	}

	require.Len(t, r.calls, 8)
	for j := 0; j < 8; j++ {
		camDir := filepath.Join(sceneDir, metadata.CameraDir(j))
		for _, name := range []string{metadata.RGBAFile, metadata.DepthFile, metadata.DepthPreviewFile, metadata.SegmentationFile} {
			assert.FileExists(t, filepath.Join(camDir, name))
		}
		cam, err := metadata.ReadCamera(filepath.Join(camDir, metadata.FileName))
		require.NoError(t, err)
		assert.Equal(t, j, cam.CameraIndex)
		assert.Equal(t, fmt.Sprintf("scene_3/cam_%d/rgba.png", j), cam.RGBAPath)
		assert.GreaterOrEqual(t, cam.Position[2], 0.1)
		for k := 0; k < 3; k++ {
			assert.InDelta(t, target.Position[k]-cam.Position[k], cam.RelativePosition[k], 1e-9)
		}
		planar := math.Hypot(cam.RelativePosition[0], cam.RelativePosition[1])
		assert.InDelta(t, []float64{0.8, 1.5}[j%2], planar, 1e-9)
	}
}

func TestGenerateDeterministic(t *testing.T) {
	read := func(dir string, rel ...string) string {
		b, err := os.ReadFile(filepath.Join(append([]string{dir}, rel...)...))
		require.NoError(t, err)
		return string(b)
	}
	a, b := t.TempDir(), t.TempDir()
	for _, dir := range []string{a, b} {
		g := NewGenerator(testCatalog(), &fakeRenderer{}, testOptions(dir), zaptest.NewLogger(t).Sugar())
		require.NoError(t, g.Generate(context.Background(), 5))
	}
	assert.Equal(t, read(a, "scene_5", metadata.FileName), read(b, "scene_5", metadata.FileName))
	assert.Equal(t, read(a, "scene_5", "cam_7", metadata.FileName), read(b, "scene_5", "cam_7", metadata.FileName))

	g := NewGenerator(testCatalog(), &fakeRenderer{}, testOptions(a), zaptest.NewLogger(t).Sugar())
	require.NoError(t, g.Generate(context.Background(), 6))
	five, err := metadata.ReadScene(filepath.Join(a, "scene_5", metadata.FileName))
	require.NoError(t, err)
	six, err := metadata.ReadScene(filepath.Join(a, "scene_6", metadata.FileName))
	require.NoError(t, err)
	assert.NotEqual(t, five.Dimensions, six.Dimensions)
}

func TestGenerateStageOrder(t *testing.T) {
	var seen []Stage
	opts := testOptions(t.TempDir())
	opts.OnStage = func(_ int, s Stage) error {
		seen = append(seen, s)
		return nil
	}
	g := NewGenerator(testCatalog(), &fakeRenderer{}, opts, zaptest.NewLogger(t).Sugar())
	require.NoError(t, g.Generate(context.Background(), 0))
	assert.Equal(t, []Stage{
		StageBuildLayout, StageAddLighting, StageScatterObjects, StagePlaceTarget,
		StageWriteSceneMetadata, StageRigCameras, StageRenderEachCamera, StageDone,
	}, seen)
}

func TestGenerateFailures(t *testing.T) {
	boom := errors.New("boom")

	dir := t.TempDir()
	opts := testOptions(dir)
	opts.OnStage = func(_ int, s Stage) error {
		if s == StageScatterObjects {
			return boom
		}
		return nil
	}
	g := NewGenerator(testCatalog(), &fakeRenderer{}, opts, zaptest.NewLogger(t).Sugar())
	err := g.Generate(context.Background(), 1)
	require.ErrorIs(t, err, boom)
	assert.NoDirExists(t, filepath.Join(dir, "scene_1"))

	g = NewGenerator(testCatalog(), &fakeRenderer{err: boom}, testOptions(dir), zaptest.NewLogger(t).Sugar())
	require.ErrorIs(t, g.Generate(context.Background(), 2), boom)
	assert.FileExists(t, filepath.Join(dir, "scene_2", metadata.FileName))

	cat := testCatalog()
	cat.Assets[catalog.Forklift] = nil
	g = NewGenerator(cat, &fakeRenderer{}, testOptions(dir), zaptest.NewLogger(t).Sugar())
	require.Error(t, g.Generate(context.Background(), 4))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g = NewGenerator(testCatalog(), &fakeRenderer{}, testOptions(dir), zaptest.NewLogger(t).Sugar())
	require.ErrorIs(t, g.Generate(ctx, 5), context.Canceled)
}

func TestGenerateWithRaster(t *testing.T) {
	dir := t.TempDir()
	logger := zaptest.NewLogger(t).Sugar()
	opts := testOptions(dir)
	opts.NumAngles = 2
	opts.Distances = []float64{1.2}
	g := NewGenerator(testCatalog(), raster.New(raster.Options{}, logger), opts, logger)
	require.NoError(t, g.Generate(context.Background(), 0))

	for j := 0; j < 2; j++ {
		assert.FileExists(t, filepath.Join(dir, "scene_0", metadata.CameraDir(j), metadata.SegmentationFile))
	}
}

func writeTexture(t *testing.T, path string, c color.NRGBA) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

// texturedCatalog mirrors testCatalog with every texture set backed by pure
// blue color maps, flat normal maps and mid-grey roughness maps on disk.
func texturedCatalog(t *testing.T) *catalog.Catalog {
	root := t.TempDir()
	cat := testCatalog()
	for category, sets := range cat.Textures {
		for i, set := range sets {
			base := filepath.Join(root, category, set.Name)
			sets[i] = catalog.TextureSet{
				Name:      set.Name,
				Color:     base + "_color.png",
				Normal:    base + "_normal.png",
				Roughness: base + "_roughness.png",
			}
			writeTexture(t, sets[i].Color, color.NRGBA{B: 255, A: 255})
			writeTexture(t, sets[i].Normal, color.NRGBA{R: 128, G: 128, B: 255, A: 255})
			writeTexture(t, sets[i].Roughness, color.NRGBA{R: 128, G: 128, B: 128, A: 255})
		}
	}
	return cat
}

func TestGenerateWithRasterTextures(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	frame := func(cat *catalog.Catalog) []color.NRGBA {
		dir := t.TempDir()
		opts := testOptions(dir)
		opts.NumAngles = 2
		opts.Distances = []float64{1.2}
		g := NewGenerator(cat, raster.New(raster.Options{}, logger), opts, logger)
		require.NoError(t, g.Generate(context.Background(), 0))

		f, err := os.Open(filepath.Join(dir, "scene_0", metadata.CameraDir(0), metadata.RGBAFile))
		require.NoError(t, err)
		defer f.Close()
		img, err := png.Decode(f)
		require.NoError(t, err)
		var opaque []color.NRGBA
		b := img.Bounds()
		for y := b.Min.Y; y < b.Max.Y; y++ {
			for x := b.Min.X; x < b.Max.X; x++ {
				c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
				if c.A == 255 {
					opaque = append(opaque, c)
				}
			}
		}
		return opaque
	}

	plain := frame(testCatalog())
	require.NotEmpty(t, plain)
	lit := false
	for _, c := range plain {
		lit = lit || c.R > 0
	}
	assert.True(t, lit, "untextured surfaces use their base colors")

	textured := frame(texturedCatalog(t))
	require.NotEmpty(t, textured)
	blue := false
	for _, c := range textured {
		assert.Zero(t, c.R)
		assert.Zero(t, c.G)
		blue = blue || c.B > 0
	}
	assert.True(t, blue)
}

func TestBatchIsolatesFailedScene(t *testing.T) {
	dir := t.TempDir()
	logger := zaptest.NewLogger(t).Sugar()
	boom := errors.New("boom")
	opts := testOptions(dir)
	opts.OnStage = func(scene int, s Stage) error {
		if scene == 1 && s == StageRenderEachCamera {
			return boom
		}
		return nil
	}
	factory := func(int) (batch.SceneGenerator, error) {
		return NewGenerator(testCatalog(), &fakeRenderer{}, opts, logger), nil
	}

	summary := batch.Run(context.Background(), batch.Config{NumScenes: 3, Workers: 2}, factory, logger)
	failed := summary.Failed()
	require.Len(t, failed, 1)
	assert.Equal(t, 1, failed[0].SceneIndex)
	assert.ErrorIs(t, failed[0].Err, boom)
	assert.Equal(t, 2, summary.Succeeded())
	assert.NoDirExists(t, filepath.Join(dir, "scene_1", metadata.CameraDir(0)))

	for _, i := range []int{0, 2} {
		sceneDir := filepath.Join(dir, metadata.SceneDir(i))
		doc, err := metadata.ReadScene(filepath.Join(sceneDir, metadata.FileName))
		require.NoError(t, err)
		assert.Equal(t, i, doc.SceneIndex)
		for j := 0; j < 8; j++ {
			camDir := filepath.Join(sceneDir, metadata.CameraDir(j))
			cam, err := metadata.ReadCamera(filepath.Join(camDir, metadata.FileName))
			require.NoError(t, err)
			assert.Equal(t, j, cam.CameraIndex)
			for _, name := range []string{metadata.RGBAFile, metadata.DepthFile, metadata.DepthPreviewFile, metadata.SegmentationFile} {
				assert.FileExists(t, filepath.Join(camDir, name))
			}
		}
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "scatter_objects", StageScatterObjects.String())
	assert.Equal(t, "unknown", Stage(42).String())
}
