package catalog

import (
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/ftrvxmtrx/tga"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))
}

func writePNG(t *testing.T, path string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for i := range img.Pix {
		img.Pix[i] = 200
	}
	img.Set(0, 0, color.NRGBA{R: 10, G: 20, B: 30, A: 255})
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestRoleOf(t *testing.T) {
	cases := []struct {
		name string
		role Role
		ok   bool
	}{
		{"pallet01_color.jpg", RoleColor, true},
		{"Planks_ALBEDO.png", RoleColor, true},
		{"steel_Normal.png", RoleNormal, true},
		{"steel_roughness.jpg", RoleRoughness, true},
		{"steel_metallic.jpg", 0, false},
		{"ao.png", 0, false},
	}
	for _, tc := range cases {
		role, ok := RoleOf(tc.name)
		assert.Equal(t, tc.ok, ok, tc.name)
		if tc.ok {
			assert.Equal(t, tc.role, role, tc.name)
		}
	}
}

func TestDiscoverTexturesGroupsByPrefix(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "pallet01_color.jpg"))
	touch(t, filepath.Join(dir, "pallet01_normal.jpg"))
	touch(t, filepath.Join(dir, "sub", "rack02_roughness.png"))
	touch(t, filepath.Join(dir, "rack02_height.png"))
	touch(t, filepath.Join(dir, "readme.txt"))

	sets := DiscoverTextures(zaptest.NewLogger(t).Sugar(), dir)
	require.Len(t, sets, 2)
	assert.Equal(t, TextureSet{
		Name:   "pallet01",
		Color:  filepath.Join(dir, "pallet01_color.jpg"),
		Normal: filepath.Join(dir, "pallet01_normal.jpg"),
	}, sets[0])
	assert.Equal(t, TextureSet{
		Name:      "rack02",
		Roughness: filepath.Join(dir, "sub", "rack02_roughness.png"),
	}, sets[1])
}

func TestDiscoverMissingPaths(t *testing.T) {
	logger := zaptest.NewLogger(t).Sugar()
	missing := filepath.Join(t.TempDir(), "nope")
	assert.Empty(t, DiscoverAssets(logger, missing, AssetExtensions))
	assert.Empty(t, DiscoverTextures(logger, missing))
	assert.Empty(t, DiscoverTextures(logger, t.TempDir()))
}

func TestDiscoverAssetsFiltersExtensions(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.OBJ"))
	touch(t, filepath.Join(dir, "nested", "b.glb"))
	touch(t, filepath.Join(dir, "c.fbx"))
	touch(t, filepath.Join(dir, "d.blend"))

	got := DiscoverAssets(zaptest.NewLogger(t).Sugar(), dir, AssetExtensions)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.OBJ"),
		filepath.Join(dir, "c.fbx"),
		filepath.Join(dir, "nested", "b.glb"),
	}, got)
}

func TestBuildAndValidate(t *testing.T) {
	root := t.TempDir()
	logger := zaptest.NewLogger(t).Sugar()

	err := Build(logger, root).Validate()
	require.ErrorIs(t, err, ErrEmptyCategory)
	assert.Contains(t, err.Error(), "assets/pallet")
	assert.Contains(t, err.Error(), "textures/wood")

	for _, name := range AssetCategories {
		touch(t, filepath.Join(root, name, name+".glb"))
	}
	touch(t, filepath.Join(root, Wood, "oak_color.jpg"))
	err = Build(logger, root).Validate()
	require.ErrorIs(t, err, ErrEmptyCategory)
	assert.Contains(t, err.Error(), "textures/metal+plastic")
	assert.NotContains(t, err.Error(), "structural")

	touch(t, filepath.Join(root, Plastic, "pvc_color.jpg"))
	c := Build(logger, root)
	require.NoError(t, c.Validate())
	assert.Len(t, c.StructuralPool(), 2)
	assert.Equal(t, "pvc", c.Pool(Metal, Plastic)[0].Name)
}

func TestCacheResolve(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "big_color.png")
	writePNG(t, path, 64, 32)

	c := NewCache(16, zaptest.NewLogger(t).Sugar())
	img := c.Resolve(path)
	require.NotNil(t, img)
	assert.Equal(t, 16, img.Bounds().Dx())
	assert.Equal(t, 8, img.Bounds().Dy())
	assert.Same(t, img, c.Resolve(path))

	assert.Nil(t, c.Resolve(filepath.Join(dir, "missing.png")))
	assert.Nil(t, c.Resolve(""))
	assert.Equal(t, 2, c.Len())
}

func writeImage(t *testing.T, path string, encode func(io.Writer, image.Image) error) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, encode(f, img))
}

func TestLoadTextureFormats(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]func(io.Writer, image.Image) error{
		"red_color.png": png.Encode,
		"red_color.JPG": func(w io.Writer, m image.Image) error { return jpeg.Encode(w, m, &jpeg.Options{Quality: 100}) },
		"red_color.tga": tga.Encode,
	}
	for name, encode := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			writeImage(t, path, encode)

			img, err := LoadTexture(path)
			require.NoError(t, err)
			assert.Equal(t, 4, img.Bounds().Dx())
			assert.Equal(t, 4, img.Bounds().Dy())
			c := img.NRGBAAt(2, 2)
			assert.InDelta(t, 200, int(c.R), 8)
			assert.InDelta(t, 40, int(c.G), 8)
			assert.Equal(t, uint8(255), c.A)
		})
	}

	_, err := LoadTexture(filepath.Join(dir, "red_color.bmp"))
	assert.Error(t, err)
}
