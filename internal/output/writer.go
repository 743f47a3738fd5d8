// Package output encodes a rendered frame into the per-camera image files.
package output

import (
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
	"golang.org/x/image/tiff"

	"github.com/RunnersNum40/Kubric-Pallets/internal/metadata"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
)

// Depth encoding.
const (
	DepthScale      = 500.0 // depth.tiff units per meter
	PreviewMaxDepth = 100.0 // depth_normalized.png clips here
)

type encodeStep struct {
	name string
	fn   func(io.Writer, *render.Frame) error
}

// Writer writes every image for one camera.
type Writer struct {
	WebPPreview bool // also write rgba.webp
}

// WriteFrame writes f into dir, which must exist.
func (w Writer) WriteFrame(dir string, f *render.Frame) error {
	if f == nil || f.RGBA == nil {
		return errors.New("output: empty frame")
	}
	if n := f.Width * f.Height; len(f.Depth) != n || len(f.Segmentation) != n {
		return errors.Errorf("output: frame buffers do not match %dx%d", f.Width, f.Height)
	}
	steps := []encodeStep{
		{metadata.RGBAFile, WriteRGBA},
		{metadata.DepthFile, WriteDepth},
		{metadata.DepthPreviewFile, WriteDepthPreview},
		{metadata.SegmentationFile, WriteSegmentation},
	}
	if w.WebPPreview {
		steps = append(steps, encodeStep{metadata.PreviewFile, WritePreview})
	}
	for _, s := range steps {
		if err := writeFile(filepath.Join(dir, s.name), f, s.fn); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, f *render.Frame, fn func(io.Writer, *render.Frame) error) error {
	out, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, "output: create")
	}
	if err := fn(out, f); err != nil {
		out.Close()
		return errors.Wrapf(err, "output: encode %s", filepath.Base(path))
	}
	return errors.Wrapf(out.Close(), "output: close %s", filepath.Base(path))
}

// WriteRGBA encodes the color buffer as PNG.
func WriteRGBA(w io.Writer, f *render.Frame) error {
	return png.Encode(w, f.RGBA)
}

// WritePreview encodes the color buffer as lossless WebP.
func WritePreview(w io.Writer, f *render.Frame) error {
	return nativewebp.Encode(w, f.RGBA, nil)
}

// WriteDepth encodes depth as a 16-bit grayscale TIFF in units of
// 1/DepthScale meters. Background and anything past the range saturate.
func WriteDepth(w io.Writer, f *render.Frame) error {
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))
	for i, d := range f.Depth {
		v := float64(d) * DepthScale
		switch {
		case math.IsNaN(v) || v < 0:
			v = 0
		case v > math.MaxUint16:
			v = math.MaxUint16
		}
		img.SetGray16(i%f.Width, i/f.Width, color.Gray16{Y: uint16(v + 0.5)})
	}
	return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate})
}

// WriteDepthPreview clips depth to [0, PreviewMaxDepth] and stretches the
// frame's own min..max over the full 16-bit range.
func WriteDepthPreview(w io.Writer, f *render.Frame) error {
	lo, hi := math.Inf(1), math.Inf(-1)
	clipped := make([]float64, len(f.Depth))
	for i, d := range f.Depth {
		v := math.Min(math.Max(float64(d), 0), PreviewMaxDepth)
		if math.IsNaN(v) {
			v = 0
		}
		clipped[i] = v
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	span := hi - lo
	img := image.NewGray16(image.Rect(0, 0, f.Width, f.Height))
	for i, v := range clipped {
		var y uint16
		if span > 0 {
			y = uint16((v-lo)/span*math.MaxUint16 + 0.5)
		}
		img.SetGray16(i%f.Width, i/f.Width, color.Gray16{Y: y})
	}
	return png.Encode(w, img)
}

// WriteSegmentation encodes entity IDs as a paletted PNG. IDs index
// Palette directly, so a scene may hold at most 255 entities.
func WriteSegmentation(w io.Writer, f *render.Frame) error {
	img := image.NewPaletted(image.Rect(0, 0, f.Width, f.Height), Palette)
	for i, id := range f.Segmentation {
		if int(id) >= len(Palette) {
			return errors.Errorf("segmentation id %d exceeds palette", id)
		}
		img.Pix[i] = uint8(id)
	}
	return png.Encode(w, img)
}

// Palette maps segmentation IDs to colors: 0 is black background, the rest
// walk the hue circle by the golden angle so neighbouring IDs contrast.
var Palette = func() color.Palette {
	p := make(color.Palette, 256)
	p[0] = color.RGBA{A: 255}
	for i := 1; i < len(p); i++ {
		h := math.Mod(float64(i)*137.508, 360)
		s := 0.65 + 0.35*float64(i%3)/2
		v := 0.95 - 0.3*float64(i%4)/3
		r, g, b := colorful.Hsv(h, s, v).Clamped().RGB255()
		p[i] = color.RGBA{R: r, G: g, B: b, A: 255}
	}
	return p
}()
