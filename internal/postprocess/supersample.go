// Package postprocess holds image filters applied to rendered frames.
package postprocess

import (
	"image"

	"golang.org/x/image/draw"
)

// Downsample scales a supersampled frame down to w×h. Filtering happens on
// premultiplied colour so transparent background does not bleed into edges.
// A frame that already fits is returned as is.
func Downsample(img *image.NRGBA, w, h int) *image.NRGBA {
	b := img.Bounds()
	if b.Dx() <= w && b.Dy() <= h {
		return img
	}

	src := premultiply(img)
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return unpremultiply(dst)
}

func premultiply(img *image.NRGBA) *image.RGBA {
	b := img.Bounds()
	out := image.NewRGBA(b)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		in := img.Pix[img.PixOffset(b.Min.X, y):img.PixOffset(b.Max.X-1, y)+4]
		px := out.Pix[out.PixOffset(b.Min.X, y):out.PixOffset(b.Max.X-1, y)+4]
		for i := 0; i < len(in); i += 4 {
			a := float64(in[i+3]) / 255
			for c := 0; c < 3; c++ {
				px[i+c] = uint8(float64(in[i+c])*a + 0.5)
			}
			px[i+3] = in[i+3]
		}
	}
	return out
}

func unpremultiply(img *image.RGBA) *image.NRGBA {
	out := image.NewNRGBA(img.Bounds())
	for i := 0; i+3 < len(img.Pix); i += 4 {
		a := img.Pix[i+3]
		out.Pix[i+3] = a
		// Alpha of one leaves colour too quantised to recover.
		if a <= 1 {
			continue
		}
		inv := 255 / float64(a)
		for c := 0; c < 3; c++ {
			out.Pix[i+c] = clamp8(float64(img.Pix[i+c]) * inv)
		}
	}
	return out
}

func clamp8(v float64) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}
