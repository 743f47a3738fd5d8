package raster

import (
	"image"
	"math"

	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
)

// screenVertex carries 1/depth and texcoords divided by depth so they can be
// interpolated linearly in screen space.
type screenVertex struct {
	x, y     float64
	invZ     float64
	uOZ, vOZ float64
}

// surface is everything the pixel loop needs about the face being drawn.
type surface struct {
	id        uint16
	shade     mathutil.Vec3
	tex       *image.NRGBA
	normalTex *image.NRGBA
	uvScale   float64
	base      [4]uint8
}

// RasterizeTriangle fills one screen-space triangle with z-buffering,
// perspective-correct texturing, sRGB color space, lighting and ACES
// tone mapping. Pixels beyond far are discarded.
//
// The inner pixel loop does not allocate.
// All lighting is flat-shaded (per-face, not per-pixel).
func rasterizeTriangle(fb *FrameBuffer, tri [3]screenVertex, surf *surface, far float64, lc *Lighting) {
	x0, y0 := tri[0].x, tri[0].y
	x1, y1 := tri[1].x, tri[1].y
	x2, y2 := tri[2].x, tri[2].y

	// Bounding box over pixel centres
	minX := int(math.Floor(math.Min(math.Min(x0, x1), x2)))
	maxX := int(math.Ceil(math.Max(math.Max(x0, x1), x2)))
	minY := int(math.Floor(math.Min(math.Min(y0, y1), y2)))
	maxY := int(math.Ceil(math.Max(math.Max(y0, y1), y2)))

	if minX < 0 {
		minX = 0
	}
	if maxX > fb.Width-1 {
		maxX = fb.Width - 1
	}
	if minY < 0 {
		minY = 0
	}
	if maxY > fb.Height-1 {
		maxY = fb.Height - 1
	}
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-12 && det < 1e-12 {
		return
	}
	invDet := 1.0 / det

	// Precompute edge deltas
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	exposure := lc.Exposure
	invGamma := lc.InvGamma
	shadeR := surf.shade[0] * exposure
	shadeG := surf.shade[1] * exposure
	shadeB := surf.shade[2] * exposure

	// Pixel loop
	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1

			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}

			invZ := w0*tri[0].invZ + w1*tri[1].invZ + w2*tri[2].invZ
			if invZ <= 0 {
				continue
			}
			z := 1 / invZ
			zIdx := rowOff + sx
			if z >= fb.ZBuf[zIdx] || z > far {
				continue
			}

			cr, cg, cb, ca := surf.base[0], surf.base[1], surf.base[2], surf.base[3]
			nf := 1.0
			if surf.tex != nil || surf.normalTex != nil {
				u := (w0*tri[0].uOZ + w1*tri[1].uOZ + w2*tri[2].uOZ) * z * surf.uvScale
				v := 1 - (w0*tri[0].vOZ+w1*tri[1].vOZ+w2*tri[2].vOZ)*z*surf.uvScale
				if surf.tex != nil {
					cr, cg, cb, ca = sampleTexture(surf.tex, u, v)
				}
				if surf.normalTex != nil {
					_, _, nb, _ := sampleTexture(surf.normalTex, u, v)
					nf = 0.6 + 0.4*(float64(nb)/127.5-1)
				}
			}

			// Skip transparent texels
			if ca < 8 {
				continue
			}
			fb.ZBuf[zIdx] = z
			fb.Seg[zIdx] = surf.id

			// sRGB decode → linear (LUT), shade, tone map, re-encode
			fr := math.Pow(ACESTonemap(srgbToLinear[cr]*shadeR*nf), invGamma)
			fg := math.Pow(ACESTonemap(srgbToLinear[cg]*shadeG*nf), invGamma)
			ffb := math.Pow(ACESTonemap(srgbToLinear[cb]*shadeB*nf), invGamma)

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = clamp255(fr * 255)
			fb.Color[pxIdx+1] = clamp255(fg * 255)
			fb.Color[pxIdx+2] = clamp255(ffb * 255)
			fb.Color[pxIdx+3] = 255
		}
	}
}

func clamp255(v float64) uint8 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
