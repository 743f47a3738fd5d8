// Package raster is a CPU renderer for render.Scene: a z-buffered,
// flat-shaded triangle rasteriser with textures, scene lights and
// per-pixel entity IDs.
package raster

import (
	"context"
	"image"
	"math"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
	"github.com/RunnersNum40/Kubric-Pallets/internal/mesh"
	"github.com/RunnersNum40/Kubric-Pallets/internal/postprocess"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
)

// Options tune a Renderer.
type Options struct {
	Supersample    int // render at N× resolution and downsample; <= 1 disables
	MaxTextureSize int // textures are scaled down to fit; <= 0 keeps them whole
}

// Renderer implements render.Renderer. Each instance keeps its own mesh and
// texture caches; use one per worker.
type Renderer struct {
	opts     Options
	textures *catalog.Cache
	meshes   *mesh.Cache
	logger   *zap.SugaredLogger

	mu        sync.Mutex
	roughness map[string]float64
}

var _ render.Renderer = (*Renderer)(nil)

// New creates a Renderer.
func New(opts Options, logger *zap.SugaredLogger) *Renderer {
	return &Renderer{
		opts:      opts,
		textures:  catalog.NewCache(opts.MaxTextureSize, logger),
		meshes:    mesh.NewCache(),
		logger:    logger,
		roughness: make(map[string]float64),
	}
}

// Default surface colors when no color map is applied.
var (
	structuralColor = [4]uint8{150, 150, 150, 255}
	objectColor     = [4]uint8{170, 130, 80, 255}
)

// Render draws the scene from its active camera.
func (r *Renderer) Render(ctx context.Context, s *render.Scene) (*render.Frame, error) {
	cam := s.Camera()
	if cam == nil {
		return nil, errors.New("raster: scene has no active camera")
	}
	if s.Width <= 0 || s.Height <= 0 {
		return nil, errors.Errorf("raster: invalid resolution %dx%d", s.Width, s.Height)
	}
	ss := max(1, r.opts.Supersample)
	w, h := s.Width*ss, s.Height*ss

	v, err := newView(cam, w, h)
	if err != nil {
		return nil, err
	}
	lc := NewLighting(s)
	fb := NewFrameBuffer(w, h)

	for _, e := range s.Entities() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch e.Kind {
		case render.KindBox:
			r.drawEntity(fb, &v, &lc, e, r.meshes.Box(), structuralColor)
		case render.KindMesh:
			m, _, err := r.meshes.Load(e.Asset)
			if err != nil {
				r.logger.Warnw("mesh unavailable, drawing proxy box", "asset", e.Asset, "error", err)
			}
			r.drawEntity(fb, &v, &lc, e, m, objectColor)
		}
	}

	return resolve(fb, s.Width, s.Height, ss), nil
}

func (r *Renderer) drawEntity(fb *FrameBuffer, v *view, lc *Lighting, e *render.Entity, m *mesh.Mesh, base [4]uint8) {
	if e.ID <= 0 || e.ID > math.MaxUint16 {
		return
	}
	surf := surface{id: uint16(e.ID), base: base, uvScale: 1}
	specScale := 1.0
	if e.Material != nil {
		ts := e.Material.Textures
		surf.tex = r.textures.Resolve(ts.Color)
		surf.normalTex = r.textures.Resolve(ts.Normal)
		if e.Material.UVScale > 0 {
			surf.uvScale = e.Material.UVScale
		}
		if ts.Roughness != "" {
			specScale = 1 - r.meanRoughness(ts.Roughness)
		}
	}

	rot := mathutil.QuatToMat3(e.Rotation)
	scale := mathutil.FromR3(e.Scale)
	pos := mathutil.FromR3(e.Position)

	world := make([]mathutil.Vec3, len(m.Verts))
	for i, p := range m.Verts {
		world[i] = rot.MulVec3(p.Mul(scale)).Add(pos)
	}

	var poly [3]clipVertex
	for _, tri := range m.Tris {
		w0, w1, w2 := world[tri.VI[0]], world[tri.VI[1]], world[tri.VI[2]]
		n := w1.Sub(w0).Cross(w2.Sub(w0))
		if n.Len() < 1e-12 {
			continue
		}
		centroid := w0.Add(w1).Add(w2).Scale(1.0 / 3)
		surf.shade = lc.Shade(n.Normalize(), centroid, v.eye, specScale)

		for k := 0; k < 3; k++ {
			poly[k] = clipVertex{pos: v.toCamera(world[tri.VI[k]])}
			if ti := tri.TI[k]; ti >= 0 && ti < len(m.UVs) {
				poly[k].uv = m.UVs[ti]
			}
		}
		clipped := clipNear(poly[:], v.near)
		if len(clipped) < 3 {
			continue
		}
		a := v.project(clipped[0])
		for k := 1; k+1 < len(clipped); k++ {
			rasterizeTriangle(fb, [3]screenVertex{a, v.project(clipped[k]), v.project(clipped[k+1])}, &surf, v.far, lc)
		}
	}
}

// meanRoughness averages a roughness map's red channel into [0,1].
func (r *Renderer) meanRoughness(path string) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if v, ok := r.roughness[path]; ok {
		return v
	}
	v := 0.5
	if img := r.textures.Resolve(path); img != nil && len(img.Pix) > 0 {
		var sum float64
		for i := 0; i < len(img.Pix); i += 4 {
			sum += float64(img.Pix[i])
		}
		v = sum / float64(len(img.Pix)/4) / 255
	}
	r.roughness[path] = v
	return v
}

// resolve converts the framebuffer into an output frame, collapsing each
// ss×ss block: color is filtered, depth and segmentation come from the
// nearest sample in the block.
func resolve(fb *FrameBuffer, w, h, ss int) *render.Frame {
	img := image.NewNRGBA(image.Rect(0, 0, fb.Width, fb.Height))
	copy(img.Pix, fb.Color)
	if ss > 1 {
		img = postprocess.Downsample(img, w, h)
	}

	depth := make([]float32, w*h)
	seg := make([]uint16, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			best := math.Inf(1)
			var id uint16
			for by := 0; by < ss; by++ {
				row := (y*ss + by) * fb.Width
				for bx := 0; bx < ss; bx++ {
					i := row + x*ss + bx
					if fb.ZBuf[i] < best {
						best = fb.ZBuf[i]
						id = fb.Seg[i]
					}
				}
			}
			depth[y*w+x] = float32(best)
			seg[y*w+x] = id
		}
	}

	return &render.Frame{Width: w, Height: h, RGBA: img, Depth: depth, Segmentation: seg}
}
