package render

import (
	"context"
	"image"

	"github.com/pkg/errors"

	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
)

// Scene is the scene graph for one generated warehouse. Owned by a single
// goroutine.
type Scene struct {
	Width, Height        int
	FrameStart, FrameEnd int
	Ambient              [3]float64

	entities []*Entity
	camera   *Entity
}

// NewScene creates an empty scene with the given resolution and frame range.
func NewScene(width, height, frameStart, frameEnd int) *Scene {
	return &Scene{Width: width, Height: height, FrameStart: frameStart, FrameEnd: frameEnd}
}

// Add appends e to the scene and assigns its ID.
func (s *Scene) Add(e *Entity) *Entity {
	s.entities = append(s.entities, e)
	e.ID = len(s.entities)
	return e
}

// Entities returns every entity in insertion order.
func (s *Scene) Entities() []*Entity {
	return s.entities
}

// Lights returns the light entities in insertion order.
func (s *Scene) Lights() []*Entity {
	return s.filter(func(e *Entity) bool { return e.Kind.IsLight() })
}

// Objects returns the physical mesh objects in insertion order.
func (s *Scene) Objects() []*Entity {
	return s.filter(func(e *Entity) bool { return e.Kind == KindMesh })
}

func (s *Scene) filter(keep func(*Entity) bool) []*Entity {
	var out []*Entity
	for _, e := range s.entities {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// SetCamera makes cam the active camera. It must already be in the scene.
func (s *Scene) SetCamera(cam *Entity) error {
	if cam == nil || cam.Kind != KindCamera {
		return errors.New("render: active camera must be a perspective camera")
	}
	if cam.ID == 0 || cam.ID > len(s.entities) || s.entities[cam.ID-1] != cam {
		return errors.Errorf("render: camera %q is not part of the scene", cam.Name)
	}
	s.camera = cam
	return nil
}

// Camera returns the active camera, or nil.
func (s *Scene) Camera() *Entity {
	return s.camera
}

// Frame is one rendered still.
type Frame struct {
	Width, Height int
	RGBA          *image.NRGBA
	Depth         []float32 // metres along the view axis; +Inf where nothing was hit
	Segmentation  []uint16  // entity ID per pixel, 0 for background
}

// Renderer turns the scene's active camera view into a frame.
type Renderer interface {
	Render(ctx context.Context, s *Scene) (*Frame, error)
}

// MaterialApplier attaches a texture set to an entity's surface.
type MaterialApplier interface {
	Apply(e *Entity, set catalog.TextureSet, uvScale float64)
}

// Materials is the default MaterialApplier; it records the material on the
// entity for the renderer to resolve.
type Materials struct{}

// Apply replaces e's material with set tiled uvScale times.
func (Materials) Apply(e *Entity, set catalog.TextureSet, uvScale float64) {
	e.Material = &Material{Textures: set, UVScale: uvScale}
}
