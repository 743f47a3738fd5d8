// Package render declares the scene graph handed to a renderer and the frame
// it returns. Scene construction only ever talks to these types.
package render

import (
	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"github.com/RunnersNum40/Kubric-Pallets/internal/catalog"
	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
)

// Kind is the type of a scene entity.
type Kind int

const (
	KindBox Kind = iota
	KindPointLight
	KindDirectionalLight
	KindMesh
	KindCamera
)

func (k Kind) String() string {
	switch k {
	case KindBox:
		return "box"
	case KindPointLight:
		return "point-light"
	case KindDirectionalLight:
		return "directional-light"
	case KindMesh:
		return "mesh-object"
	case KindCamera:
		return "perspective-camera"
	}
	return "unknown"
}

// IsLight reports whether k illuminates the scene.
func (k Kind) IsLight() bool {
	return k == KindPointLight || k == KindDirectionalLight
}

// Camera defaults shared by every rig.
const (
	DefaultSensorWidth = 32.0 // mm
	DefaultNear        = 0.1
	DefaultFar         = 100.0
)

// Entity is one declarative scene object. Which fields matter depends on Kind.
type Entity struct {
	ID       int // assigned by Scene.Add, 1-based; 0 is background in segmentation
	Kind     Kind
	Name     string
	Position r3.Vector
	Rotation quat.Number
	Scale    r3.Vector

	// Mesh objects.
	Asset string

	// Lights.
	Color     [3]float64
	Intensity float64

	// Directional lights and cameras.
	LookAt r3.Vector

	// Cameras.
	FocalLength float64 // mm
	SensorWidth float64 // mm
	Near, Far   float64

	Material *Material
}

// Material is what a MaterialApplier attaches to a surface.
type Material struct {
	Textures catalog.TextureSet
	UVScale  float64
}

// NewBox declares an axis-aligned unit cube scaled to size and centred on pos.
func NewBox(name string, pos, size r3.Vector) *Entity {
	return &Entity{Kind: KindBox, Name: name, Position: pos, Scale: size, Rotation: mathutil.QuatIdentity}
}

// NewMesh declares a mesh object loaded from asset.
func NewMesh(name, asset string, pos r3.Vector, rot quat.Number, scale r3.Vector) *Entity {
	return &Entity{Kind: KindMesh, Name: name, Asset: asset, Position: pos, Rotation: rot, Scale: scale}
}

// NewPointLight declares an omnidirectional light.
func NewPointLight(pos r3.Vector, color [3]float64, intensity float64) *Entity {
	return &Entity{Kind: KindPointLight, Name: "point_light", Position: pos, Color: color, Intensity: intensity, Rotation: mathutil.QuatIdentity}
}

// NewDirectionalLight declares a light shining from pos towards lookAt.
func NewDirectionalLight(pos, lookAt r3.Vector, color [3]float64, intensity float64) *Entity {
	rot := mathutil.Mat3ToQuat(mathutil.LookAt(mathutil.FromR3(pos), mathutil.FromR3(lookAt)))
	return &Entity{Kind: KindDirectionalLight, Name: "sun", Position: pos, LookAt: lookAt, Color: color, Intensity: intensity, Rotation: rot}
}

// NewCamera declares a perspective camera at pos aimed at lookAt.
func NewCamera(name string, pos, lookAt r3.Vector, focalLength, near, far float64) *Entity {
	rot := mathutil.Mat3ToQuat(mathutil.LookAt(mathutil.FromR3(pos), mathutil.FromR3(lookAt)))
	return &Entity{
		Kind:        KindCamera,
		Name:        name,
		Position:    pos,
		LookAt:      lookAt,
		Rotation:    rot,
		FocalLength: focalLength,
		SensorWidth: DefaultSensorWidth,
		Near:        near,
		Far:         far,
	}
}
