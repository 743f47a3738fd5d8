// Package metadata defines the JSON documents written next to every scene
// and camera, and the directory layout they live in.
package metadata

import (
	"encoding/json"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
	"github.com/RunnersNum40/Kubric-Pallets/internal/render"
	"github.com/RunnersNum40/Kubric-Pallets/internal/warehouse"
)

// File names inside scene and camera directories.
const (
	FileName         = "metadata.json"
	RGBAFile         = "rgba.png"
	DepthFile        = "depth.tiff"
	DepthPreviewFile = "depth_normalized.png"
	SegmentationFile = "segmentation.png"
	PreviewFile      = "rgba.webp"
	scenePrefix      = "scene_"
	cameraPrefix     = "cam_"
)

// SceneDir is the directory name of scene i under the output root.
func SceneDir(i int) string { return fmt.Sprintf("%s%d", scenePrefix, i) }

// CameraDir is the directory name of camera j under its scene directory.
func CameraDir(j int) string { return fmt.Sprintf("%s%d", cameraPrefix, j) }

// Lighting is the lighting_conditions block of a scene document.
type Lighting struct {
	AmbientColor [3]float64 `json:"ambient_color"`
	NumLights    int        `json:"num_lights"`
}

// Object records one placed physical asset. Rotation is xyz Euler degrees.
type Object struct {
	Name     string        `json:"name"`
	Position mathutil.Vec3 `json:"position"`
	Scale    mathutil.Vec3 `json:"scale"`
	Rotation mathutil.Vec3 `json:"rotation"`
}

// NewObject records e's pose.
func NewObject(e *render.Entity) Object {
	return Object{
		Name:     e.Name,
		Position: mathutil.FromR3(e.Position),
		Scale:    mathutil.FromR3(e.Scale),
		Rotation: mathutil.QuatToEulerDegrees(e.Rotation),
	}
}

// SceneDocument is scene_<i>/metadata.json.
type SceneDocument struct {
	SceneIndex int                  `json:"scene_index"`
	Dimensions warehouse.Dimensions `json:"warehouse_dimensions"`
	Lighting   Lighting             `json:"lighting_conditions"`
	Objects    []Object             `json:"objects"`
}

// NewScene builds the document for scene index from the finished scene
// graph. Only mesh objects are recorded; floor and walls are left out.
func NewScene(index int, s *render.Scene, d warehouse.Dimensions) SceneDocument {
	doc := SceneDocument{
		SceneIndex: index,
		Dimensions: d,
		Lighting:   Lighting{AmbientColor: s.Ambient, NumLights: len(s.Lights())},
		Objects:    []Object{},
	}
	for _, e := range s.Objects() {
		doc.Objects = append(doc.Objects, NewObject(e))
	}
	return doc
}

// CameraDocument is scene_<i>/cam_<j>/metadata.json. Relative fields are
// taken against the scene's target; paths are relative to the output root.
type CameraDocument struct {
	CameraIndex         int           `json:"camera_index"`
	Position            mathutil.Vec3 `json:"position"`
	RelativePosition    mathutil.Vec3 `json:"relative_position_xyz"`
	RelativeOrientation mathutil.Vec3 `json:"relative_orientation_xyz"`
	FocalLength         float64       `json:"focal_length"`
	RGBAPath            string        `json:"rgba_path"`
	DepthPath           string        `json:"depth_path"`
}

// NewCamera builds the document for camera index of scene sceneIndex.
func NewCamera(sceneIndex, index int, cam, target *render.Entity) CameraDocument {
	camPos := mathutil.FromR3(cam.Position)
	dir := path.Join(SceneDir(sceneIndex), CameraDir(index))
	return CameraDocument{
		CameraIndex:         index,
		Position:            camPos,
		RelativePosition:    mathutil.FromR3(target.Position).Sub(camPos),
		RelativeOrientation: mathutil.RelativeOrientation(cam.Rotation, target.Rotation),
		FocalLength:         cam.FocalLength,
		RGBAPath:            path.Join(dir, RGBAFile),
		DepthPath:           path.Join(dir, DepthFile),
	}
}

// WriteScene writes doc to dir/metadata.json.
func WriteScene(dir string, doc SceneDocument) error {
	return write(filepath.Join(dir, FileName), doc)
}

// WriteCamera writes doc to dir/metadata.json.
func WriteCamera(dir string, doc CameraDocument) error {
	return write(filepath.Join(dir, FileName), doc)
}

// ReadScene loads a scene document.
func ReadScene(name string) (SceneDocument, error) {
	var doc SceneDocument
	if err := read(name, &doc); err != nil {
		return SceneDocument{}, err
	}
	return doc, nil
}

// ReadCamera loads a camera document.
func ReadCamera(name string) (CameraDocument, error) {
	var doc CameraDocument
	if err := read(name, &doc); err != nil {
		return CameraDocument{}, err
	}
	return doc, nil
}

func write(name string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return errors.Wrapf(err, "encode %s", name)
	}
	if err := os.WriteFile(name, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", name)
	}
	return nil
}

func read(name string, v any) error {
	data, err := os.ReadFile(name)
	if err != nil {
		return errors.Wrapf(err, "read %s", name)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return errors.Wrapf(err, "parse %s", name)
	}
	return nil
}
