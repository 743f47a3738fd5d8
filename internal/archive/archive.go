// Package archive consolidates a generated dataset directory into a single
// gzip-compressed tar container, one group per scene.
//
// Layout inside the container:
//
//	scene_<i>/attrs.json
//	scene_<i>/objects/object_<k>/attrs.json
//	scene_<i>/objects/object_<k>/transformation_matrix.json
//	scene_<i>/cameras/camera_<m>/attrs.json
//	scene_<i>/cameras/camera_<m>/transformation_matrix.json
//	scene_<i>/cameras/camera_<m>/rgba_image.png
//	scene_<i>/cameras/camera_<m>/depth_image.tiff
package archive

import (
	"archive/tar"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
	"github.com/RunnersNum40/Kubric-Pallets/internal/metadata"
)

// Dataset names inside each group.
const (
	AttrsFile     = "attrs.json"
	MatrixFile    = "transformation_matrix.json"
	RGBAImageFile = "rgba_image.png"
	DepthFile     = "depth_image.tiff"
)

// SceneAttrs is the attribute set of a scene group.
type SceneAttrs struct {
	SceneIndex          int        `json:"scene_index"`
	WarehouseDimensions [3]float64 `json:"warehouse_dimensions"`
	AmbientLight        [3]float64 `json:"ambient_light"`
	NumLights           int        `json:"num_lights"`
}

// ObjectAttrs is the attribute set of an object group.
type ObjectAttrs struct {
	Name     string        `json:"name"`
	Position mathutil.Vec3 `json:"position"`
	Scale    mathutil.Vec3 `json:"scale"`
	Rotation mathutil.Vec3 `json:"rotation"`
}

// CameraAttrs is the attribute set of a camera group.
type CameraAttrs struct {
	Position            mathutil.Vec3 `json:"position"`
	RelativePosition    mathutil.Vec3 `json:"relative_position"`
	RelativeOrientation mathutil.Vec3 `json:"relative_orientation"`
	FocalLength         float64       `json:"focal_length"`
}

// Stats counts what went into a container.
type Stats struct {
	Scenes  int
	Objects int
	Cameras int
	Images  int
	Skipped int // scenes whose metadata could not be read
}

// Convert reads every scene_* directory under dataRoot and writes the
// container to outPath. A scene without readable metadata, a camera without
// metadata or a missing image is skipped with a warning. Any other error
// removes the partially written outPath.
func Convert(dataRoot, outPath string, logger *zap.SugaredLogger) (Stats, error) {
	var st Stats
	logger.Infow("starting archive conversion", "data_root", dataRoot, "output", outPath)

	scenes, err := indexedDirs(dataRoot, "scene_")
	if err != nil {
		return st, errors.Wrap(err, "archive: list scenes")
	}

	f, err := os.Create(outPath)
	if err != nil {
		return st, errors.Wrap(err, "archive: create")
	}
	err = writeContainer(f, dataRoot, scenes, &st, logger)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = errors.Wrap(cerr, "archive: close file")
	}
	if err != nil {
		if rerr := os.Remove(outPath); rerr != nil {
			logger.Warnw("removing partial archive", "output", outPath, "error", rerr)
		}
		return st, err
	}
	logger.Infow("archive written",
		"output", outPath,
		"scenes", st.Scenes,
		"objects", st.Objects,
		"cameras", st.Cameras,
		"images", st.Images,
		"skipped", st.Skipped,
	)
	return st, nil
}

func writeContainer(w io.Writer, dataRoot string, scenes []string, st *Stats, logger *zap.SugaredLogger) error {
	zw := gzip.NewWriter(w)
	c := &container{tw: tar.NewWriter(zw), mtime: time.Now()}
	for _, name := range scenes {
		if err := c.scene(dataRoot, name, st, logger); err != nil {
			if errors.Is(err, errSkip) {
				st.Skipped++
				continue
			}
			return err
		}
		st.Scenes++
	}
	if err := c.tw.Close(); err != nil {
		return errors.Wrap(err, "archive: close tar")
	}
	return errors.Wrap(zw.Close(), "archive: close gzip")
}

var errSkip = errors.New("skip")

type container struct {
	tw    *tar.Writer
	mtime time.Time
}

func (c *container) scene(root, name string, st *Stats, logger *zap.SugaredLogger) error {
	dir := filepath.Join(root, name)
	doc, err := metadata.ReadScene(filepath.Join(dir, metadata.FileName))
	if err != nil {
		logger.Warnw("skipping scene", "scene", name, "error", err)
		return errSkip
	}
	logger.Debugw("archiving scene", "scene", name)

	d := doc.Dimensions
	if err := c.json(path.Join(name, AttrsFile), SceneAttrs{
		SceneIndex:          doc.SceneIndex,
		WarehouseDimensions: [3]float64{d.Length, d.Width, d.Height},
		AmbientLight:        doc.Lighting.AmbientColor,
		NumLights:           doc.Lighting.NumLights,
	}); err != nil {
		return err
	}

	for k, obj := range doc.Objects {
		group := path.Join(name, "objects", fmt.Sprintf("object_%d", k))
		if err := c.json(path.Join(group, MatrixFile), mathutil.Transform(obj.Position, obj.Rotation).Rows()); err != nil {
			return err
		}
		if err := c.json(path.Join(group, AttrsFile), ObjectAttrs(obj)); err != nil {
			return err
		}
		st.Objects++
	}

	cams, err := indexedDirs(dir, "cam_")
	if err != nil {
		return errors.Wrapf(err, "archive: list cameras of %s", name)
	}
	for _, camDir := range cams {
		cam, err := metadata.ReadCamera(filepath.Join(dir, camDir, metadata.FileName))
		if err != nil {
			logger.Warnw("skipping camera", "scene", name, "camera", camDir, "error", err)
			continue
		}
		group := path.Join(name, "cameras", fmt.Sprintf("camera_%d", cam.CameraIndex))
		if err := c.json(path.Join(group, MatrixFile), mathutil.Transform(cam.RelativePosition, cam.RelativeOrientation).Rows()); err != nil {
			return err
		}
		if err := c.json(path.Join(group, AttrsFile), CameraAttrs{
			Position:            cam.Position,
			RelativePosition:    cam.RelativePosition,
			RelativeOrientation: cam.RelativeOrientation,
			FocalLength:         cam.FocalLength,
		}); err != nil {
			return err
		}
		for _, img := range []struct{ src, dst string }{
			{cam.RGBAPath, RGBAImageFile},
			{cam.DepthPath, DepthFile},
		} {
			ok, err := c.copyFile(path.Join(group, img.dst), filepath.Join(root, filepath.FromSlash(img.src)))
			if err != nil {
				return err
			}
			if ok {
				st.Images++
			} else {
				logger.Warnw("image missing", "scene", name, "camera", cam.CameraIndex, "path", img.src)
			}
		}
		st.Cameras++
	}
	return nil
}

func (c *container) json(name string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrapf(err, "archive: encode %s", name)
	}
	return c.write(name, int64(len(data)), bytes.NewReader(data))
}

// copyFile adds src under name, reporting false if src does not exist.
func (c *container) copyFile(name, src string) (bool, error) {
	f, err := os.Open(src)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "archive: open image")
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return false, errors.Wrap(err, "archive: stat image")
	}
	return true, c.write(name, info.Size(), f)
}

func (c *container) write(name string, size int64, r io.Reader) error {
	hdr := &tar.Header{Name: name, Mode: 0o644, Size: size, ModTime: c.mtime, Typeflag: tar.TypeReg}
	if err := c.tw.WriteHeader(hdr); err != nil {
		return errors.Wrapf(err, "archive: header %s", name)
	}
	if _, err := io.Copy(c.tw, r); err != nil {
		return errors.Wrapf(err, "archive: write %s", name)
	}
	return nil
}

// indexedDirs lists the sub-directories of dir named prefix<int>, in index
// order.
func indexedDirs(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	type item struct {
		name string
		idx  int
	}
	var items []item
	for _, e := range entries {
		if !e.IsDir() || !strings.HasPrefix(e.Name(), prefix) {
			continue
		}
		idx, err := strconv.Atoi(strings.TrimPrefix(e.Name(), prefix))
		if err != nil {
			continue
		}
		items = append(items, item{e.Name(), idx})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].idx < items[j].idx })
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.name
	}
	return out, nil
}

// Entries reads a container back into memory, keyed by entry name.
func Entries(name string) (map[string][]byte, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "archive: open")
	}
	defer f.Close()
	zr, err := gzip.NewReader(f)
	if err != nil {
		return nil, errors.Wrap(err, "archive: gzip")
	}
	defer zr.Close()

	out := make(map[string][]byte)
	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return nil, errors.Wrap(err, "archive: read")
		}
		data, err := io.ReadAll(tr)
		if err != nil {
			return nil, errors.Wrapf(err, "archive: read %s", hdr.Name)
		}
		out[hdr.Name] = data
	}
}
