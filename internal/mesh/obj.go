package mesh

import (
	"bufio"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/RunnersNum40/Kubric-Pallets/internal/mathutil"
)

// LoadOBJ reads the geometry of a Wavefront OBJ file. Only v, vt and f
// records are used; polygons are fanned into triangles.
func LoadOBJ(path string) (*Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "mesh: open %s", path)
	}
	defer f.Close()

	m := &Mesh{}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 4*1024*1024)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseFloats(fields[1:], 3)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh: %s:%d", path, line)
			}
			m.Verts = append(m.Verts, mathutil.Vec3{v[0], v[1], v[2]})
		case "vt":
			v, err := parseFloats(fields[1:], 2)
			if err != nil {
				return nil, errors.Wrapf(err, "mesh: %s:%d", path, line)
			}
			m.UVs = append(m.UVs, [2]float64{v[0], v[1]})
		case "f":
			if err := m.addFace(fields[1:]); err != nil {
				return nil, errors.Wrapf(err, "mesh: %s:%d", path, line)
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrapf(err, "mesh: read %s", path)
	}
	if len(m.Tris) == 0 {
		return nil, errors.Errorf("mesh: %s has no faces", path)
	}
	return m, nil
}

func parseFloats(fields []string, n int) ([]float64, error) {
	if len(fields) < n {
		return nil, errors.Errorf("want %d components, got %d", n, len(fields))
	}
	out := make([]float64, n)
	for i := 0; i < n; i++ {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (m *Mesh) addFace(corners []string) error {
	if len(corners) < 3 {
		return errors.New("face needs at least 3 corners")
	}
	vi := make([]int, len(corners))
	ti := make([]int, len(corners))
	for i, c := range corners {
		parts := strings.Split(c, "/")
		v, err := resolveIndex(parts[0], len(m.Verts))
		if err != nil {
			return err
		}
		vi[i] = v
		ti[i] = -1
		if len(parts) > 1 && parts[1] != "" {
			t, err := resolveIndex(parts[1], len(m.UVs))
			if err != nil {
				return err
			}
			ti[i] = t
		}
	}
	for i := 1; i+1 < len(corners); i++ {
		m.Tris = append(m.Tris, Triangle{
			VI: [3]int{vi[0], vi[i], vi[i+1]},
			TI: [3]int{ti[0], ti[i], ti[i+1]},
		})
	}
	return nil
}

// resolveIndex turns a 1-based (or negative, relative) OBJ index into a
// 0-based one.
func resolveIndex(s string, count int) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, errors.Wrapf(err, "bad index %q", s)
	}
	if n < 0 {
		n = count + n + 1
	}
	if n < 1 || n > count {
		return 0, errors.Errorf("index %s out of range (have %d)", s, count)
	}
	return n - 1, nil
}
