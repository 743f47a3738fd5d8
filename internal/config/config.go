// Package config loads generation settings from a JSON file and merges in
// CLI overrides.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/RunnersNum40/Kubric-Pallets/internal/output"
	"github.com/RunnersNum40/Kubric-Pallets/internal/scatter"
	"github.com/RunnersNum40/Kubric-Pallets/internal/warehouse"
)

// Config holds all configurable paths and generation settings.
type Config struct {
	// Paths
	AssetDir  string `json:"asset_dir" yaml:"asset_dir"`
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// Batch
	NumScenes int       `json:"num_scenes" yaml:"num_scenes"`
	NumAngles int       `json:"num_angles" yaml:"num_angles"`
	Distances []float64 `json:"distances" yaml:"distances"`
	Workers   int       `json:"workers" yaml:"workers"`
	Seed      uint64    `json:"seed" yaml:"seed"`

	// Render settings
	Width          int  `json:"width" yaml:"width"`
	Height         int  `json:"height" yaml:"height"`
	Supersample    int  `json:"supersample" yaml:"supersample"`
	MaxTextureSize int  `json:"max_texture_size" yaml:"max_texture_size"`
	WebPPreview    bool `json:"webp_preview" yaml:"webp_preview"`

	// Scattering, per asset category
	Ranges scatter.Ranges `json:"ranges" yaml:"ranges"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Defaults used by Resolve.
const (
	DefaultAssetDir       = "assets"
	DefaultOutputDir      = "output"
	DefaultNumScenes      = 1024
	DefaultNumAngles      = 8
	DefaultWidth          = 1280
	DefaultHeight         = 720
	DefaultMaxTextureSize = 1024
	DefaultLogLevel       = "info"
)

// DefaultDistances are the rig radii, in meters.
var DefaultDistances = []float64{0.8, 1.0, 1.2, 1.5}

// Load reads a JSON config file, or YAML when the extension is .yaml or
// .yml, and returns Config. Fields not set in the file keep their zero
// values.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: read %s", path)
	}

	var cfg Config
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Config{}, errors.Wrapf(err, "config: parse %s", path)
	}

	return cfg, nil
}

// Resolve fills in any empty fields with defaults.
// CLI flags take priority when non-zero/non-empty.
func (c *Config) Resolve(flags Flags) {
	// CLI flags override config file
	if flags.AssetDir != "" {
		c.AssetDir = flags.AssetDir
	}
	if flags.OutputDir != "" {
		c.OutputDir = flags.OutputDir
	}
	if flags.NumScenes > 0 {
		c.NumScenes = flags.NumScenes
	}
	if flags.NumAngles > 0 {
		c.NumAngles = flags.NumAngles
	}
	if len(flags.Distances) > 0 {
		c.Distances = flags.Distances
	}
	if flags.Workers > 0 {
		c.Workers = flags.Workers
	}
	if flags.Seed != 0 {
		c.Seed = flags.Seed
	}
	if flags.Supersample > 0 {
		c.Supersample = flags.Supersample
	}
	if flags.WebPPreview {
		c.WebPPreview = true
	}
	if flags.LogLevel != "" {
		c.LogLevel = flags.LogLevel
	}

	if c.AssetDir == "" {
		c.AssetDir = DefaultAssetDir
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.NumScenes <= 0 {
		c.NumScenes = DefaultNumScenes
	}
	if c.NumAngles <= 0 {
		c.NumAngles = DefaultNumAngles
	}
	if len(c.Distances) == 0 {
		c.Distances = append([]float64(nil), DefaultDistances...)
	}
	if c.Workers <= 0 {
		c.Workers = runtime.NumCPU()
	}
	if c.Width <= 0 || c.Height <= 0 {
		c.Width, c.Height = DefaultWidth, DefaultHeight
	}
	if c.Supersample <= 0 {
		c.Supersample = 1
	}
	if c.MaxTextureSize <= 0 {
		c.MaxTextureSize = DefaultMaxTextureSize
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}

	// Categories missing from the file keep their default range.
	ranges := scatter.DefaultRanges()
	for name, r := range c.Ranges {
		ranges[name] = r
	}
	c.Ranges = ranges
}

// Validate rejects settings no scene could be generated with.
func (c *Config) Validate() error {
	for _, d := range c.Distances {
		if d <= 0 {
			return errors.Errorf("config: distance %g must be positive", d)
		}
	}
	for name, r := range c.Ranges {
		if r.Min < 0 || r.Max < r.Min {
			return errors.Errorf("config: range %s [%d, %d] is invalid", name, r.Min, r.Max)
		}
	}
	if n := c.MaxDrawables(); n >= len(output.Palette) {
		return errors.Errorf("config: scenes may hold %d drawable entities, segmentation ids stop at %d",
			n, len(output.Palette)-1)
	}
	return nil
}

// MaxDrawables is the largest number of entities a scene can put in the
// segmentation map: walls, floor, lights, every category at its maximum
// count and the target. Cameras are added after them and are never drawn.
func (c *Config) MaxDrawables() int {
	n := warehouse.Surfaces + warehouse.MaxLights + 1
	for _, r := range c.Ranges {
		n += r.Max
	}
	return n
}

// Flags holds CLI flag values that override config file settings.
type Flags struct {
	AssetDir    string
	OutputDir   string
	NumScenes   int
	NumAngles   int
	Distances   []float64
	Workers     int
	Seed        uint64
	Supersample int
	WebPPreview bool
	LogLevel    string
}
