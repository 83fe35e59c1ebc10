// Package config holds the runtime settings of the viewer. Defaults
// reproduce the reference scene; a TOML or YAML file can override any
// subset of them.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Window WindowConfig `toml:"window" yaml:"window"`
	Assets AssetsConfig `toml:"assets" yaml:"assets"`
	Scene  SceneConfig  `toml:"scene" yaml:"scene"`
	Log    LogConfig    `toml:"log" yaml:"log"`
}

type WindowConfig struct {
	Width      int    `toml:"width" yaml:"width"`
	Height     int    `toml:"height" yaml:"height"`
	Title      string `toml:"title" yaml:"title"`
	VSync      bool   `toml:"vsync" yaml:"vsync"`
	Fullscreen bool   `toml:"fullscreen" yaml:"fullscreen"`
}

// TextureSet names the maps of one material. Empty entries are unused.
type TextureSet struct {
	Albedo       string `toml:"albedo" yaml:"albedo"`
	Normal       string `toml:"normal" yaml:"normal"`
	Roughness    string `toml:"roughness" yaml:"roughness"`
	AO           string `toml:"ao" yaml:"ao"`
	Displacement string `toml:"displacement" yaml:"displacement"`
}

type ModelConfig struct {
	Path     string     `toml:"path" yaml:"path"`
	Position [3]float32 `toml:"position" yaml:"position"`
	Scale    float32    `toml:"scale" yaml:"scale"`
	Animate  bool       `toml:"animate" yaml:"animate"`
}

type AssetsConfig struct {
	// Root is prepended to every relative asset path.
	Root           string        `toml:"root" yaml:"root"`
	MaxTextureSize int           `toml:"max_texture_size" yaml:"max_texture_size"`
	Ground         TextureSet    `toml:"ground" yaml:"ground"`
	Sphere         TextureSet    `toml:"sphere" yaml:"sphere"`
	Skybox         []string      `toml:"skybox" yaml:"skybox"`
	Models         []ModelConfig `toml:"models" yaml:"models"`
}

type SceneConfig struct {
	// RotationSpeed is in radians per millisecond.
	RotationSpeed float32 `toml:"rotation_speed" yaml:"rotation_speed"`
	MaxPixelRatio float32 `toml:"max_pixel_ratio" yaml:"max_pixel_ratio"`
	OrbitDamping  float32 `toml:"orbit_damping" yaml:"orbit_damping"`
	Grid          bool    `toml:"grid" yaml:"grid"`
	Shadows       bool    `toml:"shadows" yaml:"shadows"`
}

type LogConfig struct {
	Level string `toml:"level" yaml:"level"`
}

func Default() Config {
	return Config{
		Window: WindowConfig{
			Width:  1280,
			Height: 720,
			Title:  "VR Scene",
			VSync:  true,
		},
		Assets: AssetsConfig{
			Root:           "assets",
			MaxTextureSize: 2048,
			Ground: TextureSet{
				Albedo:    "textures/mud/textures/brown_mud_leaves_01_diff_1k.jpg",
				Normal:    "textures/mud/textures/brown_mud_leaves_01_nor_gl_1k.jpg",
				Roughness: "textures/mud/textures/brown_mud_leaves_01_rough_1k.jpg",
			},
			Sphere: TextureSet{
				Albedo:       "textures/rockwall/rock_wall_11_diff_2k.jpg",
				Normal:       "textures/rockwall/rock_wall_11_nor_gl_2k.jpg",
				AO:           "textures/rockwall/rock_wall_11_arm_2k.jpg",
				Displacement: "textures/rockwall/rock_wall_11_disp_2k.png",
			},
			Skybox: []string{
				"textures/environmentMaps/sky/px.png",
				"textures/environmentMaps/sky/nx.png",
				"textures/environmentMaps/sky/py.png",
				"textures/environmentMaps/sky/ny.png",
				"textures/environmentMaps/sky/pz.png",
				"textures/environmentMaps/sky/nz.png",
			},
			Models: []ModelConfig{
				{Path: "models/Lantern.glb", Position: [3]float32{-2.5, 0, -2}, Scale: 0.2, Animate: true},
				{Path: "models/BrainStem.glb", Position: [3]float32{3, 0, -2}, Scale: 1, Animate: true},
			},
		},
		Scene: SceneConfig{
			RotationSpeed: 0.0003,
			MaxPixelRatio: 2,
			OrbitDamping:  0.05,
			Shadows:       true,
		},
		Log: LogConfig{Level: "info"},
	}
}

type decoder interface {
	Decode(v any) error
}

var decoders = map[string]func(r io.Reader) decoder{
	".toml": func(r io.Reader) decoder { return toml.NewDecoder(r).DisallowUnknownFields() },
	".yaml": newYAMLDecoder,
	".yml":  newYAMLDecoder,
}

func newYAMLDecoder(r io.Reader) decoder {
	d := yaml.NewDecoder(r)
	d.KnownFields(true)
	return d
}

// Load returns the defaults overlaid with the file at path. An empty path
// returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	newDecoder, ok := decoders[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return cfg, fmt.Errorf("config %q: unsupported format %q", path, filepath.Ext(path))
	}
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	if err := newDecoder(f).Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("config %q: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		errs = append(errs, fmt.Errorf("window size %dx%d must be positive", c.Window.Width, c.Window.Height))
	}
	if len(c.Assets.Skybox) != 0 && len(c.Assets.Skybox) != 6 {
		errs = append(errs, fmt.Errorf("skybox needs 6 faces, got %d", len(c.Assets.Skybox)))
	}
	if c.Scene.RotationSpeed < 0 {
		errs = append(errs, fmt.Errorf("rotation speed %v must not be negative", c.Scene.RotationSpeed))
	}
	if c.Scene.MaxPixelRatio <= 0 {
		errs = append(errs, fmt.Errorf("max pixel ratio %v must be positive", c.Scene.MaxPixelRatio))
	}
	if c.Scene.OrbitDamping < 0 || c.Scene.OrbitDamping > 1 {
		errs = append(errs, fmt.Errorf("orbit damping %v must be within [0, 1]", c.Scene.OrbitDamping))
	}
	for i, m := range c.Assets.Models {
		if m.Path == "" {
			errs = append(errs, fmt.Errorf("model %d has no path", i))
		}
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		errs = append(errs, err)
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// SkyboxFaces returns the six face paths in px, nx, py, ny, pz, nz order.
func (a AssetsConfig) SkyboxFaces() ([6]string, bool) {
	var faces [6]string
	if len(a.Skybox) != 6 {
		return faces, false
	}
	copy(faces[:], a.Skybox)
	return faces, true
}

// Resolve joins a relative asset path onto Root.
func (a AssetsConfig) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || a.Root == "" {
		return path
	}
	return filepath.Join(a.Root, path)
}

func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if l.Level == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level: %w", err)
	}
	return level, nil
}
