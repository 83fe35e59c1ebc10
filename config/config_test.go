package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestDefaultsMatchReferenceScene(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, float32(0.0003), cfg.Scene.RotationSpeed)
	assert.Equal(t, float32(2), cfg.Scene.MaxPixelRatio)
	assert.Equal(t, float32(0.05), cfg.Scene.OrbitDamping)
	require.Len(t, cfg.Assets.Models, 2)
	assert.Equal(t, "models/Lantern.glb", cfg.Assets.Models[0].Path)
	assert.Equal(t, [3]float32{-2.5, 0, -2}, cfg.Assets.Models[0].Position)
	assert.Equal(t, float32(0.2), cfg.Assets.Models[0].Scale)
	assert.Equal(t, [3]float32{3, 0, -2}, cfg.Assets.Models[1].Position)

	faces, ok := cfg.Assets.SkyboxFaces()
	require.True(t, ok)
	assert.Equal(t, "textures/environmentMaps/sky/px.png", faces[0])
	assert.Equal(t, "textures/environmentMaps/sky/nz.png", faces[5])
	assert.NoError(t, cfg.Validate())
}

func TestLoadTOMLOverridesSubset(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scene.toml", `
[window]
width = 800
height = 600

[scene]
rotation_speed = 0.001

[log]
level = "debug"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 600, cfg.Window.Height)
	assert.Equal(t, "VR Scene", cfg.Window.Title)
	assert.Equal(t, float32(0.001), cfg.Scene.RotationSpeed)
	assert.Len(t, cfg.Assets.Models, 2)

	level, err := cfg.Log.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, level)
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scene.yaml", `
assets:
  root: /data
  models:
    - path: models/Fox.glb
      position: [1, 0, 1]
      scale: 0.05
      animate: true
scene:
  grid: true
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "/data", cfg.Assets.Root)
	require.Len(t, cfg.Assets.Models, 1)
	assert.Equal(t, "models/Fox.glb", cfg.Assets.Models[0].Path)
	assert.Equal(t, [3]float32{1, 0, 1}, cfg.Assets.Models[0].Position)
	assert.True(t, cfg.Scene.Grid)
	assert.Equal(t, filepath.Join("/data", "a.png"), cfg.Assets.Resolve("a.png"))
	assert.Equal(t, "/abs/a.png", cfg.Assets.Resolve("/abs/a.png"))
}

func TestLoadErrors(t *testing.T) {
	dir := t.TempDir()

	_, err := Load(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "scene.json", `{}`))
	assert.ErrorContains(t, err, "unsupported format")

	_, err = Load(writeFile(t, dir, "bad.toml", "[window]\nwidth = -1\n"))
	assert.ErrorContains(t, err, "window size")

	_, err = Load(writeFile(t, dir, "unknown.toml", "[window]\ncolour = 3\n"))
	assert.Error(t, err)

	_, err = Load(writeFile(t, dir, "faces.yaml", "assets:\n  skybox: [a.png]\n"))
	assert.ErrorContains(t, err, "6 faces")

	_, err = Load(writeFile(t, dir, "level.yaml", "log:\n  level: loud\n"))
	assert.ErrorContains(t, err, "log level")
}

func TestEmptyFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeFile(t, t.TempDir(), "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestWatchReloadsOnWrite(t *testing.T) {
	path := writeFile(t, t.TempDir(), "scene.toml", "[scene]\nrotation_speed = 0.001\n")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changes := make(chan Config, 16)
	require.NoError(t, Watch(ctx, path, func(c Config) {
		select {
		case changes <- c:
		default:
		}
	}))

	require.NoError(t, os.WriteFile(path, nil, 0o644))
	require.NoError(t, os.WriteFile(path, []byte("[scene]\nrotation_speed = 0.002\n"), 0o644))

	timeout := time.After(5 * time.Second)
	for {
		select {
		case cfg := <-changes:
			require.NotEqual(t, Default().Scene.RotationSpeed, cfg.Scene.RotationSpeed, "truncated file reloaded as defaults")
			if cfg.Scene.RotationSpeed == 0.002 {
				return
			}
		case <-timeout:
			t.Fatal("no reload after write")
		}
	}
}

func TestReloadSkipsEmptyFile(t *testing.T) {
	dir := t.TempDir()

	_, ok, err := reload(writeFile(t, dir, "empty.toml", ""))
	require.NoError(t, err)
	assert.False(t, ok)

	cfg, ok, err := reload(writeFile(t, dir, "full.toml", "[scene]\nrotation_speed = 0.004\n"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, float32(0.004), cfg.Scene.RotationSpeed)

	_, _, err = reload(filepath.Join(dir, "missing.toml"))
	assert.Error(t, err)
}
