// Command vrscene opens a window and renders the VR demo scene: a textured
// ground and spinning sphere under two point lights, two animated glTF
// models, a cube-map sky and controller visuals driven by gamepads.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"vr-scene/app"
	"vr-scene/config"
	"vr-scene/controls"
	"vr-scene/core"
	"vr-scene/loader"
	"vr-scene/renderer"
	"vr-scene/xr"
)

func main() {
	configPath := flag.String("config", "", "TOML or YAML settings file; defaults apply when empty")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("vrscene failed", "err", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	level, err := cfg.Log.SlogLevel()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	window, err := core.NewWindow(core.WindowConfig{
		Width:      cfg.Window.Width,
		Height:     cfg.Window.Height,
		Title:      cfg.Window.Title,
		Resizable:  true,
		VSync:      cfg.Window.VSync,
		Fullscreen: cfg.Window.Fullscreen,
	})
	if err != nil {
		return fmt.Errorf("window: %w", err)
	}
	defer window.Destroy()

	queue := core.NewQueue()
	queue.SetWake(window.Wake)
	defer queue.SetWake(nil)

	opts := renderer.DefaultOptions()
	opts.Shadows = cfg.Scene.Shadows
	engine, err := renderer.NewRenderEngine(window, opts, logger)
	if err != nil {
		return fmt.Errorf("renderer: %w", err)
	}
	defer engine.Destroy()

	models := loader.New(queue,
		loader.WithAssetRoot(cfg.Assets.Root),
		loader.WithMaxTextureSize(cfg.Assets.MaxTextureSize),
		loader.WithLogger(logger),
	)
	world := app.BuildScene(cfg, models, float32(window.Width)/float32(max(window.Height, 1)), logger)

	binder := xr.NewBinder(world.Scene, logger)
	gamepads := xr.NewGamepadSource(xr.GLFWJoysticks{}, binder)

	orbit := controls.NewOrbit(world.Camera, world.Ground.Transform.Position, cfg.Scene.OrbitDamping)
	orbit.SetViewportHeight(window.Height)
	window.OnCursor(orbit.HandleCursor)
	window.OnMouseButton(orbit.HandleButton)
	window.OnScroll(orbit.HandleScroll)

	quitOnEscape := app.UpdateFunc(func() {
		if window.IsKeyPressed(core.KeyEscape) {
			window.Close()
		}
	})

	state := app.NewState(world, engine, queue,
		app.WithRotationSpeed(cfg.Scene.RotationSpeed),
		app.WithMaxPixelRatio(cfg.Scene.MaxPixelRatio),
		app.WithUpdaters(app.UpdateFunc(gamepads.Poll), orbit, quitOnEscape),
	)

	window.OnResize(func(width, height int, pixelRatio float32) {
		state.Resize(width, height, pixelRatio)
		orbit.SetViewportHeight(height)
	})
	state.Resize(window.Width, window.Height, window.PixelRatio())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if configPath != "" {
		err := config.Watch(ctx, configPath, func(c config.Config) {
			queue.Post(func() {
				state.RotationSpeed = c.Scene.RotationSpeed
			})
		})
		if err != nil {
			logger.Warn("config hot reload disabled", "err", err)
		}
	}

	logger.Info("scene ready",
		"nodes", len(world.Scene.Root.Children),
		"lights", len(world.Scene.Lights),
		"models", len(cfg.Assets.Models))
	if err := window.Run(state.Tick); err != nil {
		return err
	}
	stats := engine.Stats()
	logger.Debug("last frame", "drawn", stats.Drawn, "culled", stats.Culled, "casters", stats.Casters,
		"width", stats.Width, "height", stats.Height)
	return nil
}
