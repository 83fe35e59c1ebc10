// Package renderer draws a scene.Scene through the OpenGL backend. It owns
// the frame plan (culling, ordering, shadow casters) and the drawing-buffer
// size derived from the window size and pixel ratio.
package renderer

import (
	"fmt"
	"log/slog"

	"vr-scene/core"
	"vr-scene/internal/opengl"
	"vr-scene/scene"
)

type Options struct {
	Shadows        bool
	ShadowMapSize  int
	FrustumCulling bool
	ToneMapping    bool
	Exposure       float32
}

func DefaultOptions() Options {
	return Options{
		Shadows:        true,
		ShadowMapSize:  2048,
		FrustumCulling: true,
		Exposure:       1,
	}
}

// Stats describes the most recent frame.
type Stats struct {
	Drawn   int
	Culled  int
	Casters int
	Width   int
	Height  int
}

// RenderEngine is the high-level renderer that drives the OpenGL backend.
type RenderEngine struct {
	gl     *opengl.Renderer
	window *core.Window
	opts   Options
	logger *slog.Logger

	width, height int
	pixelRatio    float32

	stats Stats
}

// NewRenderEngine initialises the backend on the window's GL context. A
// shadow map that cannot be created is logged and shadows are turned off.
func NewRenderEngine(window *core.Window, opts Options, logger *slog.Logger) (*RenderEngine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	glRenderer, err := opengl.NewRenderer(logger)
	if err != nil {
		return nil, fmt.Errorf("create OpenGL renderer: %w", err)
	}
	glRenderer.SetToneMapping(opts.ToneMapping, opts.Exposure)

	if opts.Shadows {
		if err := glRenderer.EnableShadows(opts.ShadowMapSize); err != nil {
			logger.Error("shadows disabled", "err", err)
			opts.Shadows = false
		}
	}

	logger.Info("render engine initialized", "backend", "opengl", "shadows", opts.Shadows)
	return &RenderEngine{
		gl:         glRenderer,
		window:     window,
		opts:       opts,
		logger:     logger,
		width:      window.Width,
		height:     window.Height,
		pixelRatio: 1,
	}, nil
}

// SetSize sets the logical output size. It takes effect on the next Render.
func (re *RenderEngine) SetSize(width, height int) {
	re.width, re.height = width, height
}

// SetPixelRatio sets the drawing-buffer pixels per logical pixel.
func (re *RenderEngine) SetPixelRatio(ratio float32) {
	re.pixelRatio = ratio
}

func (re *RenderEngine) Render(s *scene.Scene, camera *scene.Camera) error {
	if s == nil || camera == nil {
		return fmt.Errorf("render: nil scene or camera")
	}

	plan := BuildPlan(s, camera, re.opts.FrustumCulling)
	view := camera.GetViewMatrix()
	proj := camera.GetProjectionMatrix()
	viewProj := view.Mul(proj)

	frame := opengl.Frame{
		Clear:     s.ClearColor,
		Ambient:   s.Ambient,
		Lights:    s.Lights,
		CameraPos: camera.Position,
	}

	// ── Shadow pass ───────────────────────────────────────────────────────────
	if re.opts.Shadows && re.gl.HasShadowMap() {
		if idx := shadowLightIndex(s.Lights, opengl.MaxLights); idx >= 0 {
			if lightVP, ok := ShadowViewProj(s.Lights[idx].Position, camera.Target); ok {
				re.gl.ShadowPass(lightVP, draws(plan.Casters))
				frame.Shadows = true
				frame.LightViewProj = lightVP
				frame.ShadowLight = idx
			}
		}
	}

	// ── Main pass ─────────────────────────────────────────────────────────────
	w, h := drawingBufferSize(re.width, re.height, re.pixelRatio)
	if err := re.gl.BeginFrame(w, h, frame); err != nil {
		return fmt.Errorf("begin frame: %w", err)
	}
	for _, d := range draws(plan.Opaque) {
		re.gl.DrawMesh(d, viewProj)
	}
	re.gl.DrawSkybox(s.Background, view, proj)
	for _, d := range draws(plan.Blended) {
		re.gl.DrawMesh(d, viewProj)
	}

	fbw, fbh := re.window.GetFramebufferSize()
	re.gl.Present(fbw, fbh)

	re.stats = Stats{
		Drawn:   len(plan.Opaque) + len(plan.Blended),
		Culled:  plan.Culled,
		Casters: len(plan.Casters),
		Width:   w,
		Height:  h,
	}
	return nil
}

func draws(items []Item) []opengl.Draw {
	out := make([]opengl.Draw, len(items))
	for i, it := range items {
		out[i] = opengl.Draw{
			Mesh:          it.Node.Mesh,
			Model:         it.Model,
			Joints:        it.Joints,
			ReceiveShadow: it.Node.ReceiveShadow,
		}
	}
	return out
}

// Stats returns figures from the most recent Render call.
func (re *RenderEngine) Stats() Stats {
	return re.stats
}

func (re *RenderEngine) Destroy() {
	re.gl.Destroy()
}
