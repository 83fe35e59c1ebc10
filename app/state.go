// Package app ties the scene graph, the camera and a renderer together and
// exposes the per-frame tick and the resize handler the window drives.
package app

import (
	"fmt"
	"time"

	"vr-scene/core"
	"vr-scene/scene"
)

// Renderer draws a scene. All methods run on the render thread.
type Renderer interface {
	Render(s *scene.Scene, camera *scene.Camera) error
	SetSize(width, height int)
	SetPixelRatio(ratio float32)
}

// Updater is anything advanced once per tick before rendering, such as
// camera controls or an input poller.
type Updater interface {
	Update()
}

// UpdateFunc adapts a function to Updater.
type UpdateFunc func()

func (f UpdateFunc) Update() { f() }

// State is the single owner of everything the frame loop touches. It is
// not safe for concurrent use; other goroutines reach it through Queue.
type State struct {
	Scene  *scene.Scene
	Camera *scene.Camera
	Queue  *core.Queue

	// Rotating nodes spin around Y at RotationSpeed radians per millisecond.
	Rotating      []*scene.Node
	RotationSpeed float32
	MaxPixelRatio float32

	renderer Renderer
	updaters []Updater
	now      func() time.Time
	last     time.Time
}

type Option func(*State)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *State) {
		s.now = now
	}
}

// WithUpdaters registers per-tick updaters, run in order after the queue is
// drained.
func WithUpdaters(updaters ...Updater) Option {
	return func(s *State) {
		s.updaters = append(s.updaters, updaters...)
	}
}

func WithRotationSpeed(speed float32) Option {
	return func(s *State) {
		s.RotationSpeed = speed
	}
}

func WithMaxPixelRatio(ratio float32) Option {
	return func(s *State) {
		s.MaxPixelRatio = ratio
	}
}

func NewState(w *World, r Renderer, queue *core.Queue, options ...Option) *State {
	s := &State{
		Scene:         w.Scene,
		Camera:        w.Camera,
		Rotating:      w.Rotating,
		Queue:         queue,
		RotationSpeed: DefaultRotationSpeed,
		MaxPixelRatio: DefaultMaxPixelRatio,
		renderer:      r,
		now:           time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	s.last = s.now()
	return s
}

// Tick advances the scene by the wall-clock time since the previous tick
// and renders it once. The window calls it once per refresh.
func (s *State) Tick() error {
	if s.Queue != nil {
		s.Queue.Drain()
	}

	now := s.now()
	delta := now.Sub(s.last)
	if delta < 0 {
		delta = 0
	}
	s.last = now

	s.advance(delta)

	for _, u := range s.updaters {
		u.Update()
	}

	if err := s.renderer.Render(s.Scene, s.Camera); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	return nil
}

func (s *State) advance(delta time.Duration) {
	ms := float32(delta) / float32(time.Millisecond)
	for _, n := range s.Rotating {
		n.RotateY(s.RotationSpeed * ms)
	}

	// rediscovered every frame so models attached by the loader are picked up
	for _, n := range scene.FindAnimated(s.Scene.Root) {
		if n.Mixer != nil {
			n.Mixer.Update(delta)
		}
	}
}

// Resize applies a new logical viewport size and device pixel ratio. A zero
// height, as reported for a minimised window, is ignored.
func (s *State) Resize(width, height int, pixelRatio float32) {
	if width <= 0 || height <= 0 {
		return
	}
	s.renderer.SetSize(width, height)
	s.Camera.SetAspect(float32(width) / float32(height))
	s.Camera.UpdateProjectionMatrix()
	s.renderer.SetPixelRatio(min(pixelRatio, s.MaxPixelRatio))
}
