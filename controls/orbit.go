// Package controls moves the camera from mouse input.
package controls

import (
	"github.com/chewxy/math32"

	"vr-scene/core"
	"vr-scene/math"
	"vr-scene/scene"
)

const minPolarOffset = 1e-3

// Orbit rotates the camera around Target on left drag, pans on right drag
// and dollies on scroll. Input accumulates between frames; Update applies a
// Damping fraction of it per call, so motion eases out over several frames.
type Orbit struct {
	Camera      *scene.Camera
	Target      math.Vec3
	Damping     float32 // 0 applies input immediately
	RotateSpeed float32
	ZoomSpeed   float32
	PanSpeed    float32
	MinDistance float32
	MaxDistance float32

	radius, theta, phi float32

	dTheta, dPhi float32
	zoom         float32
	pan          math.Vec3

	rotating, panning bool
	lastX, lastY      float64
	hasCursor         bool
	viewportHeight    int
}

// NewOrbit starts from the camera's current position relative to target.
func NewOrbit(camera *scene.Camera, target math.Vec3, damping float32) *Orbit {
	o := &Orbit{
		Camera:         camera,
		Target:         target,
		Damping:        damping,
		RotateSpeed:    1,
		ZoomSpeed:      1,
		PanSpeed:       1,
		MinDistance:    0.1,
		MaxDistance:    500,
		zoom:           1,
		viewportHeight: 720,
	}
	offset := camera.Position.Sub(target)
	o.radius = offset.Length()
	if o.radius > 0 {
		o.theta = math32.Atan2(offset.X, offset.Z)
		o.phi = math32.Acos(clamp(offset.Y/o.radius, -1, 1))
	}
	return o
}

func (o *Orbit) SetViewportHeight(height int) {
	if height > 0 {
		o.viewportHeight = height
	}
}

func (o *Orbit) HandleButton(button int, pressed bool) {
	switch button {
	case core.MouseButtonLeft:
		o.rotating = pressed
	case core.MouseButtonRight, core.MouseButtonMiddle:
		o.panning = pressed
	}
}

func (o *Orbit) HandleCursor(x, y float64) {
	if !o.hasCursor {
		o.lastX, o.lastY, o.hasCursor = x, y, true
		return
	}
	dx := float32(x - o.lastX)
	dy := float32(y - o.lastY)
	o.lastX, o.lastY = x, y

	h := float32(o.viewportHeight)
	switch {
	case o.rotating:
		o.dTheta -= 2 * math32.Pi * dx / h * o.RotateSpeed
		o.dPhi -= 2 * math32.Pi * dy / h * o.RotateSpeed
	case o.panning:
		// pan so the point under the cursor follows it at target depth
		perPixel := 2 * o.radius * math32.Tan(o.Camera.FOV/2) / h * o.PanSpeed
		right, up := o.basis()
		o.pan = o.pan.Add(right.Mul(-dx * perPixel)).Add(up.Mul(dy * perPixel))
	}
}

func (o *Orbit) HandleScroll(_, yoff float64) {
	o.zoom *= math32.Pow(0.95, float32(yoff)*o.ZoomSpeed)
}

// Update applies pending input to the camera. Call once per frame.
func (o *Orbit) Update() {
	f := o.Damping
	if f <= 0 {
		f = 1
	}

	o.theta += o.dTheta * f
	o.phi = clamp(o.phi+o.dPhi*f, minPolarOffset, math32.Pi-minPolarOffset)
	o.radius = clamp(o.radius*o.zoom, o.MinDistance, o.MaxDistance)
	o.Target = o.Target.Add(o.pan.Mul(f))

	sinPhi, cosPhi := math32.Sincos(o.phi)
	sinTheta, cosTheta := math32.Sincos(o.theta)
	offset := math.Vec3{
		X: o.radius * sinPhi * sinTheta,
		Y: o.radius * cosPhi,
		Z: o.radius * sinPhi * cosTheta,
	}
	o.Camera.SetPosition(o.Target.Add(offset))
	o.Camera.LookAt(o.Target)

	keep := 1 - f
	o.dTheta *= keep
	o.dPhi *= keep
	o.pan = o.pan.Mul(keep)
	o.zoom = 1
}

// Distance is the current camera distance from Target.
func (o *Orbit) Distance() float32 {
	return o.radius
}

func (o *Orbit) basis() (right, up math.Vec3) {
	forward := o.Target.Sub(o.Camera.Position).Normalize()
	right = forward.Cross(math.Vec3Up).Normalize()
	up = right.Cross(forward)
	return right, up
}

func clamp(v, lo, hi float32) float32 {
	return math32.Max(lo, math32.Min(hi, v))
}
